package models

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"golang-tourbackend/database"
)

// Validate is the shared schema validator. Entity packages register their
// cross-field rules against it in init.
var Validate = validator.New()

// Hook is a lifecycle function run around persistence. Pre-save hooks mutate
// the document before it is written; post hooks observe the written (or
// deleted) document.
type Hook[T any] func(ctx context.Context, doc *T) error

// Lookup resolves a reference field into the referenced records at read time:
// an explicit join parametrized by (foreign collection, foreign key, local
// key), never implicit.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Project      bson.M // optional projection applied to the joined records
	Single       bool   // unwind the result to a single embedded document
}

// Model is the CRUD-capable collection accessor the handler factory is built
// on. Visibility is merged into every standard read filter; Hidden fields are
// stripped from every projection.
type Model[T any] struct {
	CollectionName string
	Visibility     bson.M
	Hidden         []string

	PreValidate []Hook[T]
	PreSave     []Hook[T]
	PreUpdate   []Hook[T]
	PostSave    []Hook[T]
	PostDelete  []Hook[T]

	// Present adjusts a decoded document before it is written to a response:
	// derived fields are computed and write-only fields are cleared.
	// PresentRaw is its counterpart for lookup-expanded documents.
	Present    func(doc *T)
	PresentRaw func(doc bson.M)

	// Lookups applied on every read; GetOneLookups additionally on single
	// record fetches (e.g. a tour's reviews).
	Lookups       []Lookup
	GetOneLookups []Lookup
}

func (m *Model[T]) Collection() *mongo.Collection {
	return database.OpenCollection(m.CollectionName)
}

// ReadFilter merges the caller's filter with the model's visibility rules.
func (m *Model[T]) ReadFilter(filter bson.M) bson.M {
	merged := bson.M{}
	for k, v := range filter {
		merged[k] = v
	}
	for k, v := range m.Visibility {
		merged[k] = v
	}
	return merged
}

// HiddenProjection is the exclusion projection applied when no field
// selection was requested.
func (m *Model[T]) HiddenProjection() bson.M {
	projection := bson.M{"__v": 0}
	for _, h := range m.Hidden {
		projection[h] = 0
	}
	return projection
}

func (m *Model[T]) RunHooks(ctx context.Context, hooks []Hook[T], doc *T) error {
	for _, hook := range hooks {
		if err := hook(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// LookupStages renders lookups as aggregation stages.
func LookupStages(lookups []Lookup) []bson.D {
	var stages []bson.D
	for _, l := range lookups {
		spec := bson.D{
			{Key: "from", Value: l.From},
			{Key: "localField", Value: l.LocalField},
			{Key: "foreignField", Value: l.ForeignField},
			{Key: "as", Value: l.As},
		}
		if l.Project != nil {
			spec = append(spec, bson.E{Key: "pipeline", Value: []bson.D{
				{{Key: "$project", Value: l.Project}},
			}})
		}
		stages = append(stages, bson.D{{Key: "$lookup", Value: spec}})
		if l.Single {
			stages = append(stages, bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$" + l.As},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}})
		}
	}
	return stages
}
