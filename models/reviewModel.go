package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Review    *string            `json:"review" bson:"review,omitempty" validate:"required"`
	Rating    *float64           `json:"rating" bson:"rating,omitempty" validate:"required,min=1,max=5"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt,omitempty"`
	Tour      primitive.ObjectID `json:"tour" bson:"tour,omitempty" validate:"required"`
	User      primitive.ObjectID `json:"user" bson:"user,omitempty" validate:"required"`
}

// Reviews resolves the author on every read and keeps the owning tour's
// rating aggregates current on every write and delete.
var Reviews = &Model[Review]{
	CollectionName: "reviews",
	PreValidate:    []Hook[Review]{reviewDefaults},
	PreSave:        []Hook[Review]{assignReviewID},
	Lookups: []Lookup{
		{
			From:         "users",
			LocalField:   "user",
			ForeignField: "_id",
			As:           "user",
			Project:      bson.M{"name": 1, "photo": 1},
			Single:       true,
		},
	},
}

// Registered in init rather than the composite literal above to avoid an
// initialization cycle: recalcTourRatings -> CalcAverageRatings -> Reviews.
func init() {
	Reviews.PostSave = []Hook[Review]{recalcTourRatings}
	Reviews.PostDelete = []Hook[Review]{recalcTourRatings}
}

func reviewDefaults(ctx context.Context, review *Review) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	return nil
}

func assignReviewID(ctx context.Context, review *Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	return nil
}

func recalcTourRatings(ctx context.Context, review *Review) error {
	return CalcAverageRatings(ctx, review.Tour)
}

type ratingStats struct {
	NRating   int     `bson:"nRating"`
	AvgRating float64 `bson:"avgRating"`
}

// summarizeRatings folds the aggregation output into the values to store.
// With no reviews left the tour reverts to the baseline default.
func summarizeRatings(stats []ratingStats) (quantity int, average float64) {
	if len(stats) == 0 {
		return 0, defaultRatingsAverage
	}
	return stats[0].NRating, RoundRating(stats[0].AvgRating)
}

// CalcAverageRatings recomputes and persists a tour's ratingQuantity and
// ratingsAverage over all of its reviews. The review write and this update
// are two separate operations; a crash in between leaves the aggregates stale
// until the next review write.
func CalcAverageRatings(ctx context.Context, tourID primitive.ObjectID) error {
	cursor, err := Reviews.Collection().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tour"},
			{Key: "nRating", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
		}}},
	})
	if err != nil {
		return err
	}

	var stats []ratingStats
	if err := cursor.All(ctx, &stats); err != nil {
		return err
	}

	quantity, average := summarizeRatings(stats)

	_, err = Tours.Collection().UpdateOne(ctx,
		bson.M{"_id": tourID},
		bson.M{"$set": bson.M{
			"ratingQuantity": quantity,
			"ratingsAverage": average,
		}},
	)
	return err
}
