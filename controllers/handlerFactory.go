package controllers

import (
	"context"
	"net/http"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"golang-tourbackend/models"
	"golang-tourbackend/utils"
)

const requestTimeout = 10 * time.Second

// queryScopeKey carries a route-nesting filter (e.g. reviews of one tour)
// from a pre-handler into GetAll.
const queryScopeKey = "queryScope"

var errNoDocument = utils.NewAppError("No document found with that ID", http.StatusNotFound)

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func idParam(c *gin.Context) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return primitive.NilObjectID, utils.WrapError(err, "Invalid id: "+c.Param("id"), http.StatusBadRequest)
	}
	return oid, nil
}

// CreateOne persists a full record payload and answers 201 with the created
// record.
func CreateOne[T any](m *models.Model[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var doc T
		if err := c.ShouldBindJSON(&doc); err != nil {
			abortWithError(c, utils.WrapError(err, "Invalid input", http.StatusBadRequest))
			return
		}

		if err := m.RunHooks(ctx, m.PreValidate, &doc); err != nil {
			abortWithError(c, err)
			return
		}
		if err := models.Validate.Struct(doc); err != nil {
			abortWithError(c, err)
			return
		}
		if err := m.RunHooks(ctx, m.PreSave, &doc); err != nil {
			abortWithError(c, err)
			return
		}

		if _, err := m.Collection().InsertOne(ctx, doc); err != nil {
			abortWithError(c, err)
			return
		}
		if err := m.RunHooks(ctx, m.PostSave, &doc); err != nil {
			abortWithError(c, err)
			return
		}

		if m.Present != nil {
			m.Present(&doc)
		}
		c.JSON(http.StatusCreated, gin.H{
			"status": "success",
			"data":   gin.H{"data": doc},
		})
	}
}

// GetOne fetches a record by id, resolving the model's lookups. Records
// excluded by visibility rules are indistinguishable from absent ones.
func GetOne[T any](m *models.Model[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		oid, err := idParam(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		filter := m.ReadFilter(bson.M{"_id": oid})

		lookups := append(append([]models.Lookup{}, m.Lookups...), m.GetOneLookups...)
		if len(lookups) > 0 {
			pipeline := []bson.D{{{Key: "$match", Value: filter}}}
			pipeline = append(pipeline, models.LookupStages(lookups)...)
			pipeline = append(pipeline, bson.D{{Key: "$project", Value: m.HiddenProjection()}})

			cursor, err := m.Collection().Aggregate(ctx, pipeline)
			if err != nil {
				abortWithError(c, err)
				return
			}
			var docs []bson.M
			if err := cursor.All(ctx, &docs); err != nil {
				abortWithError(c, err)
				return
			}
			if len(docs) == 0 {
				abortWithError(c, errNoDocument)
				return
			}
			if m.PresentRaw != nil {
				m.PresentRaw(docs[0])
			}
			c.JSON(http.StatusOK, gin.H{
				"status": "success",
				"data":   gin.H{"data": docs[0]},
			})
			return
		}

		var doc T
		err = m.Collection().
			FindOne(ctx, filter, options.FindOne().SetProjection(m.HiddenProjection())).
			Decode(&doc)
		if err == mongo.ErrNoDocuments {
			abortWithError(c, errNoDocument)
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}
		if m.Present != nil {
			m.Present(&doc)
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"data": doc},
		})
	}
}

// GetAll lists records through the query feature builder, honoring any
// nesting scope a pre-handler attached.
func GetAll[T any](m *models.Model[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		scope := bson.M{}
		if v, ok := c.Get(queryScopeKey); ok {
			scope = v.(bson.M)
		}

		features := utils.NewAPIFeatures(c.Request.URL.Query(), m.ReadFilter(scope)).
			Hide(m.Hidden...).
			Filter().
			Sort().
			LimitFields().
			Paginate()

		if len(m.Lookups) > 0 {
			pipeline := features.Pipeline(models.LookupStages(m.Lookups)...)
			cursor, err := m.Collection().Aggregate(ctx, pipeline)
			if err != nil {
				abortWithError(c, err)
				return
			}
			docs := []bson.M{}
			if err := cursor.All(ctx, &docs); err != nil {
				abortWithError(c, err)
				return
			}
			if m.PresentRaw != nil {
				for _, doc := range docs {
					m.PresentRaw(doc)
				}
			}
			c.JSON(http.StatusOK, gin.H{
				"status":  "success",
				"results": len(docs),
				"data":    gin.H{"data": docs},
			})
			return
		}

		cursor, err := m.Collection().Find(ctx, features.FilterQuery(), features.FindOptions())
		if err != nil {
			abortWithError(c, err)
			return
		}
		docs := []T{}
		if err := cursor.All(ctx, &docs); err != nil {
			abortWithError(c, err)
			return
		}
		if m.Present != nil {
			for i := range docs {
				m.Present(&docs[i])
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"results": len(docs),
			"data":    gin.H{"data": docs},
		})
	}
}

// UpdateOne merges a partial payload over the stored record, re-validates the
// merged result, then persists only the fields the merge actually touched in
// a single atomic $set. Fields the payload never carried are left alone, so a
// concurrent write to them (e.g. a rating recompute) cannot be clobbered with
// the stale values this request read.
func UpdateOne[T any](m *models.Model[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		oid, err := idParam(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		filter := m.ReadFilter(bson.M{"_id": oid})

		var doc T
		err = m.Collection().FindOne(ctx, filter).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			abortWithError(c, errNoDocument)
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}

		// Snapshot before binding; the merge writes through shared pointers.
		snapshot, err := bson.Marshal(doc)
		if err != nil {
			abortWithError(c, err)
			return
		}

		if err := c.ShouldBindJSON(&doc); err != nil {
			abortWithError(c, utils.WrapError(err, "Invalid input", http.StatusBadRequest))
			return
		}
		if err := m.RunHooks(ctx, m.PreValidate, &doc); err != nil {
			abortWithError(c, err)
			return
		}
		if err := models.Validate.Struct(doc); err != nil {
			abortWithError(c, err)
			return
		}
		if err := m.RunHooks(ctx, m.PreUpdate, &doc); err != nil {
			abortWithError(c, err)
			return
		}

		set, err := changedFields(snapshot, doc)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if len(set) == 0 {
			if m.Present != nil {
				m.Present(&doc)
			}
			c.JSON(http.StatusOK, gin.H{
				"status": "success",
				"data":   gin.H{"data": doc},
			})
			return
		}

		var updated T
		err = m.Collection().
			FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
				options.FindOneAndUpdate().SetReturnDocument(options.After)).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			abortWithError(c, errNoDocument)
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}

		if err := m.RunHooks(ctx, m.PostSave, &updated); err != nil {
			abortWithError(c, err)
			return
		}
		if m.Present != nil {
			m.Present(&updated)
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"data": updated},
		})
	}
}

// changedFields diffs a pre-merge snapshot against the merged document and
// returns the fields the update touched, in their stored representation.
// Covers both payload fields and hook-adjusted ones (slug, password hash).
// Fields can only be set or changed through this path, never unset.
func changedFields[T any](snapshot []byte, merged T) (bson.M, error) {
	var storedDoc bson.M
	if err := bson.Unmarshal(snapshot, &storedDoc); err != nil {
		return nil, err
	}

	mergedRaw, err := bson.Marshal(merged)
	if err != nil {
		return nil, err
	}
	var mergedDoc bson.M
	if err := bson.Unmarshal(mergedRaw, &mergedDoc); err != nil {
		return nil, err
	}

	set := bson.M{}
	for key, value := range mergedDoc {
		if key == "_id" {
			continue
		}
		if prev, ok := storedDoc[key]; !ok || !reflect.DeepEqual(prev, value) {
			set[key] = value
		}
	}
	return set, nil
}

// DeleteOne removes a record and answers 204 with no body.
func DeleteOne[T any](m *models.Model[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		oid, err := idParam(c)
		if err != nil {
			abortWithError(c, err)
			return
		}

		var doc T
		err = m.Collection().FindOneAndDelete(ctx, m.ReadFilter(bson.M{"_id": oid})).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			abortWithError(c, errNoDocument)
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}

		if err := m.RunHooks(ctx, m.PostDelete, &doc); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
