package models

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestReadFilterMergesVisibility(t *testing.T) {
	filter := Users.ReadFilter(bson.M{"email": "test@example.com"})

	assert.Equal(t, "test@example.com", filter["email"])
	assert.Equal(t, bson.M{"$ne": false}, filter["active"])
}

func TestReadFilterVisibilityWins(t *testing.T) {
	filter := Tours.ReadFilter(bson.M{"secretTour": true})

	assert.Equal(t, bson.M{"$ne": true}, filter["secretTour"])
}

func TestReadFilterDoesNotMutateInput(t *testing.T) {
	original := bson.M{"email": "test@example.com"}
	Users.ReadFilter(original)

	assert.Equal(t, bson.M{"email": "test@example.com"}, original)
}

func TestHiddenProjection(t *testing.T) {
	projection := Users.HiddenProjection()

	assert.Equal(t, bson.M{
		"__v":                  0,
		"password":             0,
		"passwordResetToken":   0,
		"passwordResetExpires": 0,
		"active":               0,
	}, projection)
}

func TestRunHooksShortCircuitsOnError(t *testing.T) {
	boom := errors.New("hook failed")
	var calls []string

	hooks := []Hook[User]{
		func(ctx context.Context, u *User) error {
			calls = append(calls, "first")
			return nil
		},
		func(ctx context.Context, u *User) error {
			calls = append(calls, "second")
			return boom
		},
		func(ctx context.Context, u *User) error {
			calls = append(calls, "third")
			return nil
		},
	}

	err := Users.RunHooks(context.Background(), hooks, &User{})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestLookupStagesBasic(t *testing.T) {
	stages := LookupStages([]Lookup{{
		From:         "users",
		LocalField:   "guides",
		ForeignField: "_id",
		As:           "guides",
	}})

	require.Len(t, stages, 1)
	assert.Equal(t, "$lookup", stages[0][0].Key)

	spec, ok := stages[0][0].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, bson.E{Key: "from", Value: "users"}, spec[0])
	assert.Equal(t, bson.E{Key: "as", Value: "guides"}, spec[3])
}

func TestLookupStagesSingleAddsUnwind(t *testing.T) {
	stages := LookupStages([]Lookup{{
		From:         "users",
		LocalField:   "user",
		ForeignField: "_id",
		As:           "user",
		Project:      bson.M{"name": 1, "photo": 1},
		Single:       true,
	}})

	require.Len(t, stages, 2)
	assert.Equal(t, "$lookup", stages[0][0].Key)
	assert.Equal(t, "$unwind", stages[1][0].Key)

	unwind, ok := stages[1][0].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, bson.E{Key: "path", Value: "$user"}, unwind[0])
	assert.Equal(t, bson.E{Key: "preserveNullAndEmptyArrays", Value: true}, unwind[1])
}

func TestReviewDefaults(t *testing.T) {
	review := &Review{}

	require.NoError(t, reviewDefaults(context.Background(), review))
	assert.False(t, review.CreatedAt.IsZero())

	require.NoError(t, assignReviewID(context.Background(), review))
	assert.False(t, review.ID.IsZero())
}
