package models

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultRatingsAverage = 4.5

// Location is a GeoJSON point with tour metadata.
type Location struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Day         int       `json:"day,omitempty" bson:"day,omitempty"`
}

type Tour struct {
	ID             primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name           *string              `json:"name" bson:"name,omitempty" validate:"required,min=10,max=40"`
	Slug           string               `json:"slug,omitempty" bson:"slug,omitempty"`
	Duration       *float64             `json:"duration" bson:"duration,omitempty" validate:"required"`
	MaxGroupSize   *int                 `json:"maxGroupSize" bson:"maxGroupSize,omitempty" validate:"required"`
	Difficulty     *string              `json:"difficulty" bson:"difficulty,omitempty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage *float64             `json:"ratingsAverage,omitempty" bson:"ratingsAverage,omitempty" validate:"omitempty,min=1,max=5"`
	RatingQuantity *int                 `json:"ratingQuantity,omitempty" bson:"ratingQuantity,omitempty"`
	Price          *float64             `json:"price" bson:"price,omitempty" validate:"required"`
	PriceDiscount  *float64             `json:"priceDiscount,omitempty" bson:"priceDiscount,omitempty"`
	Summary        *string              `json:"summary" bson:"summary,omitempty" validate:"required"`
	Description    string               `json:"description,omitempty" bson:"description,omitempty"`
	ImageCover     *string              `json:"imageCover" bson:"imageCover,omitempty" validate:"required"`
	Images         []string             `json:"images,omitempty" bson:"images,omitempty"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt,omitempty"`
	StartDates     []time.Time          `json:"startDates,omitempty" bson:"startDates,omitempty"`
	SecretTour     *bool                `json:"secretTour,omitempty" bson:"secretTour,omitempty"`
	StartLocation  *Location            `json:"startLocation,omitempty" bson:"startLocation,omitempty"`
	Locations      []Location           `json:"locations,omitempty" bson:"locations,omitempty"`
	Guides         []primitive.ObjectID `json:"guides,omitempty" bson:"guides,omitempty"`
	DurationWeeks  float64              `json:"durationWeeks,omitempty" bson:"-"`
}

// Tours hides secret tours from every standard read and keeps the slug in
// step with the name. Guide references are resolved on every read.
var Tours = &Model[Tour]{
	CollectionName: "tours",
	Visibility:     bson.M{"secretTour": bson.M{"$ne": true}},
	PreValidate:    []Hook[Tour]{tourDefaults},
	PreSave:        []Hook[Tour]{slugifyTour},
	PreUpdate:      []Hook[Tour]{slugifyTour},
	Lookups: []Lookup{
		{
			From:         "users",
			LocalField:   "guides",
			ForeignField: "_id",
			As:           "guides",
			Project: bson.M{
				"__v":                  0,
				"password":             0,
				"passwordChangedAt":    0,
				"passwordResetToken":   0,
				"passwordResetExpires": 0,
				"active":               0,
			},
		},
	},
	GetOneLookups: []Lookup{
		{
			From:         "reviews",
			LocalField:   "_id",
			ForeignField: "tour",
			As:           "reviews",
		},
	},
	Present: func(tour *Tour) {
		if tour.Duration != nil {
			tour.DurationWeeks = *tour.Duration / 7
		}
	},
	PresentRaw: func(doc bson.M) {
		switch duration := doc["duration"].(type) {
		case float64:
			doc["durationWeeks"] = duration / 7
		case int32:
			doc["durationWeeks"] = float64(duration) / 7
		case int64:
			doc["durationWeeks"] = float64(duration) / 7
		}
	},
}

func init() {
	Validate.RegisterStructValidation(tourStructLevelValidation, Tour{})
}

// priceDiscount must be strictly less than price; a cross-field rule the tag
// syntax cannot express against pointer fields.
func tourStructLevelValidation(sl validator.StructLevel) {
	tour := sl.Current().Interface().(Tour)
	if tour.PriceDiscount != nil && tour.Price != nil && *tour.PriceDiscount >= *tour.Price {
		sl.ReportError(tour.PriceDiscount, "priceDiscount", "PriceDiscount", "ltfield", "price")
	}
}

func tourDefaults(ctx context.Context, tour *Tour) error {
	if tour.Name != nil {
		trimmed := strings.TrimSpace(*tour.Name)
		tour.Name = &trimmed
	}
	if tour.Summary != nil {
		trimmed := strings.TrimSpace(*tour.Summary)
		tour.Summary = &trimmed
	}
	if tour.RatingsAverage == nil {
		avg := defaultRatingsAverage
		tour.RatingsAverage = &avg
	} else {
		rounded := RoundRating(*tour.RatingsAverage)
		tour.RatingsAverage = &rounded
	}
	if tour.RatingQuantity == nil {
		qty := 0
		tour.RatingQuantity = &qty
	}
	if tour.SecretTour == nil {
		secret := false
		tour.SecretTour = &secret
	}
	if tour.CreatedAt.IsZero() {
		tour.CreatedAt = time.Now()
	}
	if tour.StartLocation != nil && tour.StartLocation.Type == "" {
		tour.StartLocation.Type = "Point"
	}
	for i := range tour.Locations {
		if tour.Locations[i].Type == "" {
			tour.Locations[i].Type = "Point"
		}
	}
	return nil
}

func slugifyTour(ctx context.Context, tour *Tour) error {
	if tour.ID.IsZero() {
		tour.ID = primitive.NewObjectID()
	}
	if tour.Name != nil {
		tour.Slug = slug.Make(*tour.Name)
	}
	return nil
}

// RoundRating stores averages at one decimal place.
func RoundRating(value float64) float64 {
	return math.Round(value*10) / 10
}
