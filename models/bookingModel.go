package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Booking struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Tour      primitive.ObjectID `json:"tour" bson:"tour,omitempty" validate:"required"`
	User      primitive.ObjectID `json:"user" bson:"user,omitempty" validate:"required"`
	Price     *float64           `json:"price" bson:"price,omitempty" validate:"required"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt,omitempty"`
	Paid      *bool              `json:"paid,omitempty" bson:"paid,omitempty"`
}

var Bookings = &Model[Booking]{
	CollectionName: "bookings",
	PreValidate:    []Hook[Booking]{bookingDefaults},
	PreSave:        []Hook[Booking]{assignBookingID},
	Lookups: []Lookup{
		{
			From:         "tours",
			LocalField:   "tour",
			ForeignField: "_id",
			As:           "tour",
			Project:      bson.M{"name": 1},
			Single:       true,
		},
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

func bookingDefaults(ctx context.Context, booking *Booking) error {
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	if booking.Paid == nil {
		paid := true
		booking.Paid = &paid
	}
	return nil
}

func assignBookingID(ctx context.Context, booking *Booking) error {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	return nil
}
