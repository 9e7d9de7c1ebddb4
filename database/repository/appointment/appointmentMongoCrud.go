package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloodlink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new appointment document.
func (r *MongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
	appt.Occupying = appt.Status.Occupies()
	appt.Version = 1

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("error creating appointment: %w", err)
	}
	return nil
}

// GetByID retrieves an appointment by its ID.
func (r *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching appointment %s: %w", id, err)
	}
	return &appt, nil
}

// Update writes appt back only if nobody else has written it since it was read.
func (r *MongoAppointmentRepo) Update(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	expected := appt.Version
	filter := bson.M{"id": appt.ID, "version": expected}
	if expected == 0 {
		// documents written before versioning carry no version field
		filter["version"] = bson.M{"$in": bson.A{int64(0), nil}}
	}

	appt.UpdatedAt = time.Now()
	appt.Occupying = appt.Status.Occupies()
	appt.Version = expected + 1

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": appt})
	if err != nil {
		appt.Version = expected
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("error updating appointment %s: %w", appt.ID, err)
	}
	if res.MatchedCount == 0 {
		appt.Version = expected
		n, err := r.coll.CountDocuments(ctx, bson.M{"id": appt.ID})
		if err != nil {
			return fmt.Errorf("error checking appointment %s: %w", appt.ID, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrStaleWrite
	}
	return nil
}
