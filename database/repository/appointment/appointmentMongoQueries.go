package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"bloodlink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindOccupying fetches every appointment of a bank on a date whose status holds its interval.
func (r *MongoAppointmentRepo) FindOccupying(ctx context.Context, bloodBankID, date string) ([]models.Appointment, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"bloodBankId":     bloodBankID,
		"appointmentDate": date,
		"status":          bson.M{"$in": models.OccupyingStatuses},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timeSlot.startTime", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding occupying appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

// List applies role scoping, status and date-range filters with pagination.
func (r *MongoAppointmentRepo) List(ctx context.Context, f models.AppointmentFilter) ([]models.Appointment, int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.DonorID != "" {
		filter["donorId"] = f.DonorID
	}
	if f.BloodBankID != "" {
		filter["bloodBankId"] = f.BloodBankID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.StartDate != "" || f.EndDate != "" {
		dateRange := bson.M{}
		if f.StartDate != "" {
			dateRange["$gte"] = f.StartDate
		}
		if f.EndDate != "" {
			dateRange["$lte"] = f.EndDate
		}
		filter["appointmentDate"] = dateRange
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "appointmentDate", Value: 1}, {Key: "timeSlot.startTime", Value: 1}}).
		SetSkip(int64(page-1) * int64(limit)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, 0, fmt.Errorf("error decoding appointments: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting appointments: %w", err)
	}
	return appts, total, nil
}

// FindStale returns appointments still in one of statuses on a day before beforeDate.
func (r *MongoAppointmentRepo) FindStale(ctx context.Context, statuses []models.AppointmentStatus, beforeDate string) ([]models.Appointment, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":          bson.M{"$in": statuses},
		"appointmentDate": bson.M{"$lt": beforeDate},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding stale appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding stale appointments: %w", err)
	}
	return appts, nil
}
