package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"bloodlink/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new instance of MongoAppointmentRepo.
func NewMongoAppointmentRepo() AppointmentRepository {
	repo := &MongoAppointmentRepo{coll: database.DB().Collection("appointments")}
	if err := repo.EnsureIndexes(); err != nil {
		fmt.Printf("failed to create appointment indexes: %v\n", err)
	}
	return repo
}

// newContext bounds a repository call by timeout on top of the caller's context.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

// EnsureIndexes creates the indexes for the appointments collection.
func (r *MongoAppointmentRepo) EnsureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "donorId", Value: 1}, {Key: "appointmentDate", Value: -1}},
			Options: options.Index().SetName("donor_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "bloodBankId", Value: 1}, {Key: "appointmentDate", Value: 1}},
			Options: options.Index().SetName("bank_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "appointmentDate", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("date_status_idx"),
		},
		// Storage backstop for the no-overlap invariant: two occupying
		// appointments of one bank cannot start at the same minute.
		{
			Keys: bson.D{
				{Key: "bloodBankId", Value: 1},
				{Key: "appointmentDate", Value: 1},
				{Key: "timeSlot.startTime", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("bank_date_start_occupying_uniq").
				SetPartialFilterExpression(bson.M{"occupying": true}),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
