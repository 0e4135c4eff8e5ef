package mongo

import (
	"context"
	"errors"
	"log"

	"github.com/Albadylic/couch-potato/internal/domain"
	"github.com/Albadylic/couch-potato/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const savedPlanCollectionName = "saved_plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new saved-plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(savedPlanCollectionName),
	}
}

// Create inserts a new saved plan aggregate. The service layer assigns the
// id and creation timestamp before calling; the repository only persists.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.SavedPlan) error {
	if plan.ID == "" {
		return errors.New("saved plan requires an id")
	}
	_, err := r.collection.InsertOne(ctx, plan)
	return err
}

// GetByID retrieves a single saved plan by its id.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id string) (*domain.SavedPlan, error) {
	var plan domain.SavedPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if plan.Progress == nil {
		plan.Progress = domain.ProgressLedger{}
	}
	return &plan, nil
}

// List returns every saved plan. Ordering is a presentation concern; the
// newest-first sort here just keeps the plans page stable. Documents that no
// longer decode are skipped rather than failing the whole read: a corrupt
// store is treated as (partially) empty, never as a fatal error.
func (r *mongoPlanRepository) List(ctx context.Context) ([]domain.SavedPlan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		log.Printf("WARN: listing saved plans failed, treating store as empty: %v", err)
		return []domain.SavedPlan{}, nil
	}
	defer cursor.Close(ctx)

	plans := []domain.SavedPlan{}
	for cursor.Next(ctx) {
		var plan domain.SavedPlan
		if err := cursor.Decode(&plan); err != nil {
			log.Printf("WARN: skipping undecodable saved plan document: %v", err)
			continue
		}
		if plan.Progress == nil {
			plan.Progress = domain.ProgressLedger{}
		}
		plans = append(plans, plan)
	}
	if err := cursor.Err(); err != nil {
		log.Printf("WARN: saved plan cursor error, returning partial result: %v", err)
	}
	return plans, nil
}

// Delete removes the aggregate. Deleting a missing id is not an error.
func (r *mongoPlanRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// SetProgress writes a single ledger entry atomically.
func (r *mongoPlanRepository) SetProgress(ctx context.Context, planID, key string, value domain.ProgressValue) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": planID},
		bson.M{"$set": bson.M{"progress." + key: value}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ClearProgress removes a single ledger entry entirely, which is distinct
// from marking the day missed.
func (r *mongoPlanRepository) ClearProgress(ctx context.Context, planID, key string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": planID},
		bson.M{"$unset": bson.M{"progress." + key: ""}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReplaceWeeks swaps the plan's week list wholesale. The progress ledger is
// deliberately untouched by this operation.
func (r *mongoPlanRepository) ReplaceWeeks(ctx context.Context, planID string, weeks []domain.Week) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": planID},
		bson.M{"$set": bson.M{"plan.weeks": weeks}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSavedPlanIndexes creates necessary indexes. Call during startup.
func EnsureSavedPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: failed to create indexes for %s: %v", collection.Name(), err)
	}
}
