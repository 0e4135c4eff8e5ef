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

const coachMessageCollectionName = "coach_messages"

// mongoCoachMessageRepository implements repository.CoachMessageRepository
type mongoCoachMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoCoachMessageRepository creates a new conversation-history repository.
func NewMongoCoachMessageRepository(db *mongo.Database) repository.CoachMessageRepository {
	return &mongoCoachMessageRepository{
		collection: db.Collection(coachMessageCollectionName),
	}
}

// Append persists one message at the end of a plan's conversation history.
// History is append-only; messages are never edited or reordered, only their
// attached proposal can change.
func (r *mongoCoachMessageRepository) Append(ctx context.Context, message *domain.CoachMessage) error {
	if message.ID == "" || message.PlanID == "" {
		return errors.New("coach message requires id and planId")
	}
	_, err := r.collection.InsertOne(ctx, message)
	return err
}

// GetByPlanID returns a plan's full conversation history in chronological
// order. Undecodable documents are skipped, matching the plan repository's
// corruption policy.
func (r *mongoCoachMessageRepository) GetByPlanID(ctx context.Context, planID string) ([]domain.CoachMessage, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"planId": planID}, findOptions)
	if err != nil {
		log.Printf("WARN: listing coach messages failed, treating history as empty: %v", err)
		return []domain.CoachMessage{}, nil
	}
	defer cursor.Close(ctx)

	messages := []domain.CoachMessage{}
	for cursor.Next(ctx) {
		var msg domain.CoachMessage
		if err := cursor.Decode(&msg); err != nil {
			log.Printf("WARN: skipping undecodable coach message: %v", err)
			continue
		}
		messages = append(messages, msg)
	}
	if err := cursor.Err(); err != nil {
		log.Printf("WARN: coach message cursor error, returning partial history: %v", err)
	}
	return messages, nil
}

// AttachModification sets the pending proposal on an existing message.
func (r *mongoCoachMessageRepository) AttachModification(ctx context.Context, planID, messageID string, mod domain.PlanModificationProposal) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": messageID, "planId": planID},
		bson.M{"$set": bson.M{"planModification": mod}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetModification finds a proposal by id across the plan's messages.
func (r *mongoCoachMessageRepository) GetModification(ctx context.Context, planID, modificationID string) (*domain.PlanModificationProposal, error) {
	var msg domain.CoachMessage
	err := r.collection.FindOne(ctx, bson.M{
		"planId":              planID,
		"planModification.id": modificationID,
	}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if msg.PlanModification == nil {
		return nil, repository.ErrNotFound
	}
	return msg.PlanModification, nil
}

// UpdateModificationStatus transitions a proposal's lifecycle state. The
// write is last-wins: the store does not guard against re-transitioning an
// already-terminal proposal.
func (r *mongoCoachMessageRepository) UpdateModificationStatus(ctx context.Context, planID, modificationID string, status domain.ModificationStatus) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"planId": planID, "planModification.id": modificationID},
		bson.M{"$set": bson.M{"planModification.status": status}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByPlanID drops a plan's whole conversation history. Used when the
// plan itself is deleted.
func (r *mongoCoachMessageRepository) DeleteByPlanID(ctx context.Context, planID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsureCoachMessageIndexes creates necessary indexes. Call during startup.
func EnsureCoachMessageIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: a plan's history in order
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index(),
		},
		{
			// Proposal lookups by id; sparse since most messages carry none
			Keys:    bson.D{{Key: "planModification.id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: failed to create indexes for %s: %v", collection.Name(), err)
	}
}
