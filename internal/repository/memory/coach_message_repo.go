package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Albadylic/couch-potato/internal/domain"
	"github.com/Albadylic/couch-potato/internal/repository"
)

// memoryCoachMessageRepository implements repository.CoachMessageRepository
// in memory.
type memoryCoachMessageRepository struct {
	mu       sync.RWMutex
	messages map[string][]*domain.CoachMessage // planID -> history in append order
}

// NewMemoryCoachMessageRepository creates an empty in-memory history repository.
func NewMemoryCoachMessageRepository() repository.CoachMessageRepository {
	return &memoryCoachMessageRepository{
		messages: make(map[string][]*domain.CoachMessage),
	}
}

func (r *memoryCoachMessageRepository) Append(_ context.Context, message *domain.CoachMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[message.PlanID] = append(r.messages[message.PlanID], cloneMessage(message))
	return nil
}

func (r *memoryCoachMessageRepository) GetByPlanID(_ context.Context, planID string) ([]domain.CoachMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.messages[planID]
	history := make([]domain.CoachMessage, 0, len(stored))
	for _, msg := range stored {
		history = append(history, *cloneMessage(msg))
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.Before(history[j].Timestamp)
	})
	return history, nil
}

func (r *memoryCoachMessageRepository) AttachModification(_ context.Context, planID, messageID string, mod domain.PlanModificationProposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages[planID] {
		if msg.ID == messageID {
			attached := mod
			msg.PlanModification = &attached
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memoryCoachMessageRepository) GetModification(_ context.Context, planID, modificationID string) (*domain.PlanModificationProposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, msg := range r.messages[planID] {
		if msg.PlanModification != nil && msg.PlanModification.ID == modificationID {
			mod := *msg.PlanModification
			return &mod, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryCoachMessageRepository) UpdateModificationStatus(_ context.Context, planID, modificationID string, status domain.ModificationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages[planID] {
		if msg.PlanModification != nil && msg.PlanModification.ID == modificationID {
			msg.PlanModification.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memoryCoachMessageRepository) DeleteByPlanID(_ context.Context, planID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, planID)
	return nil
}

func cloneMessage(msg *domain.CoachMessage) *domain.CoachMessage {
	cloned := *msg
	if msg.PlanModification != nil {
		mod := *msg.PlanModification
		mod.ProposedWeeks = cloneWeeks(msg.PlanModification.ProposedWeeks)
		mod.Changes = append([]domain.PlanChange(nil), msg.PlanModification.Changes...)
		cloned.PlanModification = &mod
	}
	return &cloned
}
