package repository

import (
	"context"

	"github.com/Albadylic/couch-potato/internal/domain"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// PlanRepository is the persistence capability for saved plan aggregates.
// Implementations are injected into the services, so the core stays testable
// without a real storage medium (mongo in production, in-memory in tests).
//
// Contract notes:
//   - GetByID returns ErrNotFound for a missing id.
//   - Delete is idempotent: deleting a missing id is not an error.
//   - List never fails on corrupt/unparseable stored data; it degrades to
//     skipping the bad documents, and an empty store yields an empty slice.
//   - SetProgress/ClearProgress/ReplaceWeeks are field-scoped single-key
//     writes and return ErrNotFound for a missing plan so callers can decide
//     to degrade to a no-op.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.SavedPlan) error
	GetByID(ctx context.Context, id string) (*domain.SavedPlan, error)
	List(ctx context.Context) ([]domain.SavedPlan, error)
	Delete(ctx context.Context, id string) error

	SetProgress(ctx context.Context, planID, key string, value domain.ProgressValue) error
	ClearProgress(ctx context.Context, planID, key string) error
	ReplaceWeeks(ctx context.Context, planID string, weeks []domain.Week) error
}

// CoachMessageRepository stores the per-plan conversation history: an
// append-only message sequence, plus the modification proposals attached to
// individual messages.
//
// UpdateModificationStatus is deliberately unguarded: re-transitioning an
// already-terminal proposal is last-write-wins at this layer.
type CoachMessageRepository interface {
	Append(ctx context.Context, message *domain.CoachMessage) error
	GetByPlanID(ctx context.Context, planID string) ([]domain.CoachMessage, error)
	AttachModification(ctx context.Context, planID, messageID string, mod domain.PlanModificationProposal) error
	GetModification(ctx context.Context, planID, modificationID string) (*domain.PlanModificationProposal, error)
	UpdateModificationStatus(ctx context.Context, planID, modificationID string, status domain.ModificationStatus) error
	DeleteByPlanID(ctx context.Context, planID string) error
}
