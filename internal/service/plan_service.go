package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Albadylic/couch-potato/internal/domain"
	"github.com/Albadylic/couch-potato/internal/repository"
	"github.com/Albadylic/couch-potato/internal/storage"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound         = errors.New("plan not found")
	ErrWeekNotFound         = errors.New("week not found")
	ErrInvalidStatus        = errors.New("run status must be completed or missed")
	ErrModificationNotFound = errors.New("plan modification not found")
	ErrBackupDisabled       = errors.New("plan backup storage is not configured")
)

// PlanStatusReport is the derived view of where the user stands: the
// computed current week, whole-plan tallies, and one summary per plan week.
type PlanStatusReport struct {
	CurrentWeek   int                  `json:"currentWeek"`
	CompletedDays int                  `json:"completedDays"`
	MissedDays    int                  `json:"missedDays"`
	TotalDays     int                  `json:"totalDays"`
	Weeks         []domain.WeekSummary `json:"weeks"`
}

// PlanService owns the saved-plan lifecycle: creation, the progress ledger,
// the completion engine, and modification merges.
type PlanService interface {
	CreatePlan(ctx context.Context, goal domain.Goal, plan domain.Plan) (*domain.SavedPlan, error)
	StagePlan() string
	CommitPlan(ctx context.Context, id string, goal domain.Goal, plan domain.Plan) (*domain.SavedPlan, error)
	GetPlan(ctx context.Context, id string) (*domain.SavedPlan, error)
	ListPlans(ctx context.Context) ([]domain.SavedPlan, error)
	DeletePlan(ctx context.Context, id string) error

	RecordRunFeedback(ctx context.Context, planID string, weekID, dayID int, feedback domain.RunFeedback) error
	ClearDayProgress(ctx context.Context, planID string, weekID, dayID int) error
	PlanStatus(ctx context.Context, planID string) (*PlanStatusReport, error)
	WeekStatus(ctx context.Context, planID string, weekID int) (*domain.WeekStatus, error)

	ApplyModification(ctx context.Context, planID string, proposedWeeks []domain.Week, fromWeekID int) error
	BackupPlan(ctx context.Context, planID string) (*BackupReceipt, error)
}

// BackupReceipt identifies a written snapshot: the object key plus a
// time-limited URL for downloading it.
type BackupReceipt struct {
	Key         string `json:"key"`
	DownloadURL string `json:"downloadUrl"`
}

// planService implements PlanService.
type planService struct {
	planRepo    repository.PlanRepository
	messageRepo repository.CoachMessageRepository
	snapshots   storage.SnapshotStorage // nil when backups are disabled
	now         func() time.Time
}

// NewPlanService creates a new plan service. snapshots may be nil when no
// backup storage is configured.
func NewPlanService(planRepo repository.PlanRepository, messageRepo repository.CoachMessageRepository, snapshots storage.SnapshotStorage) PlanService {
	return &planService{
		planRepo:    planRepo,
		messageRepo: messageRepo,
		snapshots:   snapshots,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreatePlan persists a freshly generated plan with a new id, an empty
// ledger, and a creation timestamp. Every call creates a distinct aggregate;
// callers that can be re-invoked with the same plan (remounts, retries)
// should use the StagePlan/CommitPlan pair instead.
func (s *planService) CreatePlan(ctx context.Context, goal domain.Goal, plan domain.Plan) (*domain.SavedPlan, error) {
	return s.CommitPlan(ctx, s.StagePlan(), goal, plan)
}

// StagePlan reserves a fresh plan id without persisting anything. Ids are
// never reused.
func (s *planService) StagePlan() string {
	return uuid.NewString()
}

// CommitPlan persists plan content under a previously staged id. Committing
// an id that already holds a plan returns the existing aggregate unchanged,
// which makes double invocation naturally idempotent.
func (s *planService) CommitPlan(ctx context.Context, id string, goal domain.Goal, plan domain.Plan) (*domain.SavedPlan, error) {
	existing, err := s.planRepo.GetByID(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	saved := &domain.SavedPlan{
		ID:        id,
		CreatedAt: s.now(),
		Goal:      goal,
		Plan:      plan,
		Progress:  domain.ProgressLedger{},
	}
	if err := s.planRepo.Create(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// GetPlan retrieves a single saved plan.
func (s *planService) GetPlan(ctx context.Context, id string) (*domain.SavedPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// ListPlans returns every saved plan; an empty or unreadable store yields an
// empty slice.
func (s *planService) ListPlans(ctx context.Context) ([]domain.SavedPlan, error) {
	return s.planRepo.List(ctx)
}

// DeletePlan removes the aggregate and its conversation history. Idempotent.
func (s *planService) DeletePlan(ctx context.Context, id string) error {
	if err := s.planRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.messageRepo.DeleteByPlanID(ctx, id)
}

// RecordRunFeedback replaces the ledger entry for one day. CompletedAt
// defaults to now when the caller leaves it zero and the day has no prior
// entry; an edit preserves the prior entry's CompletedAt. Recording against
// a missing plan is a no-op.
func (s *planService) RecordRunFeedback(ctx context.Context, planID string, weekID, dayID int, feedback domain.RunFeedback) error {
	if !feedback.Status.Valid() {
		return ErrInvalidStatus
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if feedback.CompletedAt.IsZero() {
		if prior := plan.Progress.Entry(weekID, dayID, s.now()); prior != nil {
			feedback.CompletedAt = prior.CompletedAt
		} else {
			feedback.CompletedAt = s.now()
		}
	}

	err = s.planRepo.SetProgress(ctx, planID, domain.ProgressKey(weekID, dayID), domain.FeedbackValue(feedback))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// ClearDayProgress removes the entry entirely, which is distinct from
// marking the day missed. Clearing against a missing plan is a no-op.
func (s *planService) ClearDayProgress(ctx context.Context, planID string, weekID, dayID int) error {
	err := s.planRepo.ClearProgress(ctx, planID, domain.ProgressKey(weekID, dayID))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// PlanStatus derives the current week and per-week summaries.
func (s *planService) PlanStatus(ctx context.Context, planID string) (*PlanStatusReport, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	completed, missed, total := plan.OverallProgress(s.now())
	return &PlanStatusReport{
		CurrentWeek:   domain.CurrentWeek(plan.Plan, plan.Progress),
		CompletedDays: completed,
		MissedDays:    missed,
		TotalDays:     total,
		Weeks:         domain.CalculateWeekSummaries(plan.Plan, plan.Progress),
	}, nil
}

// WeekStatus derives the completion state of one week.
func (s *planService) WeekStatus(ctx context.Context, planID string, weekID int) (*domain.WeekStatus, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if _, ok := plan.Plan.WeekByID(weekID); !ok {
		return nil, ErrWeekNotFound
	}
	status := domain.ComputeWeekStatus(plan.Plan, plan.Progress, weekID)
	return &status, nil
}

// ApplyModification replaces the plan's weeks from fromWeekID onward with
// the proposed tail. The progress ledger is untouched: entries under
// replaced-week keys stay put even though they may now refer to structurally
// different days. Applying against a missing plan is a no-op.
func (s *planService) ApplyModification(ctx context.Context, planID string, proposedWeeks []domain.Week, fromWeekID int) error {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	merged := domain.MergeWeeks(plan.Plan.Weeks, proposedWeeks, fromWeekID)
	err = s.planRepo.ReplaceWeeks(ctx, planID, merged)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// BackupPlan serializes the aggregate, writes it to the configured snapshot
// storage, and returns the object key with a presigned download URL.
func (s *planService) BackupPlan(ctx context.Context, planID string) (*BackupReceipt, error) {
	if s.snapshots == nil {
		return nil, ErrBackupDisabled
	}
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("marshaling plan snapshot: %w", err)
	}
	key := fmt.Sprintf("plans/%s/%s.json", plan.ID, s.now().Format("20060102T150405Z"))
	if err := s.snapshots.PutSnapshot(ctx, key, data); err != nil {
		return nil, err
	}

	url, err := s.snapshots.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		// The snapshot is safely stored; a failed presign only costs the
		// immediate download link.
		return &BackupReceipt{Key: key}, nil
	}
	return &BackupReceipt{Key: key, DownloadURL: url}, nil
}
