// Package memory provides map-backed implementations of the repository
// interfaces. They exist for tests and for running the server without a
// database; the single-writer model of the application means a plain mutex
// is all the coordination they need.
package memory

import (
	"context"
	"sync"

	"github.com/Albadylic/couch-potato/internal/domain"
	"github.com/Albadylic/couch-potato/internal/repository"
)

// memoryPlanRepository implements repository.PlanRepository in memory.
type memoryPlanRepository struct {
	mu    sync.RWMutex
	plans map[string]*domain.SavedPlan
}

// NewMemoryPlanRepository creates an empty in-memory plan repository.
func NewMemoryPlanRepository() repository.PlanRepository {
	return &memoryPlanRepository{
		plans: make(map[string]*domain.SavedPlan),
	}
}

func (r *memoryPlanRepository) Create(_ context.Context, plan *domain.SavedPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (r *memoryPlanRepository) GetByID(_ context.Context, id string) (*domain.SavedPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePlan(plan), nil
}

func (r *memoryPlanRepository) List(_ context.Context) ([]domain.SavedPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plans := make([]domain.SavedPlan, 0, len(r.plans))
	for _, plan := range r.plans {
		plans = append(plans, *clonePlan(plan))
	}
	return plans, nil
}

func (r *memoryPlanRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.plans, id)
	return nil
}

func (r *memoryPlanRepository) SetProgress(_ context.Context, planID, key string, value domain.ProgressValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	if plan.Progress == nil {
		plan.Progress = domain.ProgressLedger{}
	}
	plan.Progress[key] = value
	return nil
}

func (r *memoryPlanRepository) ClearProgress(_ context.Context, planID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	delete(plan.Progress, key)
	return nil
}

func (r *memoryPlanRepository) ReplaceWeeks(_ context.Context, planID string, weeks []domain.Week) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	plan.Plan.Weeks = cloneWeeks(weeks)
	return nil
}

// clonePlan deep-copies an aggregate so callers never alias stored state.
func clonePlan(plan *domain.SavedPlan) *domain.SavedPlan {
	cloned := *plan
	cloned.Plan.Weeks = cloneWeeks(plan.Plan.Weeks)
	cloned.Progress = make(domain.ProgressLedger, len(plan.Progress))
	for k, v := range plan.Progress {
		cloned.Progress[k] = v
	}
	if plan.Goal.UnavailableDays != nil {
		cloned.Goal.UnavailableDays = append([]string(nil), plan.Goal.UnavailableDays...)
	}
	return &cloned
}

func cloneWeeks(weeks []domain.Week) []domain.Week {
	cloned := make([]domain.Week, len(weeks))
	for i, week := range weeks {
		cloned[i] = week
		cloned[i].Days = make([]domain.Day, len(week.Days))
		for j, day := range week.Days {
			cloned[i].Days[j] = day
			cloned[i].Days[j].Instructions = append([]string(nil), day.Instructions...)
		}
	}
	return cloned
}
