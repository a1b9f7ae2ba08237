package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// MemoryStore is an in-memory Store for tests and one-shot CLI invocations
// that don't need persistence across processes.
type MemoryStore struct {
	runs        []model.ValidationRun
	changesets  []model.ChangeSet
	overrides   []model.OfficerOverride
	resolutions []model.FieldResolution
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }
func (s *MemoryStore) Close() error                  { return nil }

func (s *MemoryStore) SaveRun(_ context.Context, run *model.ValidationRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	s.runs = append(s.runs, *run)
	return nil
}

func (s *MemoryStore) SaveRuns(ctx context.Context, runs []model.ValidationRun) error {
	for i := range runs {
		if err := s.SaveRun(ctx, &runs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (*model.ValidationRun, error) {
	for i := range s.runs {
		if s.runs[i].ID == runID {
			r := s.runs[i]
			return &r, nil
		}
	}
	return nil, eris.Errorf("run not found: %s", runID)
}

func (s *MemoryStore) ListRuns(_ context.Context, filter RunFilter) ([]model.ValidationRun, error) {
	var out []model.ValidationRun
	for _, r := range s.runs {
		if filter.SubmissionID != "" && r.SubmissionID != filter.SubmissionID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SaveChangeSet(_ context.Context, cs *model.ChangeSet) error {
	if cs.ID == "" {
		cs.ID = uuid.New().String()
	}
	if cs.ComputedAt.IsZero() {
		cs.ComputedAt = time.Now().UTC()
	}
	s.changesets = append(s.changesets, *cs)
	return nil
}

func (s *MemoryStore) GetChangeSet(_ context.Context, parentID, childID string) (*model.ChangeSet, error) {
	var newest *model.ChangeSet
	for i := range s.changesets {
		cs := &s.changesets[i]
		if cs.ParentSubmissionID != parentID || cs.ChildSubmissionID != childID {
			continue
		}
		if newest == nil || cs.ComputedAt.After(newest.ComputedAt) {
			newest = cs
		}
	}
	if newest == nil {
		return nil, nil
	}
	cs := *newest
	return &cs, nil
}

func (s *MemoryStore) SaveOverride(_ context.Context, o *model.OfficerOverride) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	s.overrides = append(s.overrides, *o)
	return nil
}

func (s *MemoryStore) ListOverrides(_ context.Context, runID string) ([]model.OfficerOverride, error) {
	var out []model.OfficerOverride
	for _, o := range s.overrides {
		if o.RunID == runID {
			out = append(out, o)
		}
	}
	// Newest first; insertion order breaks timestamp ties.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *MemoryStore) SaveResolution(_ context.Context, r *model.FieldResolution) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.resolutions = append(s.resolutions, *r)
	return nil
}

func (s *MemoryStore) ListResolutions(_ context.Context, submissionID string) ([]model.FieldResolution, error) {
	var out []model.FieldResolution
	for _, r := range s.resolutions {
		if r.SubmissionID == submissionID {
			out = append(out, r)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
