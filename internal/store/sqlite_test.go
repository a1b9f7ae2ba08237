package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewayplanning/plancheck/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "plancheck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleRun(submissionID string, at time.Time) model.ValidationRun {
	return model.ValidationRun{
		SubmissionID: submissionID,
		Status:       model.RunStatusComplete,
		Result: &model.ValidationResult{
			SubmissionID: submissionID,
			Findings: []model.Finding{
				{RuleID: "FLD-01", Status: model.StatusFail, Severity: model.SeverityError, MissingFields: []string{"postcode"}},
			},
			Summary: model.Summary{Fail: 1, NeedsLLM: true},
		},
		GateTriggered: true,
		GateReason:    []byte(`{"document_type":"application_form"}`),
		CreatedAt:     at,
	}
}

func TestSQLiteStore_RunRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run := sampleRun("sub-001", time.Now().UTC())
	require.NoError(t, s.SaveRun(ctx, &run))
	require.NotEmpty(t, run.ID)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "sub-001", got.SubmissionID)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.True(t, got.GateTriggered)
	assert.JSONEq(t, `{"document_type":"application_form"}`, string(got.GateReason))
	require.NotNil(t, got.Result)
	require.Len(t, got.Result.Findings, 1)
	assert.Equal(t, "FLD-01", got.Result.Findings[0].RuleID)
	assert.True(t, got.Result.Summary.NeedsLLM)
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_ListRunsFilterAndOrder(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	older := sampleRun("sub-001", base)
	newer := sampleRun("sub-001", base.Add(time.Minute))
	other := sampleRun("sub-002", base.Add(2*time.Minute))
	other.Status = model.RunStatusFailed
	require.NoError(t, s.SaveRun(ctx, &older))
	require.NoError(t, s.SaveRun(ctx, &newer))
	require.NoError(t, s.SaveRun(ctx, &other))

	runs, err := s.ListRuns(ctx, RunFilter{SubmissionID: "sub-001"})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID, "newest first")
	assert.Equal(t, older.ID, runs[1].ID)

	failed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, other.ID, failed[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStore_SaveRunsBatch(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	runs := []model.ValidationRun{
		sampleRun("sub-001", time.Now().UTC()),
		sampleRun("sub-002", time.Now().UTC()),
	}
	require.NoError(t, s.SaveRuns(ctx, runs))

	for _, r := range runs {
		got, err := s.GetRun(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.SubmissionID, got.SubmissionID)
	}
}

func TestSQLiteStore_ChangeSetNewestWins(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	first := model.ChangeSet{
		ParentSubmissionID: "sub-001",
		ChildSubmissionID:  "sub-002",
		Items:              []model.ChangeItem{{Type: model.ChangeFieldDelta, Kind: model.ChangeChanged, Key: "postcode", Significance: 0.5}},
		Significance:       0.5,
		RequiresValidation: true,
		ComputedAt:         base,
	}
	second := first
	second.ID = ""
	second.Significance = 0.9
	second.ComputedAt = base.Add(time.Minute)

	require.NoError(t, s.SaveChangeSet(ctx, &first))
	require.NoError(t, s.SaveChangeSet(ctx, &second))

	got, err := s.GetChangeSet(ctx, "sub-001", "sub-002")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID, "recomputed changeset supersedes the old one")
	assert.Equal(t, 0.9, got.Significance)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "postcode", got.Items[0].Key)
}

func TestSQLiteStore_ChangeSetMissingIsNil(t *testing.T) {
	s := newTestSQLite(t)

	got, err := s.GetChangeSet(context.Background(), "sub-001", "sub-999")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_OverridesNewestFirst(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	first := model.OfficerOverride{
		RunID: "run-1", RuleID: "FLD-01",
		OriginalStatus: model.StatusFail, OverrideStatus: model.StatusPass,
		Justification: "postcode verified against land registry",
		OfficerID:     "off-7", CreatedAt: base,
	}
	second := first
	second.OverrideStatus = model.StatusNeedsReview
	second.CreatedAt = base.Add(time.Minute)

	require.NoError(t, s.SaveOverride(ctx, &first))
	require.NoError(t, s.SaveOverride(ctx, &second))

	got, err := s.ListOverrides(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}

func TestSQLiteStore_ResolutionsNewestFirst(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	first := model.FieldResolution{
		SubmissionID: "sub-001", FieldKey: "building_height",
		ChosenDocumentID: "doc-a", OfficerID: "off-7", CreatedAt: base,
	}
	second := first
	second.ChosenDocumentID = "doc-b"
	second.CreatedAt = base.Add(time.Minute)

	require.NoError(t, s.SaveResolution(ctx, &first))
	require.NoError(t, s.SaveResolution(ctx, &second))

	got, err := s.ListResolutions(ctx, "sub-001")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "doc-b", got[0].ChosenDocumentID, "latest resolution wins")
}
