package conflict

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// fakeStore is an in-memory append-only resolution log.
type fakeStore struct {
	resolutions []model.FieldResolution
}

func (s *fakeStore) SaveResolution(_ context.Context, r *model.FieldResolution) error {
	s.resolutions = append(s.resolutions, *r)
	return nil
}

func (s *fakeStore) ListResolutions(_ context.Context, submissionID string) ([]model.FieldResolution, error) {
	var out []model.FieldResolution
	// Newest first, matching the real stores.
	for i := len(s.resolutions) - 1; i >= 0; i-- {
		if s.resolutions[i].SubmissionID == submissionID {
			out = append(out, s.resolutions[i])
		}
	}
	return out, nil
}

func conflictedSubmission() *model.Submission {
	return &model.Submission{
		ID: "s1",
		Fields: []model.Field{
			{Key: "postcode", Value: "BS1 1AA", SourceDocumentID: "d1"},
			{Key: "postcode", Value: "BS1 1AB", SourceDocumentID: "d2"},
		},
	}
}

func TestResolve_RecordsChoice(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	r := NewResolver(store)
	sub := conflictedSubmission()

	res, err := r.Resolve(ctx, sub, "postcode", "d1", "officer-7", "form is authoritative")
	require.NoError(t, err)

	assert.Equal(t, "s1", res.SubmissionID)
	assert.Equal(t, "postcode", res.FieldKey)
	assert.Equal(t, "d1", res.ChosenDocumentID)
	assert.NotEmpty(t, res.ID)
	assert.Len(t, store.resolutions, 1)

	// Raw fields untouched.
	assert.Len(t, sub.Fields, 2)
}

func TestResolve_RejectsUnknownDocument(t *testing.T) {
	r := NewResolver(&fakeStore{})
	sub := conflictedSubmission()

	_, err := r.Resolve(context.Background(), sub, "postcode", "d9", "officer-7", "")
	assert.Error(t, err)
}

func TestResolve_RequiresOfficer(t *testing.T) {
	r := NewResolver(&fakeStore{})
	sub := conflictedSubmission()

	_, err := r.Resolve(context.Background(), sub, "postcode", "d1", "", "")
	assert.Error(t, err)
}

func TestCanonical_LatestResolutionWins(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	r := NewResolver(store)
	sub := conflictedSubmission()

	_, err := r.Resolve(ctx, sub, "postcode", "d1", "officer-7", "")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, sub, "postcode", "d2", "officer-8", "site plan corrected")
	require.NoError(t, err)

	conflicts := Detect(sub.Fields)
	canonical, err := r.Canonical(ctx, sub, conflicts)
	require.NoError(t, err)

	require.Contains(t, canonical, "postcode")
	assert.Equal(t, "d2", canonical["postcode"].SourceDocumentID)
}

func TestCanonical_UnresolvedConflictOmitted(t *testing.T) {
	r := NewResolver(&fakeStore{})
	sub := conflictedSubmission()

	canonical, err := r.Canonical(context.Background(), sub, Detect(sub.Fields))
	require.NoError(t, err)
	assert.Empty(t, canonical)
}
