package conflict

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// ResolutionStore is the slice of the persistence layer the resolver
// needs: an append-only log of officer resolutions.
type ResolutionStore interface {
	SaveResolution(ctx context.Context, r *model.FieldResolution) error
	ListResolutions(ctx context.Context, submissionID string) ([]model.FieldResolution, error)
}

// Resolver records officer choices among conflicting field extractions.
type Resolver struct {
	store ResolutionStore
}

// NewResolver creates a Resolver backed by the given store.
func NewResolver(store ResolutionStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve records the officer's choice of canonical source document for one
// conflicted field. The chosen document must actually carry an extraction
// of the field; the conflicting raw fields are never touched.
func (r *Resolver) Resolve(ctx context.Context, sub *model.Submission, fieldKey, chosenDocumentID, officerID, notes string) (*model.FieldResolution, error) {
	if officerID == "" {
		return nil, eris.New("conflict: officer id required")
	}

	found := false
	for _, f := range sub.Fields {
		if f.Key == fieldKey && f.SourceDocumentID == chosenDocumentID {
			found = true
			break
		}
	}
	if !found {
		return nil, eris.Errorf("conflict: document %s has no extraction of field %s", chosenDocumentID, fieldKey)
	}

	res := &model.FieldResolution{
		ID:               uuid.New().String(),
		SubmissionID:     sub.ID,
		FieldKey:         fieldKey,
		ChosenDocumentID: chosenDocumentID,
		OfficerID:        officerID,
		Notes:            notes,
		CreatedAt:        time.Now().UTC(),
	}

	if err := r.store.SaveResolution(ctx, res); err != nil {
		return nil, eris.Wrap(err, "conflict: save resolution")
	}

	zap.L().Info("conflict: field resolved",
		zap.String("submission", sub.ID),
		zap.String("field", fieldKey),
		zap.String("chosen_document", chosenDocumentID),
		zap.String("officer", officerID),
	)

	return res, nil
}

// Canonical applies recorded resolutions to a set of conflicts, returning
// the chosen field per resolved key. Unresolved conflicts are omitted; the
// latest resolution for a key wins when officers resolved it twice.
func (r *Resolver) Canonical(ctx context.Context, sub *model.Submission, conflicts []Conflict) (map[string]model.Field, error) {
	resolutions, err := r.store.ListResolutions(ctx, sub.ID)
	if err != nil {
		return nil, eris.Wrap(err, "conflict: list resolutions")
	}

	// Resolutions are returned newest-first; first hit per key wins.
	chosenDoc := make(map[string]string)
	for _, res := range resolutions {
		if _, ok := chosenDoc[res.FieldKey]; !ok {
			chosenDoc[res.FieldKey] = res.ChosenDocumentID
		}
	}

	out := make(map[string]model.Field)
	for _, c := range conflicts {
		docID, ok := chosenDoc[c.FieldKey]
		if !ok {
			continue
		}
		for _, f := range c.Fields {
			if f.SourceDocumentID == docID {
				out[c.FieldKey] = f
				break
			}
		}
	}
	return out, nil
}
