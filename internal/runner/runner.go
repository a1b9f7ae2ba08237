// Package runner orchestrates a validation pass: dispatch the catalog,
// gate on the result, resolve missing fields through the model when
// justified, and persist the run.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gatewayplanning/plancheck/internal/catalog"
	"github.com/gatewayplanning/plancheck/internal/config"
	"github.com/gatewayplanning/plancheck/internal/gate"
	"github.com/gatewayplanning/plancheck/internal/llm"
	"github.com/gatewayplanning/plancheck/internal/model"
	"github.com/gatewayplanning/plancheck/internal/store"
	"github.com/gatewayplanning/plancheck/internal/validate"
)

// FieldResolver is the slice of the LLM boundary the runner needs.
type FieldResolver interface {
	Resolve(ctx context.Context, reason gate.Reason, documentText string) (*llm.Resolution, error)
}

// Runner wires the catalog, validators, gate, resolver, and store together.
// Resolver may be nil, in which case gate decisions are recorded but no
// model call is made.
type Runner struct {
	cfg      *config.Config
	store    store.Store
	catalog  *catalog.Catalog
	resolver FieldResolver
	own      model.Ownership
}

// New creates a Runner.
func New(cfg *config.Config, st store.Store, cat *catalog.Catalog, resolver FieldResolver, own model.Ownership) *Runner {
	if own == nil {
		own = model.DefaultOwnership()
	}
	return &Runner{
		cfg:      cfg,
		store:    st,
		catalog:  cat,
		resolver: resolver,
		own:      own,
	}
}

// ValidateSubmission runs the full catalog against one submission,
// resolves gate-triggered fields, and persists the run. The changeset may
// be nil for original (V0) submissions. Merged fields are advisory:
// validators are not re-run after a merge.
func (r *Runner) ValidateSubmission(ctx context.Context, sub *model.Submission, cs *model.ChangeSet, resolved *gate.ResolvedCache) (*model.ValidationRun, error) {
	run, err := r.validateOnce(ctx, sub, cs, r.catalog.Rules, resolved)
	if err != nil {
		return nil, err
	}
	if err := r.store.SaveRun(ctx, run); err != nil {
		return nil, eris.Wrap(err, "runner: save run")
	}
	return run, nil
}

// Revalidate runs only the rules impacted by the stored changeset for the
// (parent, child) pair. The changeset must have been computed and persisted
// before the child is revalidated; its absence is a data-quality error the
// caller must see, not something to paper over by diffing on the fly.
func (r *Runner) Revalidate(ctx context.Context, parent, child *model.Submission, resolved *gate.ResolvedCache) (*model.ValidationRun, error) {
	cs, err := r.store.GetChangeSet(ctx, parent.ID, child.ID)
	if err != nil {
		return nil, eris.Wrap(err, "runner: load changeset")
	}
	if cs == nil {
		return nil, &validate.MissingContextError{
			What: "changeset for parent " + parent.ID + " and child " + child.ID,
		}
	}

	impacted := ImpactedSubset(cs, r.catalog)
	zap.L().Info("runner: targeted revalidation",
		zap.String("parent", parent.ID),
		zap.String("child", child.ID),
		zap.Int("impacted_rules", len(impacted)),
		zap.Int("catalog_rules", r.catalog.Len()),
	)

	run, err := r.validateOnce(ctx, child, cs, impacted, resolved)
	if err != nil {
		return nil, err
	}
	if err := r.store.SaveRun(ctx, run); err != nil {
		return nil, eris.Wrap(err, "runner: save run")
	}
	return run, nil
}

// ValidateBatch validates submissions concurrently with a shared resolved
// cache, so a field resolved for one submission's run is still resolved at
// most once per run, and persists all runs in one batch write.
func (r *Runner) ValidateBatch(ctx context.Context, subs []*model.Submission, resolved *gate.ResolvedCache) ([]model.ValidationRun, error) {
	limit := r.cfg.Batch.MaxConcurrentSubmissions
	if limit <= 0 {
		limit = 1
	}

	runs := make([]model.ValidationRun, len(subs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, sub := range subs {
		g.Go(func() error {
			run, err := r.validateOnce(gctx, sub, nil, r.catalog.Rules, resolved)
			if err != nil {
				return eris.Wrapf(err, "runner: validate %s", sub.ID)
			}
			mu.Lock()
			runs[i] = *run
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := r.store.SaveRuns(ctx, runs); err != nil {
		return nil, eris.Wrap(err, "runner: save runs")
	}
	return runs, nil
}

func (r *Runner) validateOnce(ctx context.Context, sub *model.Submission, cs *model.ChangeSet, rules []model.Rule, resolved *gate.ResolvedCache) (*model.ValidationRun, error) {
	log := zap.L().With(zap.String("submission", sub.ID))

	sctx := validate.NewSubmissionContext(sub, cs, r.own, validate.Config{
		ConfidenceThreshold: r.cfg.Validation.ConfidenceThreshold,
	})

	vr, err := validate.Run(rules, sctx)
	if err != nil {
		return nil, err
	}
	log.Info("runner: validation complete",
		zap.Int("pass", vr.Summary.Pass),
		zap.Int("fail", vr.Summary.Fail),
		zap.Int("needs_review", vr.Summary.NeedsReview),
		zap.Bool("needs_llm", vr.Summary.NeedsLLM),
	)

	run := &model.ValidationRun{
		ID:           vr.RunID,
		SubmissionID: sub.ID,
		Status:       model.RunStatusComplete,
		Result:       vr,
		CreatedAt:    time.Now().UTC(),
	}

	if vr.Summary.NeedsLLM {
		r.resolveGated(ctx, sub, vr, resolved, run, log)
	}

	return run, nil
}

// resolveGated walks the submission's document types in stable order,
// asking the gate about each, and merges any resolution it obtains. LLM
// failure never fails the run: the findings stand and the run carries an
// annotation instead.
func (r *Runner) resolveGated(ctx context.Context, sub *model.Submission, vr *model.ValidationResult, resolved *gate.ResolvedCache, run *model.ValidationRun, log *zap.Logger) {
	docTypes := make([]string, 0, len(sub.Documents))
	for t := range sub.DocumentTypes() {
		docTypes = append(docTypes, t)
	}
	sort.Strings(docTypes)

	gateCfg := gate.Config{CoverageThreshold: r.cfg.Gate.CoverageThreshold}

	for _, docType := range docTypes {
		decision := gate.ShouldTrigger(sub, vr, docType, r.own, resolved, gateCfg)
		if !decision.Trigger {
			continue
		}

		run.GateTriggered = true
		if reasonJSON, err := json.Marshal(decision.Reason); err == nil {
			run.GateReason = reasonJSON
		}

		if r.resolver == nil {
			run.LLMAnnotation = "resolver not configured"
			log.Warn("runner: gate triggered but no resolver configured",
				zap.String("doc_type", docType))
			continue
		}

		res, err := r.resolver.Resolve(ctx, decision.Reason, sub.TextForType(docType))
		if err != nil {
			var malformed *llm.MalformedResponseError
			if errors.As(err, &malformed) {
				// Contract violation from the model: the gate decision is
				// preserved, the merge is skipped, the finding stands.
				run.LLMAnnotation = "malformed llm response; merge skipped"
				log.Warn("runner: malformed llm response",
					zap.String("doc_type", docType), zap.Error(err))
				continue
			}
			run.LLMAnnotation = "llm unavailable"
			log.Error("runner: llm resolution failed",
				zap.String("doc_type", docType), zap.Error(err))
			continue
		}

		merged := llm.Merge(sub, res, decision.Reason)
		keys := make([]string, 0, len(merged))
		for _, f := range merged {
			keys = append(keys, f.Key)
		}
		if resolved != nil {
			resolved.MarkResolved(keys...)
		}
		log.Info("runner: merged llm resolution",
			zap.String("doc_type", docType),
			zap.Strings("fields", keys))
	}
}
