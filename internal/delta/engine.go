package delta

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// Compute diffs a child submission against its parent and returns a new
// ChangeSet. Three independent passes: field values (normalized), documents
// (by content hash, never filename), and spatial metrics (relative change
// beyond epsilon). Aggregate significance is the max over item scores — one
// critical change is enough to require revalidation; averaging would dilute
// it among trivial ones.
func Compute(parent, child *model.Submission, w Weights) (*model.ChangeSet, error) {
	if parent == nil || child == nil {
		return nil, eris.New("delta: both submissions required")
	}
	if child.ParentID != parent.ID {
		return nil, eris.Errorf("delta: submission %s does not declare %s as parent", child.ID, parent.ID)
	}
	if parent.ApplicationID != child.ApplicationID {
		return nil, eris.Errorf("delta: submissions belong to different applications (%s vs %s)",
			parent.ApplicationID, child.ApplicationID)
	}

	cs := &model.ChangeSet{
		ID:                 uuid.New().String(),
		ParentSubmissionID: parent.ID,
		ChildSubmissionID:  child.ID,
		ComputedAt:         time.Now().UTC(),
	}

	cs.Items = append(cs.Items, fieldDeltas(parent, child, w)...)
	cs.Items = append(cs.Items, documentDeltas(parent, child, w)...)
	cs.Items = append(cs.Items, spatialDeltas(parent, child, w)...)

	for _, it := range cs.Items {
		if it.Significance > cs.Significance {
			cs.Significance = it.Significance
		}
	}
	cs.RequiresValidation = cs.Significance >= w.Threshold

	zap.L().Info("delta: changeset computed",
		zap.String("parent", parent.ID),
		zap.String("child", child.ID),
		zap.Int("items", len(cs.Items)),
		zap.Float64("significance", cs.Significance),
		zap.Bool("requires_validation", cs.RequiresValidation),
	)

	return cs, nil
}

// fieldDeltas compares the normalized value of every field key present on
// either side. Per-document duplicates collapse to the most confident
// extraction before comparison.
func fieldDeltas(parent, child *model.Submission, w Weights) []model.ChangeItem {
	pv := bestValues(parent.Fields)
	cv := bestValues(child.Fields)

	keys := make(map[string]bool, len(pv)+len(cv))
	for k := range pv {
		keys[k] = true
	}
	for k := range cv {
		keys[k] = true
	}

	var items []model.ChangeItem
	for _, key := range sortedKeys(keys) {
		old, hadOld := pv[key]
		newV, hasNew := cv[key]

		item := model.ChangeItem{
			Type:         model.ChangeFieldDelta,
			Key:          key,
			Significance: w.fieldWeight(key),
		}

		switch {
		case hadOld && !hasNew:
			item.Kind = model.ChangeRemoved
			item.OldValue = old.Value
		case !hadOld && hasNew:
			item.Kind = model.ChangeAdded
			item.NewValue = newV.Value
		case model.NormalizeValue(old.Value) != model.NormalizeValue(newV.Value):
			item.Kind = model.ChangeChanged
			item.OldValue = old.Value
			item.NewValue = newV.Value
		default:
			continue
		}

		items = append(items, item)
	}
	return items
}

// bestValues reduces multi-document extractions of one key to the single
// highest-confidence non-empty value.
func bestValues(fields []model.Field) map[string]model.Field {
	out := make(map[string]model.Field)
	for _, f := range fields {
		if model.ValueEmpty(f.Value) {
			continue
		}
		if cur, ok := out[f.Key]; !ok || f.Confidence > cur.Confidence {
			out[f.Key] = f
		}
	}
	return out
}

// documentDeltas compares the two document sets by content hash, so a
// re-uploaded identical file never reads as a change. A hash that moved is
// paired by document type into a single "replaced" item.
func documentDeltas(parent, child *model.Submission, w Weights) []model.ChangeItem {
	pDocs := parent.DocumentsByHash()
	cDocs := child.DocumentsByHash()

	removedByType := make(map[string][]model.Document)
	var removedOrder []string
	for _, hash := range sortedDocHashes(pDocs) {
		if _, ok := cDocs[hash]; !ok {
			d := pDocs[hash]
			if len(removedByType[d.Type]) == 0 {
				removedOrder = append(removedOrder, d.Type)
			}
			removedByType[d.Type] = append(removedByType[d.Type], d)
		}
	}

	var items []model.ChangeItem
	for _, hash := range sortedDocHashes(cDocs) {
		if _, ok := pDocs[hash]; ok {
			continue
		}
		d := cDocs[hash]
		if olds := removedByType[d.Type]; len(olds) > 0 {
			// Same type, different hash: the document was revised.
			old := olds[0]
			removedByType[d.Type] = olds[1:]
			items = append(items, model.ChangeItem{
				Type:         model.ChangeDocumentDelta,
				Kind:         model.ChangeReplaced,
				Key:          d.Type,
				OldValue:     old.ContentHash,
				NewValue:     d.ContentHash,
				Significance: w.DocReplaced,
			})
			continue
		}
		items = append(items, model.ChangeItem{
			Type:         model.ChangeDocumentDelta,
			Kind:         model.ChangeAdded,
			Key:          d.Type,
			NewValue:     d.ContentHash,
			Significance: w.DocAdded,
		})
	}

	for _, docType := range removedOrder {
		for _, d := range removedByType[docType] {
			items = append(items, model.ChangeItem{
				Type:         model.ChangeDocumentDelta,
				Kind:         model.ChangeRemoved,
				Key:          d.Type,
				OldValue:     d.ContentHash,
				Significance: w.DocRemoved,
			})
		}
	}

	return items
}

// spatialDeltas compares merged spatial metrics present on both sides.
// Metrics on only one side are covered by document deltas (the drawing
// itself was added or removed), so only common metrics are compared here.
func spatialDeltas(parent, child *model.Submission, w Weights) []model.ChangeItem {
	pm := parent.SpatialMetricsMerged()
	cm := child.SpatialMetricsMerged()
	if len(pm) == 0 || len(cm) == 0 {
		return nil
	}

	common := make(map[string]bool)
	for k := range pm {
		if _, ok := cm[k]; ok {
			common[k] = true
		}
	}

	var items []model.ChangeItem
	for _, key := range sortedKeys(common) {
		old, newV := pm[key], cm[key]
		if !exceedsEpsilon(old, newV, w.SpatialEpsilon) {
			continue
		}
		items = append(items, model.ChangeItem{
			Type:         model.ChangeSpatialDelta,
			Kind:         model.ChangeChanged,
			Key:          key,
			OldValue:     old,
			NewValue:     newV,
			Significance: w.Spatial,
		})
	}
	return items
}

// exceedsEpsilon reports whether the relative change from old to new is
// above eps. Zero baselines fall back to absolute comparison.
func exceedsEpsilon(old, newV, eps float64) bool {
	diff := math.Abs(newV - old)
	if old == 0 {
		return diff > eps
	}
	return diff/math.Abs(old) > eps
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedDocHashes(docs map[string]model.Document) []string {
	hashes := make([]string, 0, len(docs))
	for h := range docs {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	return hashes
}
