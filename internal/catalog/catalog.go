package catalog

import (
	"encoding/json"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// Catalog is an indexed, read-only collection of rules. Built once at load;
// a reload replaces the whole catalog, individual rules are never mutated.
type Catalog struct {
	Rules      []model.Rule
	byID       map[string]*model.Rule
	byCategory map[model.Category][]*model.Rule
}

// New indexes the given rules into a Catalog. Validation happens in Load;
// New assumes the rules are already well-formed.
func New(rules []model.Rule) *Catalog {
	c := &Catalog{
		Rules:      rules,
		byID:       make(map[string]*model.Rule, len(rules)),
		byCategory: make(map[model.Category][]*model.Rule),
	}
	for i := range c.Rules {
		r := &c.Rules[i]
		c.byID[r.ID] = r
		c.byCategory[r.Category] = append(c.byCategory[r.Category], r)
	}
	return c
}

// ByID returns the rule with the given id, or nil if not found.
func (c *Catalog) ByID(id string) *model.Rule {
	return c.byID[id]
}

// ByCategory returns the rules in the given category, in catalog order.
func (c *Catalog) ByCategory(cat model.Category) []*model.Rule {
	return c.byCategory[cat]
}

// Len returns the number of rules in the catalog.
func (c *Catalog) Len() int {
	return len(c.Rules)
}

// MarshalJSON serializes the catalog as its rule list, so a catalog
// serialized and reloaded round-trips to an identical rule set.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Rules)
}
