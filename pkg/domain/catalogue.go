package domain

import (
	"encoding/json"
	"fmt"
)

// Capability describes one operation a worker accepts.
type Capability struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"` // JSON schema
}

// CatalogueEntry lists the capabilities of one worker.
type CatalogueEntry struct {
	Worker       string       `json:"worker"`
	Description  string       `json:"description"`
	Capabilities []Capability `json:"capabilities"`
}

// Catalogue is the read-only, process-wide description of what workers can do.
// It is built once at startup and never mutated.
type Catalogue struct {
	entries []CatalogueEntry
	index   map[string]map[string]Capability
}

// NewCatalogue builds a catalogue, rejecting duplicate workers or operations.
func NewCatalogue(entries ...CatalogueEntry) (*Catalogue, error) {
	c := &Catalogue{index: make(map[string]map[string]Capability)}
	for _, e := range entries {
		if e.Worker == "" {
			return nil, fmt.Errorf("catalogue entry without worker id")
		}
		if _, dup := c.index[e.Worker]; dup {
			return nil, fmt.Errorf("duplicate worker %q in catalogue", e.Worker)
		}
		ops := make(map[string]Capability, len(e.Capabilities))
		for _, capability := range e.Capabilities {
			if _, dup := ops[capability.Name]; dup {
				return nil, fmt.Errorf("duplicate operation %q for worker %q", capability.Name, e.Worker)
			}
			ops[capability.Name] = capability
		}
		c.index[e.Worker] = ops
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Has reports whether worker exposes operation.
func (c *Catalogue) Has(worker, operation string) bool {
	_, ok := c.Capability(worker, operation)
	return ok
}

// Capability returns the declared capability for worker/operation.
func (c *Catalogue) Capability(worker, operation string) (Capability, bool) {
	if c == nil {
		return Capability{}, false
	}
	ops, ok := c.index[worker]
	if !ok {
		return Capability{}, false
	}
	capability, ok := ops[operation]
	return capability, ok
}

// Workers returns worker identifiers in registration order.
func (c *Catalogue) Workers() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Worker
	}
	return out
}

// Entries returns a copy of the catalogue entries.
func (c *Catalogue) Entries() []CatalogueEntry {
	if c == nil {
		return nil
	}
	out := make([]CatalogueEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Describe renders the catalogue as indented JSON for prompts.
func (c *Catalogue) Describe() string {
	b, err := json.MarshalIndent(c.Entries(), "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

// ValidateStep checks that a step targets a known operation and carries its required arguments.
func (c *Catalogue) ValidateStep(step PlanStep) error {
	if step.Worker == "" {
		return fmt.Errorf("missing worker")
	}
	if step.Task.Operation == "" {
		return fmt.Errorf("missing operation")
	}
	capability, ok := c.Capability(step.Worker, step.Task.Operation)
	if !ok {
		return fmt.Errorf("unknown operation %s.%s", step.Worker, step.Task.Operation)
	}
	for _, name := range requiredParams(capability.Parameters) {
		if _, ok := step.Task.Args[name]; !ok {
			return fmt.Errorf("missing argument %q for %s", name, step.Task.Operation)
		}
	}
	return nil
}

func requiredParams(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, v := range req {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
