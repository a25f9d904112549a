package agent

import (
	"fmt"
	"log"
	"strings"
)

// Descriptor is one immutable persona configuration bundle.
type Descriptor struct {
	ID           string
	Name         string
	Description  string
	Voice        string
	Instructions string
}

// Summary is the discovery-facing view of a persona; it deliberately omits
// the instruction text.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Voice       string `json:"voice"`
}

// Registry is a read-only persona lookup table shared by all sessions.
type Registry struct {
	agents    map[string]Descriptor
	order     []string
	defaultID string
}

// NewRegistry validates the persona table and pins the default persona.
func NewRegistry(agents []Descriptor, defaultID string) (*Registry, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("agent table is empty")
	}

	voices := make(map[string]struct{}, len(AvailableVoices))
	for _, v := range AvailableVoices {
		voices[v] = struct{}{}
	}

	r := &Registry{
		agents:    make(map[string]Descriptor, len(agents)),
		order:     make([]string, 0, len(agents)),
		defaultID: strings.TrimSpace(defaultID),
	}
	for _, a := range agents {
		if strings.TrimSpace(a.ID) == "" {
			return nil, fmt.Errorf("agent with empty id")
		}
		if _, dup := r.agents[a.ID]; dup {
			return nil, fmt.Errorf("duplicate agent id %q", a.ID)
		}
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Instructions) == "" {
			return nil, fmt.Errorf("agent %q is missing a name or instructions", a.ID)
		}
		if _, ok := voices[a.Voice]; !ok {
			return nil, fmt.Errorf("agent %q uses unknown voice %q", a.ID, a.Voice)
		}
		r.agents[a.ID] = a
		r.order = append(r.order, a.ID)
	}

	if _, ok := r.agents[r.defaultID]; !ok {
		return nil, fmt.Errorf("default agent %q is not in the table", r.defaultID)
	}
	return r, nil
}

// Resolve returns the descriptor for id, falling back to the default persona
// for unknown ids. It never fails.
func (r *Registry) Resolve(id string) Descriptor {
	if a, ok := r.agents[id]; ok {
		return a
	}
	log.Printf("[agent] unknown agent %q, using default %q", id, r.defaultID)
	return r.agents[r.defaultID]
}

// Contains reports whether id is a known persona.
func (r *Registry) Contains(id string) bool {
	_, ok := r.agents[id]
	return ok
}

// DefaultID returns the configured fallback persona id.
func (r *Registry) DefaultID() string { return r.defaultID }

// List returns discovery summaries in table order.
func (r *Registry) List() []Summary {
	out := make([]Summary, 0, len(r.order))
	for _, id := range r.order {
		a := r.agents[id]
		out = append(out, Summary{ID: a.ID, Name: a.Name, Description: a.Description, Voice: a.Voice})
	}
	return out
}
