package panels

import "fmt"

// Registry is the per-session panelId -> Panel map. It is owned
// exclusively by one session and its tool dispatcher/hook, both of which
// run in that session's single serialization domain — so, per the design
// notes, no internal locking is required here.
type Registry struct {
	panels map[string]Panel
	order  []string // insertion order, for stable enumeration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{panels: make(map[string]Panel)}
}

// Get returns the panel for id, if known.
func (r *Registry) Get(id string) (Panel, bool) {
	p, ok := r.panels[id]
	return p, ok
}

// Known reports whether id is already registered.
func (r *Registry) Known(id string) bool {
	_, ok := r.panels[id]
	return ok
}

// Len returns the number of active panels.
func (r *Registry) Len() int { return len(r.panels) }

// Create registers a brand-new panel. Returns an error if the registry is
// at capacity.
func (r *Registry) Create(p Panel) error {
	if len(p.Content) > maxContentBytes {
		return fmt.Errorf("panel limit reached: content exceeds %d bytes", maxContentBytes)
	}
	if _, exists := r.panels[p.ID]; exists {
		return fmt.Errorf("panel %q already exists", p.ID)
	}
	if len(r.panels) >= maxPanels {
		return fmt.Errorf("panel limit reached")
	}
	r.panels[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

// Update replaces the content (and any other mutable fields) of an
// existing panel.
func (r *Registry) Update(id, content string) (Panel, error) {
	p, ok := r.panels[id]
	if !ok {
		return Panel{}, fmt.Errorf("panel %q not found", id)
	}
	if len(content) > maxContentBytes {
		return Panel{}, fmt.Errorf("panel content exceeds %d bytes", maxContentBytes)
	}
	p.Content = content
	r.panels[id] = p
	return p, nil
}

// Dismiss removes a panel. Returns true if it was present.
func (r *Registry) Dismiss(id string) bool {
	if _, ok := r.panels[id]; !ok {
		return false
	}
	delete(r.panels, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns panels in creation order.
func (r *Registry) List() []Panel {
	out := make([]Panel, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.panels[id])
	}
	return out
}

// KnownIDs returns a copy of the set of currently-registered panel ids.
func (r *Registry) KnownIDs() map[string]struct{} {
	out := make(map[string]struct{}, len(r.panels))
	for id := range r.panels {
		out[id] = struct{}{}
	}
	return out
}
