package registry

import "fmt"

// Layer groups services into one tier of the architecture diagram.
type Layer struct {
	ID          string `koanf:"id" json:"id"`
	Name        string `koanf:"name" json:"name"`
	Description string `koanf:"description" json:"description,omitempty"`
	Color       string `koanf:"color" json:"color,omitempty"`
}

// LayerView is a Layer with the ids of the services it holds.
type LayerView struct {
	Layer
	Services []string `json:"services"`
}

// ValidateLayers rejects empty and duplicate layer ids.
func ValidateLayers(layers []Layer) error {
	seen := make(map[string]struct{}, len(layers))
	for i, l := range layers {
		if l.ID == "" {
			return fmt.Errorf("%w: layers[%d]: id is required", ErrInvalidService, i)
		}
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("%w: duplicate layer %q", ErrInvalidService, l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	return nil
}

// Layers returns each layer with its member services, in the given order.
// A layer without a name is named after its id.
func (r *Registry) Layers(layers []Layer) []LayerView {
	out := make([]LayerView, 0, len(layers))
	for _, l := range layers {
		if l.Name == "" {
			l.Name = l.ID
		}
		ids := []string{}
		for _, svc := range r.ByLayer(l.ID) {
			ids = append(ids, svc.ID)
		}
		out = append(out, LayerView{Layer: l, Services: ids})
	}
	return out
}
