package token

// Metadata carries optional annotations on a token. Known annotation kinds
// are modeled as typed fields so consumers can switch on them exhaustively;
// anything else goes into the open Extra map.
type Metadata struct {
	Ramp   *RampAnnotation   `json:"ramp,omitempty"`
	Scheme *SchemeAnnotation `json:"scheme,omitempty"`
	Role   *RoleAnnotation   `json:"role,omitempty"`

	// Extra holds annotations this subsystem does not interpret.
	Extra map[string]string `json:"extra,omitempty"`
}

// RampAnnotation marks a token as one step of a generated lightness ramp
// derived from a base color. The pipeline carries ramps through but does
// not generate them.
type RampAnnotation struct {
	BaseColor string `json:"base_color"`
	Step      int    `json:"step"`
	Steps     int    `json:"steps"`
}

// SchemeAnnotation ties a token to a named color scheme (e.g. "dark").
type SchemeAnnotation struct {
	Scheme string `json:"scheme"`
}

// RoleAnnotation records the semantic role a token plays (e.g. "primary").
type RoleAnnotation struct {
	Role string `json:"role"`
}

// WithExtra returns m with key set in the Extra map, allocating as needed.
// A nil receiver allocates a fresh Metadata.
func (m *Metadata) WithExtra(key, value string) *Metadata {
	if m == nil {
		m = &Metadata{}
	}
	if m.Extra == nil {
		m.Extra = make(map[string]string, 1)
	}
	m.Extra[key] = value
	return m
}
