// Package token defines the shared data model for the design-token pipeline:
// extracted occurrences, clustering results, inferred tokens and proposed
// mutations. Everything here is plain data; behavior lives in the pipeline
// packages (extractor, grouper, inference, drift, apply).
package token

import "fmt"

// Category classifies what kind of design value a token represents.
type Category string

const (
	CategoryColor         Category = "color"
	CategoryTypography    Category = "typography"
	CategorySpacing       Category = "spacing"
	CategoryShadow        Category = "shadow"
	CategoryBorder        Category = "border"
	CategoryAnimation     Category = "animation"
	CategoryBreakpoint    Category = "breakpoint"
	CategoryLayout        Category = "layout"
	CategoryZIndex        Category = "z-index"
	CategoryAccessibility Category = "accessibility"
)

// Categories lists every known category, in declaration order.
func Categories() []Category {
	return []Category{
		CategoryColor, CategoryTypography, CategorySpacing, CategoryShadow,
		CategoryBorder, CategoryAnimation, CategoryBreakpoint, CategoryLayout,
		CategoryZIndex, CategoryAccessibility,
	}
}

// ExtractedToken is a single located design-value occurrence in a source file.
// Produced by extraction and treated as immutable afterwards.
type ExtractedToken struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"` // declared name, if the occurrence had one
	Category   Category  `json:"category"`
	Value      string    `json:"value"` // raw value text as it appears in source
	FilePath   string    `json:"file_path"`
	LineNumber int       `json:"line_number"` // 1-based
	Context    string    `json:"context"`     // surrounding source text
	Metadata   *Metadata `json:"metadata,omitempty"`
}

// TokenGroup is an ephemeral clustering result for one extraction batch.
// Groups are never persisted.
type TokenGroup struct {
	ID       string           `json:"id"`
	Category Category         `json:"category"`
	Tokens   []ExtractedToken `json:"tokens"`
	Pattern  string           `json:"pattern"` // human-readable description
}

// ScalePattern describes a geometric progression detected within one
// category's numeric values.
type ScalePattern struct {
	BaseValue float64   `json:"base_value"`
	Ratio     float64   `json:"ratio"`
	Values    []float64 `json:"values"` // sorted, distinct
}

// Tier classifies how abstract a token is.
type Tier string

const (
	TierPrimitive Tier = "primitive" // raw value
	TierSemantic  Tier = "semantic"  // role, e.g. "primary"
	TierComponent Tier = "component" // UI-specific, e.g. "button"
)

// InferredToken is an ExtractedToken enriched by the inference pipeline.
type InferredToken struct {
	ExtractedToken

	SuggestedName   string   `json:"suggested_name"`
	Confidence      float64  `json:"confidence"` // 0..1
	GroupID         string   `json:"group_id,omitempty"`
	Inconsistencies []string `json:"inconsistencies,omitempty"`
	Tier            Tier     `json:"tier"`
}

// ChangeType is the kind of mutation a TokenChange proposes.
type ChangeType string

const (
	ChangeReplace ChangeType = "replace"
	ChangeRename  ChangeType = "rename"
	ChangeDelete  ChangeType = "delete"
)

// TokenChange is the unit of a proposed or applied mutation.
//
// For replace, OldValue/NewValue are literal value strings. For rename,
// OldValue is unused and NewValue holds the new token name. For delete,
// OldValue optionally holds the raw value substituted back into references.
type TokenChange struct {
	Type      ChangeType `json:"type"`
	TokenName string     `json:"token_name"`
	OldValue  string     `json:"old_value,omitempty"`
	NewValue  string     `json:"new_value,omitempty"`
}

// Invert returns the change that undoes c. Delete changes are not
// invertible: the declaration was removed and cannot be reconstructed.
func (c TokenChange) Invert() (TokenChange, error) {
	switch c.Type {
	case ChangeReplace:
		return TokenChange{Type: ChangeReplace, TokenName: c.TokenName, OldValue: c.NewValue, NewValue: c.OldValue}, nil
	case ChangeRename:
		return TokenChange{Type: ChangeRename, TokenName: c.NewValue, NewValue: c.TokenName}, nil
	case ChangeDelete:
		return TokenChange{}, fmt.Errorf("delete of token %q is not invertible", c.TokenName)
	default:
		return TokenChange{}, fmt.Errorf("unknown change type %q", c.Type)
	}
}
