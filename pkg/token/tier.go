package token

import "strings"

// Keyword sets for tier classification. Component wins over semantic when
// both match, since a component name is the more specific signal.
var (
	componentKeywords = []string{
		"button", "card", "input", "badge", "modal", "nav", "header",
		"footer", "sidebar", "tooltip", "dropdown", "table", "form",
		"chip", "avatar", "banner", "tab", "menu", "dialog",
	}
	semanticKeywords = []string{
		"primary", "secondary", "accent", "success", "warning", "error",
		"danger", "info", "muted", "background", "foreground", "surface",
		"brand", "link", "text", "heading", "body", "hover", "active",
		"focus", "disabled",
	}
)

// ClassifyTier derives a token's tier from its (suggested or declared) name.
// Unrecognized names are primitives.
func ClassifyTier(name string) Tier {
	n := strings.ToLower(name)
	for _, kw := range componentKeywords {
		if strings.Contains(n, kw) {
			return TierComponent
		}
	}
	for _, kw := range semanticKeywords {
		if strings.Contains(n, kw) {
			return TierSemantic
		}
	}
	return TierPrimitive
}
