package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStylesheet(t *testing.T) {
	tests := []struct {
		name    string
		content string
		valid   bool
	}{
		{"balanced", ".a { color: rgb(1, 2, 3); }", true},
		{"unclosed brace", ".a { color: red;", false},
		{"stray closing brace", ".a { color: red; } }", false},
		{"unclosed paren", ".a { width: calc(100% - 8px; }", false},
		{"brace inside comment ignored", "/* } */ .a { color: red; }", true},
		{"brace inside string ignored", `.a { content: "}"; }`, true},
		{"unterminated string", `.a { content: "oops; }`, false},
		{"unterminated comment", ".a { color: red; } /* never ends", false},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateStylesheet([]byte(tt.content))
			if tt.valid {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		valid   bool
	}{
		{"plain output", "{{ settings.color_primary }}", true},
		{"nested blocks", "{% if a %}{% for x in xs %}{{ x }}{% endfor %}{% endif %}", true},
		{"unclosed output", "{{ settings.color_primary", false},
		{"unclosed block", "{% if a %}body", false},
		{"crossed blocks", "{% if a %}{% for x in xs %}{% endif %}{% endfor %}", false},
		{"end without open", "{% endif %}", false},
		{"style block", "{% style %}.a { color: red; }{% endstyle %}", true},
		{"minified css in style block", "{% style %}@media screen{.a{color:red}}{% endstyle %}", true},
		{"minified css in style element", "<style>@media screen{.a{color:red}}</style>", true},
		{"nested json in schema block", `{% schema %}{"settings":{"a":{"b":1}}}{% endschema %}`, true},
		{"unbalanced output outside blocks", "{% style %}.a{}{% endstyle %}{{ x }} }}", false},
		{"non-block tags ignored", "{% assign a = 1 %}{% include 'x' %}", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateTemplate([]byte(tt.content))
			if tt.valid {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestValidateContentDispatch(t *testing.T) {
	assert.False(t, validateContent("a.css", []byte(".a {")).Valid)
	assert.False(t, validateContent("a.liquid", []byte("{% if x %}")).Valid)
	// Formats without a checker pass.
	assert.True(t, validateContent("a.js", []byte("function broken( {")).Valid)
}
