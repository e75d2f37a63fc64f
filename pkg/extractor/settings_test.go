package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tokensync/pkg/token"
)

func TestSettingsDescriptorsAtAnyDepth(t *testing.T) {
	data := []byte(`{
  "sections": {
    "header": {
      "blocks": [
        { "type": "color_background", "id": "bg_color", "default": "#0f172a" },
        { "type": "range", "id": "gap", "default": 12, "unit": "px" }
      ]
    }
  },
  "global": { "type": "font_picker", "id": "heading_font", "default": "Inter" }
}`)
	toks := NewSettingsExtractor(nil).Extract("settings_schema.json", data)
	require.Len(t, toks, 3)

	byName := map[string]token.ExtractedToken{}
	for _, tok := range toks {
		byName[tok.Name] = tok
	}

	bg := byName["bg_color"]
	assert.Equal(t, token.CategoryColor, bg.Category)
	assert.Equal(t, "#0f172a", bg.Value)
	assert.Equal(t, 5, bg.LineNumber)
	require.NotNil(t, bg.Metadata)
	assert.Equal(t, "color_background", bg.Metadata.Extra["setting_type"])

	gap := byName["gap"]
	assert.Equal(t, token.CategorySpacing, gap.Category)
	assert.Equal(t, "12px", gap.Value)

	font := byName["heading_font"]
	assert.Equal(t, token.CategoryTypography, font.Category)
	assert.Equal(t, "Inter", font.Value)
}

func TestSettingsIncompatibleDescriptorsSkipped(t *testing.T) {
	data := []byte(`{
  "settings": [
    { "type": "text", "id": "title", "default": "Welcome" },
    { "type": "color", "id": "no_default" },
    { "type": "checkbox", "id": "enabled", "default": true }
  ]
}`)
	toks := NewSettingsExtractor(nil).Extract("settings.json", data)
	assert.Empty(t, toks)
}

func TestSettingsMalformedJSONSkipsFile(t *testing.T) {
	toks := NewSettingsExtractor(nil).Extract("broken.json", []byte(`{"settings": [`))
	assert.Empty(t, toks, "garbage settings are a per-file condition")
}
