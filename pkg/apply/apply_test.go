package apply

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tokensync/pkg/files"
	"github.com/gnana997/tokensync/pkg/registry"
	"github.com/gnana997/tokensync/pkg/token"
)

const applyThemeCSS = `:root {
  --color-primary: #3b82f6;
}
.btn { background: var(--color-primary); }
`

const applyCardLiquid = `<div class="card" style="color: {{ settings.color_primary }}">
  {{ card.title }}
</div>
`

func projectStore() *files.MemStore {
	return files.NewMemStore(map[string]string{
		"assets/theme.css":     applyThemeCSS,
		"snippets/card.liquid": applyCardLiquid,
	})
}

func TestApplyReplaceValue(t *testing.T) {
	ctx := context.Background()
	store := projectStore()
	reg := registry.NewMemoryStore()
	app := New(store, reg, nil)

	result, err := app.Apply(ctx, "p1", []token.TokenChange{
		{Type: token.ChangeReplace, TokenName: "color-primary", OldValue: "#3b82f6", NewValue: "#2563eb"},
	}, "u1", "darken primary")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"assets/theme.css"}, result.FilesModified)
	assert.Equal(t, 1, result.InstancesChanged)
	require.NotEmpty(t, result.VersionID)

	f, err := store.GetFile(ctx, "assets/theme.css")
	require.NoError(t, err)
	assert.Contains(t, string(f.Content), "--color-primary: #2563eb;")

	version, err := reg.GetVersion(ctx, result.VersionID)
	require.NoError(t, err)
	assert.Equal(t, "u1", version.AuthorID)
	assert.Equal(t, 1, version.Changes.InstancesChanged)
}

func TestApplyRenameTouchesAllReferenceForms(t *testing.T) {
	ctx := context.Background()
	store := projectStore()
	app := New(store, registry.NewMemoryStore(), nil)

	result, err := app.Apply(ctx, "p1", []token.TokenChange{
		{Type: token.ChangeRename, TokenName: "color-primary", NewValue: "color-brand"},
	}, "u1", "rename primary")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.ElementsMatch(t, []string{"assets/theme.css", "snippets/card.liquid"}, result.FilesModified)
	assert.Equal(t, 3, result.InstancesChanged)

	css, err := store.GetFile(ctx, "assets/theme.css")
	require.NoError(t, err)
	assert.Contains(t, string(css.Content), "--color-brand: #3b82f6;")
	assert.Contains(t, string(css.Content), "var(--color-brand)")
	assert.NotContains(t, string(css.Content), "color-primary")

	liquid, err := store.GetFile(ctx, "snippets/card.liquid")
	require.NoError(t, err)
	assert.Contains(t, string(liquid.Content), "{{ settings.color_brand }}")
}

func TestApplyReplaceValueWithDollarSign(t *testing.T) {
	ctx := context.Background()
	store := files.NewMemStore(map[string]string{
		"assets/theme.scss": ".a { color: #ffffff; }\n",
	})
	app := New(store, registry.NewMemoryStore(), nil)

	// The new value must land verbatim, not be expanded as a capture-group
	// reference.
	result, err := app.Apply(ctx, "p1", []token.TokenChange{
		{Type: token.ChangeReplace, TokenName: "color-bg", OldValue: "#ffffff", NewValue: "$brand"},
	}, "u1", "swap to scss variable")
	require.NoError(t, err)
	require.True(t, result.Success)

	f, err := store.GetFile(ctx, "assets/theme.scss")
	require.NoError(t, err)
	assert.Equal(t, ".a { color: $brand; }\n", string(f.Content))
}

func TestApplyDeleteRemovesDeclaration(t *testing.T) {
	ctx := context.Background()
	store := files.NewMemStore(map[string]string{
		"assets/theme.css": ":root {\n  --spacing-old: 7px;\n  --spacing-base: 8px;\n}\n",
	})
	app := New(store, registry.NewMemoryStore(), nil)

	result, err := app.Apply(ctx, "p1", []token.TokenChange{
		{Type: token.ChangeDelete, TokenName: "spacing-old"},
	}, "u1", "drop unused token")
	require.NoError(t, err)
	require.True(t, result.Success)

	f, err := store.GetFile(ctx, "assets/theme.css")
	require.NoError(t, err)
	assert.Equal(t, ":root {\n  --spacing-base: 8px;\n}\n", string(f.Content))
}

func TestApplyDeleteSubstitutesReferencesAndInlineDeclarations(t *testing.T) {
	ctx := context.Background()
	store := files.NewMemStore(map[string]string{
		"assets/theme.css": ":root { --accent: #ff0000; }\n.btn { color: var(--accent); }\n",
	})
	app := New(store, registry.NewMemoryStore(), nil)

	result, err := app.Apply(ctx, "p1", []token.TokenChange{
		{Type: token.ChangeDelete, TokenName: "accent", OldValue: "#ff0000"},
	}, "u1", "inline accent")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 2, result.InstancesChanged)

	f, err := store.GetFile(ctx, "assets/theme.css")
	require.NoError(t, err)
	assert.Equal(t, ":root { }\n.btn { color: #ff0000; }\n", string(f.Content))
}

func TestApplyAbortsOnValidationFailureWithZeroWrites(t *testing.T) {
	ctx := context.Background()
	store := projectStore()
	app := New(store, registry.NewMemoryStore(), nil)

	// The replacement value unbalances the braces of any file it lands in.
	result, err := app.Apply(ctx, "p1", []token.TokenChange{
		{Type: token.ChangeReplace, TokenName: "color-primary", OldValue: "#3b82f6", NewValue: "#2563eb }"},
	}, "u1", "bad value")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, result.FilesModified)
	assert.NotEmpty(t, result.Errors)

	// Nothing on disk changed, including files that would have validated.
	css, err := store.GetFile(ctx, "assets/theme.css")
	require.NoError(t, err)
	assert.Equal(t, applyThemeCSS, string(css.Content))
	liquid, err := store.GetFile(ctx, "snippets/card.liquid")
	require.NoError(t, err)
	assert.Equal(t, applyCardLiquid, string(liquid.Content))
}

func TestApplyNoChangesIsSuccess(t *testing.T) {
	app := New(projectStore(), registry.NewMemoryStore(), nil)
	result, err := app.Apply(context.Background(), "p1", nil, "u1", "")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.FilesModified)
}

func TestRollbackRestoresOriginalContent(t *testing.T) {
	ctx := context.Background()
	store := projectStore()
	reg := registry.NewMemoryStore()
	app := New(store, reg, nil)

	applied, err := app.Apply(ctx, "p1", []token.TokenChange{
		{Type: token.ChangeRename, TokenName: "color-primary", NewValue: "color-brand"},
	}, "u1", "rename primary")
	require.NoError(t, err)
	require.True(t, applied.Success)
	require.NotEmpty(t, applied.VersionID)

	rolled, err := app.Rollback(ctx, "p1", applied.VersionID)
	require.NoError(t, err)
	require.True(t, rolled.Success)

	css, err := store.GetFile(ctx, "assets/theme.css")
	require.NoError(t, err)
	assert.Equal(t, applyThemeCSS, string(css.Content))
	liquid, err := store.GetFile(ctx, "snippets/card.liquid")
	require.NoError(t, err)
	assert.Equal(t, applyCardLiquid, string(liquid.Content))

	// The rollback itself is versioned under the system actor.
	latest, err := reg.LatestVersion(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, RollbackAuthor, latest.AuthorID)
	assert.Contains(t, latest.Description, "rollback of version")
}

func TestRollbackOfDeleteFailsLoudly(t *testing.T) {
	ctx := context.Background()
	reg := registry.NewMemoryStore()
	version := &registry.Version{
		ProjectID: "p1",
		AuthorID:  "u1",
		Changes: registry.ChangeSet{
			TokenChanges: []token.TokenChange{{Type: token.ChangeDelete, TokenName: "spacing-old"}},
		},
	}
	require.NoError(t, reg.CreateVersion(ctx, version))

	app := New(projectStore(), reg, nil)
	_, err := app.Rollback(ctx, "p1", version.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not invertible")
}

func TestRollbackRejectsForeignProject(t *testing.T) {
	ctx := context.Background()
	reg := registry.NewMemoryStore()
	version := &registry.Version{ProjectID: "other", AuthorID: "u1"}
	require.NoError(t, reg.CreateVersion(ctx, version))

	app := New(projectStore(), reg, nil)
	_, err := app.Rollback(ctx, "p1", version.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "belongs to project")
}
