package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tokensync/pkg/token"
)

func openTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteTokenCRUD(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t)

	tok := &Token{
		ProjectID: "p1",
		Name:      "color-primary",
		Category:  token.CategoryColor,
		Value:     "#3b82f6",
		Aliases:   []string{"brand-blue"},
		Metadata:  (*token.Metadata)(nil).WithExtra("tier", "primitive"),
	}
	require.NoError(t, store.CreateToken(ctx, tok))
	require.NotEmpty(t, tok.ID)

	got, err := store.GetToken(ctx, tok.ID)
	require.NoError(t, err)
	assert.Equal(t, "color-primary", got.Name)
	assert.Equal(t, []string{"brand-blue"}, got.Aliases)
	require.NotNil(t, got.Metadata)
	assert.Equal(t, "primitive", got.Metadata.Extra["tier"])

	got.Value = "#2563eb"
	require.NoError(t, store.UpdateToken(ctx, got))

	byName, err := store.FindByName(ctx, "p1", "color-primary")
	require.NoError(t, err)
	assert.Equal(t, "#2563eb", byName.Value)

	require.NoError(t, store.DeleteToken(ctx, tok.ID))
	_, err = store.GetToken(ctx, tok.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteNameUniquePerProject(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t)

	require.NoError(t, store.CreateToken(ctx, &Token{
		ProjectID: "p1", Name: "spacing-base", Category: token.CategorySpacing, Value: "8px",
	}))
	err := store.CreateToken(ctx, &Token{
		ProjectID: "p1", Name: "spacing-base", Category: token.CategorySpacing, Value: "4px",
	})
	require.Error(t, err)

	// Same name in another project is fine.
	require.NoError(t, store.CreateToken(ctx, &Token{
		ProjectID: "p2", Name: "spacing-base", Category: token.CategorySpacing, Value: "4px",
	}))
}

func TestSQLiteNotFoundPaths(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t)

	_, err := store.GetToken(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.FindByName(ctx, "p1", "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.UpdateToken(ctx, &Token{ID: "nope", Category: token.CategoryColor})
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteToken(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.LatestVersion(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListScopedAndSorted(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t)

	for _, spec := range []struct {
		project, name string
		cat           token.Category
	}{
		{"p1", "spacing-lg", token.CategorySpacing},
		{"p1", "color-primary", token.CategoryColor},
		{"p1", "spacing-base", token.CategorySpacing},
		{"p2", "color-primary", token.CategoryColor},
	} {
		require.NoError(t, store.CreateToken(ctx, &Token{
			ProjectID: spec.project, Name: spec.name, Category: spec.cat, Value: "x",
		}))
	}

	all, err := store.ListByProject(ctx, "p1")
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, tk := range all {
		names[i] = tk.Name
	}
	assert.Equal(t, []string{"color-primary", "spacing-base", "spacing-lg"}, names)

	spacing, err := store.ListByCategory(ctx, "p1", token.CategorySpacing)
	require.NoError(t, err)
	require.Len(t, spacing, 2)
	assert.Equal(t, "spacing-base", spacing[0].Name)
}

func TestSQLiteVersionNumbering(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t)

	changes := ChangeSet{
		TokenChanges:     []token.TokenChange{{Type: token.ChangeReplace, TokenName: "a", OldValue: "1px", NewValue: "2px"}},
		FilesModified:    []string{"a.css"},
		InstancesChanged: 1,
	}

	v1 := &Version{ProjectID: "p1", AuthorID: "u1", Changes: changes}
	require.NoError(t, store.CreateVersion(ctx, v1))
	assert.Equal(t, 1, v1.VersionNumber)

	v2 := &Version{ProjectID: "p1", AuthorID: "u1"}
	require.NoError(t, store.CreateVersion(ctx, v2))
	assert.Equal(t, 2, v2.VersionNumber)

	// Independent sequence per project.
	other := &Version{ProjectID: "p2", AuthorID: "u1"}
	require.NoError(t, store.CreateVersion(ctx, other))
	assert.Equal(t, 1, other.VersionNumber)

	latest, err := store.LatestVersion(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, latest.VersionNumber)

	fetched, err := store.GetVersion(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, changes, fetched.Changes)

	list, err := store.ListVersions(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].VersionNumber)
	assert.Equal(t, 2, list[1].VersionNumber)
}
