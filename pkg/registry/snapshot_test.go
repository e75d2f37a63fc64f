package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tokensync/pkg/token"
)

func seedProject(t *testing.T, store Store, projectID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.CreateToken(ctx, &Token{
		ProjectID: projectID, Name: "color-primary", Category: token.CategoryColor, Value: "#3b82f6",
	}))
	require.NoError(t, store.CreateToken(ctx, &Token{
		ProjectID: projectID, Name: "spacing-base", Category: token.CategorySpacing, Value: "8px",
		Aliases: []string{"gap-base"},
	}))
	require.NoError(t, store.CreateVersion(ctx, &Version{
		ProjectID: projectID, AuthorID: "u1", Description: "initial",
		Changes: ChangeSet{
			TokenChanges:     []token.TokenChange{{Type: token.ChangeReplace, TokenName: "spacing-base", OldValue: "10px", NewValue: "8px"}},
			FilesModified:    []string{"base.css"},
			InstancesChanged: 2,
		},
	}))
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := NewMemoryStore()
	seedProject(t, src, "p1")

	snap, err := Export(ctx, src, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", snap.ProjectID)
	require.Len(t, snap.Tokens, 2)
	require.Len(t, snap.Versions, 1)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, WriteSnapshot(path, snap))

	loaded, err := ReadSnapshot(path)
	require.NoError(t, err)

	dst := NewMemoryStore()
	require.NoError(t, Import(ctx, dst, loaded))

	tok, err := dst.FindByName(ctx, "p1", "spacing-base")
	require.NoError(t, err)
	assert.Equal(t, "8px", tok.Value)
	assert.Equal(t, []string{"gap-base"}, tok.Aliases)

	versions, err := dst.ListVersions(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, 2, versions[0].Changes.InstancesChanged)
}

func TestImportIntoOccupiedProjectFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedProject(t, store, "p1")

	snap, err := Export(ctx, store, "p1")
	require.NoError(t, err)

	err = Import(ctx, store, snap)
	require.Error(t, err, "a snapshot targets a fresh project, not a merge")
}

func TestReadSnapshotRejectsGarbage(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadSnapshot(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, WriteSnapshot(bad, &Snapshot{ProjectID: "p1"}))
	// Valid file parses fine.
	_, err = ReadSnapshot(bad)
	require.NoError(t, err)
}
