package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/gnana997/tokensync/pkg/token"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tokens (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	value TEXT NOT NULL,
	aliases TEXT NOT NULL DEFAULT '[]',
	description TEXT NOT NULL DEFAULT '',
	metadata TEXT,
	semantic_parent_id TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	UNIQUE (project_id, name)
);
CREATE INDEX IF NOT EXISTS tokens_project ON tokens (project_id);

CREATE TABLE IF NOT EXISTS versions (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	version_number INTEGER NOT NULL,
	changes TEXT NOT NULL,
	author_id TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS versions_project ON versions (project_id, version_number);
`

// SQLiteStore is a durable Store backed by a local SQLite database. One
// connection guarded by a mutex is plenty for CLI workloads.
type SQLiteStore struct {
	mu   sync.Mutex
	conn *sqlite.Conn
}

// OpenSQLite opens (and creates, if needed) the registry database at path.
// Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	flags := sqlite.OpenReadWrite | sqlite.OpenCreate
	if path == ":memory:" {
		flags |= sqlite.OpenMemory
	}
	conn, err := sqlite.OpenConn(path, flags)
	if err != nil {
		return nil, fmt.Errorf("open registry db: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, sqliteSchema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply registry schema: %w", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// withConn serializes access and wires ctx cancellation into the statement
// interrupt machinery.
func (s *SQLiteStore) withConn(ctx context.Context, fn func(*sqlite.Conn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(old)
	return fn(s.conn)
}

func (s *SQLiteStore) CreateToken(ctx context.Context, t *Token) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now

	aliases, metadata, err := encodeTokenJSON(t)
	if err != nil {
		return err
	}
	return s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`INSERT INTO tokens (id, project_id, name, category, value, aliases, description, metadata, semantic_parent_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				t.ID, t.ProjectID, t.Name, string(t.Category), t.Value,
				aliases, t.Description, metadata, t.SemanticParentID,
				t.CreatedAt.UnixMilli(), t.UpdatedAt.UnixMilli(),
			}})
	})
}

func (s *SQLiteStore) GetToken(ctx context.Context, id string) (*Token, error) {
	return s.queryOneToken(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE id = ?`, id)
}

func (s *SQLiteStore) UpdateToken(ctx context.Context, t *Token) error {
	t.UpdatedAt = time.Now()
	aliases, metadata, err := encodeTokenJSON(t)
	if err != nil {
		return err
	}
	found := false
	err = s.withConn(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn,
			`UPDATE tokens SET name = ?, category = ?, value = ?, aliases = ?, description = ?, metadata = ?, semantic_parent_id = ?, updated_at = ? WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{
				t.Name, string(t.Category), t.Value, aliases, t.Description,
				metadata, t.SemanticParentID, t.UpdatedAt.UnixMilli(), t.ID,
			}}); err != nil {
			return err
		}
		found = conn.Changes() > 0
		return nil
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteToken(ctx context.Context, id string) error {
	found := false
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, `DELETE FROM tokens WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{id}}); err != nil {
			return err
		}
		found = conn.Changes() > 0
		return nil
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) FindByName(ctx context.Context, projectID, name string) (*Token, error) {
	return s.queryOneToken(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE project_id = ? AND name = ?`,
		projectID, name)
}

func (s *SQLiteStore) ListByProject(ctx context.Context, projectID string) ([]*Token, error) {
	return s.queryTokens(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE project_id = ? ORDER BY name`,
		projectID)
}

func (s *SQLiteStore) ListByCategory(ctx context.Context, projectID string, cat token.Category) ([]*Token, error) {
	return s.queryTokens(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE project_id = ? AND category = ? ORDER BY name`,
		projectID, string(cat))
}

func (s *SQLiteStore) CreateVersion(ctx context.Context, v *Version) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	changes, err := json.Marshal(v.Changes)
	if err != nil {
		return fmt.Errorf("encode version changes: %w", err)
	}

	return s.withConn(ctx, func(conn *sqlite.Conn) error {
		if v.VersionNumber == 0 {
			err := sqlitex.Execute(conn,
				`SELECT COALESCE(MAX(version_number), 0) FROM versions WHERE project_id = ?`,
				&sqlitex.ExecOptions{
					Args: []any{v.ProjectID},
					ResultFunc: func(stmt *sqlite.Stmt) error {
						v.VersionNumber = int(stmt.ColumnInt64(0)) + 1
						return nil
					},
				})
			if err != nil {
				return err
			}
		}
		return sqlitex.Execute(conn,
			`INSERT INTO versions (id, project_id, version_number, changes, author_id, description, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				v.ID, v.ProjectID, v.VersionNumber, string(changes),
				v.AuthorID, v.Description, v.CreatedAt.UnixMilli(),
			}})
	})
}

func (s *SQLiteStore) LatestVersion(ctx context.Context, projectID string) (*Version, error) {
	return s.queryOneVersion(ctx,
		`SELECT `+versionColumns+` FROM versions WHERE project_id = ? ORDER BY version_number DESC LIMIT 1`,
		projectID)
}

func (s *SQLiteStore) GetVersion(ctx context.Context, id string) (*Version, error) {
	return s.queryOneVersion(ctx, `SELECT `+versionColumns+` FROM versions WHERE id = ?`, id)
}

func (s *SQLiteStore) ListVersions(ctx context.Context, projectID string) ([]*Version, error) {
	var out []*Version
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`SELECT `+versionColumns+` FROM versions WHERE project_id = ? ORDER BY version_number`,
			&sqlitex.ExecOptions{
				Args: []any{projectID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					v, err := scanVersion(stmt)
					if err != nil {
						return err
					}
					out = append(out, v)
					return nil
				},
			})
	})
	return out, err
}

const tokenColumns = `id, project_id, name, category, value, aliases, description, metadata, semantic_parent_id, created_at, updated_at`
const versionColumns = `id, project_id, version_number, changes, author_id, description, created_at`

func (s *SQLiteStore) queryOneToken(ctx context.Context, query string, args ...any) (*Token, error) {
	var found *Token
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				t, err := scanToken(stmt)
				if err != nil {
					return err
				}
				found = t
				return nil
			},
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (s *SQLiteStore) queryTokens(ctx context.Context, query string, args ...any) ([]*Token, error) {
	var out []*Token
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				t, err := scanToken(stmt)
				if err != nil {
					return err
				}
				out = append(out, t)
				return nil
			},
		})
	})
	return out, err
}

func (s *SQLiteStore) queryOneVersion(ctx context.Context, query string, args ...any) (*Version, error) {
	var found *Version
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				v, err := scanVersion(stmt)
				if err != nil {
					return err
				}
				found = v
				return nil
			},
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func scanToken(stmt *sqlite.Stmt) (*Token, error) {
	t := &Token{
		ID:               stmt.ColumnText(0),
		ProjectID:        stmt.ColumnText(1),
		Name:             stmt.ColumnText(2),
		Category:         token.Category(stmt.ColumnText(3)),
		Value:            stmt.ColumnText(4),
		Description:      stmt.ColumnText(6),
		SemanticParentID: stmt.ColumnText(8),
		CreatedAt:        time.UnixMilli(stmt.ColumnInt64(9)),
		UpdatedAt:        time.UnixMilli(stmt.ColumnInt64(10)),
	}
	if raw := stmt.ColumnText(5); raw != "" && raw != "[]" {
		if err := json.Unmarshal([]byte(raw), &t.Aliases); err != nil {
			return nil, fmt.Errorf("decode aliases for token %s: %w", t.ID, err)
		}
	}
	if raw := stmt.ColumnText(7); raw != "" {
		t.Metadata = &token.Metadata{}
		if err := json.Unmarshal([]byte(raw), t.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for token %s: %w", t.ID, err)
		}
	}
	return t, nil
}

func scanVersion(stmt *sqlite.Stmt) (*Version, error) {
	v := &Version{
		ID:            stmt.ColumnText(0),
		ProjectID:     stmt.ColumnText(1),
		VersionNumber: int(stmt.ColumnInt64(2)),
		AuthorID:      stmt.ColumnText(4),
		Description:   stmt.ColumnText(5),
		CreatedAt:     time.UnixMilli(stmt.ColumnInt64(6)),
	}
	if err := json.Unmarshal([]byte(stmt.ColumnText(3)), &v.Changes); err != nil {
		return nil, fmt.Errorf("decode changes for version %s: %w", v.ID, err)
	}
	return v, nil
}

func encodeTokenJSON(t *Token) (aliases string, metadata any, err error) {
	raw, err := json.Marshal(t.Aliases)
	if err != nil {
		return "", nil, fmt.Errorf("encode aliases: %w", err)
	}
	aliases = string(raw)
	if t.Metadata != nil {
		rawMeta, err := json.Marshal(t.Metadata)
		if err != nil {
			return "", nil, fmt.Errorf("encode metadata: %w", err)
		}
		metadata = string(rawMeta)
	}
	return aliases, metadata, nil
}
