package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/newsmania/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// connPragmas run on every new pooled connection; foreign_keys and
// busy_timeout are per-connection settings in SQLite
var connPragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
// An empty DSN or ":memory:" opens a private in-memory database.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	inMemory := dsn == "" || dsn == ":memory:"
	if inMemory {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	if inMemory {
		// each connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "sqlite: connect")
	}
	return &SQLiteStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// withPragmas appends connPragmas as _pragma query parameters to dsn
func withPragmas(dsn string) string {
	params := make([]string, len(connPragmas))
	for i, p := range connPragmas {
		params[i] = "_pragma=" + p
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS notes (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	content       TEXT NOT NULL DEFAULT '',
	topic         TEXT NOT NULL DEFAULT 'general',
	article_id    TEXT NOT NULL DEFAULT '',
	article_title TEXT NOT NULL DEFAULT '',
	tags          TEXT NOT NULL DEFAULT '[]',
	is_public     INTEGER NOT NULL DEFAULT 0,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS note_folders (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS folder_notes (
	folder_id TEXT NOT NULL REFERENCES note_folders(id) ON DELETE CASCADE,
	note_id   TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	PRIMARY KEY (folder_id, note_id)
);

CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_notes_article ON notes(user_id, article_id);
CREATE INDEX IF NOT EXISTS idx_note_folders_user ON note_folders(user_id);
`

// Migrate creates the tables and indexes if they do not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, note model.Note) (*model.Note, error) {
	if err := validateNote(note); err != nil {
		return nil, err
	}
	if note.Topic == "" {
		note.Topic = defaultTopic
	}
	now := s.now()
	note.ID = uuid.New().String()
	note.CreatedAt = now
	note.UpdatedAt = now

	tagsJSON, err := marshalTags(note.Tags)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, content, topic, article_id, article_title, tags, is_public, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.UserID, note.Title, note.Content, note.Topic, note.ArticleID, note.ArticleTitle,
		tagsJSON, note.IsPublic, now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert note")
	}
	return &note, nil
}

const noteColumns = `id, user_id, title, content, topic, article_id, article_title, tags, is_public, created_at, updated_at`

func (s *SQLiteStore) Get(ctx context.Context, userID, id string) (*model.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "note %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get note %s", id)
	}
	return note, nil
}

// List returns the user's notes, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, userID string, filter model.NoteFilter) ([]model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = ?`
	args := []any{userID}
	if filter.Topic != "" {
		query += ` AND topic = ?`
		args = append(args, filter.Topic)
	}
	if filter.ArticleID != "" {
		query += ` AND article_id = ?`
		args = append(args, filter.ArticleID)
	}
	query += ` ORDER BY updated_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list notes")
	}
	defer rows.Close() //nolint:errcheck

	out := make([]model.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan note")
		}
		out = append(out, *note)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate notes")
}

func (s *SQLiteStore) Update(ctx context.Context, userID, id string, update Update) (*model.Note, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	row := tx.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	current, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "note %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get note %s", id)
	}

	updated, err := apply(*current, update)
	if err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.now()

	tagsJSON, err := marshalTags(updated.Tags)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, topic = ?, tags = ?, is_public = ?, updated_at = ? WHERE id = ?`,
		updated.Title, updated.Content, updated.Topic, tagsJSON, updated.IsPublic, updated.UpdatedAt.UnixNano(), id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update note %s", id)
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}
	return &updated, nil
}

// Delete removes the note and its folder memberships in one transaction.
func (s *SQLiteStore) Delete(ctx context.Context, userID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete note %s", id)
	}
	if err := checkRowsAffected(res, "note", id); err != nil {
		return err
	}

	// explicit, so membership never outlives the note even without the cascade
	if _, err := tx.ExecContext(ctx, `DELETE FROM folder_notes WHERE note_id = ?`, id); err != nil {
		return eris.Wrapf(err, "sqlite: remove note %s from folders", id)
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) CreateFolder(ctx context.Context, folder model.NoteFolder) (*model.NoteFolder, error) {
	if err := validateFolder(folder); err != nil {
		return nil, err
	}
	now := s.now()
	folder.ID = uuid.New().String()
	folder.CreatedAt = now
	folder.UpdatedAt = now
	folder.NoteIDs = []string{}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO note_folders (id, user_id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		folder.ID, folder.UserID, folder.Name, folder.Description, now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert folder")
	}
	return &folder, nil
}

func (s *SQLiteStore) ListFolders(ctx context.Context, userID string) ([]model.NoteFolder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, description, created_at, updated_at FROM note_folders WHERE user_id = ? ORDER BY name, id`,
		userID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list folders")
	}

	out := make([]model.NoteFolder, 0)
	index := make(map[string]int)
	for rows.Next() {
		var (
			f                    model.NoteFolder
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Description, &createdAt, &updatedAt); err != nil {
			_ = rows.Close()
			return nil, eris.Wrap(err, "sqlite: scan folder")
		}
		f.CreatedAt = fromNanos(createdAt)
		f.UpdatedAt = fromNanos(updatedAt)
		f.NoteIDs = []string{}
		index[f.ID] = len(out)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, eris.Wrap(err, "sqlite: iterate folders")
	}
	_ = rows.Close()

	members, err := s.db.QueryContext(ctx,
		`SELECT fn.folder_id, fn.note_id FROM folder_notes fn
		 JOIN note_folders f ON f.id = fn.folder_id
		 WHERE f.user_id = ? ORDER BY fn.folder_id, fn.position`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list folder notes")
	}
	defer members.Close() //nolint:errcheck

	for members.Next() {
		var folderID, noteID string
		if err := members.Scan(&folderID, &noteID); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan folder note")
		}
		if i, ok := index[folderID]; ok {
			out[i].NoteIDs = append(out[i].NoteIDs, noteID)
		}
	}
	return out, eris.Wrap(members.Err(), "sqlite: iterate folder notes")
}

// AddToFolder is idempotent: adding a note twice keeps a single entry.
func (s *SQLiteStore) AddToFolder(ctx context.Context, userID, folderID, noteID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := exists(ctx, tx, `SELECT 1 FROM note_folders WHERE id = ? AND user_id = ?`, folderID, userID); err != nil {
		return eris.Wrapf(err, "folder %s", folderID)
	}
	if err := exists(ctx, tx, `SELECT 1 FROM notes WHERE id = ? AND user_id = ?`, noteID, userID); err != nil {
		return eris.Wrapf(err, "note %s", noteID)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO folder_notes (folder_id, note_id, position)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM folder_notes WHERE folder_id = ?))`,
		folderID, noteID, folderID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: add to folder")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE note_folders SET updated_at = ? WHERE id = ?`,
			s.now().UnixNano(), folderID); err != nil {
			return eris.Wrap(err, "sqlite: touch folder")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func exists(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanNote(row scannable) (*model.Note, error) {
	var (
		note                 model.Note
		tagsJSON             string
		createdAt, updatedAt int64
	)
	err := row.Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.Topic,
		&note.ArticleID, &note.ArticleTitle, &tagsJSON, &note.IsPublic, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(tagsJSON) != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &note.Tags); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal tags")
		}
	}
	if len(note.Tags) == 0 {
		note.Tags = nil
	}
	note.CreatedAt = fromNanos(createdAt)
	note.UpdatedAt = fromNanos(updatedAt)
	return &note, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal tags")
	}
	return string(b), nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
