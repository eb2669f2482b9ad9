package notes

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/newsmania/internal/model"
)

// tickingClock returns a clock that advances one second per call
func tickingClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	st.now = tickingClock()
	return st
}

func newTestMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	st := NewMemory()
	st.now = tickingClock()
	return st
}

// forEachStore runs a test against every Store implementation
func forEachStore(t *testing.T, fn func(t *testing.T, st Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, newTestMemoryStore(t)) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newTestSQLiteStore(t)) })
}

func TestStore_CreateAndGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		created, err := st.Create(ctx, model.Note{
			UserID:       "u1",
			Title:        "Bridge story",
			Content:      "Check the repair budget",
			ArticleID:    "general-0-abc",
			ArticleTitle: "Bridge reopens",
			Tags:         []string{"city", "budget"},
			IsPublic:     true,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "general", created.Topic)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)

		got, err := st.Get(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Title, got.Title)
		assert.Equal(t, created.Content, got.Content)
		assert.Equal(t, "general-0-abc", got.ArticleID)
		assert.Equal(t, "Bridge reopens", got.ArticleTitle)
		assert.Equal(t, []string{"city", "budget"}, got.Tags)
		assert.True(t, got.IsPublic)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})
}

func TestStore_CreateValidation(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		_, err := st.Create(ctx, model.Note{Title: "no user"})
		assert.True(t, errors.Is(err, ErrInvalidNote))

		_, err = st.Create(ctx, model.Note{UserID: "u1", Title: "  ", Content: ""})
		assert.True(t, errors.Is(err, ErrInvalidNote))

		_, err = st.Create(ctx, model.Note{UserID: "u1", Content: "content only"})
		assert.NoError(t, err)
	})
}

func TestStore_GetOtherUser(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		created, err := st.Create(ctx, model.Note{UserID: "u1", Title: "private"})
		require.NoError(t, err)

		_, err = st.Get(ctx, "u2", created.ID)
		assert.True(t, errors.Is(err, ErrNotFound))

		_, err = st.Get(ctx, "u1", "missing")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestStore_ListFilters(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		for _, n := range []model.Note{
			{UserID: "u1", Title: "first", Topic: "science"},
			{UserID: "u1", Title: "second", Topic: "politics", ArticleID: "a1"},
			{UserID: "u1", Title: "third", Topic: "science", ArticleID: "a1"},
			{UserID: "u2", Title: "other user", Topic: "science"},
		} {
			_, err := st.Create(ctx, n)
			require.NoError(t, err)
		}

		all, err := st.List(ctx, "u1", model.NoteFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "third", all[0].Title, "most recent first")
		assert.Equal(t, "first", all[2].Title)

		science, err := st.List(ctx, "u1", model.NoteFilter{Topic: "science"})
		require.NoError(t, err)
		assert.Len(t, science, 2)

		both, err := st.List(ctx, "u1", model.NoteFilter{Topic: "science", ArticleID: "a1"})
		require.NoError(t, err)
		require.Len(t, both, 1)
		assert.Equal(t, "third", both[0].Title)

		none, err := st.List(ctx, "nobody", model.NoteFilter{})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

func TestStore_Update(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		created, err := st.Create(ctx, model.Note{UserID: "u1", Title: "draft", Content: "body", Tags: []string{"a"}})
		require.NoError(t, err)

		title := "final"
		tags := []string{"b", "c"}
		public := true
		updated, err := st.Update(ctx, "u1", created.ID, Update{Title: &title, Tags: &tags, IsPublic: &public})
		require.NoError(t, err)
		assert.Equal(t, "final", updated.Title)
		assert.Equal(t, "body", updated.Content)
		assert.Equal(t, []string{"b", "c"}, updated.Tags)
		assert.True(t, updated.IsPublic)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

		got, err := st.Get(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", got.Title)
		assert.Equal(t, []string{"b", "c"}, got.Tags)

		empty := ""
		_, err = st.Update(ctx, "u1", created.ID, Update{Title: &empty, Content: &empty})
		assert.True(t, errors.Is(err, ErrInvalidNote))

		_, err = st.Update(ctx, "u2", created.ID, Update{Title: &title})
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestStore_Delete(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		created, err := st.Create(ctx, model.Note{UserID: "u1", Title: "to remove"})
		require.NoError(t, err)

		assert.True(t, errors.Is(st.Delete(ctx, "u2", created.ID), ErrNotFound))
		require.NoError(t, st.Delete(ctx, "u1", created.ID))
		assert.True(t, errors.Is(st.Delete(ctx, "u1", created.ID), ErrNotFound))

		_, err = st.Get(ctx, "u1", created.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestStore_Folders(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		_, err := st.CreateFolder(ctx, model.NoteFolder{UserID: "u1"})
		assert.True(t, errors.Is(err, ErrInvalidNote))

		folder, err := st.CreateFolder(ctx, model.NoteFolder{UserID: "u1", Name: "Elections", Description: "2024 coverage"})
		require.NoError(t, err)
		assert.NotEmpty(t, folder.ID)
		assert.Empty(t, folder.NoteIDs)

		n1, err := st.Create(ctx, model.Note{UserID: "u1", Title: "poll"})
		require.NoError(t, err)
		n2, err := st.Create(ctx, model.Note{UserID: "u1", Title: "debate"})
		require.NoError(t, err)
		foreign, err := st.Create(ctx, model.Note{UserID: "u2", Title: "not mine"})
		require.NoError(t, err)

		require.NoError(t, st.AddToFolder(ctx, "u1", folder.ID, n1.ID))
		require.NoError(t, st.AddToFolder(ctx, "u1", folder.ID, n2.ID))
		require.NoError(t, st.AddToFolder(ctx, "u1", folder.ID, n1.ID), "adding twice is a no-op")

		assert.True(t, errors.Is(st.AddToFolder(ctx, "u1", folder.ID, foreign.ID), ErrNotFound))
		assert.True(t, errors.Is(st.AddToFolder(ctx, "u2", folder.ID, foreign.ID), ErrNotFound))
		assert.True(t, errors.Is(st.AddToFolder(ctx, "u1", "missing", n1.ID), ErrNotFound))

		folders, err := st.ListFolders(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, folders, 1)
		assert.Equal(t, "Elections", folders[0].Name)
		assert.Equal(t, "2024 coverage", folders[0].Description)
		assert.Equal(t, []string{n1.ID, n2.ID}, folders[0].NoteIDs)

		require.NoError(t, st.Delete(ctx, "u1", n1.ID))
		folders, err = st.ListFolders(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{n2.ID}, folders[0].NoteIDs, "deleted notes leave their folders")

		others, err := st.ListFolders(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, others)
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	mem, err := New(ctx, model.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, mem)

	sq, err := New(ctx, model.StoreConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "n.db")})
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() }) //nolint:errcheck
	assert.IsType(t, &SQLiteStore{}, sq)

	_, err = sq.Create(ctx, model.Note{UserID: "u1", Title: "migrated"})
	assert.NoError(t, err)

	_, err = New(ctx, model.StoreConfig{Driver: "postgres"})
	assert.Error(t, err)
}

func TestSQLite_InMemory(t *testing.T) {
	st, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	created, err := st.Create(context.Background(), model.Note{UserID: "u1", Title: "ephemeral"})
	require.NoError(t, err)
	_, err = st.Get(context.Background(), "u1", created.ID)
	assert.NoError(t, err)
}

func TestSQLite_DeleteWhileAnotherConnectionIsBusy(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	note, err := st.Create(ctx, model.Note{UserID: "u1", Title: "pinned"})
	require.NoError(t, err)
	folder, err := st.CreateFolder(ctx, model.NoteFolder{UserID: "u1", Name: "Reading"})
	require.NoError(t, err)
	require.NoError(t, st.AddToFolder(ctx, "u1", folder.ID, note.ID))

	// a read transaction pins one pooled connection, so later calls open new ones
	held, err := st.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer held.Rollback() //nolint:errcheck
	var count int
	require.NoError(t, held.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count))
	assert.Equal(t, 1, count)

	conn, err := st.db.Conn(ctx)
	require.NoError(t, err)
	var foreignKeys, busyTimeout int
	require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&foreignKeys))
	require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&busyTimeout))
	require.NoError(t, conn.Close())
	assert.Equal(t, 1, foreignKeys)
	assert.Equal(t, 5000, busyTimeout)

	require.NoError(t, st.Delete(ctx, "u1", note.ID))

	folders, err := st.ListFolders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Empty(t, folders[0].NoteIDs)
}

func TestWithPragmas(t *testing.T) {
	assert.Equal(t,
		"notes.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)",
		withPragmas("notes.db"))
	assert.Equal(t,
		"file:notes.db?mode=rwc&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)",
		withPragmas("file:notes.db?mode=rwc"))
}
