package notes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/ppiankov/newsmania/internal/model"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	notes   map[string]model.Note
	folders map[string]model.NoteFolder
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		notes:   make(map[string]model.Note),
		folders: make(map[string]model.NoteFolder),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Migrate is a no-op; there is no schema.
func (m *MemoryStore) Migrate(context.Context) error {
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

// Create validates and stores a new note, assigning its ID and timestamps.
func (m *MemoryStore) Create(_ context.Context, note model.Note) (*model.Note, error) {
	if err := validateNote(note); err != nil {
		return nil, err
	}
	if note.Topic == "" {
		note.Topic = defaultTopic
	}
	now := m.now()
	note.ID = uuid.New().String()
	note.CreatedAt = now
	note.UpdatedAt = now
	note.Tags = append([]string(nil), note.Tags...)

	m.mu.Lock()
	m.notes[note.ID] = note
	m.mu.Unlock()

	return &note, nil
}

// Get returns a copy of the user's note, or ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, userID, id string) (*model.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	note, ok := m.notes[id]
	if !ok || note.UserID != userID {
		return nil, eris.Wrapf(ErrNotFound, "note %s", id)
	}
	return &note, nil
}

// List returns the user's notes, most recently updated first.
func (m *MemoryStore) List(_ context.Context, userID string, filter model.NoteFilter) ([]model.Note, error) {
	m.mu.RLock()
	out := make([]model.Note, 0)
	for _, note := range m.notes {
		if note.UserID == userID && matches(note, filter) {
			out = append(out, note)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Update applies the non-nil fields of update and bumps UpdatedAt.
func (m *MemoryStore) Update(_ context.Context, userID, id string, update Update) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	note, ok := m.notes[id]
	if !ok || note.UserID != userID {
		return nil, eris.Wrapf(ErrNotFound, "note %s", id)
	}
	updated, err := apply(note, update)
	if err != nil {
		return nil, err
	}
	updated.UpdatedAt = m.now()
	m.notes[id] = updated
	return &updated, nil
}

// Delete removes the note and drops it from every folder.
func (m *MemoryStore) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	note, ok := m.notes[id]
	if !ok || note.UserID != userID {
		return eris.Wrapf(ErrNotFound, "note %s", id)
	}
	delete(m.notes, id)

	for fid, folder := range m.folders {
		if folder.UserID == userID {
			folder.NoteIDs = without(folder.NoteIDs, id)
			m.folders[fid] = folder
		}
	}
	return nil
}

// CreateFolder validates and stores a new, empty folder.
func (m *MemoryStore) CreateFolder(_ context.Context, folder model.NoteFolder) (*model.NoteFolder, error) {
	if err := validateFolder(folder); err != nil {
		return nil, err
	}
	now := m.now()
	folder.ID = uuid.New().String()
	folder.CreatedAt = now
	folder.UpdatedAt = now
	folder.NoteIDs = []string{}

	m.mu.Lock()
	m.folders[folder.ID] = folder
	m.mu.Unlock()

	return &folder, nil
}

// ListFolders returns the user's folders sorted by name.
func (m *MemoryStore) ListFolders(_ context.Context, userID string) ([]model.NoteFolder, error) {
	m.mu.RLock()
	out := make([]model.NoteFolder, 0)
	for _, folder := range m.folders {
		if folder.UserID == userID {
			folder.NoteIDs = append([]string{}, folder.NoteIDs...)
			out = append(out, folder)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AddToFolder is idempotent: adding a note twice keeps a single entry.
func (m *MemoryStore) AddToFolder(_ context.Context, userID, folderID, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	folder, ok := m.folders[folderID]
	if !ok || folder.UserID != userID {
		return eris.Wrapf(ErrNotFound, "folder %s", folderID)
	}
	note, ok := m.notes[noteID]
	if !ok || note.UserID != userID {
		return eris.Wrapf(ErrNotFound, "note %s", noteID)
	}

	for _, id := range folder.NoteIDs {
		if id == noteID {
			return nil
		}
	}
	folder.NoteIDs = append(folder.NoteIDs, noteID)
	folder.UpdatedAt = m.now()
	m.folders[folderID] = folder
	return nil
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
