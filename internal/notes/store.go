package notes

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ppiankov/newsmania/internal/model"
)

const defaultTopic = "general"

var (
	// ErrNotFound is returned when a note or folder does not exist for the user.
	ErrNotFound = eris.New("notes: not found")
	// ErrInvalidNote is returned when a note fails validation.
	ErrInvalidNote = eris.New("notes: invalid note")
)

// Update holds a partial note update. Nil fields are left unchanged.
type Update struct {
	Title    *string   `json:"title,omitempty"`
	Content  *string   `json:"content,omitempty"`
	Topic    *string   `json:"topic,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	IsPublic *bool     `json:"isPublic,omitempty"`
}

// Store persists user notes and folders. Every lookup is scoped to a user:
// another user's note is reported as ErrNotFound.
type Store interface {
	// Notes
	Create(ctx context.Context, note model.Note) (*model.Note, error)
	Get(ctx context.Context, userID, id string) (*model.Note, error)
	List(ctx context.Context, userID string, filter model.NoteFilter) ([]model.Note, error)
	Update(ctx context.Context, userID, id string, update Update) (*model.Note, error)
	Delete(ctx context.Context, userID, id string) error

	// Folders
	CreateFolder(ctx context.Context, folder model.NoteFolder) (*model.NoteFolder, error)
	ListFolders(ctx context.Context, userID string) ([]model.NoteFolder, error)
	AddToFolder(ctx context.Context, userID, folderID, noteID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New opens the store selected by cfg.Driver and migrates it.
func New(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	var st Store
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		st = NewMemory()
	case "sqlite":
		s, err := NewSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		st = s
	default:
		return nil, eris.Errorf("notes: unknown store driver %q", cfg.Driver)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func validateNote(note model.Note) error {
	if strings.TrimSpace(note.UserID) == "" {
		return eris.Wrap(ErrInvalidNote, "user ID is required")
	}
	if strings.TrimSpace(note.Title) == "" && strings.TrimSpace(note.Content) == "" {
		return eris.Wrap(ErrInvalidNote, "title or content is required")
	}
	return nil
}

func validateFolder(folder model.NoteFolder) error {
	if strings.TrimSpace(folder.UserID) == "" {
		return eris.Wrap(ErrInvalidNote, "user ID is required")
	}
	if strings.TrimSpace(folder.Name) == "" {
		return eris.Wrap(ErrInvalidNote, "folder name is required")
	}
	return nil
}

// apply merges an update into a note and validates the result
func apply(note model.Note, update Update) (model.Note, error) {
	if update.Title != nil {
		note.Title = *update.Title
	}
	if update.Content != nil {
		note.Content = *update.Content
	}
	if update.Topic != nil {
		note.Topic = *update.Topic
	}
	if update.Tags != nil {
		note.Tags = append([]string(nil), (*update.Tags)...)
	}
	if update.IsPublic != nil {
		note.IsPublic = *update.IsPublic
	}
	if note.Topic == "" {
		note.Topic = defaultTopic
	}
	return note, validateNote(note)
}

func matches(note model.Note, filter model.NoteFilter) bool {
	if filter.Topic != "" && note.Topic != filter.Topic {
		return false
	}
	if filter.ArticleID != "" && note.ArticleID != filter.ArticleID {
		return false
	}
	return true
}
