package model

import "time"

// Note is a user note, optionally attached to an article
type Note struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Topic        string    `json:"topic"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ArticleID    string    `json:"articleId,omitempty"`
	ArticleTitle string    `json:"articleTitle,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	IsPublic     bool      `json:"isPublic,omitempty"`
}

// NoteFolder groups notes for a user
type NoteFolder struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	NoteIDs     []string  `json:"noteIds"`
}

// NoteFilter narrows List results. Empty fields match everything.
type NoteFilter struct {
	Topic     string
	ArticleID string
}
