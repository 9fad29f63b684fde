// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// MaxMemoTextLength is the longest memo text the store accepts, in characters.
const MaxMemoTextLength = 200

// Memo is a single persisted note. ID and CreatedAt are assigned by the store
// on insert and never change afterwards; only Text is mutable.
type Memo struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMemo builds an unsaved memo carrying only its text.
func NewMemo(text string) Memo {
	return Memo{Text: text}
}

// WithText returns a copy of m with Text replaced. Identity fields are kept.
func (m Memo) WithText(text string) Memo {
	m.Text = text
	return m
}

// IsPersisted reports whether the store has assigned an id.
func (m Memo) IsPersisted() bool { return m.ID > 0 }
