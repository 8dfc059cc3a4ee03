package model

import "time"

// MaxNoteLength bounds note content, counted in runes.
const MaxNoteLength = 1000

// Note is a timestamped remark attached to a candidate.
type Note struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	CandidateID string    `json:"candidateId"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NoteInput is the validated payload for creating or editing a note.
type NoteInput struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
