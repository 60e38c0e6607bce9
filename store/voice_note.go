package store

import "time"

// NoteStatus is the processing state of a voice note transcript.
type NoteStatus string

const (
	NoteStatusPending    NoteStatus = "pending"
	NoteStatusProcessing NoteStatus = "processing"
	NoteStatusCompleted  NoteStatus = "completed"
	NoteStatusFailed     NoteStatus = "failed"
)

// VoiceNote represents one timestamped voice-note transcript.
// Notes are created by the external ingestion pipeline; this service only
// reads them. Text is nil until transcription completes.
type VoiceNote struct {
	ID              string
	OwnerID         int32
	Text            *string
	CreatedAt       time.Time
	DurationSeconds int32
	Status          NoteStatus
}

// HasText reports whether the note carries a non-empty transcript.
func (n *VoiceNote) HasText() bool {
	return n.Text != nil && *n.Text != ""
}

// FindVoiceNote specifies the conditions for listing voice notes.
type FindVoiceNote struct {
	ID            *string
	OwnerID       *int32
	Status        *NoteStatus
	CreatedAfter  *time.Time // inclusive
	CreatedBefore *time.Time // exclusive
	OnlyWithText  bool
	Limit         int
	OrderDesc     bool // default ascending by created time
}
