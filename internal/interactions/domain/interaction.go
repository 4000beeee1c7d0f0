// Package domain holds the interaction record feeding the activity timeline.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeCall     Type = "call"
	TypeEmail    Type = "email"
	TypeMeeting  Type = "meeting"
	TypeNote     Type = "note"
	TypeWhatsApp Type = "whatsapp"
)

// Types lists every interaction type.
var Types = []Type{TypeCall, TypeEmail, TypeMeeting, TypeNote, TypeWhatsApp}

// Interaction is a logged touchpoint with a lead or on a deal.
type Interaction struct {
	ID              uuid.UUID  `json:"id"`
	LeadID          *uuid.UUID `json:"lead_id,omitempty"`
	DealID          *uuid.UUID `json:"deal_id,omitempty"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	Type            Type       `json:"type"`
	Subject         *string    `json:"subject,omitempty"`
	Content         *string    `json:"content,omitempty"`
	Outcome         *string    `json:"outcome,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
