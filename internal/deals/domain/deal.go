// Package domain holds deal and work-log records plus the rules that derive
// their computed fields.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stage is the pipeline phase of a deal.
type Stage string

const (
	StageDiscovery   Stage = "discovery"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageContract    Stage = "contract"
	StageClosedWon   Stage = "closed_won"
	StageClosedLost  Stage = "closed_lost"
)

// Stages lists the fixed pipeline in board order.
var Stages = []Stage{
	StageDiscovery,
	StageProposal,
	StageNegotiation,
	StageContract,
	StageClosedWon,
	StageClosedLost,
}

var stageProbabilities = map[Stage]int{
	StageDiscovery:   10,
	StageProposal:    30,
	StageNegotiation: 50,
	StageContract:    80,
	StageClosedWon:   100,
	StageClosedLost:  0,
}

// ParseStage returns the stage for a known label.
func ParseStage(raw string) (Stage, bool) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := stageProbabilities[s]; ok {
		return s, true
	}
	return "", false
}

// Valid reports whether s is one of the fixed stages.
func (s Stage) Valid() bool {
	_, ok := stageProbabilities[s]
	return ok
}

// IsClosed reports whether s ends the deal.
func (s Stage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// DefaultProbability returns the close probability implied by a stage.
// Unknown stages get 0.
func DefaultProbability(s Stage) int {
	return stageProbabilities[s]
}

// Deal is a sales opportunity.
type Deal struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Value             float64    `json:"value"`
	LeadID            *uuid.UUID `json:"lead_id,omitempty"`
	AssignedTo        *uuid.UUID `json:"assigned_to,omitempty"`
	Description       *string    `json:"description,omitempty"`
	Stage             Stage      `json:"stage"`
	Probability       int        `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	ActualCloseDate   *time.Time `json:"actual_close_date,omitempty"`
	EstimatedHours    *float64   `json:"estimated_hours,omitempty"`
	ActualHours       float64    `json:"actual_hours"`
	ServiceType       *string    `json:"service_type,omitempty"`
	ClosedAt          *time.Time `json:"closed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsActive reports whether the deal is still open. Deals with an
// unrecognised stage count as open.
func (d Deal) IsActive() bool {
	return !d.Stage.IsClosed()
}

// StageChange is the derived part of an update that moves a deal's stage.
type StageChange struct {
	Stage           Stage
	Probability     int
	ClosedAt        *time.Time
	ActualCloseDate *time.Time
}

// ApplyStageChange derives probability and close stamps for a move to stage.
// An explicit probability in the same update wins over the stage default.
// Entering either closed stage stamps ClosedAt; closed_won also stamps the
// actual close date at day precision.
func ApplyStageChange(stage Stage, explicitProbability *int, now time.Time) StageChange {
	change := StageChange{
		Stage:       stage,
		Probability: DefaultProbability(stage),
	}
	if explicitProbability != nil {
		change.Probability = *explicitProbability
	}

	if stage.IsClosed() {
		closedAt := now.UTC()
		change.ClosedAt = &closedAt
	}
	if stage == StageClosedWon {
		day := DateOnly(now)
		change.ActualCloseDate = &day
	}
	return change
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
