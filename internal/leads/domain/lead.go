// Package domain holds the lead record and its enumerations.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BusinessSize classifies a prospect by headcount.
type BusinessSize string

const (
	BusinessSizeMicro  BusinessSize = "micro"  // 1-5 employees
	BusinessSizeSmall  BusinessSize = "small"  // 6-20 employees
	BusinessSizeMedium BusinessSize = "medium" // 21-50 employees
)

// ParseBusinessSize returns the size for a known label.
func ParseBusinessSize(raw string) (BusinessSize, bool) {
	switch BusinessSize(strings.ToLower(strings.TrimSpace(raw))) {
	case BusinessSizeMicro:
		return BusinessSizeMicro, true
	case BusinessSizeSmall:
		return BusinessSizeSmall, true
	case BusinessSizeMedium:
		return BusinessSizeMedium, true
	}
	return "", false
}

// LeadSource is the acquisition channel of a lead.
type LeadSource string

const (
	SourceReferral     LeadSource = "referral"
	SourceWebsite      LeadSource = "website"
	SourceLinkedIn     LeadSource = "linkedin"
	SourceEvent        LeadSource = "event"
	SourceGoogleAds    LeadSource = "google_ads"
	SourceFacebook     LeadSource = "facebook"
	SourceColdOutreach LeadSource = "cold_outreach"
	SourceOther        LeadSource = "other"
)

// LeadSources lists every recognised channel.
var LeadSources = []LeadSource{
	SourceReferral,
	SourceWebsite,
	SourceLinkedIn,
	SourceEvent,
	SourceGoogleAds,
	SourceFacebook,
	SourceColdOutreach,
	SourceOther,
}

// ParseLeadSource returns the channel for a known label.
func ParseLeadSource(raw string) (LeadSource, bool) {
	normalized := LeadSource(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range LeadSources {
		if s == normalized {
			return s, true
		}
	}
	return "", false
}

// LeadStatus is the qualification state of a lead.
type LeadStatus string

const (
	StatusNew         LeadStatus = "new"
	StatusContacted   LeadStatus = "contacted"
	StatusQualified   LeadStatus = "qualified"
	StatusProposal    LeadStatus = "proposal"
	StatusNegotiation LeadStatus = "negotiation"
	StatusWon         LeadStatus = "won"
	StatusLost        LeadStatus = "lost"
)

// LeadStatuses lists every status in funnel order.
var LeadStatuses = []LeadStatus{
	StatusNew,
	StatusContacted,
	StatusQualified,
	StatusProposal,
	StatusNegotiation,
	StatusWon,
	StatusLost,
}

// ParseLeadStatus returns the status for a known label.
func ParseLeadStatus(raw string) (LeadStatus, bool) {
	normalized := LeadStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range LeadStatuses {
		if s == normalized {
			return s, true
		}
	}
	return "", false
}

// Lead is a prospective customer record. Optional attributes are nil when absent.
type Lead struct {
	ID                   uuid.UUID     `json:"id"`
	CompanyName          string        `json:"company_name"`
	ContactName          string        `json:"contact_name"`
	Email                *string       `json:"email,omitempty"`
	Phone                *string       `json:"phone,omitempty"`
	BusinessSize         *BusinessSize `json:"business_size,omitempty"`
	EstimatedBudget      *float64      `json:"estimated_budget,omitempty"`
	Source               *LeadSource   `json:"source,omitempty"`
	SourceDetails        *string       `json:"source_details,omitempty"`
	InterestLevel        *int          `json:"interest_level,omitempty"`
	Industry             *string       `json:"industry,omitempty"`
	CurrentPainPoints    *string       `json:"current_pain_points,omitempty"`
	AIReadinessScore     *int          `json:"ai_readiness_score,omitempty"`
	LeadScore            *float64      `json:"lead_score,omitempty"`
	LeadScoreExplanation *string       `json:"lead_score_explanation,omitempty"`
	Status               LeadStatus    `json:"status"`
	Notes                *string       `json:"notes,omitempty"`
	AssignedTo           *uuid.UUID    `json:"assigned_to,omitempty"`
	LastContactDate      *time.Time    `json:"last_contact_date,omitempty"`
	NextFollowUp         *time.Time    `json:"next_follow_up,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// Stats counts leads by status and source.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	BySource map[string]int `json:"by_source"`
}

// ComputeStats tallies a lead collection. Leads without a source count as "unknown".
func ComputeStats(leads []Lead) Stats {
	stats := Stats{
		Total:    len(leads),
		ByStatus: map[string]int{},
		BySource: map[string]int{},
	}
	for _, l := range leads {
		stats.ByStatus[string(l.Status)]++
		source := "unknown"
		if l.Source != nil && *l.Source != "" {
			source = string(*l.Source)
		}
		stats.BySource[source]++
	}
	return stats
}

// Won returns the number of leads in the won status.
func (s Stats) Won() int {
	return s.ByStatus[string(StatusWon)]
}
