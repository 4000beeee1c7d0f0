// Package domain holds the expense record.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category splits expenses into fixed overhead and variable spend.
type Category string

const (
	CategoryFixed    Category = "fixed"
	CategoryVariable Category = "variable"
)

// DefaultType labels expenses recorded without a type.
const DefaultType = "other"

// ParseCategory returns the category for a known label.
func ParseCategory(raw string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryFixed:
		return CategoryFixed, true
	case CategoryVariable:
		return CategoryVariable, true
	}
	return "", false
}

// Expense is money spent on a given day.
type Expense struct {
	ID                 uuid.UUID  `json:"id"`
	Amount             float64    `json:"amount"`
	Date               time.Time  `json:"date"`
	Category           Category   `json:"category"`
	Type               string     `json:"type"`
	UserID             *uuid.UUID `json:"user_id,omitempty"`
	Description        *string    `json:"description,omitempty"`
	IsRecurring        bool       `json:"is_recurring"`
	RecurringFrequency *string    `json:"recurring_frequency,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// TypeLabel returns the expense type, or DefaultType when blank.
func (e Expense) TypeLabel() string {
	t := strings.TrimSpace(e.Type)
	if t == "" {
		return DefaultType
	}
	return t
}
