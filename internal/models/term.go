package models

import (
	"time"
)

// TermKind identifies a taxonomy
type TermKind string

const (
	KindCategory TermKind = "category"
	KindAudience TermKind = "audience"
	KindTag      TermKind = "tag"
)

// Valid reports whether k is a known taxonomy
func (k TermKind) Valid() bool {
	switch k {
	case KindCategory, KindAudience, KindTag:
		return true
	}
	return false
}

// Term is an entry of a taxonomy (category, audience or tag) with a manual
// sort position
type Term struct {
	ID          string    `json:"id" db:"id"`
	Kind        TermKind  `json:"kind" db:"kind"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	Position    int       `json:"position" db:"position"`
	AudienceIDs []string  `json:"audience_ids,omitempty" db:"-"` // categories only
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TermInput is the editable part of a term
type TermInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}
