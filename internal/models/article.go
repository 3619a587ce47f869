package models

import (
	"time"
)

// ArticleStatus is the lifecycle state of an article
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
	StatusArchived  ArticleStatus = "archived"
)

// ArticleStatuses lists every status in display order
var ArticleStatuses = []ArticleStatus{StatusDraft, StatusPublished, StatusArchived}

// Valid reports whether s is a known article status
func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Visibility controls who can read an article
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityInternal Visibility = "internal"
)

// ArticleContent is the editable part of an article, captured by every version
type ArticleContent struct {
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Summary    string     `json:"summary"`
	Body       string     `json:"body"`
	CategoryID *string    `json:"category_id"`
	Visibility Visibility `json:"visibility"`
	Tags       []string   `json:"tags"`
}

// Article represents a help-center article. Display fields mirror the
// current version; the lifecycle fields point into article_versions.
type Article struct {
	ID                 string        `json:"id" db:"id"`
	Slug               string        `json:"slug" db:"slug"`
	Title              string        `json:"title" db:"title"`
	Summary            string        `json:"summary" db:"summary"`
	Body               string        `json:"body" db:"body"`
	CategoryID         *string       `json:"category_id" db:"category_id"`
	Visibility         Visibility    `json:"visibility" db:"visibility"`
	Tags               []string      `json:"tags" db:"tags"` // Stored as JSONB
	Status             ArticleStatus `json:"status" db:"status"`
	CurrentVersionID   *string       `json:"current_version_id" db:"current_version_id"`
	PublishedVersionID *string       `json:"published_version_id" db:"published_version_id"`
	PublishedAt        *time.Time    `json:"published_at,omitempty" db:"published_at"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// ApplyContent copies the display fields of c onto the article
func (a *Article) ApplyContent(c ArticleContent) {
	a.Slug = c.Slug
	a.Title = c.Title
	a.Summary = c.Summary
	a.Body = c.Body
	a.CategoryID = c.CategoryID
	a.Visibility = c.Visibility
	a.Tags = c.Tags
}

// Content returns the editable fields of the article
func (a *Article) Content() ArticleContent {
	return ArticleContent{
		Title:      a.Title,
		Slug:       a.Slug,
		Summary:    a.Summary,
		Body:       a.Body,
		CategoryID: a.CategoryID,
		Visibility: a.Visibility,
		Tags:       a.Tags,
	}
}

// Clone returns a deep copy of the article
func (a *Article) Clone() *Article {
	c := *a
	c.CategoryID = cloneString(a.CategoryID)
	c.CurrentVersionID = cloneString(a.CurrentVersionID)
	c.PublishedVersionID = cloneString(a.PublishedVersionID)
	if a.PublishedAt != nil {
		t := *a.PublishedAt
		c.PublishedAt = &t
	}
	if a.Tags != nil {
		c.Tags = append([]string(nil), a.Tags...)
	}
	return &c
}

// ArticleVersion is an immutable snapshot of article content
type ArticleVersion struct {
	ID         string     `json:"id" db:"id"`
	ArticleID  string     `json:"article_id" db:"article_id"`
	Title      string     `json:"title" db:"title"`
	Summary    string     `json:"summary" db:"summary"`
	Body       string     `json:"body" db:"body"`
	CategoryID *string    `json:"category_id" db:"category_id"`
	Visibility Visibility `json:"visibility" db:"visibility"`
	Tags       []string   `json:"tags" db:"tags"`
	CreatedBy  string     `json:"created_by" db:"created_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// Clone returns a deep copy of the version
func (v *ArticleVersion) Clone() *ArticleVersion {
	c := *v
	c.CategoryID = cloneString(v.CategoryID)
	if v.Tags != nil {
		c.Tags = append([]string(nil), v.Tags...)
	}
	return &c
}

// ArticleDetail is an article together with the snapshots it points at
type ArticleDetail struct {
	Article          *Article        `json:"article"`
	CurrentVersion   *ArticleVersion `json:"current_version,omitempty"`
	PublishedVersion *ArticleVersion `json:"published_version,omitempty"`
}

// ArticlePage is one page of an article listing
type ArticlePage struct {
	Articles []*Article `json:"articles"`
	Total    int        `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// DeleteConfirmation is issued by a delete request and must be presented to
// carry the delete out
type DeleteConfirmation struct {
	ArticleID string    `json:"article_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
