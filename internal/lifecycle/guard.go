// Package lifecycle holds the article status transition table. It is the only
// place that decides which status changes are allowed and what they do to
// the version pointers.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/help-workstation-api/internal/models"
)

// Event is a requested status change
type Event string

const (
	EventPublish Event = "publish"
	EventArchive Event = "archive"
	EventRestore Event = "restore"
)

var (
	// ErrInvalidTransition is returned for an event the current status does not accept
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNoCurrentVersion is returned when publishing an article that was never saved
	ErrNoCurrentVersion = errors.New("article has no current version")
)

type transition struct {
	from  models.ArticleStatus
	event Event
}

// transitions maps (status, event) to the resulting status. Pairs that are
// missing are rejected with ErrInvalidTransition.
var transitions = map[transition]models.ArticleStatus{
	{models.StatusDraft, EventPublish}:     models.StatusPublished,
	{models.StatusPublished, EventPublish}: models.StatusPublished,
	{models.StatusDraft, EventArchive}:     models.StatusArchived,
	{models.StatusPublished, EventArchive}: models.StatusArchived,
	{models.StatusArchived, EventArchive}:  models.StatusArchived,
	{models.StatusArchived, EventRestore}:  models.StatusDraft,
	{models.StatusDraft, EventRestore}:     models.StatusDraft,
}

// Next returns the status an article in from ends up in after event.
func Next(from models.ArticleStatus, event Event) (models.ArticleStatus, error) {
	to, ok := transitions[transition{from, event}]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a %s article", ErrInvalidTransition, event, from)
	}
	return to, nil
}

// Apply performs event on a in place and reports whether anything changed.
// Publishing points the published version at the current version (stamping
// published_at on first publish); archiving and restoring take the article
// off the public site by clearing the published pointer. The current version
// pointer is never touched. Repeating an event that already holds is a no-op.
func Apply(a *models.Article, event Event, now time.Time) (bool, error) {
	if event == EventPublish && a.CurrentVersionID == nil {
		return false, ErrNoCurrentVersion
	}

	to, err := Next(a.Status, event)
	if err != nil {
		return false, err
	}

	switch event {
	case EventPublish:
		if a.Status == models.StatusPublished && sameID(a.PublishedVersionID, a.CurrentVersionID) {
			return false, nil
		}
		if a.Status != models.StatusPublished {
			published := now
			a.PublishedAt = &published
		}
		current := *a.CurrentVersionID
		a.PublishedVersionID = &current
	default:
		if a.Status == to && a.PublishedVersionID == nil {
			return false, nil
		}
		a.PublishedVersionID = nil
	}

	a.Status = to
	a.UpdatedAt = now
	return true, nil
}

// CheckInvariant verifies that an article is published exactly when it has a
// published version.
func CheckInvariant(a *models.Article) error {
	published := a.Status == models.StatusPublished
	if published != (a.PublishedVersionID != nil) {
		return fmt.Errorf("article %s: status %s with published_version_id set=%t",
			a.ID, a.Status, a.PublishedVersionID != nil)
	}
	return nil
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
