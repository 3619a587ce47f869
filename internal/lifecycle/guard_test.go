package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/help-workstation-api/internal/models"
)

func strPtr(s string) *string { return &s }

func newArticle(status models.ArticleStatus, current, published *string) *models.Article {
	return &models.Article{
		ID:                 "article-1",
		Status:             status,
		CurrentVersionID:   current,
		PublishedVersionID: published,
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		from    models.ArticleStatus
		event   Event
		want    models.ArticleStatus
		wantErr bool
	}{
		{models.StatusDraft, EventPublish, models.StatusPublished, false},
		{models.StatusPublished, EventPublish, models.StatusPublished, false},
		{models.StatusDraft, EventArchive, models.StatusArchived, false},
		{models.StatusPublished, EventArchive, models.StatusArchived, false},
		{models.StatusArchived, EventRestore, models.StatusDraft, false},
		{models.StatusArchived, EventArchive, models.StatusArchived, false},
		{models.StatusDraft, EventRestore, models.StatusDraft, false},
		{models.StatusArchived, EventPublish, "", true},
		{models.StatusPublished, EventRestore, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			got, err := Next(tt.from, tt.event)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("Expected ErrInvalidTransition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestApply_PublishFromDraft(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := newArticle(models.StatusDraft, strPtr("v1"), nil)

	changed, err := Apply(a, EventPublish, now)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !changed {
		t.Error("Publish from draft should change the article")
	}
	if a.Status != models.StatusPublished {
		t.Errorf("Expected published, got %s", a.Status)
	}
	if a.PublishedVersionID == nil || *a.PublishedVersionID != "v1" {
		t.Errorf("Expected published version v1, got %v", a.PublishedVersionID)
	}
	if a.PublishedAt == nil || !a.PublishedAt.Equal(now) {
		t.Errorf("Expected published_at %v, got %v", now, a.PublishedAt)
	}
	if a.PublishedVersionID == a.CurrentVersionID {
		t.Error("Published pointer must be a copy, not an alias of the current pointer")
	}
}

func TestApply_RepublishAdvancesPointerOnly(t *testing.T) {
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := newArticle(models.StatusPublished, strPtr("v2"), strPtr("v1"))
	a.PublishedAt = &first

	changed, err := Apply(a, EventPublish, first.Add(time.Hour))
	if err != nil || !changed {
		t.Fatalf("Expected change, got changed=%v err=%v", changed, err)
	}
	if *a.PublishedVersionID != "v2" {
		t.Errorf("Expected published version v2, got %s", *a.PublishedVersionID)
	}
	if !a.PublishedAt.Equal(first) {
		t.Errorf("Re-publish should keep published_at, got %v", a.PublishedAt)
	}

	changed, err = Apply(a, EventPublish, first.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if changed {
		t.Error("Publishing an already published current version should be a no-op")
	}
}

func TestApply_PublishWithoutVersion(t *testing.T) {
	a := newArticle(models.StatusDraft, nil, nil)

	changed, err := Apply(a, EventPublish, time.Now())
	if !errors.Is(err, ErrNoCurrentVersion) {
		t.Fatalf("Expected ErrNoCurrentVersion, got %v", err)
	}
	if changed || a.Status != models.StatusDraft {
		t.Error("Failed publish must leave the article untouched")
	}
}

func TestApply_ArchiveRestoreRoundTrip(t *testing.T) {
	a := newArticle(models.StatusPublished, strPtr("v3"), strPtr("v3"))

	if _, err := Apply(a, EventArchive, time.Now()); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if a.Status != models.StatusArchived || a.PublishedVersionID != nil {
		t.Errorf("Archive should hide the article, got status=%s published=%v", a.Status, a.PublishedVersionID)
	}

	changed, err := Apply(a, EventArchive, time.Now())
	if err != nil || changed {
		t.Errorf("Second archive should be a no-op, got changed=%v err=%v", changed, err)
	}

	if _, err := Apply(a, EventRestore, time.Now()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if a.Status != models.StatusDraft {
		t.Errorf("Expected draft after restore, got %s", a.Status)
	}
	if a.CurrentVersionID == nil || *a.CurrentVersionID != "v3" {
		t.Errorf("Current version must survive archive/restore, got %v", a.CurrentVersionID)
	}
}

func TestApply_InvalidTransitionLeavesArticle(t *testing.T) {
	a := newArticle(models.StatusArchived, strPtr("v1"), nil)

	_, err := Apply(a, EventPublish, time.Now())
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}
	if a.Status != models.StatusArchived {
		t.Errorf("Status changed on rejected transition: %s", a.Status)
	}
}

func TestApply_InvariantHoldsAfterEveryTransition(t *testing.T) {
	statuses := []struct {
		status    models.ArticleStatus
		published *string
	}{
		{models.StatusDraft, nil},
		{models.StatusPublished, strPtr("v1")},
		{models.StatusArchived, nil},
	}
	events := []Event{EventPublish, EventArchive, EventRestore}

	for _, s := range statuses {
		for _, e := range events {
			a := newArticle(s.status, strPtr("v2"), s.published)
			if _, err := Apply(a, e, time.Now()); err != nil && !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("%s/%s: unexpected error %v", s.status, e, err)
			}
			if err := CheckInvariant(a); err != nil {
				t.Errorf("%s/%s: %v", s.status, e, err)
			}
		}
	}
}
