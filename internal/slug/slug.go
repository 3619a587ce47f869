// Package slug derives URL-safe identifiers from display titles.
package slug

import (
	"regexp"
	"strings"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-+`)
)

// Slugify lower-cases text, drops everything but word characters, whitespace
// and hyphens, turns whitespace runs into a single hyphen, collapses repeated
// hyphens and trims hyphens from both ends.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = nonWord.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Tracker keeps a slug in step with a title until the slug is edited by hand.
// After the first manual edit the slug is never recomputed again.
type Tracker struct {
	slug   string
	manual bool
}

// NewTracker starts tracking from an existing title/slug pair. A non-empty
// slug that differs from Slugify(title) was edited by hand.
func NewTracker(title, slug string) *Tracker {
	return &Tracker{
		slug:   slug,
		manual: slug != "" && slug != Slugify(title),
	}
}

// SetTitle records a title change and returns the resulting slug.
func (t *Tracker) SetTitle(title string) string {
	if !t.manual {
		t.slug = Slugify(title)
	}
	return t.slug
}

// SetSlug records a manual slug edit.
func (t *Tracker) SetSlug(slug string) {
	t.slug = slug
	t.manual = true
}

// Slug returns the current slug.
func (t *Tracker) Slug() string { return t.slug }

// Manual reports whether the slug has been edited by hand.
func (t *Tracker) Manual() bool { return t.manual }
