package slug

import (
	"regexp"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Hello, World!! ", "hello-world"},
		{"Billing FAQ", "billing-faq"},
		{"Reset   your\tpassword", "reset-your-password"},
		{"--Already--slugged--", "already-slugged"},
		{"What's new in v2.0?", "whats-new-in-v20"},
		{"snake_case stays", "snake_case-stays"},
		{"a - b", "a-b"},
		{"!!!", ""},
		{"", ""},
		{"Café crème", "caf-crme"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugify_IdempotentAndClean(t *testing.T) {
	clean := regexp.MustCompile(`^([a-z0-9_]+(-[a-z0-9_]+)*)?$`)
	inputs := []string{
		"  Hello, World!! ",
		"---",
		"Multi\n\nLine\r\nTitle",
		"UPPER lower MiXeD",
		"émoji 🚀 launch",
		"trailing hyphen -",
		"- leading hyphen",
		"tabs\tand  spaces",
		"under_score__ and -- dashes",
	}

	for _, in := range inputs {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent for %q: %q then %q", in, once, twice)
		}
		if !clean.MatchString(once) {
			t.Errorf("Slugify(%q) = %q contains disallowed characters or stray hyphens", in, once)
		}
	}
}

func TestTracker_FollowsTitleUntilManualEdit(t *testing.T) {
	tr := NewTracker("", "")

	if got := tr.SetTitle("Billing FAQ"); got != "billing-faq" {
		t.Errorf("Expected billing-faq, got %s", got)
	}
	if got := tr.SetTitle("Billing FAQ 2024"); got != "billing-faq-2024" {
		t.Errorf("Expected billing-faq-2024, got %s", got)
	}

	tr.SetSlug("billing")
	if !tr.Manual() {
		t.Fatal("Tracker should be manual after SetSlug")
	}
	if got := tr.SetTitle("Completely Different"); got != "billing" {
		t.Errorf("Manual slug should stick, got %s", got)
	}
}

func TestNewTracker_DetectsManualSlug(t *testing.T) {
	auto := NewTracker("Billing FAQ", "billing-faq")
	if auto.Manual() {
		t.Error("Slug derived from title should not be manual")
	}
	if got := auto.SetTitle("Refunds"); got != "refunds" {
		t.Errorf("Expected refunds, got %s", got)
	}

	edited := NewTracker("Billing FAQ", "payments")
	if !edited.Manual() {
		t.Error("Slug differing from title should be manual")
	}
	if got := edited.SetTitle("Refunds"); got != "payments" {
		t.Errorf("Expected payments, got %s", got)
	}
}
