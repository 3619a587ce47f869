package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/help-workstation-api/internal/models"
)

func strPtr(s string) *string { return &s }

func fieldsOf(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateArticleContent(t *testing.T) {
	valid := func() models.ArticleContent {
		return models.ArticleContent{
			Title:      "Billing FAQ",
			Slug:       "billing-faq",
			Body:       "How invoices work.",
			Visibility: models.VisibilityPublic,
			Tags:       []string{"billing"},
		}
	}

	tests := []struct {
		name       string
		mutate     func(c *models.ArticleContent)
		wantFields []string
	}{
		{
			name:   "valid content",
			mutate: func(c *models.ArticleContent) {},
		},
		{
			name:       "missing title",
			mutate:     func(c *models.ArticleContent) { c.Title = "" },
			wantFields: []string{"title"},
		},
		{
			name:       "missing slug",
			mutate:     func(c *models.ArticleContent) { c.Slug = "" },
			wantFields: []string{"slug"},
		},
		{
			name:       "slug not kebab-case",
			mutate:     func(c *models.ArticleContent) { c.Slug = "Billing FAQ" },
			wantFields: []string{"slug"},
		},
		{
			name:       "missing body",
			mutate:     func(c *models.ArticleContent) { c.Body = "" },
			wantFields: []string{"body"},
		},
		{
			name:       "unknown visibility",
			mutate:     func(c *models.ArticleContent) { c.Visibility = "secret" },
			wantFields: []string{"visibility"},
		},
		{
			name:       "category id is not a uuid",
			mutate:     func(c *models.ArticleContent) { c.CategoryID = strPtr("billing") },
			wantFields: []string{"category_id"},
		},
		{
			name:       "blank tag",
			mutate:     func(c *models.ArticleContent) { c.Tags = []string{"ok", ""} },
			wantFields: []string{"tags"},
		},
		{
			name:       "title too long",
			mutate:     func(c *models.ArticleContent) { c.Title = strings.Repeat("x", maxTitleLength+1) },
			wantFields: []string{"title"},
		},
		{
			name: "all required fields missing",
			mutate: func(c *models.ArticleContent) {
				c.Title, c.Slug, c.Body = "", "", ""
			},
			wantFields: []string{"body", "slug", "title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			errs := ValidateArticleContent(&c)
			got := fieldsOf(errs)
			if strings.Join(got, ",") != strings.Join(tt.wantFields, ",") {
				t.Errorf("ValidateArticleContent() fields = %v, want %v (errors: %v)", got, tt.wantFields, errs)
			}
		})
	}
}

func TestValidateArticleContent_NilCategoryAllowed(t *testing.T) {
	c := models.ArticleContent{Title: "t", Slug: "t", Body: "b"}
	if errs := ValidateArticleContent(&c); len(errs) != 0 {
		t.Errorf("Expected no errors, got %v", errs)
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug string
		ok   bool
	}{
		{"shipping", true},
		{"refund-policy-2026", true},
		{"", false},
		{"Refund Policy", false},
		{"-leading", false},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			errs := ValidateSlug(tt.slug)
			if tt.ok && len(errs) != 0 {
				t.Errorf("Expected %q to be valid, got %v", tt.slug, errs)
			}
			if !tt.ok && (len(errs) != 1 || errs[0].Field != "slug") {
				t.Errorf("Expected one slug error for %q, got %v", tt.slug, errs)
			}
		})
	}
}

func TestValidateTermInput(t *testing.T) {
	if errs := ValidateTermInput(&models.TermInput{Name: "Billing", Slug: "billing"}); len(errs) != 0 {
		t.Errorf("Expected valid term, got %v", errs)
	}
	errs := ValidateTermInput(&models.TermInput{Slug: "Not A Slug"})
	if got := strings.Join(fieldsOf(errs), ","); got != "name,slug" {
		t.Errorf("Expected name,slug errors, got %s", got)
	}
}

func TestValidateMessageInput(t *testing.T) {
	tests := []struct {
		name       string
		in         models.MessageInput
		wantFields string
	}{
		{name: "valid", in: models.MessageInput{Email: "ann@example.com", Body: "Help"}},
		{name: "bad email", in: models.MessageInput{Email: "ann", Body: "Help"}, wantFields: "email"},
		{name: "empty", in: models.MessageInput{}, wantFields: "body,email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(fieldsOf(ValidateMessageInput(&tt.in)), ",")
			if got != tt.wantFields {
				t.Errorf("Expected %q, got %q", tt.wantFields, got)
			}
		})
	}
}

func TestValidateArticleQuery(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	tests := []struct {
		name       string
		query      models.ArticleQuery
		wantFields string
	}{
		{
			name: "all filters valid",
			query: models.ArticleQuery{
				Filters: []models.ArticleFilter{
					models.StatusFilter{Statuses: []models.ArticleStatus{models.StatusDraft, models.StatusPublished}},
					models.CategoryFilter{CategoryID: "550e8400-e29b-41d4-a716-446655440000"},
					models.VisibilityFilter{Visibility: models.VisibilityInternal},
					models.TagFilter{Tag: "billing"},
					models.TextSearch{Text: "refund"},
					models.DateRange{From: &from, To: &to},
				},
				Sort:  models.SortTitle,
				Limit: 10,
			},
		},
		{
			name:       "unknown status",
			query:      models.ArticleQuery{Filters: []models.ArticleFilter{models.StatusFilter{Statuses: []models.ArticleStatus{"deleted"}}}},
			wantFields: "status",
		},
		{
			name:       "bad category id",
			query:      models.ArticleQuery{Filters: []models.ArticleFilter{models.CategoryFilter{CategoryID: "x"}}},
			wantFields: "category_id",
		},
		{
			name:       "inverted date range",
			query:      models.ArticleQuery{Filters: []models.ArticleFilter{models.DateRange{From: &to, To: &from}}},
			wantFields: "from",
		},
		{
			name:       "unknown sort and negative paging",
			query:      models.ArticleQuery{Sort: "body", Limit: -1, Offset: -5},
			wantFields: "sort,limit,offset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(fieldsOf(ValidateArticleQuery(&tt.query)), ",")
			if got != tt.wantFields {
				t.Errorf("Expected %q, got %q", tt.wantFields, got)
			}
		})
	}
}

func TestValidateMessageQuery(t *testing.T) {
	if errs := ValidateMessageQuery(&models.MessageQuery{Status: models.MessageOpen}); len(errs) != 0 {
		t.Errorf("Expected no errors, got %v", errs)
	}
	errs := ValidateMessageQuery(&models.MessageQuery{Status: "spam", Offset: -1})
	if got := strings.Join(fieldsOf(errs), ","); got != "status,offset" {
		t.Errorf("Expected status,offset, got %s", got)
	}
}

func TestCanonicalUUID(t *testing.T) {
	if got, ok := CanonicalUUID("550E8400-E29B-41D4-A716-446655440000"); !ok || got != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("Expected lowercase canonical id, got %q (ok=%v)", got, ok)
	}
	if got, ok := CanonicalUUID("{550e8400-e29b-41d4-a716-446655440000}"); !ok || got != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("Expected braces stripped, got %q (ok=%v)", got, ok)
	}
	if _, ok := CanonicalUUID("550e8400-e29b-41d4-a716-446655440000"); !ok {
		t.Error("Expected valid UUID")
	}
	if _, ok := CanonicalUUID("not-a-uuid"); ok {
		t.Error("Expected invalid UUID")
	}
}
