package repository

import (
	"testing"
	"time"

	"github.com/help-workstation-api/internal/models"
)

func TestBuildArticleWhere(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filters  []models.ArticleFilter
		want     string
		wantArgs int
	}{
		{
			name: "no filters",
			want: "",
		},
		{
			name:     "status",
			filters:  []models.ArticleFilter{models.StatusFilter{Statuses: []models.ArticleStatus{models.StatusDraft}}},
			want:     "WHERE status = ANY($1)",
			wantArgs: 1,
		},
		{
			name: "category visibility and tag",
			filters: []models.ArticleFilter{
				models.CategoryFilter{CategoryID: "c-1"},
				models.VisibilityFilter{Visibility: models.VisibilityPublic},
				models.TagFilter{Tag: "billing"},
			},
			want:     "WHERE category_id = $1 AND visibility = $2 AND tags @> jsonb_build_array($3::text)",
			wantArgs: 3,
		},
		{
			name:     "text search adds one condition per word",
			filters:  []models.ArticleFilter{models.TextSearch{Text: "refund  policy"}},
			want:     "WHERE (title ILIKE $1 OR summary ILIKE $1 OR slug ILIKE $1) AND (title ILIKE $2 OR summary ILIKE $2 OR slug ILIKE $2)",
			wantArgs: 2,
		},
		{
			name:     "open ended date range",
			filters:  []models.ArticleFilter{models.DateRange{From: &from}},
			want:     "WHERE updated_at >= $1",
			wantArgs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args := buildArticleWhere(tt.filters)
			if got != tt.want {
				t.Errorf("buildArticleWhere() = %q, want %q", got, tt.want)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("Expected %d args, got %d", tt.wantArgs, len(args))
			}
		})
	}
}

func TestBuildArticleWhere_EscapesWildcards(t *testing.T) {
	_, args := buildArticleWhere([]models.ArticleFilter{models.TextSearch{Text: "100%_off"}})
	if len(args) != 1 || args[0] != `%100\%\_off%` {
		t.Errorf("Expected escaped pattern, got %v", args)
	}
}

func TestArticleOrderBy(t *testing.T) {
	tests := []struct {
		sort models.ArticleSort
		desc bool
		want string
	}{
		{"", true, "ORDER BY updated_at DESC, id DESC"},
		{models.SortTitle, false, "ORDER BY title ASC, id ASC"},
		{models.SortPublishedAt, true, "ORDER BY published_at DESC NULLS LAST, id DESC"},
		{"body; DROP TABLE articles", false, "ORDER BY updated_at ASC, id ASC"},
	}
	for _, tt := range tests {
		if got := articleOrderBy(tt.sort, tt.desc); got != tt.want {
			t.Errorf("articleOrderBy(%q, %v) = %q, want %q", tt.sort, tt.desc, got, tt.want)
		}
	}
}
