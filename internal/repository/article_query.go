package repository

import (
	"fmt"
	"strings"

	"github.com/help-workstation-api/internal/models"
	"github.com/lib/pq"
)

// buildArticleWhere turns article filters into a WHERE clause with $N
// placeholders. The clause is shared by the COUNT and SELECT of a listing.
func buildArticleWhere(filters []models.ArticleFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, f := range filters {
		switch f := f.(type) {
		case models.StatusFilter:
			statuses := make([]string, len(f.Statuses))
			for i, s := range f.Statuses {
				statuses[i] = string(s)
			}
			conditions = append(conditions, "status = ANY("+arg(pq.Array(statuses))+")")
		case models.CategoryFilter:
			conditions = append(conditions, "category_id = "+arg(f.CategoryID))
		case models.VisibilityFilter:
			conditions = append(conditions, "visibility = "+arg(string(f.Visibility)))
		case models.TagFilter:
			conditions = append(conditions, "tags @> jsonb_build_array("+arg(f.Tag)+"::text)")
		case models.TextSearch:
			// Every word must appear in the title, summary or slug
			for _, word := range strings.Fields(f.Text) {
				p := arg("%" + escapeILIKE(word) + "%")
				conditions = append(conditions, fmt.Sprintf("(title ILIKE %s OR summary ILIKE %s OR slug ILIKE %s)", p, p, p))
			}
		case models.DateRange:
			if f.From != nil {
				conditions = append(conditions, "updated_at >= "+arg(*f.From))
			}
			if f.To != nil {
				conditions = append(conditions, "updated_at <= "+arg(*f.To))
			}
		}
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// articleOrderBy always ends with id so pages are stable
func articleOrderBy(sort models.ArticleSort, desc bool) string {
	column := "updated_at"
	switch sort {
	case models.SortCreatedAt, models.SortTitle, models.SortPublishedAt:
		column = string(sort)
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	if column == "published_at" {
		return fmt.Sprintf("ORDER BY published_at %s NULLS LAST, id %s", dir, dir)
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", column, dir, dir)
}

// escapeILIKE escapes the ILIKE wildcards in user input
func escapeILIKE(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
