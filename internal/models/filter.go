package models

import "time"

// ArticleFilter is one criterion of an article listing. The set of
// implementations is closed: StatusFilter, CategoryFilter, VisibilityFilter,
// TagFilter, TextSearch and DateRange.
type ArticleFilter interface {
	articleFilter()
}

// StatusFilter matches articles in any of the given statuses
type StatusFilter struct {
	Statuses []ArticleStatus
}

// CategoryFilter matches articles filed under a category
type CategoryFilter struct {
	CategoryID string
}

// VisibilityFilter matches articles with the given visibility
type VisibilityFilter struct {
	Visibility Visibility
}

// TagFilter matches articles carrying a tag
type TagFilter struct {
	Tag string
}

// TextSearch matches articles whose title, summary or slug contains every word
type TextSearch struct {
	Text string
}

// DateRange matches articles last updated inside [From, To]
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (StatusFilter) articleFilter()     {}
func (CategoryFilter) articleFilter()   {}
func (VisibilityFilter) articleFilter() {}
func (TagFilter) articleFilter()        {}
func (TextSearch) articleFilter()       {}
func (DateRange) articleFilter()        {}

// ArticleSort is a column an article listing can be ordered by
type ArticleSort string

const (
	SortUpdatedAt   ArticleSort = "updated_at"
	SortCreatedAt   ArticleSort = "created_at"
	SortTitle       ArticleSort = "title"
	SortPublishedAt ArticleSort = "published_at"
)

// ArticleQuery describes an article listing request
type ArticleQuery struct {
	Filters []ArticleFilter
	Sort    ArticleSort
	Desc    bool
	Limit   int
	Offset  int
}
