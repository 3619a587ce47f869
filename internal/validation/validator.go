package validation

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/help-workstation-api/internal/models"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9_]+(?:-[a-z0-9_]+)*$`)

var articleSlugRules = []ozzo.Rule{
	ozzo.Required,
	ozzo.RuneLength(1, maxSlugLength),
	ozzo.Match(slugRegex).Error("must be lowercase words separated by hyphens"),
}

const (
	maxTitleLength   = 200
	maxSlugLength    = 200
	maxSummaryLength = 500
	maxTagLength     = 50
	maxSearchLength  = 200
)

// FieldError describes one invalid field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateArticleContent checks the fields every article version must carry
func ValidateArticleContent(c *models.ArticleContent) []FieldError {
	return fieldErrors(ozzo.ValidateStruct(c,
		ozzo.Field(&c.Title, ozzo.Required, ozzo.RuneLength(1, maxTitleLength)),
		ozzo.Field(&c.Slug, articleSlugRules...),
		ozzo.Field(&c.Summary, ozzo.RuneLength(0, maxSummaryLength)),
		ozzo.Field(&c.Body, ozzo.Required),
		ozzo.Field(&c.CategoryID, is.UUID),
		ozzo.Field(&c.Visibility, ozzo.In(models.VisibilityPublic, models.VisibilityInternal)),
		ozzo.Field(&c.Tags, ozzo.Each(ozzo.Required, ozzo.RuneLength(1, maxTagLength))),
	))
}

// ValidateSlug checks an article slug on its own, for slugs resolved after
// the rest of the content was validated
func ValidateSlug(value string) []FieldError {
	c := models.ArticleContent{Slug: value}
	return fieldErrors(ozzo.ValidateStruct(&c, ozzo.Field(&c.Slug, articleSlugRules...)))
}

// ValidateTermInput checks a category, audience or tag
func ValidateTermInput(in *models.TermInput) []FieldError {
	return fieldErrors(ozzo.ValidateStruct(in,
		ozzo.Field(&in.Name, ozzo.Required, ozzo.RuneLength(1, 100)),
		ozzo.Field(&in.Slug, ozzo.RuneLength(0, 100), ozzo.Match(slugRegex)),
		ozzo.Field(&in.Description, ozzo.RuneLength(0, 1000)),
	))
}

// ValidateMessageInput checks an inbound contact message
func ValidateMessageInput(in *models.MessageInput) []FieldError {
	return fieldErrors(ozzo.ValidateStruct(in,
		ozzo.Field(&in.Email, ozzo.Required, is.EmailFormat),
		ozzo.Field(&in.Body, ozzo.Required, ozzo.RuneLength(1, 10000)),
		ozzo.Field(&in.Name, ozzo.RuneLength(0, 200)),
		ozzo.Field(&in.Subject, ozzo.RuneLength(0, 300)),
		ozzo.Field(&in.SearchQuery, ozzo.RuneLength(0, maxSearchLength)),
		ozzo.Field(&in.Referrer, ozzo.RuneLength(0, 2000)),
	))
}

// ValidateArticleQuery checks every filter of an article listing. Field names
// match the query parameters they are parsed from.
func ValidateArticleQuery(q *models.ArticleQuery) []FieldError {
	var errs []FieldError
	add := func(field string, err error) {
		if err != nil {
			errs = append(errs, FieldError{Field: field, Message: err.Error()})
		}
	}

	for _, f := range q.Filters {
		switch f := f.(type) {
		case models.StatusFilter:
			add("status", ozzo.Validate(f.Statuses, ozzo.Required, ozzo.Each(ozzo.In(articleStatuses()...))))
		case models.CategoryFilter:
			add("category_id", ozzo.Validate(f.CategoryID, ozzo.Required, is.UUID))
		case models.VisibilityFilter:
			add("visibility", ozzo.Validate(f.Visibility, ozzo.Required, ozzo.In(models.VisibilityPublic, models.VisibilityInternal)))
		case models.TagFilter:
			add("tag", ozzo.Validate(f.Tag, ozzo.Required, ozzo.RuneLength(1, maxTagLength)))
		case models.TextSearch:
			add("q", ozzo.Validate(f.Text, ozzo.Required, ozzo.RuneLength(1, maxSearchLength)))
		case models.DateRange:
			if f.From != nil && f.To != nil && f.From.After(*f.To) {
				add("from", errors.New("must not be after to"))
			}
		default:
			add("filter", errors.New("unsupported filter"))
		}
	}

	add("sort", ozzo.Validate(q.Sort, ozzo.In(
		models.SortUpdatedAt, models.SortCreatedAt, models.SortTitle, models.SortPublishedAt,
	)))
	add("limit", ozzo.Validate(q.Limit, ozzo.Min(0)))
	add("offset", ozzo.Validate(q.Offset, ozzo.Min(0)))
	return errs
}

// ValidateMessageQuery checks a message listing
func ValidateMessageQuery(q *models.MessageQuery) []FieldError {
	var errs []FieldError
	if q.Status != "" && !q.Status.Valid() {
		errs = append(errs, FieldError{Field: "status", Message: "must be a valid value"})
	}
	if err := ozzo.Validate(q.Text, ozzo.RuneLength(0, maxSearchLength)); err != nil {
		errs = append(errs, FieldError{Field: "q", Message: err.Error()})
	}
	if q.Limit < 0 {
		errs = append(errs, FieldError{Field: "limit", Message: "must be no less than 0"})
	}
	if q.Offset < 0 {
		errs = append(errs, FieldError{Field: "offset", Message: "must be no less than 0"})
	}
	return errs
}

// CanonicalUUID returns s in lowercase hyphenated form. Any form uuid.Parse
// accepts is allowed, including uppercase and braced ids.
func CanonicalUUID(s string) (string, bool) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func articleStatuses() []interface{} {
	out := make([]interface{}, len(models.ArticleStatuses))
	for i, s := range models.ArticleStatuses {
		out[i] = s
	}
	return out
}

// fieldErrors flattens ozzo errors into a slice ordered by field name
func fieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var errs ozzo.Errors
	if !errors.As(err, &errs) {
		return []FieldError{{Message: err.Error()}}
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]FieldError, 0, len(fields))
	for _, field := range fields {
		out = append(out, FieldError{Field: field, Message: errs[field].Error()})
	}
	return out
}
