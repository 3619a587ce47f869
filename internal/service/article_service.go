package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/help-workstation-api/internal/config"
	"github.com/help-workstation-api/internal/lifecycle"
	"github.com/help-workstation-api/internal/models"
	"github.com/help-workstation-api/internal/repository"
	"github.com/help-workstation-api/internal/slug"
	"github.com/help-workstation-api/internal/validation"
	"github.com/rs/zerolog"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repos    *repository.Repositories
	cfg      *config.Config
	confirms *confirmations
	now      func() time.Time
	log      zerolog.Logger
}

// newArticleService creates a new ArticleService
func newArticleService(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *articleService {
	return &articleService{
		repos:    repos,
		cfg:      cfg,
		confirms: newConfirmations(cfg.Lifecycle.DeleteConfirmTTL),
		now:      utcNow,
		log:      log.With().Str("service", "article").Logger(),
	}
}

// SaveDraft creates a new article when id is empty and appends a version to
// the existing article otherwise. Input is validated before the store is
// touched.
func (s *articleService) SaveDraft(ctx context.Context, id string, content models.ArticleContent, actor string) (*models.Article, error) {
	if id == "" {
		return s.CreateArticle(ctx, content, actor)
	}
	article, _, err := s.writeVersion(ctx, id, content, actor)
	return article, err
}

// CreateArticle inserts a draft article together with its first version
func (s *articleService) CreateArticle(ctx context.Context, content models.ArticleContent, actor string) (*models.Article, error) {
	content = normalizeContent(content)
	content.Slug = resolveSlug(nil, content)
	if err := invalid(validation.ValidateArticleContent(&content)); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, content.CategoryID); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, content.Slug, ""); err != nil {
		return nil, err
	}

	now := s.now()
	article := &models.Article{
		ID:        uuid.New().String(),
		Status:    models.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	article.ApplyContent(content)
	version := newVersion(article.ID, content, s.actor(actor), now)

	err := s.repos.Tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Article.Create(ctx, article); err != nil {
			return storeWrite("insert article", err)
		}
		if err := tx.Version.Create(ctx, version); err != nil {
			return storeWrite("insert version", err)
		}
		article.CurrentVersionID = &version.ID
		if err := tx.Article.Update(ctx, article); err != nil {
			return &PointerInconsistencyError{ArticleID: article.ID, VersionID: version.ID, Err: err}
		}
		return nil
	})
	if err != nil {
		s.logWriteFailure(err, article.ID)
		return nil, err
	}

	s.log.Info().
		Str("article_id", article.ID).
		Str("version_id", version.ID).
		Str("slug", article.Slug).
		Str("actor", version.CreatedBy).
		Msg("Article created")

	return article, nil
}

// CreateVersion appends an immutable version and makes it current
func (s *articleService) CreateVersion(ctx context.Context, articleID string, content models.ArticleContent, actor string) (*models.ArticleVersion, error) {
	_, version, err := s.writeVersion(ctx, articleID, content, actor)
	return version, err
}

func (s *articleService) writeVersion(ctx context.Context, articleID string, content models.ArticleContent, actor string) (*models.Article, *models.ArticleVersion, error) {
	content = normalizeContent(content)
	if err := checkContent(content); err != nil {
		return nil, nil, err
	}

	article, err := s.load(ctx, articleID)
	if err != nil {
		return nil, nil, err
	}
	content.Slug = resolveSlug(article, content)
	if err := invalid(validation.ValidateSlug(content.Slug)); err != nil {
		return nil, nil, err
	}
	if err := s.checkCategory(ctx, content.CategoryID); err != nil {
		return nil, nil, err
	}
	if content.Slug != article.Slug {
		if err := s.ensureSlugFree(ctx, content.Slug, article.ID); err != nil {
			return nil, nil, err
		}
	}

	now := s.now()
	version := newVersion(article.ID, content, s.actor(actor), now)

	err = s.repos.Tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Version.Create(ctx, version); err != nil {
			return storeWrite("insert version", err)
		}
		article.ApplyContent(content)
		article.CurrentVersionID = &version.ID
		article.UpdatedAt = now
		if err := tx.Article.Update(ctx, article); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return storeWrite("update article", err)
			}
			return &PointerInconsistencyError{ArticleID: article.ID, VersionID: version.ID, Err: err}
		}
		return nil
	})
	if err != nil {
		s.logWriteFailure(err, article.ID)
		return nil, nil, err
	}

	s.log.Info().
		Str("article_id", article.ID).
		Str("version_id", version.ID).
		Str("status", string(article.Status)).
		Str("actor", version.CreatedBy).
		Msg("Article version created")

	return article, version, nil
}

// Publish makes the current version the published one
func (s *articleService) Publish(ctx context.Context, id string) (*models.Article, error) {
	return s.transition(ctx, id, lifecycle.EventPublish)
}

// Archive takes an article off the site without touching its history
func (s *articleService) Archive(ctx context.Context, id string) (*models.Article, error) {
	return s.transition(ctx, id, lifecycle.EventArchive)
}

// Restore returns an archived article to draft
func (s *articleService) Restore(ctx context.Context, id string) (*models.Article, error) {
	return s.transition(ctx, id, lifecycle.EventRestore)
}

func (s *articleService) transition(ctx context.Context, id string, event lifecycle.Event) (*models.Article, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	from := article.Status
	changed, err := lifecycle.Apply(article, event, s.now())
	if errors.Is(err, lifecycle.ErrNoCurrentVersion) {
		return nil, fmt.Errorf("%w: article %s has no current version to %s", ErrPrecondition, id, event)
	}
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckInvariant(article); err != nil {
		return nil, err
	}
	if !changed {
		return article, nil
	}

	if err := s.repos.Article.UpdateLifecycle(ctx, article); err != nil {
		err = storeWrite("update article status", err)
		s.logWriteFailure(err, id)
		return nil, err
	}

	s.log.Info().
		Str("article_id", id).
		Str("event", string(event)).
		Str("from", string(from)).
		Str("to", string(article.Status)).
		Msg("Article status changed")

	return article, nil
}

// RequestDelete issues the token that ConfirmDelete requires
func (s *articleService) RequestDelete(ctx context.Context, id string) (*models.DeleteConfirmation, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	p := s.confirms.issue(id, s.now())
	s.log.Info().Str("article_id", id).Time("expires_at", p.expiresAt).Msg("Article delete requested")

	return &models.DeleteConfirmation{ArticleID: id, Token: p.token, ExpiresAt: p.expiresAt}, nil
}

// ConfirmDelete removes an article and all of its versions
func (s *articleService) ConfirmDelete(ctx context.Context, id, token string) error {
	if !s.confirms.consume(id, token, s.now()) {
		return ErrConfirmationRequired
	}

	err := s.repos.Tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		deleted, err := tx.Article.Delete(ctx, id)
		if err != nil {
			return storeWrite("delete article", err)
		}
		if !deleted {
			return fmt.Errorf("article %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		s.logWriteFailure(err, id)
		return err
	}

	s.log.Info().Str("article_id", id).Msg("Article deleted")
	return nil
}

// Get returns an article with its current and published versions
func (s *articleService) Get(ctx context.Context, id string) (*models.ArticleDetail, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.ArticleDetail{Article: article}
	if article.CurrentVersionID != nil {
		if detail.CurrentVersion, err = s.repos.Version.GetByID(ctx, *article.CurrentVersionID); err != nil {
			return nil, fmt.Errorf("load current version: %w", err)
		}
	}
	if article.PublishedVersionID != nil {
		if detail.CurrentVersion != nil && detail.CurrentVersion.ID == *article.PublishedVersionID {
			detail.PublishedVersion = detail.CurrentVersion
		} else if detail.PublishedVersion, err = s.repos.Version.GetByID(ctx, *article.PublishedVersionID); err != nil {
			return nil, fmt.Errorf("load published version: %w", err)
		}
	}
	return detail, nil
}

// ListVersions returns the history of an article, newest first
func (s *articleService) ListVersions(ctx context.Context, id string) ([]*models.ArticleVersion, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	versions, err := s.repos.Version.ListByArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// GetVersion returns one version of an article
func (s *articleService) GetVersion(ctx context.Context, id, versionID string) (*models.ArticleVersion, error) {
	version, err := s.repos.Version.GetByID(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("load version: %w", err)
	}
	if version == nil || version.ArticleID != id {
		return nil, fmt.Errorf("version %s of article %s: %w", versionID, id, ErrNotFound)
	}
	return version, nil
}

// List returns one page of articles
func (s *articleService) List(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error) {
	if err := invalid(validation.ValidateArticleQuery(&q)); err != nil {
		return nil, err
	}
	if q.Sort == "" {
		q.Sort = models.SortUpdatedAt
	}
	q.Limit = pageBounds(q.Limit, s.cfg.Pagination)

	articles, total, err := s.repos.Article.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &models.ArticlePage{Articles: articles, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

func (s *articleService) load(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return nil, fmt.Errorf("article %s: %w", id, ErrNotFound)
	}
	return article, nil
}

func (s *articleService) ensureSlugFree(ctx context.Context, value, excludeID string) error {
	taken, err := s.repos.Article.SlugExists(ctx, value, excludeID)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return fmt.Errorf("%q: %w", value, ErrSlugTaken)
	}
	return nil
}

// checkCategory reports an id that does not name a category as a field error
func (s *articleService) checkCategory(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	term, err := s.repos.Taxonomy.GetByID(ctx, models.KindCategory, *id)
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}
	if term == nil {
		return invalid([]validation.FieldError{{Field: "category_id", Message: "unknown category"}})
	}
	return nil
}

func (s *articleService) actor(actor string) string {
	if actor = strings.TrimSpace(actor); actor != "" {
		return actor
	}
	return s.cfg.Lifecycle.DefaultActor
}

func (s *articleService) logWriteFailure(err error, articleID string) {
	var storeErr *StoreWriteError
	var pointerErr *PointerInconsistencyError
	if errors.As(err, &storeErr) || errors.As(err, &pointerErr) {
		s.log.Error().Err(err).Str("article_id", articleID).Msg("Article write failed")
	}
}

// normalizeContent trims every text field, drops blank and repeated tags and
// defaults the visibility
func normalizeContent(c models.ArticleContent) models.ArticleContent {
	c.Title = strings.TrimSpace(c.Title)
	c.Slug = strings.TrimSpace(c.Slug)
	c.Summary = strings.TrimSpace(c.Summary)
	c.Body = strings.TrimSpace(c.Body)
	if c.CategoryID != nil {
		id := strings.TrimSpace(*c.CategoryID)
		if canonical, ok := validation.CanonicalUUID(id); ok {
			id = canonical
		}
		c.CategoryID = &id
		if id == "" {
			c.CategoryID = nil
		}
	}
	if c.Visibility == "" {
		c.Visibility = models.VisibilityPublic
	}

	tags := make([]string, 0, len(c.Tags))
	seen := make(map[string]bool, len(c.Tags))
	for _, t := range c.Tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	c.Tags = tags
	return c
}

// checkContent validates content before the article is loaded. An omitted
// slug is checked once resolveSlug has settled it.
func checkContent(c models.ArticleContent) error {
	fields := validation.ValidateArticleContent(&c)
	if c.Slug == "" {
		kept := fields[:0]
		for _, f := range fields {
			if f.Field != "slug" {
				kept = append(kept, f)
			}
		}
		fields = kept
	}
	return invalid(fields)
}

// resolveSlug decides the slug of a save. Slugs that still follow the
// previous title keep following it; an explicit change sticks.
func resolveSlug(prev *models.Article, c models.ArticleContent) string {
	t := slug.NewTracker("", "")
	prevSlug := ""
	if prev != nil {
		t = slug.NewTracker(prev.Title, prev.Slug)
		prevSlug = prev.Slug
	}
	if c.Slug != "" && c.Slug != prevSlug {
		t.SetSlug(c.Slug)
	}
	return t.SetTitle(c.Title)
}

func newVersion(articleID string, c models.ArticleContent, actor string, now time.Time) *models.ArticleVersion {
	return &models.ArticleVersion{
		ID:         uuid.New().String(),
		ArticleID:  articleID,
		Title:      c.Title,
		Summary:    c.Summary,
		Body:       c.Body,
		CategoryID: c.CategoryID,
		Visibility: c.Visibility,
		Tags:       c.Tags,
		CreatedBy:  actor,
		CreatedAt:  now,
	}
}
