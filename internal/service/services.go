package service

import (
	"context"
	"net/http"
	"time"

	"github.com/help-workstation-api/internal/config"
	"github.com/help-workstation-api/internal/models"
	"github.com/help-workstation-api/internal/repository"
	"github.com/rs/zerolog"
)

// ArticleService defines the article lifecycle: drafting, versioning,
// publishing, archiving, restoring and deleting
type ArticleService interface {
	SaveDraft(ctx context.Context, id string, content models.ArticleContent, actor string) (*models.Article, error)
	CreateArticle(ctx context.Context, content models.ArticleContent, actor string) (*models.Article, error)
	CreateVersion(ctx context.Context, articleID string, content models.ArticleContent, actor string) (*models.ArticleVersion, error)
	Publish(ctx context.Context, id string) (*models.Article, error)
	Archive(ctx context.Context, id string) (*models.Article, error)
	Restore(ctx context.Context, id string) (*models.Article, error)
	RequestDelete(ctx context.Context, id string) (*models.DeleteConfirmation, error)
	ConfirmDelete(ctx context.Context, id, token string) error
	Get(ctx context.Context, id string) (*models.ArticleDetail, error)
	ListVersions(ctx context.Context, id string) ([]*models.ArticleVersion, error)
	GetVersion(ctx context.Context, id, versionID string) (*models.ArticleVersion, error)
	List(ctx context.Context, query models.ArticleQuery) (*models.ArticlePage, error)
}

// TaxonomyService defines category, audience and tag management
type TaxonomyService interface {
	List(ctx context.Context, kind models.TermKind) ([]*models.Term, error)
	Create(ctx context.Context, kind models.TermKind, in models.TermInput) (*models.Term, error)
	Update(ctx context.Context, kind models.TermKind, id string, in models.TermInput) (*models.Term, error)
	Delete(ctx context.Context, kind models.TermKind, id string) error
	Reorder(ctx context.Context, kind models.TermKind, ids []string) ([]*models.Term, error)
	SetCategoryAudiences(ctx context.Context, categoryID string, audienceIDs []string) ([]string, error)
	CategoryAudiences(ctx context.Context, categoryID string) ([]string, error)
}

// MessageService defines inbound message triage
type MessageService interface {
	Create(ctx context.Context, in models.MessageInput) (*models.Message, error)
	Get(ctx context.Context, id string) (*models.Message, error)
	List(ctx context.Context, query models.MessageQuery) (*models.MessagePage, error)
	UpdateStatus(ctx context.Context, id string, status models.MessageStatus) (*models.Message, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error
}

// StatsService summarises content and inbox activity
type StatsService interface {
	Collect(ctx context.Context) (*models.Stats, error)
}

// Services holds all service interfaces
type Services struct {
	Article  ArticleService
	Taxonomy TaxonomyService
	Message  MessageService
	Export   ExportService
	Stats    StatsService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Article:  newArticleService(repos, cfg, log),
		Taxonomy: newTaxonomyService(repos, log),
		Message:  newMessageService(repos, cfg, log),
		Export:   newExportService(repos, log),
		Stats:    newStatsService(repos),
	}
}

// pageBounds applies the configured default and maximum page size
func pageBounds(limit int, cfg config.PaginationConfig) int {
	if limit <= 0 {
		return cfg.DefaultLimit
	}
	if limit > cfg.MaxLimit {
		return cfg.MaxLimit
	}
	return limit
}

func utcNow() time.Time {
	return time.Now().UTC()
}
