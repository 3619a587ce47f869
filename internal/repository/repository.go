package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/help-workstation-api/internal/database"
	"github.com/help-workstation-api/internal/models"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned by writes that matched no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("duplicate record")
	// ErrReference is returned when a write names a record that does not exist
	ErrReference = errors.New("referenced record does not exist")
)

// ArticleRepository defines the interface for article data operations.
// Reads of a missing article return (nil, nil).
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	UpdateLifecycle(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, query models.ArticleQuery) ([]*models.Article, int, error)
	CountByStatus(ctx context.Context) (map[models.ArticleStatus]int, error)
	StreamAll(ctx context.Context, callback func(*models.Article) error) error
}

// VersionRepository defines the interface for article version data
// operations. Versions are append-only: there is no update.
type VersionRepository interface {
	Create(ctx context.Context, version *models.ArticleVersion) error
	GetByID(ctx context.Context, id string) (*models.ArticleVersion, error)
	ListByArticle(ctx context.Context, articleID string) ([]*models.ArticleVersion, error)
}

// TaxonomyRepository defines the interface for category, audience and tag
// data operations
type TaxonomyRepository interface {
	Create(ctx context.Context, term *models.Term) error
	Update(ctx context.Context, term *models.Term) error
	GetByID(ctx context.Context, kind models.TermKind, id string) (*models.Term, error)
	List(ctx context.Context, kind models.TermKind) ([]*models.Term, error)
	Delete(ctx context.Context, kind models.TermKind, id string) (bool, error)
	NextPosition(ctx context.Context, kind models.TermKind) (int, error)
	SetPosition(ctx context.Context, kind models.TermKind, id string, position int) error
	SetCategoryAudiences(ctx context.Context, categoryID string, audienceIDs []string) error
	CategoryAudiences(ctx context.Context, categoryID string) ([]string, error)
}

// MessageRepository defines the interface for inbound message data operations
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	List(ctx context.Context, query models.MessageQuery) ([]*models.Message, int, error)
	UpdateStatus(ctx context.Context, id string, status models.MessageStatus, at time.Time) (bool, error)
	CountByStatus(ctx context.Context) (map[models.MessageStatus]int, error)
	TopSearchQueries(ctx context.Context, limit int) ([]models.SearchQueryCount, error)
}

// Transactor runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *Repositories) error) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article  ArticleRepository
	Version  VersionRepository
	Taxonomy TaxonomyRepository
	Message  MessageRepository
	Tx       Transactor
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	repos := bind(db.DB)
	repos.Tx = &sqlTransactor{db: db.DB}
	return repos
}

func bind(db database.DBTX) *Repositories {
	return &Repositories{
		Article:  NewArticleRepo(db),
		Version:  NewVersionRepo(db),
		Taxonomy: NewTaxonomyRepo(db),
		Message:  NewMessageRepo(db),
	}
}

type sqlTransactor struct {
	db *sql.DB
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(tx *Repositories) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	repos := bind(tx)
	repos.Tx = joinedTx{repos: repos}

	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// joinedTx lets code already inside a transaction call WithinTx again
type joinedTx struct {
	repos *Repositories
}

func (j joinedTx) WithinTx(ctx context.Context, fn func(tx *Repositories) error) error {
	return fn(j.repos)
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// translate maps driver errors onto repository sentinels
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505":
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	case "23503":
		return fmt.Errorf("%w: %s", ErrReference, pqErr.Constraint)
	}
	return err
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// helper to convert a nullable column into a pointer
func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
