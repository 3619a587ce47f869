package repository

import (
	"context"
	"database/sql"

	"github.com/help-workstation-api/internal/database"
	"github.com/help-workstation-api/internal/models"
)

const versionColumns = `id, article_id, title, summary, body, category_id, visibility, tags, created_by, created_at`

// versionRepo is the concrete implementation of VersionRepository
type versionRepo struct {
	db database.DBTX
}

// NewVersionRepo creates a new article version repository
func NewVersionRepo(db database.DBTX) VersionRepository {
	return &versionRepo{db: db}
}

// Create appends a version snapshot
func (r *versionRepo) Create(ctx context.Context, version *models.ArticleVersion) error {
	tags, err := encodeTags(version.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO article_versions (` + versionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, query,
		version.ID, version.ArticleID, version.Title, version.Summary, version.Body,
		version.CategoryID, version.Visibility, tags, version.CreatedBy, version.CreatedAt,
	)
	return translate(err)
}

// GetByID retrieves a version by ID
func (r *versionRepo) GetByID(ctx context.Context, id string) (*models.ArticleVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM article_versions WHERE id = $1`

	version, err := scanVersion(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return version, nil
}

// ListByArticle returns the history of an article, newest first
func (r *versionRepo) ListByArticle(ctx context.Context, articleID string) ([]*models.ArticleVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM article_versions
		WHERE article_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := make([]*models.ArticleVersion, 0)
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

func scanVersion(row scanner) (*models.ArticleVersion, error) {
	var version models.ArticleVersion
	var tags []byte
	var categoryID sql.NullString

	err := row.Scan(
		&version.ID, &version.ArticleID, &version.Title, &version.Summary, &version.Body,
		&categoryID, &version.Visibility, &tags, &version.CreatedBy, &version.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if version.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	version.CategoryID = stringPtr(categoryID)
	return &version, nil
}
