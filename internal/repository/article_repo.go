package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/help-workstation-api/internal/database"
	"github.com/help-workstation-api/internal/models"
)

const articleColumns = `id, slug, title, summary, body, category_id, visibility, tags, status,
	current_version_id, published_version_id, published_at, created_at, updated_at`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db database.DBTX
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db database.DBTX) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	tags, err := encodeTags(article.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.ExecContext(ctx, query,
		article.ID, article.Slug, article.Title, article.Summary, article.Body,
		article.CategoryID, article.Visibility, tags, article.Status,
		article.CurrentVersionID, article.PublishedVersionID, article.PublishedAt,
		article.CreatedAt, article.UpdatedAt,
	)
	return translate(err)
}

// Update writes the display fields and the current version pointer of an
// article. Lifecycle columns are left alone so a save never undoes a
// concurrent transition.
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	tags, err := encodeTags(article.Tags)
	if err != nil {
		return err
	}

	query := `
		UPDATE articles SET
			slug = $2, title = $3, summary = $4, body = $5, category_id = $6,
			visibility = $7, tags = $8, current_version_id = $9, updated_at = $10
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		article.ID, article.Slug, article.Title, article.Summary, article.Body,
		article.CategoryID, article.Visibility, tags, article.CurrentVersionID,
		article.UpdatedAt,
	)
	if err != nil {
		return translate(err)
	}
	return requireRow(result)
}

// UpdateLifecycle writes only the status columns of an article
func (r *articleRepo) UpdateLifecycle(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles SET
			status = $2, published_version_id = $3, published_at = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		article.ID, article.Status, article.PublishedVersionID, article.PublishedAt, article.UpdatedAt,
	)
	if err != nil {
		return translate(err)
	}
	return requireRow(result)
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// SlugExists checks if an article other than excludeID uses the slug
func (r *articleRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1 AND id::text <> $2)`
	err := r.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists)
	return exists, err
}

// Delete removes an article; its versions go with it (ON DELETE CASCADE)
func (r *articleRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	return rows > 0, err
}

// List returns one page of articles matching the query and the total match count
func (r *articleRepo) List(ctx context.Context, q models.ArticleQuery) ([]*models.Article, int, error) {
	where, args := buildArticleWhere(q.Filters)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM articles %s %s LIMIT $%d OFFSET $%d`,
		articleColumns, where, articleOrderBy(q.Sort, q.Desc), len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, article)
	}
	return articles, total, rows.Err()
}

// CountByStatus returns the number of articles in each status
func (r *articleRepo) CountByStatus(ctx context.Context) (map[models.ArticleStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM articles GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ArticleStatus]int, len(models.ArticleStatuses))
	for _, s := range models.ArticleStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status models.ArticleStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// StreamAll streams all articles for export
func (r *articleRepo) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return err
		}
		if err := callback(article); err != nil {
			return err
		}
	}

	return rows.Err()
}

func scanArticle(row scanner) (*models.Article, error) {
	var article models.Article
	var tags []byte
	var categoryID, currentVersionID, publishedVersionID sql.NullString
	var publishedAt sql.NullTime

	err := row.Scan(
		&article.ID, &article.Slug, &article.Title, &article.Summary, &article.Body,
		&categoryID, &article.Visibility, &tags, &article.Status,
		&currentVersionID, &publishedVersionID, &publishedAt,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if article.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	article.CategoryID = stringPtr(categoryID)
	article.CurrentVersionID = stringPtr(currentVersionID)
	article.PublishedVersionID = stringPtr(publishedVersionID)
	article.PublishedAt = timePtr(publishedAt)
	return &article, nil
}

// encodeTags returns the JSONB text for tags; lib/pq would send []byte as bytea
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		return "[]", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(data), nil
}

func decodeTags(data []byte) ([]string, error) {
	tags := []string{}
	if len(data) == 0 {
		return tags, nil
	}
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}
