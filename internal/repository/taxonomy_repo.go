package repository

import (
	"context"
	"database/sql"

	"github.com/help-workstation-api/internal/database"
	"github.com/help-workstation-api/internal/models"
	"github.com/lib/pq"
)

const termColumns = `id, kind, name, slug, description, position, created_at, updated_at`

// taxonomyRepo is the concrete implementation of TaxonomyRepository. All
// three taxonomies share the terms table, discriminated by kind.
type taxonomyRepo struct {
	db database.DBTX
}

// NewTaxonomyRepo creates a new taxonomy repository
func NewTaxonomyRepo(db database.DBTX) TaxonomyRepository {
	return &taxonomyRepo{db: db}
}

// Create inserts a new term
func (r *taxonomyRepo) Create(ctx context.Context, term *models.Term) error {
	query := `
		INSERT INTO terms (` + termColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		term.ID, term.Kind, term.Name, term.Slug, term.Description,
		term.Position, term.CreatedAt, term.UpdatedAt,
	)
	return translate(err)
}

// Update overwrites the editable fields of a term
func (r *taxonomyRepo) Update(ctx context.Context, term *models.Term) error {
	query := `
		UPDATE terms SET name = $3, slug = $4, description = $5, updated_at = $6
		WHERE id = $1 AND kind = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		term.ID, term.Kind, term.Name, term.Slug, term.Description, term.UpdatedAt,
	)
	if err != nil {
		return translate(err)
	}
	return requireRow(result)
}

// GetByID retrieves a term of the given kind
func (r *taxonomyRepo) GetByID(ctx context.Context, kind models.TermKind, id string) (*models.Term, error) {
	query := `SELECT ` + termColumns + ` FROM terms WHERE id = $1 AND kind = $2`

	term, err := scanTerm(r.db.QueryRowContext(ctx, query, id, kind))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return term, nil
}

// List returns every term of a kind in manual order
func (r *taxonomyRepo) List(ctx context.Context, kind models.TermKind) ([]*models.Term, error) {
	query := `SELECT ` + termColumns + ` FROM terms WHERE kind = $1 ORDER BY position, name`
	rows, err := r.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := make([]*models.Term, 0)
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

// Delete removes a term
func (r *taxonomyRepo) Delete(ctx context.Context, kind models.TermKind, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM terms WHERE id = $1 AND kind = $2", id, kind)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	return rows > 0, err
}

// NextPosition returns the position after the last term of a kind
func (r *taxonomyRepo) NextPosition(ctx context.Context, kind models.TermKind) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM terms WHERE kind = $1", kind,
	).Scan(&next)
	return next, err
}

// SetPosition moves a term to a new position
func (r *taxonomyRepo) SetPosition(ctx context.Context, kind models.TermKind, id string, position int) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE terms SET position = $3 WHERE id = $1 AND kind = $2", id, kind, position,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetCategoryAudiences replaces the audiences a category is restricted to
func (r *taxonomyRepo) SetCategoryAudiences(ctx context.Context, categoryID string, audienceIDs []string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM category_audiences WHERE category_id = $1", categoryID); err != nil {
		return err
	}
	if len(audienceIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO category_audiences (category_id, audience_id)
		SELECT $1, a.id FROM terms a
		WHERE a.kind = 'audience' AND a.id::text = ANY($2)
	`, categoryID, pq.Array(audienceIDs))
	return translate(err)
}

// CategoryAudiences returns the audiences a category is restricted to
func (r *taxonomyRepo) CategoryAudiences(ctx context.Context, categoryID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ca.audience_id FROM category_audiences ca
		JOIN terms a ON a.id = ca.audience_id
		WHERE ca.category_id = $1 ORDER BY a.position, a.name
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanTerm(row scanner) (*models.Term, error) {
	var term models.Term
	err := row.Scan(
		&term.ID, &term.Kind, &term.Name, &term.Slug, &term.Description,
		&term.Position, &term.CreatedAt, &term.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &term, nil
}
