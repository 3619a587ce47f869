package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/help-workstation-api/internal/models"
	"github.com/help-workstation-api/internal/repository"
	"github.com/help-workstation-api/internal/slug"
	"github.com/help-workstation-api/internal/validation"
	"github.com/rs/zerolog"
)

// taxonomyService is the concrete implementation of TaxonomyService
type taxonomyService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newTaxonomyService creates a new TaxonomyService
func newTaxonomyService(repos *repository.Repositories, log zerolog.Logger) *taxonomyService {
	return &taxonomyService{
		repos: repos,
		log:   log.With().Str("service", "taxonomy").Logger(),
	}
}

// List returns every term of a kind in display order
func (s *taxonomyService) List(ctx context.Context, kind models.TermKind) ([]*models.Term, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("taxonomy %q: %w", kind, ErrNotFound)
	}
	return s.repos.Taxonomy.List(ctx, kind)
}

// Create appends a term at the end of its taxonomy
func (s *taxonomyService) Create(ctx context.Context, kind models.TermKind, in models.TermInput) (*models.Term, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("taxonomy %q: %w", kind, ErrNotFound)
	}
	in, err := checkTermInput(in)
	if err != nil {
		return nil, err
	}

	position, err := s.repos.Taxonomy.NextPosition(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("next position: %w", err)
	}

	now := utcNow()
	term := &models.Term{
		ID:          uuid.New().String(),
		Kind:        kind,
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.Taxonomy.Create(ctx, term); err != nil {
		return nil, storeWrite("insert "+string(kind), err)
	}

	s.log.Info().Str("kind", string(kind)).Str("term_id", term.ID).Str("slug", term.Slug).Msg("Term created")
	return term, nil
}

// Update renames a term
func (s *taxonomyService) Update(ctx context.Context, kind models.TermKind, id string, in models.TermInput) (*models.Term, error) {
	in, err := checkTermInput(in)
	if err != nil {
		return nil, err
	}

	term, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	term.Name = in.Name
	term.Slug = in.Slug
	term.Description = in.Description
	term.UpdatedAt = utcNow()

	if err := s.repos.Taxonomy.Update(ctx, term); err != nil {
		return nil, storeWrite("update "+string(kind), err)
	}
	return term, nil
}

// Delete removes a term. Articles in a deleted category lose the category.
func (s *taxonomyService) Delete(ctx context.Context, kind models.TermKind, id string) error {
	if !kind.Valid() {
		return fmt.Errorf("taxonomy %q: %w", kind, ErrNotFound)
	}
	deleted, err := s.repos.Taxonomy.Delete(ctx, kind, id)
	if err != nil {
		return storeWrite("delete "+string(kind), err)
	}
	if !deleted {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	s.log.Info().Str("kind", string(kind)).Str("term_id", id).Msg("Term deleted")
	return nil
}

// Reorder gives ids the positions 0..n-1. ids must name every term of the
// kind exactly once.
func (s *taxonomyService) Reorder(ctx context.Context, kind models.TermKind, ids []string) ([]*models.Term, error) {
	current, err := s.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(current))
	for _, t := range current {
		known[t.ID] = true
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !known[id] || seen[id] {
			return nil, invalid([]validation.FieldError{{Field: "ids", Message: "unknown or repeated id " + id}})
		}
		seen[id] = true
	}
	if len(ids) != len(current) {
		return nil, invalid([]validation.FieldError{{Field: "ids", Message: "must list every term exactly once"}})
	}

	err = s.repos.Tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		for position, id := range ids {
			if err := tx.Taxonomy.SetPosition(ctx, kind, id, position); err != nil {
				return storeWrite("reorder "+string(kind), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repos.Taxonomy.List(ctx, kind)
}

// SetCategoryAudiences restricts a category to the given audiences. An
// empty list makes the category visible to everyone.
func (s *taxonomyService) SetCategoryAudiences(ctx context.Context, categoryID string, audienceIDs []string) ([]string, error) {
	if _, err := s.load(ctx, models.KindCategory, categoryID); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(audienceIDs))
	seen := make(map[string]bool, len(audienceIDs))
	for _, raw := range audienceIDs {
		id, ok := validation.CanonicalUUID(raw)
		if !ok {
			return nil, invalid([]validation.FieldError{{Field: "audience_ids", Message: "invalid id " + raw}})
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		audience, err := s.repos.Taxonomy.GetByID(ctx, models.KindAudience, id)
		if err != nil {
			return nil, fmt.Errorf("load audience: %w", err)
		}
		if audience == nil {
			return nil, invalid([]validation.FieldError{{Field: "audience_ids", Message: "unknown audience " + id}})
		}
		ids = append(ids, id)
	}

	err := s.repos.Tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		return storeWrite("set category audiences", tx.Taxonomy.SetCategoryAudiences(ctx, categoryID, ids))
	})
	if err != nil {
		return nil, err
	}
	return s.repos.Taxonomy.CategoryAudiences(ctx, categoryID)
}

// CategoryAudiences returns the audiences a category is restricted to
func (s *taxonomyService) CategoryAudiences(ctx context.Context, categoryID string) ([]string, error) {
	if _, err := s.load(ctx, models.KindCategory, categoryID); err != nil {
		return nil, err
	}
	return s.repos.Taxonomy.CategoryAudiences(ctx, categoryID)
}

func (s *taxonomyService) load(ctx context.Context, kind models.TermKind, id string) (*models.Term, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("taxonomy %q: %w", kind, ErrNotFound)
	}
	term, err := s.repos.Taxonomy.GetByID(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	if term == nil {
		return nil, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return term, nil
}

// checkTermInput trims the input and derives the slug from the name when
// none was given
func checkTermInput(in models.TermInput) (models.TermInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)
	if in.Slug == "" {
		in.Slug = slug.Slugify(in.Name)
	}

	fields := validation.ValidateTermInput(&in)
	if in.Slug == "" && in.Name != "" {
		fields = append(fields, validation.FieldError{Field: "slug", Message: "cannot be derived from name"})
	}
	return in, invalid(fields)
}
