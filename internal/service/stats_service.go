package service

import (
	"context"
	"fmt"

	"github.com/help-workstation-api/internal/models"
	"github.com/help-workstation-api/internal/repository"
)

const topSearchQueries = 10

type statsService struct {
	repos *repository.Repositories
}

func newStatsService(repos *repository.Repositories) *statsService {
	return &statsService{repos: repos}
}

// Collect gathers article and message counts by status and the searches
// that most often ended in a message
func (s *statsService) Collect(ctx context.Context) (*models.Stats, error) {
	articles, err := s.repos.Article.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	messages, err := s.repos.Message.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	queries, err := s.repos.Message.TopSearchQueries(ctx, topSearchQueries)
	if err != nil {
		return nil, fmt.Errorf("top search queries: %w", err)
	}
	return &models.Stats{Articles: articles, Messages: messages, TopSearchQueries: queries}, nil
}
