package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/help-workstation-api/internal/config"
	"github.com/help-workstation-api/internal/models"
	"github.com/help-workstation-api/internal/repository"
	"github.com/help-workstation-api/internal/validation"
	"github.com/rs/zerolog"
)

// messageService is the concrete implementation of MessageService
type messageService struct {
	repos *repository.Repositories
	cfg   *config.Config
	log   zerolog.Logger
}

// newMessageService creates a new MessageService
func newMessageService(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *messageService {
	return &messageService{
		repos: repos,
		cfg:   cfg,
		log:   log.With().Str("service", "message").Logger(),
	}
}

// Create stores an inbound message as new
func (s *messageService) Create(ctx context.Context, in models.MessageInput) (*models.Message, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Body = strings.TrimSpace(in.Body)
	in.SearchQuery = strings.TrimSpace(in.SearchQuery)
	in.Referrer = strings.TrimSpace(in.Referrer)
	if err := invalid(validation.ValidateMessageInput(&in)); err != nil {
		return nil, err
	}

	now := utcNow()
	message := &models.Message{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Email:       in.Email,
		Subject:     in.Subject,
		Body:        in.Body,
		Status:      models.MessageNew,
		SearchQuery: in.SearchQuery,
		Referrer:    in.Referrer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.Message.Create(ctx, message); err != nil {
		return nil, storeWrite("insert message", err)
	}

	s.log.Info().Str("message_id", message.ID).Msg("Message received")
	return message, nil
}

// Get returns a message by ID
func (s *messageService) Get(ctx context.Context, id string) (*models.Message, error) {
	message, err := s.repos.Message.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load message: %w", err)
	}
	if message == nil {
		return nil, fmt.Errorf("message %s: %w", id, ErrNotFound)
	}
	return message, nil
}

// List returns one page of messages, newest first
func (s *messageService) List(ctx context.Context, q models.MessageQuery) (*models.MessagePage, error) {
	if err := invalid(validation.ValidateMessageQuery(&q)); err != nil {
		return nil, err
	}
	q.Limit = pageBounds(q.Limit, s.cfg.Pagination)

	messages, total, err := s.repos.Message.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &models.MessagePage{Messages: messages, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

// UpdateStatus moves a message to any triage status. Setting the status it
// already has changes nothing.
func (s *messageService) UpdateStatus(ctx context.Context, id string, status models.MessageStatus) (*models.Message, error) {
	if !status.Valid() {
		return nil, invalid([]validation.FieldError{{Field: "status", Message: "must be a valid value"}})
	}

	message, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if message.Status == status {
		return message, nil
	}

	now := utcNow()
	updated, err := s.repos.Message.UpdateStatus(ctx, id, status, now)
	if err != nil {
		return nil, storeWrite("update message", err)
	}
	if !updated {
		return nil, fmt.Errorf("message %s: %w", id, ErrNotFound)
	}

	s.log.Info().
		Str("message_id", id).
		Str("from", string(message.Status)).
		Str("to", string(status)).
		Msg("Message status changed")

	message.Status = status
	message.UpdatedAt = now
	return message, nil
}
