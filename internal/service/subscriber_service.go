package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Kisangi1/The-SOL-NEW/internal/database"
	"github.com/Kisangi1/The-SOL-NEW/internal/domain"
	"github.com/Kisangi1/The-SOL-NEW/internal/events"
	"github.com/Kisangi1/The-SOL-NEW/internal/models"
)

type SubscriberService struct {
	repo      domain.Repository
	eventBus  domain.EventPublisher
	mailQueue domain.MailQueue
	logger    *zerolog.Logger
}

func NewSubscriberService(repo domain.Repository, eventBus domain.EventPublisher, mailQueue domain.MailQueue, logger *zerolog.Logger) *SubscriberService {
	return &SubscriberService{
		repo:      repo,
		eventBus:  eventBus,
		mailQueue: mailQueue,
		logger:    logger,
	}
}

// Subscribe adds an email to the newsletter list and queues the welcome
// email. Re-subscribing an existing address is a duplicate error; the
// UNIQUE index in the store backs the check under concurrent requests.
func (s *SubscriberService) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}

	if _, err := s.repo.GetSubscriberByEmail(ctx, email); err == nil {
		return nil, database.ErrDuplicateSubscriber
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	subscriber := &models.Subscriber{Email: email}
	if err := s.repo.CreateSubscriber(ctx, subscriber); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventSubscriberAdded, map[string]string{"email": email}); err != nil {
			s.logger.Error().Err(err).Msg("publish event error")
		}
	}

	if s.mailQueue != nil {
		if err := s.mailQueue.Enqueue(ctx, models.TemplateNewsletterWelcome, email, ""); err != nil {
			s.logger.Error().Err(err).Str("email", email).Msg("mail enqueue error")
		}
	}

	return subscriber, nil
}

func (s *SubscriberService) List(ctx context.Context) ([]models.Subscriber, error) {
	return s.repo.ListSubscribers(ctx)
}
