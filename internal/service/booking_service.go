package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/Kisangi1/The-SOL-NEW/internal/database"
	"github.com/Kisangi1/The-SOL-NEW/internal/domain"
	"github.com/Kisangi1/The-SOL-NEW/internal/events"
	"github.com/Kisangi1/The-SOL-NEW/internal/mailer"
	"github.com/Kisangi1/The-SOL-NEW/internal/metrics"
	"github.com/Kisangi1/The-SOL-NEW/internal/models"
)

// ErrValidation marks client input errors; handlers map it to 400.
var ErrValidation = errors.New("validation failed")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const emailDateFormat = "January 2, 2006"

// transitionFrom maps a target status to the single status a booking
// must currently hold for the transition to be legal.
var transitionFrom = map[string]string{
	models.StatusApproved:  models.StatusPending,
	models.StatusRejected:  models.StatusPending,
	models.StatusCompleted: models.StatusApproved,
}

// statusTemplates are the emails triggered by a successful transition.
// Completion is internal bookkeeping and sends nothing.
var statusTemplates = map[string]string{
	models.StatusApproved: models.TemplateBookingApproved,
	models.StatusRejected: models.TemplateBookingRejected,
}

type BookingService struct {
	repo      domain.Repository
	eventBus  domain.EventPublisher
	mailQueue domain.MailQueue
	logger    *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, mailQueue domain.MailQueue, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:      repo,
		eventBus:  eventBus,
		mailQueue: mailQueue,
		logger:    logger,
	}
}

// Submit validates and persists a new booking request, then queues the
// confirmation email. The email is best-effort: a full outbox must not
// turn away a customer whose booking is already stored.
func (s *BookingService) Submit(ctx context.Context, booking *models.Booking) error {
	if err := s.validate(booking); err != nil {
		return err
	}

	// Денормализуем имя пакета/направления при создании
	var err error
	if booking.PackageID != "" {
		booking.ReferenceName, err = s.repo.GetPackageName(ctx, booking.PackageID)
	} else {
		booking.ReferenceName, err = s.repo.GetDestinationName(ctx, booking.DestinationID)
	}
	if errors.Is(err, database.ErrNotFound) {
		// Неизвестный id в заявке считаем ошибкой ввода клиента
		return fmt.Errorf("%w: unknown %s id", ErrValidation, booking.ReferenceKind())
	}
	if err != nil {
		return err
	}

	booking.Status = models.StatusPending
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingSubmitted, booking)
	s.enqueueEmail(ctx, booking, models.TemplateBookingConfirmation)
	return nil
}

func (s *BookingService) validate(b *models.Booking) error {
	if b.Name == "" || b.Email == "" {
		return fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if !emailPattern.MatchString(b.Email) {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if (b.PackageID == "") == (b.DestinationID == "") {
		return fmt.Errorf("%w: exactly one of package or destination is required", ErrValidation)
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if b.EndDate.Before(b.StartDate) {
		return database.ErrInvalidDateRange
	}
	return nil
}

// Transition moves a booking to target, enforcing the lifecycle:
// PENDING может стать APPROVED или REJECTED, из APPROVED только COMPLETED.
// Repeating the current status is an idempotent no-op without email.
func (s *BookingService) Transition(ctx context.Context, id, target string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == target {
		return booking, nil
	}

	from, ok := transitionFrom[target]
	if !ok || booking.Status != from {
		return nil, fmt.Errorf("%w: %s -> %s", database.ErrInvalidTransition, booking.Status, target)
	}

	if err := s.repo.UpdateBookingStatus(ctx, id, from, target); err != nil {
		return nil, err
	}
	booking.Status = target
	metrics.IncBookingTransition(target)

	s.publishEvent(eventForStatus(target), booking)
	if template, ok := statusTemplates[target]; ok {
		s.enqueueEmail(ctx, booking, template)
	}
	return booking, nil
}

func (s *BookingService) Approve(ctx context.Context, id string) (*models.Booking, error) {
	return s.Transition(ctx, id, models.StatusApproved)
}

func (s *BookingService) Reject(ctx context.Context, id string) (*models.Booking, error) {
	return s.Transition(ctx, id, models.StatusRejected)
}

func (s *BookingService) Complete(ctx context.Context, id string) (*models.Booking, error) {
	return s.Transition(ctx, id, models.StatusCompleted)
}

func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) List(ctx context.Context) ([]models.Booking, error) {
	return s.repo.ListBookings(ctx)
}

func eventForStatus(status string) string {
	switch status {
	case models.StatusApproved:
		return events.EventBookingApproved
	case models.StatusRejected:
		return events.EventBookingRejected
	default:
		return events.EventBookingCompleted
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:     booking.ID,
		Name:          booking.Name,
		Email:         booking.Email,
		ReferenceKind: booking.ReferenceKind(),
		ReferenceName: booking.ReferenceName,
		Status:        booking.Status,
		StartDate:     booking.StartDate,
		EndDate:       booking.EndDate,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueEmail(ctx context.Context, booking *models.Booking, template string) {
	if s.mailQueue == nil {
		return
	}

	payload, err := json.Marshal(mailer.BookingPayload{
		Name:          booking.Name,
		ReferenceKind: booking.ReferenceKind(),
		ReferenceName: booking.ReferenceName,
		StartDate:     booking.StartDate.Format(emailDateFormat),
		EndDate:       booking.EndDate.Format(emailDateFormat),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("encode email payload error")
		return
	}

	if err := s.mailQueue.Enqueue(ctx, template, booking.Email, string(payload)); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Str("template", template).Msg("mail enqueue error")
	}
}
