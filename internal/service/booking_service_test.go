package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Kisangi1/The-SOL-NEW/internal/database"
	"github.com/Kisangi1/The-SOL-NEW/internal/models"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) ListBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockRepo) UpdateBookingStatus(ctx context.Context, id, current, target string) error {
	return m.Called(ctx, id, current, target).Error(0)
}
func (m *mockRepo) CreateDestination(ctx context.Context, d *models.Destination) error {
	return m.Called(ctx, d).Error(0)
}
func (m *mockRepo) GetDestination(ctx context.Context, id string) (*models.Destination, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Destination), args.Error(1)
}
func (m *mockRepo) GetDestinationName(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}
func (m *mockRepo) ListDestinations(ctx context.Context, page, pageSize int) ([]models.Destination, int, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Destination), args.Int(1), args.Error(2)
}
func (m *mockRepo) UpdateDestination(ctx context.Context, d *models.Destination) error {
	return m.Called(ctx, d).Error(0)
}
func (m *mockRepo) DeleteDestination(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) CreatePackage(ctx context.Context, p *models.Package) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Package), args.Error(1)
}
func (m *mockRepo) GetPackageName(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}
func (m *mockRepo) ListPackages(ctx context.Context, page, pageSize int, packageType string) ([]models.Package, int, error) {
	args := m.Called(ctx, page, pageSize, packageType)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Package), args.Int(1), args.Error(2)
}
func (m *mockRepo) UpdatePackage(ctx context.Context, p *models.Package) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockRepo) DeletePackage(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) GetSubscriberByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscriber), args.Error(1)
}
func (m *mockRepo) CreateSubscriber(ctx context.Context, s *models.Subscriber) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockRepo) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscriber), args.Error(1)
}

type mockMailQueue struct {
	mock.Mock
}

func (m *mockMailQueue) Enqueue(ctx context.Context, template, recipient, payload string) error {
	return m.Called(ctx, template, recipient, payload).Error(0)
}

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func validBooking() *models.Booking {
	return &models.Booking{
		Name:      "Jane Mwangi",
		Email:     "jane@example.com",
		PackageID: "pkg-1",
		StartDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestSubmitBooking(t *testing.T) {
	repo := new(mockRepo)
	mailQueue := new(mockMailQueue)
	svc := NewBookingService(repo, nil, mailQueue, testLogger())

	booking := validBooking()
	repo.On("GetPackageName", mock.Anything, "pkg-1").Return("Masai Mara Safari", nil)
	repo.On("CreateBooking", mock.Anything, booking).Return(nil)
	mailQueue.On("Enqueue", mock.Anything, models.TemplateBookingConfirmation, "jane@example.com", mock.Anything).Return(nil)

	err := svc.Submit(context.Background(), booking)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Equal(t, "Masai Mara Safari", booking.ReferenceName)
	repo.AssertExpectations(t)
	mailQueue.AssertExpectations(t)
}

func TestSubmitBookingEnqueueFailureDoesNotFail(t *testing.T) {
	repo := new(mockRepo)
	mailQueue := new(mockMailQueue)
	svc := NewBookingService(repo, nil, mailQueue, testLogger())

	booking := validBooking()
	repo.On("GetPackageName", mock.Anything, "pkg-1").Return("Masai Mara Safari", nil)
	repo.On("CreateBooking", mock.Anything, booking).Return(nil)
	mailQueue.On("Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("outbox down"))

	err := svc.Submit(context.Background(), booking)
	assert.NoError(t, err)
}

func TestSubmitBookingValidation(t *testing.T) {
	svc := NewBookingService(new(mockRepo), nil, nil, testLogger())
	ctx := context.Background()

	t.Run("MissingName", func(t *testing.T) {
		b := validBooking()
		b.Name = ""
		err := svc.Submit(ctx, b)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("BadEmail", func(t *testing.T) {
		b := validBooking()
		b.Email = "not-an-email"
		err := svc.Submit(ctx, b)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("BothReferences", func(t *testing.T) {
		b := validBooking()
		b.DestinationID = "dest-1"
		err := svc.Submit(ctx, b)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("NoReference", func(t *testing.T) {
		b := validBooking()
		b.PackageID = ""
		err := svc.Submit(ctx, b)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		b := validBooking()
		b.StartDate, b.EndDate = b.EndDate, b.StartDate
		err := svc.Submit(ctx, b)
		assert.ErrorIs(t, err, database.ErrInvalidDateRange)
	})
}

func TestSubmitBookingUnknownPackage(t *testing.T) {
	repo := new(mockRepo)
	svc := NewBookingService(repo, nil, nil, testLogger())

	booking := validBooking()
	repo.On("GetPackageName", mock.Anything, "pkg-1").Return("", database.ErrNotFound)

	// Несуществующий id это ошибка ввода, а не 404
	err := svc.Submit(context.Background(), booking)
	assert.ErrorIs(t, err, ErrValidation)
	repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestApproveBooking(t *testing.T) {
	repo := new(mockRepo)
	mailQueue := new(mockMailQueue)
	svc := NewBookingService(repo, nil, mailQueue, testLogger())

	booking := validBooking()
	booking.ID = "b-1"
	booking.Status = models.StatusPending
	booking.ReferenceName = "Masai Mara Safari"

	repo.On("GetBooking", mock.Anything, "b-1").Return(booking, nil)
	repo.On("UpdateBookingStatus", mock.Anything, "b-1", models.StatusPending, models.StatusApproved).Return(nil)
	mailQueue.On("Enqueue", mock.Anything, models.TemplateBookingApproved, "jane@example.com", mock.Anything).Return(nil)

	updated, err := svc.Approve(context.Background(), "b-1")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	repo.AssertExpectations(t)
	mailQueue.AssertExpectations(t)
}

func TestApproveIdempotent(t *testing.T) {
	repo := new(mockRepo)
	mailQueue := new(mockMailQueue)
	svc := NewBookingService(repo, nil, mailQueue, testLogger())

	booking := validBooking()
	booking.ID = "b-1"
	booking.Status = models.StatusApproved

	repo.On("GetBooking", mock.Anything, "b-1").Return(booking, nil)

	updated, err := svc.Approve(context.Background(), "b-1")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	// Без смены статуса письмо не уходит
	mailQueue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectedCannotBeApproved(t *testing.T) {
	repo := new(mockRepo)
	svc := NewBookingService(repo, nil, nil, testLogger())

	booking := validBooking()
	booking.ID = "b-1"
	booking.Status = models.StatusRejected

	repo.On("GetBooking", mock.Anything, "b-1").Return(booking, nil)

	_, err := svc.Approve(context.Background(), "b-1")
	assert.ErrorIs(t, err, database.ErrInvalidTransition)
}

func TestCompleteRequiresApproved(t *testing.T) {
	repo := new(mockRepo)
	svc := NewBookingService(repo, nil, nil, testLogger())

	booking := validBooking()
	booking.ID = "b-1"
	booking.Status = models.StatusPending

	repo.On("GetBooking", mock.Anything, "b-1").Return(booking, nil)

	_, err := svc.Complete(context.Background(), "b-1")
	assert.ErrorIs(t, err, database.ErrInvalidTransition)
}

func TestCompleteSendsNoEmail(t *testing.T) {
	repo := new(mockRepo)
	mailQueue := new(mockMailQueue)
	svc := NewBookingService(repo, nil, mailQueue, testLogger())

	booking := validBooking()
	booking.ID = "b-1"
	booking.Status = models.StatusApproved

	repo.On("GetBooking", mock.Anything, "b-1").Return(booking, nil)
	repo.On("UpdateBookingStatus", mock.Anything, "b-1", models.StatusApproved, models.StatusCompleted).Return(nil)

	updated, err := svc.Complete(context.Background(), "b-1")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	mailQueue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionNotFound(t *testing.T) {
	repo := new(mockRepo)
	svc := NewBookingService(repo, nil, nil, testLogger())

	repo.On("GetBooking", mock.Anything, "missing").Return(nil, database.ErrNotFound)

	_, err := svc.Approve(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestTransitionConcurrentConflict(t *testing.T) {
	repo := new(mockRepo)
	svc := NewBookingService(repo, nil, nil, testLogger())

	booking := validBooking()
	booking.ID = "b-1"
	booking.Status = models.StatusPending

	repo.On("GetBooking", mock.Anything, "b-1").Return(booking, nil)
	// Другой админ успел раньше
	repo.On("UpdateBookingStatus", mock.Anything, "b-1", models.StatusPending, models.StatusApproved).Return(database.ErrStatusConflict)

	_, err := svc.Approve(context.Background(), "b-1")
	assert.ErrorIs(t, err, database.ErrStatusConflict)
}
