package domain

import (
	"context"

	"github.com/Kisangi1/The-SOL-NEW/internal/models"
)

// Repository is the relational store surface the services depend on.
type Repository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, currentStatus, targetStatus string) error

	CreateDestination(ctx context.Context, d *models.Destination) error
	GetDestination(ctx context.Context, id string) (*models.Destination, error)
	GetDestinationName(ctx context.Context, id string) (string, error)
	ListDestinations(ctx context.Context, page, pageSize int) ([]models.Destination, int, error)
	UpdateDestination(ctx context.Context, d *models.Destination) error
	DeleteDestination(ctx context.Context, id string) error

	CreatePackage(ctx context.Context, p *models.Package) error
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	GetPackageName(ctx context.Context, id string) (string, error)
	ListPackages(ctx context.Context, page, pageSize int, packageType string) ([]models.Package, int, error)
	UpdatePackage(ctx context.Context, p *models.Package) error
	DeletePackage(ctx context.Context, id string) error

	GetSubscriberByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	CreateSubscriber(ctx context.Context, s *models.Subscriber) error
	ListSubscribers(ctx context.Context) ([]models.Subscriber, error)
}

// BlogRepository is the document store surface for blog articles.
type BlogRepository interface {
	List(ctx context.Context, page, pageSize int) ([]models.Blog, int64, error)
	Get(ctx context.Context, id string) (*models.Blog, error)
	Create(ctx context.Context, blog *models.Blog) error
	Update(ctx context.Context, id string, updates *models.Blog) (*models.Blog, error)
	Delete(ctx context.Context, id string) error
	Like(ctx context.Context, id string) (int64, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// MailQueue accepts outbox notifications for asynchronous delivery.
// Enqueue failures must never fail the request that triggered the email.
type MailQueue interface {
	Enqueue(ctx context.Context, template, recipient, payload string) error
}
