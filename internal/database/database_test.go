package database

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/Kisangi1/The-SOL-NEW/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestDestination(t *testing.T, db *DB, name string) *models.Destination {
	t.Helper()
	d := &models.Destination{
		Name:             name,
		Title:            name + " adventure",
		Description:      "description of " + name,
		BestTimeToTravel: "June to October",
		WhatToCarry:      []string{"sunscreen", "binoculars"},
		Location:         "Kenya",
		Inclusive:        []string{"park fees"},
		Exclusive:        []string{"flights"},
		Amount:           1200,
	}
	require.NoError(t, db.CreateDestination(context.Background(), d))
	return d
}

func createTestPackage(t *testing.T, db *DB, name, packageType string) *models.Package {
	t.Helper()
	p := &models.Package{
		Name:     name,
		Details:  "details of " + name,
		Type:     packageType,
		Amount:   900,
		Duration: 4,
		Nights:   3,
		Included: []string{"accommodation", "meals"},
		Excluded: []string{"tips"},
	}
	require.NoError(t, db.CreatePackage(context.Background(), p))
	return p
}

func TestDestinationCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	d := createTestDestination(t, db, "Maasai Mara")
	assert.NotEmpty(t, d.ID)

	got, err := db.GetDestination(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maasai Mara", got.Name)
	assert.Equal(t, []string{"sunscreen", "binoculars"}, got.WhatToCarry)
	assert.Equal(t, []string{"park fees"}, got.Inclusive)

	got.Title = "Updated title"
	got.ImageURL = "https://cdn.example.com/mara.jpg"
	require.NoError(t, db.UpdateDestination(ctx, got))

	updated, err := db.GetDestination(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated title", updated.Title)
	assert.Equal(t, "https://cdn.example.com/mara.jpg", updated.ImageURL)

	require.NoError(t, db.DeleteDestination(ctx, d.ID))
	_, err = db.GetDestination(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDestinationUpdateKeepsImageWhenEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	d := createTestDestination(t, db, "Amboseli")
	d.ImageURL = "https://cdn.example.com/amboseli.jpg"
	require.NoError(t, db.UpdateDestination(ctx, d))

	d.ImageURL = ""
	require.NoError(t, db.UpdateDestination(ctx, d))

	got, err := db.GetDestination(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/amboseli.jpg", got.ImageURL)
}

func TestDestinationNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.GetDestination(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, db.DeleteDestination(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, db.UpdateDestination(ctx, &models.Destination{ID: "missing"}), ErrNotFound)
}

func TestListDestinationsPagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		createTestDestination(t, db, fmt.Sprintf("Destination %02d", i))
	}

	page1, total, err := db.ListDestinations(ctx, 1, 9)
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	assert.Len(t, page1, 9)

	page2, _, err := db.ListDestinations(ctx, 2, 9)
	require.NoError(t, err)
	assert.Len(t, page2, 2)

	page3, total, err := db.ListDestinations(ctx, 3, 9)
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	assert.Empty(t, page3)
}

func TestListPackagesTypeFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestPackage(t, db, "Diani weekend", models.PackageTypeWeekend)
	createTestPackage(t, db, "Watamu honeymoon", models.PackageTypeHoneymoon)
	createTestPackage(t, db, "Naivasha weekend", models.PackageTypeWeekend)

	weekend, total, err := db.ListPackages(ctx, 1, 9, models.PackageTypeWeekend)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, weekend, 2)
	for _, p := range weekend {
		assert.Equal(t, models.PackageTypeWeekend, p.Type)
	}

	all, total, err := db.ListPackages(ctx, 1, 9, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)
}

func TestBookingCreateAndGetWithReferenceName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	d := createTestDestination(t, db, "Tsavo")
	booking := &models.Booking{
		Name:          "Jane",
		Email:         "jane@x.com",
		DestinationID: d.ID,
		StartDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		Status:        models.StatusPending,
	}
	require.NoError(t, db.CreateBooking(ctx, booking))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tsavo", got.ReferenceName)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Empty(t, got.PackageID)
	assert.Equal(t, "destination", got.ReferenceKind())
}

func TestListBookingsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := createTestPackage(t, db, "Safari deluxe", models.PackageTypeOther)
	for i := 0; i < 3; i++ {
		b := &models.Booking{
			Name:      fmt.Sprintf("Guest %d", i),
			Email:     fmt.Sprintf("guest%d@x.com", i),
			PackageID: p.ID,
			StartDate: time.Now().AddDate(0, 0, 7),
			EndDate:   time.Now().AddDate(0, 0, 10),
			Status:    models.StatusPending,
		}
		require.NoError(t, db.CreateBooking(ctx, b))
	}

	bookings, err := db.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	for _, b := range bookings {
		assert.Equal(t, "Safari deluxe", b.ReferenceName)
	}
	assert.False(t, bookings[0].CreatedAt.Before(bookings[2].CreatedAt))
}

func TestUpdateBookingStatusGuards(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	d := createTestDestination(t, db, "Lamu")
	booking := &models.Booking{
		Name:          "Omar",
		Email:         "omar@x.com",
		DestinationID: d.ID,
		StartDate:     time.Now(),
		EndDate:       time.Now().AddDate(0, 0, 2),
		Status:        models.StatusPending,
	}
	require.NoError(t, db.CreateBooking(ctx, booking))

	require.NoError(t, db.UpdateBookingStatus(ctx, booking.ID, models.StatusPending, models.StatusApproved))

	// Guard clause: the row is no longer PENDING.
	err := db.UpdateBookingStatus(ctx, booking.ID, models.StatusPending, models.StatusRejected)
	assert.ErrorIs(t, err, ErrStatusConflict)

	err = db.UpdateBookingStatus(ctx, "missing", models.StatusPending, models.StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestSubscriberUniqueness(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &models.Subscriber{Email: "traveler@x.com"}
	require.NoError(t, db.CreateSubscriber(ctx, first))

	dup := &models.Subscriber{Email: "traveler@x.com"}
	assert.ErrorIs(t, db.CreateSubscriber(ctx, dup), ErrDuplicateSubscriber)

	subscribers, err := db.ListSubscribers(ctx)
	require.NoError(t, err)
	assert.Len(t, subscribers, 1)

	got, err := db.GetSubscriberByEmail(ctx, "traveler@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = db.GetSubscriberByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationOutboxLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	n := &models.Notification{
		Template:  models.TemplateBookingConfirmation,
		Recipient: "jane@x.com",
		Payload:   `{"name":"Jane"}`,
		Status:    "pending",
	}
	require.NoError(t, db.CreateNotification(ctx, n))
	assert.NotZero(t, n.ID)

	pending, err := db.GetPendingNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.TemplateBookingConfirmation, pending[0].Template)

	// Retry in the future is not picked up.
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateNotificationStatus(ctx, n.ID, "retry", "smtp timeout", &future))
	pending, err = db.GetPendingNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Retry in the past is due again, with the attempt counted.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.UpdateNotificationStatus(ctx, n.ID, "retry", "smtp timeout", &past))
	pending, err = db.GetPendingNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].RetryCount)

	require.NoError(t, db.UpdateNotificationStatus(ctx, n.ID, "completed", "", nil))
	pending, err = db.GetPendingNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, db.UpdateNotificationStatus(ctx, n.ID, "failed", "gave up", nil))
	failed, err := db.GetFailedNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "gave up", failed[0].LastError)
}

func TestDBErrorPaths(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	db.Close() // closed DB to trigger errors

	ctx := context.Background()

	t.Run("CreateDestination", func(t *testing.T) {
		assert.Error(t, db.CreateDestination(ctx, &models.Destination{}))
	})
	t.Run("ListPackages", func(t *testing.T) {
		_, _, err := db.ListPackages(ctx, 1, 9, "")
		assert.Error(t, err)
	})
	t.Run("CreateBooking", func(t *testing.T) {
		assert.Error(t, db.CreateBooking(ctx, &models.Booking{}))
	})
	t.Run("CreateNotification", func(t *testing.T) {
		assert.Error(t, db.CreateNotification(ctx, &models.Notification{}))
	})
}
