package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/Kisangi1/The-SOL-NEW/internal/cache"
	"github.com/Kisangi1/The-SOL-NEW/internal/events"
	"github.com/Kisangi1/The-SOL-NEW/internal/metrics"
)

// RegisterEventHandlers wires the in-process consumers of domain
// events. Catalog writes invalidate the listing cache through the bus,
// booking and newsletter events land in the audit log. Call once at
// startup before traffic.
func RegisterEventHandlers(bus *events.EventBus, catalogCache cache.Cache, logger *zerolog.Logger) {
	invalidate := func(ev *events.Event) error {
		metrics.IncEvent(ev.Type)
		if catalogCache == nil {
			return nil
		}
		if err := catalogCache.Invalidate(context.Background()); err != nil {
			logger.Warn().Err(err).Str("event", ev.Type).Msg("cache invalidate error")
		}
		return nil
	}
	bus.Subscribe(events.EventPackageChanged, invalidate)
	bus.Subscribe(events.EventDestinationChange, invalidate)

	audit := func(ev *events.Event) error {
		metrics.IncEvent(ev.Type)

		var payload events.BookingEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("event", ev.Type).
			Str("booking_id", payload.BookingID).
			Str("status", payload.Status).
			Str("reference", payload.ReferenceName).
			Msg("booking event")
		return nil
	}
	bus.Subscribe(events.EventBookingSubmitted, audit)
	bus.Subscribe(events.EventBookingApproved, audit)
	bus.Subscribe(events.EventBookingRejected, audit)
	bus.Subscribe(events.EventBookingCompleted, audit)

	bus.Subscribe(events.EventSubscriberAdded, func(ev *events.Event) error {
		metrics.IncEvent(ev.Type)
		logger.Info().Str("event", ev.Type).RawJSON("payload", ev.Payload).Msg("subscriber event")
		return nil
	})
}
