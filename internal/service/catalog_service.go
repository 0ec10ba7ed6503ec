package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Kisangi1/The-SOL-NEW/internal/cache"
	"github.com/Kisangi1/The-SOL-NEW/internal/domain"
	"github.com/Kisangi1/The-SOL-NEW/internal/events"
	"github.com/Kisangi1/The-SOL-NEW/internal/metrics"
	"github.com/Kisangi1/The-SOL-NEW/internal/models"
)

// PagedDestinations is the cached shape of a destination listing.
type PagedDestinations struct {
	Items []models.Destination `json:"items"`
	Total int                  `json:"total"`
}

// PagedPackages is the cached shape of a package listing.
type PagedPackages struct {
	Items []models.Package `json:"items"`
	Total int              `json:"total"`
}

// CatalogService owns destinations and packages. Public listings go
// through the injected cache; every write publishes a change event, and
// the bus subscriber from RegisterEventHandlers drops the cache
// wholesale so a stale page can never outlive a change.
type CatalogService struct {
	repo     domain.Repository
	cache    cache.Cache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewCatalogService(repo domain.Repository, c cache.Cache, eventBus domain.EventPublisher, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		cache:    c,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Destinations

func (s *CatalogService) CreateDestination(ctx context.Context, d *models.Destination) error {
	if err := validateDestination(d); err != nil {
		return err
	}
	if err := s.repo.CreateDestination(ctx, d); err != nil {
		return err
	}
	s.publish(events.EventDestinationChange, d.ID)
	return nil
}

func (s *CatalogService) GetDestination(ctx context.Context, id string) (*models.Destination, error) {
	return s.repo.GetDestination(ctx, id)
}

func (s *CatalogService) ListDestinations(ctx context.Context, page, pageSize int) (*PagedDestinations, error) {
	page, pageSize = normalizePage(page, pageSize)
	key := fmt.Sprintf("destinations:p%d:s%d", page, pageSize)

	var cached PagedDestinations
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	items, total, err := s.repo.ListDestinations(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	result := &PagedDestinations{Items: items, Total: total}
	s.store(ctx, key, result)
	return result, nil
}

func (s *CatalogService) UpdateDestination(ctx context.Context, d *models.Destination) error {
	if err := s.repo.UpdateDestination(ctx, d); err != nil {
		return err
	}
	s.publish(events.EventDestinationChange, d.ID)
	return nil
}

func (s *CatalogService) DeleteDestination(ctx context.Context, id string) error {
	if err := s.repo.DeleteDestination(ctx, id); err != nil {
		return err
	}
	s.publish(events.EventDestinationChange, id)
	return nil
}

// Packages

func (s *CatalogService) CreatePackage(ctx context.Context, p *models.Package) error {
	if err := validatePackage(p); err != nil {
		return err
	}
	if err := s.repo.CreatePackage(ctx, p); err != nil {
		return err
	}
	s.publish(events.EventPackageChanged, p.ID)
	return nil
}

func (s *CatalogService) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	return s.repo.GetPackage(ctx, id)
}

func (s *CatalogService) ListPackages(ctx context.Context, page, pageSize int, packageType string) (*PagedPackages, error) {
	if packageType != "" && !models.ValidPackageType(packageType) {
		return nil, fmt.Errorf("%w: unknown package type %q", ErrValidation, packageType)
	}
	page, pageSize = normalizePage(page, pageSize)
	key := fmt.Sprintf("packages:p%d:s%d:t%s", page, pageSize, packageType)

	var cached PagedPackages
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	items, total, err := s.repo.ListPackages(ctx, page, pageSize, packageType)
	if err != nil {
		return nil, err
	}

	result := &PagedPackages{Items: items, Total: total}
	s.store(ctx, key, result)
	return result, nil
}

func (s *CatalogService) UpdatePackage(ctx context.Context, p *models.Package) error {
	if p.Type != "" && !models.ValidPackageType(p.Type) {
		return fmt.Errorf("%w: unknown package type %q", ErrValidation, p.Type)
	}
	if err := s.repo.UpdatePackage(ctx, p); err != nil {
		return err
	}
	s.publish(events.EventPackageChanged, p.ID)
	return nil
}

func (s *CatalogService) DeletePackage(ctx context.Context, id string) error {
	if err := s.repo.DeletePackage(ctx, id); err != nil {
		return err
	}
	s.publish(events.EventPackageChanged, id)
	return nil
}

// Helpers

func validateDestination(d *models.Destination) error {
	if d.Name == "" || d.Title == "" || d.Description == "" {
		return fmt.Errorf("%w: name, title and description are required", ErrValidation)
	}
	if d.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	return nil
}

func validatePackage(p *models.Package) error {
	if p.Name == "" || p.Details == "" {
		return fmt.Errorf("%w: name and details are required", ErrValidation)
	}
	if !models.ValidPackageType(p.Type) {
		return fmt.Errorf("%w: unknown package type %q", ErrValidation, p.Type)
	}
	if p.Type == models.PackageTypeOther && p.CustomType == "" {
		return fmt.Errorf("%w: custom type is required for type OTHER", ErrValidation)
	}
	if p.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = models.DefaultPageSize
	}
	return page, pageSize
}

func (s *CatalogService) lookup(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache get error")
		return false
	}
	if data == nil {
		metrics.IncCache("miss")
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache decode error")
		return false
	}
	metrics.IncCache("hit")
	return true
}

func (s *CatalogService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache set error")
	}
}

func (s *CatalogService) publish(eventType, id string) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, map[string]string{"id": id}); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
