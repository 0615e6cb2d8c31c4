// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/carhive/carhive/internal/media"
	"github.com/carhive/carhive/internal/metrics"
	"github.com/carhive/carhive/internal/model"
	"github.com/carhive/carhive/internal/repository"
)

// Service errors.
var (
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrTitleTooLong        = errors.New("title exceeds maximum length")
	ErrDescriptionTooLong  = errors.New("description exceeds maximum length")
	ErrTooManyImages       = errors.New("too many images")
	ErrCarNotFound         = errors.New("car not found")
	ErrUploadFailed        = errors.New("image upload failed")
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// CarStore is the persistence layer the car service depends on.
// Every method is owner-scoped; *repository.Repository implements it.
type CarStore interface {
	CreateCar(ctx context.Context, car *model.Car) error
	GetCar(ctx context.Context, ownerID, id string) (*model.Car, error)
	ListCars(ctx context.Context, filter repository.CarFilter) ([]*model.Car, error)
	UpdateCar(ctx context.Context, car *model.Car) error
	DeleteCar(ctx context.Context, ownerID, id string) (*model.Car, error)
}

// CarCache is the read-through cache for car records.
// *cache.Cache implements it.
type CarCache interface {
	GetCar(ctx context.Context, ownerID, id string) (*model.Car, error)
	SetCar(ctx context.Context, car *model.Car) error
	DeleteCar(ctx context.Context, ownerID, id string) error
}

// ImageUpload is a single image payload submitted with a create or
// update request.
type ImageUpload struct {
	Filename string
	Data     io.Reader
}

// CarService orchestrates car CRUD: ownership checks, image lifecycle
// through the media store, and persistence through the repository.
type CarService struct {
	store   CarStore
	cache   CarCache
	media   media.Store
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewCarService creates a new CarService.
func NewCarService(store CarStore, carCache CarCache, mediaStore media.Store, recorder metrics.Recorder, logger *slog.Logger) *CarService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CarService{
		store:   store,
		cache:   carCache,
		media:   mediaStore,
		metrics: recorder,
		logger:  logger,
	}
}

// CreateCarInput defines input for creating a car listing.
type CreateCarInput struct {
	OwnerID     string
	Title       string
	Description string
	Tags        model.Tags
	Images      []ImageUpload
}

// CreateCar validates the listing, uploads its images, and persists a
// new car owned by the caller. If any single upload fails the whole
// operation fails and nothing is persisted.
func (s *CarService) CreateCar(ctx context.Context, input CreateCarInput) (*model.Car, error) {
	if err := validateListing(input.Title, input.Description, len(input.Images)); err != nil {
		return nil, err
	}

	urls, err := s.uploadImages(ctx, input.Images)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	car := &model.Car{
		ID:          ulid.Make().String(),
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		Description: input.Description,
		Images:      urls,
		Tags:        input.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateCar(ctx, car); err != nil {
		return nil, fmt.Errorf("failed to create car: %w", err)
	}

	s.metrics.IncCarCreated()

	return car, nil
}

// ListCarsInput defines input for listing cars.
type ListCarsInput struct {
	OwnerID string
	Search  string
}

// ListCars returns the caller's cars, newest first. A non-empty search
// term filters by case-insensitive substring match across title,
// description, and all tag values. Zero matches is not an error.
func (s *CarService) ListCars(ctx context.Context, input ListCarsInput) ([]*model.Car, error) {
	cars, err := s.store.ListCars(ctx, repository.CarFilter{
		OwnerID: input.OwnerID,
		Search:  strings.TrimSpace(input.Search),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}

	if cars == nil {
		cars = []*model.Car{}
	}

	return cars, nil
}

// GetCar retrieves one of the caller's cars by ID. A missing ID and an
// ID owned by someone else both return ErrCarNotFound.
func (s *CarService) GetCar(ctx context.Context, ownerID, id string) (*model.Car, error) {
	if car, err := s.cache.GetCar(ctx, ownerID, id); err == nil {
		s.metrics.IncCarCacheHit()
		return car, nil
	}
	s.metrics.IncCarCacheMiss()

	car, err := s.store.GetCar(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	if err := s.cache.SetCar(ctx, car); err != nil {
		s.logger.Warn("car cache backfill failed", "car_id", id, "error", err)
	}

	return car, nil
}

// UpdateCarInput defines input for updating a car listing.
// Title, Description, and Tags always overwrite the stored values.
// An empty Images slice leaves the stored image sequence untouched;
// a non-empty one replaces it wholesale.
type UpdateCarInput struct {
	OwnerID     string
	ID          string
	Title       string
	Description string
	Tags        model.Tags
	Images      []ImageUpload
}

// UpdateCar overwrites one of the caller's cars. When new images are
// supplied the superseded media objects are released best-effort after
// the record is persisted.
func (s *CarService) UpdateCar(ctx context.Context, input UpdateCarInput) (*model.Car, error) {
	if err := validateListing(input.Title, input.Description, len(input.Images)); err != nil {
		return nil, err
	}

	car, err := s.store.GetCar(ctx, input.OwnerID, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	var superseded []string
	if len(input.Images) > 0 {
		urls, err := s.uploadImages(ctx, input.Images)
		if err != nil {
			return nil, err
		}
		superseded = car.Images
		car.Images = urls
	}

	car.Title = input.Title
	car.Description = input.Description
	car.Tags = input.Tags
	car.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateCar(ctx, car); err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, fmt.Errorf("failed to update car: %w", err)
	}

	s.metrics.IncCarUpdated()

	if err := s.cache.DeleteCar(ctx, car.OwnerID, car.ID); err != nil {
		s.logger.Warn("car cache invalidation failed", "car_id", car.ID, "error", err)
	}

	// Replaced images are no longer referenced by any record.
	s.releaseImages(ctx, superseded)

	return car, nil
}

// DeleteCar removes one of the caller's cars and releases its media
// objects best-effort. Image cleanup failures never fail the delete.
func (s *CarService) DeleteCar(ctx context.Context, ownerID, id string) error {
	car, err := s.store.DeleteCar(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return ErrCarNotFound
		}
		return fmt.Errorf("failed to delete car: %w", err)
	}

	s.metrics.IncCarDeleted()

	if err := s.cache.DeleteCar(ctx, ownerID, id); err != nil {
		s.logger.Warn("car cache invalidation failed", "car_id", id, "error", err)
	}

	s.releaseImages(ctx, car.Images)

	return nil
}

// uploadImages pushes all payloads to the media store concurrently.
// The returned URLs keep submission order regardless of completion
// order. Any single failure fails the whole batch.
func (s *CarService) uploadImages(ctx context.Context, images []ImageUpload) ([]string, error) {
	if len(images) == 0 {
		return []string{}, nil
	}

	start := time.Now()
	urls := make([]string, len(images))

	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			url, err := s.media.Upload(gctx, img.Data, img.Filename)
			if err != nil {
				return fmt.Errorf("upload %q: %w", img.Filename, err)
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.metrics.IncImageUploadFailed()
		s.logger.Error("image upload failed", "error", err)
		return nil, fmt.Errorf("%w: %s", ErrUploadFailed, err)
	}

	for range images {
		s.metrics.IncImageUploaded()
	}
	s.metrics.ObserveUploadDuration(time.Since(start))

	return urls, nil
}

// releaseImages issues a best-effort media store deletion for every
// URL. Failures are logged and ignored; cleanup is not transactional.
func (s *CarService) releaseImages(ctx context.Context, urls []string) {
	for _, url := range urls {
		publicID := media.PublicIDFromURL(url)
		if publicID == "" {
			continue
		}
		if err := s.media.Delete(ctx, publicID); err != nil {
			s.logger.Warn("image cleanup failed", "public_id", publicID, "error", err)
			continue
		}
		s.metrics.IncImageDeleted()
	}
}

// validateListing checks the text fields and image count shared by
// create and update.
func validateListing(title, description string, imageCount int) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(description) == "" {
		return ErrDescriptionRequired
	}
	if len(description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if imageCount > model.MaxCarImages {
		return ErrTooManyImages
	}
	return nil
}
