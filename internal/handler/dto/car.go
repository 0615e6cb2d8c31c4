// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/carhive/carhive/internal/model"
)

// ErrInvalidTags indicates the tags form field is not valid JSON.
var ErrInvalidTags = errors.New("invalid tags payload")

// CarResponse represents a car in API responses.
type CarResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Images      []string   `json:"images"`
	Tags        model.Tags `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ParseTags decodes the JSON-encoded tags field from a multipart form.
// An empty field yields empty tags; unknown keys are ignored; missing
// keys default to empty strings.
func ParseTags(raw string) (model.Tags, error) {
	var tags model.Tags
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return model.Tags{}, ErrInvalidTags
	}
	return tags, nil
}

// ToCarResponse converts a Car model to CarResponse DTO.
// The owner ID stays server-side; callers only ever see their own cars.
func ToCarResponse(car *model.Car) *CarResponse {
	images := car.Images
	if images == nil {
		images = []string{}
	}
	return &CarResponse{
		ID:          car.ID,
		Title:       car.Title,
		Description: car.Description,
		Images:      images,
		Tags:        car.Tags,
		CreatedAt:   car.CreatedAt,
		UpdatedAt:   car.UpdatedAt,
	}
}

// ToCarListResponse converts a slice of Car models to response DTOs.
func ToCarListResponse(cars []*model.Car) []CarResponse {
	responses := make([]CarResponse, len(cars))
	for i, car := range cars {
		responses[i] = *ToCarResponse(car)
	}
	return responses
}
