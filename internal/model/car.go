// Package model defines domain entities for the application.
package model

import "time"

// MaxCarImages is the maximum number of images a car listing may carry.
const MaxCarImages = 10

// Tags holds the recognized free-form labels on a car listing.
// All keys are optional; absent keys are stored as empty strings.
// Unknown keys in client input are ignored.
type Tags struct {
	CarType string `json:"car_type"`
	Company string `json:"company"`
	Dealer  string `json:"dealer"`
}

// Car represents a car listing owned by a single user.
type Car struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Tags        Tags      `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
