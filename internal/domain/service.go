package domain

import "time"

// Service is a bookable item of a shop's catalog
type Service struct {
	ID              int64
	ShopID          int64
	Name            string
	DurationMinutes int
	Price           float64
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
