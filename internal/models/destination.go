package models

import "time"

type Destination struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	BestTimeToTravel string    `json:"best_time_to_travel"`
	WhatToCarry      []string  `json:"what_to_carry"`
	Location         string    `json:"location"`
	Inclusive        []string  `json:"inclusive"`
	Exclusive        []string  `json:"exclusive"`
	Amount           float64   `json:"amount"`
	ImageURL         string    `json:"image_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
