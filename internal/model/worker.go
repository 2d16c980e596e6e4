package model

import "github.com/google/uuid"

type Worker struct {
	ID              uuid.UUID    `json:"id"`
	UserID          uuid.UUID    `json:"user_id"`
	Name            string       `json:"name"`
	Phone           string       `json:"phone"`
	CurrentLocation *Coordinates `json:"current_location,omitempty"`
}

type WorkerProfilePatch struct {
	Name            *string
	CurrentLocation *Coordinates
}
