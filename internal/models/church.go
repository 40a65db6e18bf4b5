package models

import "time"

// Church represents a local congregation belonging to a mission.
type Church struct {
	ID        int64     `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
	Pastor    string    `json:"pastor"`
	MissionID int64     `json:"mission_id" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Mission is an organizational unit grouping churches under one president.
type Mission struct {
	ID        int64     `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	President string    `json:"president"`
	Region    string    `json:"region"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
