package models

import "time"

// Faculty represents a staff profile record.
type Faculty struct {
	ID        int64     `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	ImageURL  *string   `db:"image_url" json:"image_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PublicFaculty is the visitor-facing projection without timestamps.
type PublicFaculty struct {
	ID        int64   `db:"id" json:"id"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	ImageURL  *string `db:"image_url" json:"image_url"`
}
