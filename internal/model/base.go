package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBase stamps a fresh id and both timestamps.
func NewBase(now time.Time) Base {
	return Base{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes UpdatedAt.
func (b *Base) Touch(now time.Time) {
	b.UpdatedAt = now
}

func (b Base) GetID() string {
	return b.ID
}
