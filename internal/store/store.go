// Package store persists named collections as whole JSON snapshots. Callers
// read a full collection, compute the next one and write it back; there are
// no partial updates and the last writer wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned by Get when the key holds nothing.
var ErrNotFound = errors.New("store: key not found")

// Store is a byte-oriented key value backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Collection keys, before prefixing.
const (
	KeyUsers         = "users"
	KeySessions      = "sessions"
	KeyPatients      = "patients"
	KeyMedicalStaff  = "medical_staff"
	KeySpecialties   = "specialties"
	KeyWorkShifts    = "work_shifts"
	KeyWorkSchedules = "work_schedules"
	KeyAppointments  = "appointments"
	KeyConsultations = "medical_consultations"
	KeyHistories     = "medical_histories"
	KeyExams         = "medical_exams"
)

const DefaultPrefix = "medical_system_"

// Load reads the collection under key. An absent or malformed value yields
// an empty collection; only backend failures are returned as errors.
func Load[T any](ctx context.Context, s Store, key string) ([]T, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("malformed collection, treating as empty")
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save overwrites the collection under key.
func Save[T any](ctx context.Context, s Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key currently holds a value.
func Exists(ctx context.Context, s Store, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
