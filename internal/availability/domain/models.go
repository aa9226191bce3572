package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type AvailableSlot struct {
	Date           time.Time `json:"available_date"`
	SlotsRemaining int       `json:"slots_remaining"`
}

// WriterAvailability is the public widget payload: the open slot dates a
// sponsor can book for a writer, with just enough profile context to
// render a booking card.
type WriterAvailability struct {
	WriterID       snowflake.ID    `json:"writer_id"`
	Slug           string          `json:"slug"`
	NewsletterName string          `json:"newsletter_name"`
	PricePerSlot   int64           `json:"price_per_slot"`
	Currency       string          `json:"currency"`
	AvailableSlots []AvailableSlot `json:"available_slots"`
}

type Service interface {
	ForWriter(ctx context.Context, writerID string, weeksAhead int) (WriterAvailability, error)
	ForSlug(ctx context.Context, slug string, weeksAhead int) (WriterAvailability, error)
	IsSlotAvailable(ctx context.Context, writerID snowflake.ID, date time.Time) (bool, error)
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
	ErrInvalidWindow = errors.New("invalid_window")
)
