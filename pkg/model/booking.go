package model

import (
	"time"
)

const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// SlotCatalog is the fixed set of hourly labels a calendar day can be booked
// against. A day with every label confirmed is fully booked.
var SlotCatalog = []string{
	"10:00",
	"11:00",
	"12:00",
	"13:00",
	"14:00",
	"15:00",
	"16:00",
	"17:00",
}

func IsValidSlot(slot string) bool {
	for _, s := range SlotCatalog {
		if s == slot {
			return true
		}
	}
	return false
}

type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Date      string    `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Slot      string    `json:"slot" bson:"slot" validate:"required,slot"`
	UserEmail string    `json:"user_email" bson:"user_email" validate:"required,email"`
	Status    string    `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`
	SessionID string    `json:"session_id,omitempty" bson:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Availability is the per-day occupancy view served to calendar UIs.
// ActiveViewers is a cosmetic random draw, not a persisted metric.
type Availability struct {
	Date          string   `json:"date"`
	BookedSlots   []string `json:"booked_slots"`
	ActiveViewers int      `json:"active_viewers"`
	IsFullyBooked bool     `json:"is_fully_booked"`
}
