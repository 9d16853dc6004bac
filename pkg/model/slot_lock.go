package model

import "time"

// SlotLock is an advisory lock preventing two requests from racing the
// check-then-insert on one (date, slot) key. The _id encodes the slot
// coordinates, so a duplicate key error means another request holds the lock.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
