package model

import "time"

// Entry is one uploaded payload record. Entries are append-only: created on
// upload, never mutated, removed only by a full clear.
type Entry struct {
	Id        uint32            `storm:"id,increment" json:"id"`
	CreatedAt time.Time         `storm:"index" json:"createdAt"`
	Data      map[string]string `json:"data"`
}
