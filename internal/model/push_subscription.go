package model

import (
	"strings"
	"time"
)

// PushSubscription holds a front-desk browser's Web Push registration.
// RoomTypes is a comma-separated filter; empty means every room type.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	RoomTypes string    `gorm:"size:256"`
	CreatedAt time.Time `gorm:"not null"`
}

// Wants reports whether the subscription asked for events of roomType.
func (s PushSubscription) Wants(roomType string) bool {
	if strings.TrimSpace(s.RoomTypes) == "" {
		return true
	}
	for _, rt := range strings.Split(s.RoomTypes, ",") {
		if strings.TrimSpace(rt) == roomType {
			return true
		}
	}
	return false
}

// RoomTypeList returns the filter as a slice.
func (s PushSubscription) RoomTypeList() []string {
	var out []string
	for _, rt := range strings.Split(s.RoomTypes, ",") {
		if rt = strings.TrimSpace(rt); rt != "" {
			out = append(out, rt)
		}
	}
	return out
}
