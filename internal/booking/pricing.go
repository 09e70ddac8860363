package booking

import (
	"hotel-reservation-backend/internal/catalog"
)

// Quote is the price breakdown of a stay.
type Quote struct {
	RoomType string  `json:"room_type"`
	Nights   int     `json:"nights"`
	Rate     float64 `json:"rate"`
	Total    float64 `json:"total"`
}

// ComputeTotal returns rate times nights. It depends only on the room type
// and the dates, so a stored total can always be re-derived.
func ComputeTotal(rt catalog.RoomType, iv Interval) float64 {
	return rt.Rate * float64(iv.Nights())
}
