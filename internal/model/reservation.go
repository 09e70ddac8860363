package model

import "time"

// Reservation is a guest booking of one room over [CheckIn, CheckOut).
type Reservation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"index;not null" json:"user_id"`
	GuestName   string    `gorm:"size:128;not null" json:"guest_name"`
	RoomNumber  int       `gorm:"index;not null" json:"room_number"`
	RoomType    string    `gorm:"size:32;not null;index:idx_reservations_type_dates,priority:1" json:"room_type"`
	CheckIn     time.Time `gorm:"not null;index:idx_reservations_type_dates,priority:2" json:"check_in"`
	CheckOut    time.Time `gorm:"not null;index:idx_reservations_type_dates,priority:3" json:"check_out"`
	PhoneNumber string    `gorm:"size:32" json:"phone_number"`
	Status      Status    `gorm:"size:16;not null;default:Pending" json:"status"`
	TotalPrice  float64   `gorm:"not null" json:"total_price"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
