package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RentalStatus string

const (
	RentalStatusActive   RentalStatus = "active"
	RentalStatusReturned RentalStatus = "returned"
)

type Rental struct {
	ID         uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	MovieID    uint         `gorm:"not null;index" json:"movie_id"`
	Movie      Movie        `gorm:"foreignKey:MovieID" json:"movie"`
	StoreID    uint         `gorm:"not null;index" json:"store_id"`
	Status     RentalStatus `gorm:"default:active" json:"status"`
	RentalRate float64      `gorm:"not null" json:"rental_rate"` // Snapshot of the movie's rate at checkout
	RentalDays int          `gorm:"not null" json:"rental_days"`
	Amount     float64      `gorm:"not null" json:"amount"`
	RentedAt   time.Time    `json:"rented_at"`
	DueAt      time.Time    `json:"due_at"`
	ReturnedAt *time.Time   `json:"returned_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (r *Rental) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsOverdue reports whether an active rental is past its due date.
func (r *Rental) IsOverdue(now time.Time) bool {
	return r.Status == RentalStatusActive && now.After(r.DueAt)
}
