package models

import (
	"time"

	"gorm.io/gorm"
)

type Store struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Address   string         `json:"address"`
	City      string         `json:"city"`
	CountryID *uint          `json:"country_id,omitempty"`
	Phone     string         `json:"phone"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Inventory is the number of rentable copies of a movie held by a store.
type Inventory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StoreID    uint      `gorm:"not null;uniqueIndex:idx_inventory_store_movie" json:"store_id"`
	MovieID    uint      `gorm:"not null;uniqueIndex:idx_inventory_store_movie" json:"movie_id"`
	StockCount int       `gorm:"not null;default:0" json:"stock_count"`
	Movie      *Movie    `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
	Store      *Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Inventory) TableName() string {
	return "inventory"
}
