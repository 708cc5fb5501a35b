package models

import (
	"time"

	"gorm.io/gorm"
)

type MovieStatus string

const (
	MovieStatusRumored        MovieStatus = "Rumored"
	MovieStatusPlanned        MovieStatus = "Planned"
	MovieStatusInProduction   MovieStatus = "In Production"
	MovieStatusPostProduction MovieStatus = "Post Production"
	MovieStatusReleased       MovieStatus = "Released"
	MovieStatusCanceled       MovieStatus = "Canceled"
)

var MovieStatuses = []MovieStatus{
	MovieStatusRumored,
	MovieStatusPlanned,
	MovieStatusInProduction,
	MovieStatusPostProduction,
	MovieStatusReleased,
	MovieStatusCanceled,
}

func (s MovieStatus) Valid() bool {
	for _, status := range MovieStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Movie struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	TmdbID          int            `gorm:"uniqueIndex;not null" json:"tmdb_id"`
	ImdbID          *string        `gorm:"uniqueIndex" json:"imdb_id"`
	Title           string         `gorm:"not null;index" json:"title"`
	OriginalTitle   string         `gorm:"not null" json:"original_title"`
	Overview        string         `gorm:"type:text" json:"overview"`
	Runtime         int            `gorm:"default:0" json:"runtime"`
	ReleaseDate     time.Time      `gorm:"type:date;index" json:"release_date"`
	Genres          []Genre        `gorm:"many2many:movie_genres" json:"genres,omitempty"`
	OriginCountries []Country      `gorm:"many2many:movie_countries" json:"origin_countries,omitempty"`
	LanguageID      uint           `gorm:"not null;index" json:"language_id"`
	Language        *Language      `gorm:"foreignKey:LanguageID" json:"language,omitempty"`
	MovieStatus     MovieStatus    `gorm:"not null" json:"movie_status"`
	Popularity      float64        `gorm:"default:0" json:"popularity"`
	Budget          int64          `gorm:"default:0" json:"budget"`
	Revenue         int64          `gorm:"default:0" json:"revenue"`
	RatingAverage   float64        `gorm:"default:0" json:"rating_average"`
	RatingCount     int            `gorm:"default:0" json:"rating_count"`
	PosterURL       string         `json:"poster_url"`
	RentalRate      float64        `gorm:"not null;default:4.99" json:"rental_rate"`
	Cast            []MovieActor   `gorm:"foreignKey:MovieID" json:"cast,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
