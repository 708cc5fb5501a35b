package models

import (
	"time"

	"gorm.io/gorm"
)

type Actor struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"not null;index" json:"name"`
	ProfileURL string         `json:"profile_url"`
	Roles      []MovieActor   `gorm:"foreignKey:ActorID" json:"roles,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// MovieActor links an actor to a movie with the character they played.
type MovieActor struct {
	MovieID       uint   `gorm:"primaryKey" json:"movie_id"`
	ActorID       uint   `gorm:"primaryKey" json:"actor_id"`
	CharacterName string `json:"character_name"`
	CastOrder     int    `gorm:"default:0" json:"cast_order"`
	Movie         *Movie `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
	Actor         *Actor `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
