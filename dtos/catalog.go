package dtos

// MovieRequest is the admin create/update body for a movie
type MovieRequest struct {
	TmdbID           int      `json:"tmdb_id" binding:"required,gt=0"`
	ImdbID           *string  `json:"imdb_id"`
	Title            string   `json:"title" binding:"required,max=255"`
	OriginalTitle    string   `json:"original_title" binding:"required,max=255"`
	Overview         string   `json:"overview" binding:"required"`
	Runtime          int      `json:"runtime" binding:"min=0"`
	ReleaseDate      string   `json:"release_date" binding:"required,datetime=2006-01-02"`
	GenreIDs         []uint   `json:"genre_ids" binding:"required,min=1"`
	OriginCountryIDs []uint   `json:"origin_country_ids" binding:"required,min=1"`
	LanguageID       uint     `json:"language_id" binding:"required"`
	MovieStatus      string   `json:"movie_status" binding:"required"`
	Popularity       float64  `json:"popularity" binding:"min=0"`
	Budget           int64    `json:"budget" binding:"min=0"`
	Revenue          int64    `json:"revenue" binding:"min=0"`
	RatingAverage    float64  `json:"rating_average" binding:"min=0,max=10"`
	RatingCount      int      `json:"rating_count" binding:"min=0"`
	PosterURL        string   `json:"poster_url" binding:"omitempty,url"`
	RentalRate       *float64 `json:"rental_rate" binding:"omitempty,min=0"`
}

// ActorRequest is the admin create/update body for an actor
type ActorRequest struct {
	Name       string `json:"name" binding:"required,max=255"`
	ProfileURL string `json:"profile_url" binding:"omitempty,url"`
}

// CastRequest links an actor to a movie
type CastRequest struct {
	ActorID       uint   `json:"actor_id" binding:"required"`
	CharacterName string `json:"character_name" binding:"max=255"`
	CastOrder     int    `json:"cast_order" binding:"min=0"`
}

type StoreRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city" binding:"required"`
	CountryID *uint  `json:"country_id"`
	Phone     string `json:"phone"`
}

type InventoryRequest struct {
	MovieID    uint `json:"movie_id" binding:"required"`
	StockCount int  `json:"stock_count" binding:"min=0"`
}

type CartItemRequest struct {
	MovieID    uint `json:"movie_id" binding:"required"`
	RentalDays int  `json:"rental_days" binding:"omitempty,min=1,max=30"`
}

type UpdateCartItemRequest struct {
	RentalDays int `json:"rental_days" binding:"required,min=1,max=30"`
}

type WishlistRequest struct {
	MovieID uint `json:"movie_id" binding:"required"`
}

type CheckoutRequest struct {
	StoreID uint `json:"store_id" binding:"required"`
}

// Page is a paginated list response
type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}
