package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS "users" (
			"id" TEXT PRIMARY KEY, "email" TEXT NOT NULL UNIQUE, "password" TEXT NOT NULL,
			"name" TEXT, "role" TEXT DEFAULT 'customer', "phone" TEXT, "is_blocked" INTEGER DEFAULT 0,
			"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "refresh_tokens" (
			"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "token" TEXT NOT NULL UNIQUE,
			"expires_at" DATETIME NOT NULL, "revoked_at" DATETIME, "created_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "cart_items" (
			"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "movie_id" INTEGER NOT NULL,
			"rental_days" INTEGER NOT NULL DEFAULT 3, "created_at" DATETIME, "updated_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "wishlist_items" (
			"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "movie_id" INTEGER NOT NULL,
			"created_at" DATETIME, UNIQUE ("user_id", "movie_id")
		)`,
		`CREATE TABLE IF NOT EXISTS "rentals" (
			"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "movie_id" INTEGER NOT NULL,
			"store_id" INTEGER NOT NULL, "status" TEXT DEFAULT 'active', "rental_rate" REAL NOT NULL,
			"rental_days" INTEGER NOT NULL, "amount" REAL NOT NULL, "rented_at" DATETIME,
			"due_at" DATETIME, "returned_at" DATETIME, "created_at" DATETIME, "updated_at" DATETIME
		)`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			t.Fatal(err)
		}
	}
	return db
}

// ==================== BeforeCreate ====================

func TestUserBeforeCreateGeneratesUUID(t *testing.T) {
	db := setupTestDB(t)
	user := User{Email: "test@example.com", Password: "hashed", Name: "Test"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	if user.ID == uuid.Nil {
		t.Error("expected UUID to be generated")
	}
}

func TestUserBeforeCreatePreservesUUID(t *testing.T) {
	db := setupTestDB(t)
	id := uuid.New()
	user := User{ID: id, Email: "preset@example.com", Password: "hashed"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	if user.ID != id {
		t.Errorf("expected ID %s to be preserved, got %s", id, user.ID)
	}
}

func TestRefreshTokenBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	token := RefreshToken{UserID: uuid.New(), Token: "abc", ExpiresAt: time.Now().Add(time.Hour)}
	if err := db.Create(&token).Error; err != nil {
		t.Fatal(err)
	}
	if token.ID == uuid.Nil {
		t.Error("expected UUID to be generated")
	}
}

func TestCartItemBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	item := CartItem{UserID: uuid.New(), MovieID: 1, RentalDays: 3}
	if err := db.Omit("Movie").Create(&item).Error; err != nil {
		t.Fatal(err)
	}
	if item.ID == uuid.Nil {
		t.Error("expected UUID to be generated")
	}
}

func TestWishlistItemBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	item := WishlistItem{UserID: uuid.New(), MovieID: 1}
	if err := db.Omit("Movie").Create(&item).Error; err != nil {
		t.Fatal(err)
	}
	if item.ID == uuid.Nil {
		t.Error("expected UUID to be generated")
	}
}

func TestRentalBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()
	rental := Rental{
		UserID: uuid.New(), MovieID: 1, StoreID: 1, Status: RentalStatusActive,
		RentalRate: 2.5, RentalDays: 2, Amount: 5, RentedAt: now, DueAt: now.Add(48 * time.Hour),
	}
	if err := db.Omit("Movie").Create(&rental).Error; err != nil {
		t.Fatal(err)
	}
	if rental.ID == uuid.Nil {
		t.Error("expected UUID to be generated")
	}
}

// ==================== Rental ====================

func TestRentalIsOverdue(t *testing.T) {
	due := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	returned := due.Add(-time.Hour)

	tests := []struct {
		name   string
		rental Rental
		now    time.Time
		want   bool
	}{
		{"active before due", Rental{Status: RentalStatusActive, DueAt: due}, due.Add(-time.Minute), false},
		{"active at due", Rental{Status: RentalStatusActive, DueAt: due}, due, false},
		{"active past due", Rental{Status: RentalStatusActive, DueAt: due}, due.Add(time.Minute), true},
		{"returned past due", Rental{Status: RentalStatusReturned, DueAt: due, ReturnedAt: &returned}, due.Add(24 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rental.IsOverdue(tt.now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ==================== Movie ====================

func TestMovieStatusValid(t *testing.T) {
	for _, s := range MovieStatuses {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []MovieStatus{"", "released", "Coming Soon"} {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

// ==================== Reference tables ====================

func TestLookupGenreID(t *testing.T) {
	tests := []struct {
		in     string
		want   uint
		wantOK bool
	}{
		{"Action", 1, true},
		{"  science fiction ", 15, true},
		{"WESTERN", 19, true},
		{"Sci-Fi", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := LookupGenreID(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LookupGenreID(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLookupCountryID(t *testing.T) {
	tests := []struct {
		in     string
		want   uint
		wantOK bool
	}{
		{"US", 1, true},
		{"gb", 2, true},
		{"Ireland", 22, true},
		{"united states of america", 1, true},
		{"XX", 0, false},
	}
	for _, tt := range tests {
		got, ok := LookupCountryID(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LookupCountryID(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLookupLanguageID(t *testing.T) {
	tests := []struct {
		in     string
		want   uint
		wantOK bool
	}{
		{"en", 1, true},
		{"Spanish", 5, true},
		{"FI", 15, true},
		{"klingon", 0, false},
	}
	for _, tt := range tests {
		got, ok := LookupLanguageID(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LookupLanguageID(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestReferenceTablesHaveUniqueKeys(t *testing.T) {
	if len(genreIDs) != len(GenreTable) {
		t.Errorf("expected %d genre keys, got %d", len(GenreTable), len(genreIDs))
	}
	seen := map[uint]bool{}
	for _, g := range GenreTable {
		if seen[g.ID] {
			t.Errorf("duplicate genre id %d", g.ID)
		}
		seen[g.ID] = true
	}
	for _, c := range CountryTable {
		if id, _ := LookupCountryID(c.ISOCode); id != c.ID {
			t.Errorf("country %s resolves to %d, want %d", c.ISOCode, id, c.ID)
		}
	}
	for _, l := range LanguageTable {
		if id, _ := LookupLanguageID(l.ISOCode); id != l.ID {
			t.Errorf("language %s resolves to %d, want %d", l.ISOCode, id, l.ID)
		}
	}
}
