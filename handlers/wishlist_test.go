package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelfake-backend/models"
)

func TestAddToWishlist(t *testing.T) {
	db := freshDB()
	router := setupRentalRouter(db)
	_, token := seedTestUser(db, "wish@test.com", models.RoleCustomer)
	movie := seedMovie(db, 400, "Ran")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/wishlist", map[string]uint{"movie_id": movie.ID}, token))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/wishlist", map[string]uint{"movie_id": movie.ID}, token))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for a duplicate, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAddToWishlistMovieNotFound(t *testing.T) {
	db := freshDB()
	router := setupRentalRouter(db)
	_, token := seedTestUser(db, "wish404@test.com", models.RoleCustomer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/wishlist", map[string]uint{"movie_id": 9999}, token))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestGetWishlist(t *testing.T) {
	db := freshDB()
	router := setupRentalRouter(db)
	user, token := seedTestUser(db, "list@test.com", models.RoleCustomer)
	m1 := seedMovie(db, 401, "Ikiru")
	m2 := seedMovie(db, 402, "Kagemusha")
	db.Create(&models.WishlistItem{UserID: user.ID, MovieID: m1.ID})
	db.Create(&models.WishlistItem{UserID: user.ID, MovieID: m2.ID})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/wishlist", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if items := parseResponseArray(w); len(items) != 2 {
		t.Errorf("expected 2 wishlist items, got %d", len(items))
	}
}

func TestRemoveFromWishlistByMovieID(t *testing.T) {
	db := freshDB()
	router := setupRentalRouter(db)
	user, token := seedTestUser(db, "rmwish@test.com", models.RoleCustomer)
	movie := seedMovie(db, 403, "Yojimbo")
	db.Create(&models.WishlistItem{UserID: user.ID, MovieID: movie.ID})

	url := fmt.Sprintf("/api/wishlist/%d", movie.ID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", url, nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", url, nil, token))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 once removed, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/wishlist/abc", nil, token))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for a bad id, got %d", w.Code)
	}
}
