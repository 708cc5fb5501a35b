package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelfake-backend/models"
)

func TestCreateAndUpdateActor(t *testing.T) {
	db := freshDB()
	router := setupCatalogRouter(db, newMockStorage())
	_, token := seedTestUser(db, "admin@test.com", models.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/actors", map[string]string{"name": "Toshiro Mifune"}, token))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	id := parseResponse(w)["id"].(float64)

	body := map[string]string{"name": "Toshirō Mifune", "profile_url": "https://image.example.com/mifune.jpg"}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", fmt.Sprintf("/api/admin/actors/%d", int(id)), body, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["name"] != "Toshirō Mifune" || resp["profile_url"] != "https://image.example.com/mifune.jpg" {
		t.Errorf("actor not updated: %v", resp)
	}
}

func TestCreateActorValidation(t *testing.T) {
	db := freshDB()
	router := setupCatalogRouter(db, newMockStorage())
	_, token := seedTestUser(db, "admin@test.com", models.RoleAdmin)

	for name, body := range map[string]map[string]string{
		"missing name": {},
		"bad url":      {"name": "Someone", "profile_url": "not a url"},
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, authRequest("POST", "/api/admin/actors", body, token))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestGetActorsSearch(t *testing.T) {
	db := freshDB()
	router := setupCatalogRouter(db, newMockStorage())
	seedActor(db, "Cate Blanchett")
	seedActor(db, "Cate Shortland")
	seedActor(db, "Tilda Swinton")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/actors?search=cate", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp["total"] != float64(2) {
		t.Errorf("expected 2 matches, got %v", resp["total"])
	}
}

func TestGetActorWithRoles(t *testing.T) {
	db := freshDB()
	router := setupCatalogRouter(db, newMockStorage())
	actor := seedActor(db, "Frances McDormand")
	movie := seedMovie(db, 700, "Fargo")
	db.Create(&models.MovieActor{MovieID: movie.ID, ActorID: actor.ID, CharacterName: "Marge Gunderson"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", fmt.Sprintf("/api/actors/%d", actor.ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	roles := parseResponse(w)["roles"].([]interface{})
	if len(roles) != 1 {
		t.Fatalf("expected 1 role, got %d", len(roles))
	}
	if roles[0].(map[string]interface{})["movie"].(map[string]interface{})["title"] != "Fargo" {
		t.Errorf("expected role movie preloaded, got %v", roles[0])
	}
}

func TestDeleteActorDropsCast(t *testing.T) {
	db := freshDB()
	router := setupCatalogRouter(db, newMockStorage())
	_, token := seedTestUser(db, "admin@test.com", models.RoleAdmin)
	actor := seedActor(db, "Extra")
	movie := seedMovie(db, 701, "Crowd Scene")
	db.Create(&models.MovieActor{MovieID: movie.ID, ActorID: actor.ID})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", fmt.Sprintf("/api/admin/actors/%d", actor.ID), nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var roles int64
	db.Model(&models.MovieActor{}).Where("actor_id = ?", actor.ID).Count(&roles)
	if roles != 0 {
		t.Errorf("expected cast entries removed, got %d", roles)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", fmt.Sprintf("/api/actors/%d", actor.ID), nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected deleted actor to be hidden, got %d", w.Code)
	}
}
