package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/go-recipe-backend/internal/domain"
)

func TestCatalog_Ingredients(t *testing.T) {
	env := newAPIEnv(t)
	flourID, _, _ := seedCatalog(t, env)

	w := env.do(t, http.MethodGet, "/api/ingredients", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list []domain.Ingredient
	decodeJSON(t, w, &list)
	if len(list) != 2 {
		t.Fatalf("expected 2 ingredients, got %+v", list)
	}

	w = env.do(t, http.MethodGet, "/api/ingredients/"+flourID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	var ing domain.Ingredient
	decodeJSON(t, w, &ing)
	if ing.Name != "Мука" || ing.MeasurementUnit != "г" {
		t.Fatalf("unexpected ingredient: %+v", ing)
	}

	w = env.do(t, http.MethodGet, "/api/ingredients/8a3e7d1c-0000-4000-8000-000000000000", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: expected 404, got %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/api/ingredients/nope", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", w.Code)
	}
}

func TestCatalog_Tags(t *testing.T) {
	env := newAPIEnv(t)
	_, _, tagID := seedCatalog(t, env)

	w := env.do(t, http.MethodGet, "/api/tags", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list []domain.Tag
	decodeJSON(t, w, &list)
	if len(list) != 1 || list[0].Slug != "breakfast" {
		t.Fatalf("unexpected tags: %+v", list)
	}

	w = env.do(t, http.MethodGet, "/api/tags/"+tagID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/tags/8a3e7d1c-0000-4000-8000-000000000000", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: expected 404, got %d", w.Code)
	}
}
