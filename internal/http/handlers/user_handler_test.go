package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/go-recipe-backend/internal/services"
)

func TestUsers_RegisterAndProfile(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodPost, "/api/users", "", RegisterRequest{
		Email:     "chef@example.com",
		Username:  "chef",
		FirstName: "Anna",
		Password:  "correcthorse",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var v services.UserView
	decodeJSON(t, w, &v)
	if v.ID == "" || v.Username != "chef" || v.FirstName != "Anna" {
		t.Fatalf("unexpected view: %+v", v)
	}

	// Duplicate email conflicts.
	w = env.do(t, http.MethodPost, "/api/users", "", RegisterRequest{
		Email:    "chef@example.com",
		Username: "other",
		Password: "correcthorse",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate email: expected 409, got %d", w.Code)
	}

	// Missing required fields: binding failure.
	w = env.do(t, http.MethodPost, "/api/users", "", map[string]string{"email": "x@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing fields: expected 400, got %d", w.Code)
	}

	// Public profile, then not-found and bad id.
	w = env.do(t, http.MethodGet, "/api/users/"+v.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/api/users/8a3e7d1c-0000-4000-8000-000000000000", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown profile: expected 404, got %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/api/users/nope", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", w.Code)
	}
}

func TestUsers_MeAndSetPassword(t *testing.T) {
	env := newAPIEnv(t)
	_, tok := env.account(t, "chef@example.com", "chef")

	w := env.do(t, http.MethodGet, "/api/users/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me: expected 401, got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/users/me", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", w.Code)
	}
	var v services.UserView
	decodeJSON(t, w, &v)
	if v.Username != "chef" {
		t.Fatalf("unexpected profile: %+v", v)
	}

	// Wrong current password.
	w = env.do(t, http.MethodPost, "/api/users/set_password", tok, SetPasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "replacement1",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong current password: expected 400, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/users/set_password", tok, SetPasswordRequest{
		CurrentPassword: "correcthorse",
		NewPassword:     "replacement1",
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("set password: expected 204, got %d: %s", w.Code, w.Body.String())
	}

	// The new password now logs in, the old one does not.
	w = env.do(t, http.MethodPost, "/api/auth/token", "", LoginRequest{Email: "chef@example.com", Password: "replacement1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login with new password: expected 200, got %d", w.Code)
	}
	w = env.do(t, http.MethodPost, "/api/auth/token", "", LoginRequest{Email: "chef@example.com", Password: "correcthorse"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login with old password: expected 401, got %d", w.Code)
	}
}

func TestUsers_SubscribeLifecycle(t *testing.T) {
	env := newAPIEnv(t)
	authorID, _ := env.account(t, "a@example.com", "author")
	fanID, fanTok := env.account(t, "f@example.com", "fan")

	// Subscribe: 201 with the author profile flagged as subscribed.
	w := env.do(t, http.MethodPost, "/api/users/"+authorID+"/subscribe", fanTok, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("subscribe: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var v services.UserView
	decodeJSON(t, w, &v)
	if v.ID != authorID || !v.IsSubscribed {
		t.Fatalf("unexpected subscribe response: %+v", v)
	}

	// Duplicate conflicts; self-subscription carries its own code.
	w = env.do(t, http.MethodPost, "/api/users/"+authorID+"/subscribe", fanTok, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate subscribe: expected 409, got %d", w.Code)
	}
	w = env.do(t, http.MethodPost, "/api/users/"+fanID+"/subscribe", fanTok, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self subscribe: expected 400, got %d", w.Code)
	}
	var er ErrorResponse
	decodeJSON(t, w, &er)
	if er.Code != ErrCodeSelfSubscribe {
		t.Fatalf("self subscribe code: %q", er.Code)
	}

	// The user listing shows is_subscribed for the fan's view.
	w = env.do(t, http.MethodGet, "/api/users", fanTok, nil)
	var page ListUsersResponse
	decodeJSON(t, w, &page)
	flags := map[string]bool{}
	for _, u := range page.Users {
		flags[u.Username] = u.IsSubscribed
	}
	if !flags["author"] || flags["fan"] {
		t.Fatalf("subscription flags: %+v", flags)
	}

	// Unsubscribe, then the pair is gone.
	w = env.do(t, http.MethodDelete, "/api/users/"+authorID+"/subscribe", fanTok, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("unsubscribe: expected 204, got %d", w.Code)
	}
	w = env.do(t, http.MethodDelete, "/api/users/"+authorID+"/subscribe", fanTok, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unsubscribe twice: expected 404, got %d", w.Code)
	}
}

func TestUsers_Subscriptions(t *testing.T) {
	env := newAPIEnv(t)
	flourID, _, tagID := seedCatalog(t, env)
	authorID, authorTok := env.account(t, "a@example.com", "author")
	_, fanTok := env.account(t, "f@example.com", "fan")

	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/recipes", authorTok,
			recipePayload("Рецепт", tagID, IngredientLineRequest{ID: flourID, Amount: 10}))
		if w.Code != http.StatusCreated {
			t.Fatalf("create recipe: %d", w.Code)
		}
	}
	if w := env.do(t, http.MethodPost, "/api/users/"+authorID+"/subscribe", fanTok, nil); w.Code != http.StatusCreated {
		t.Fatalf("subscribe: %d", w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/users/subscriptions?recipes_limit=2", fanTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("subscriptions: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var page ListSubscriptionsResponse
	decodeJSON(t, w, &page)
	if len(page.Authors) != 1 {
		t.Fatalf("expected one author: %+v", page)
	}
	a := page.Authors[0]
	if a.Username != "author" || len(a.Recipes) != 2 || a.RecipesCount != 3 {
		t.Fatalf("unexpected author entry: %+v", a)
	}
}

func TestUsers_ListETag(t *testing.T) {
	env := newAPIEnv(t)
	env.account(t, "a@example.com", "author")

	w := env.do(t, http.MethodGet, "/api/users", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list users: %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	w2 := env.doIfNoneMatch(t, "/api/users", "", etag)
	if w2.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w2.Code)
	}

	// A new account invalidates the tag.
	env.account(t, "b@example.com", "brand-new")
	w3 := env.doIfNoneMatch(t, "/api/users", "", etag)
	if w3.Code != http.StatusOK {
		t.Fatalf("stale ETag must miss: got %d", w3.Code)
	}
}

func TestUsers_ListETagTracksViewerSubscriptions(t *testing.T) {
	env := newAPIEnv(t)
	authorID, _ := env.account(t, "a@example.com", "author")
	_, fanTok := env.account(t, "f@example.com", "fan")

	w := env.do(t, http.MethodGet, "/api/users", fanTok, nil)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}
	if w2 := env.doIfNoneMatch(t, "/api/users", fanTok, etag); w2.Code != http.StatusNotModified {
		t.Fatalf("unchanged replay: expected 304, got %d", w2.Code)
	}

	// Subscribing writes no account row, but it flips is_subscribed in the
	// list body, so the old tag must miss and the fresh body must carry the
	// flag.
	if w = env.do(t, http.MethodPost, "/api/users/"+authorID+"/subscribe", fanTok, nil); w.Code != http.StatusCreated {
		t.Fatalf("subscribe: %d %s", w.Code, w.Body.String())
	}
	w2 := env.doIfNoneMatch(t, "/api/users", fanTok, etag)
	if w2.Code != http.StatusOK {
		t.Fatalf("ETag after subscribe: expected 200, got %d", w2.Code)
	}
	var page ListUsersResponse
	decodeJSON(t, w2, &page)
	var author *services.UserView
	for i := range page.Users {
		if page.Users[i].ID == authorID {
			author = &page.Users[i]
		}
	}
	if author == nil || !author.IsSubscribed {
		t.Fatalf("refreshed body must show the subscription: %+v", page.Users)
	}

	// Unsubscribing invalidates too, and an anonymous viewer never shares the
	// fan's tag.
	etag = w2.Header().Get("ETag")
	if w2 := env.doIfNoneMatch(t, "/api/users", "", etag); w2.Code != http.StatusOK {
		t.Fatalf("anonymous replay of an authed tag: expected 200, got %d", w2.Code)
	}
	if w = env.do(t, http.MethodDelete, "/api/users/"+authorID+"/subscribe", fanTok, nil); w.Code != http.StatusNoContent {
		t.Fatalf("unsubscribe: %d", w.Code)
	}
	if w2 := env.doIfNoneMatch(t, "/api/users", fanTok, etag); w2.Code != http.StatusOK {
		t.Fatalf("ETag after unsubscribe: expected 200, got %d", w2.Code)
	}
}
