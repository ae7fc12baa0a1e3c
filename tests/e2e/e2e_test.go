//go:build integration

// Package e2e exercises the full HTTP surface against real Postgres and
// Redis backends.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/versz/versz/internal/auth"
	"github.com/versz/versz/internal/cache"
	"github.com/versz/versz/internal/handler"
	"github.com/versz/versz/internal/middleware"
	"github.com/versz/versz/internal/model"
	"github.com/versz/versz/internal/repository"
	"github.com/versz/versz/internal/service"
	"github.com/versz/versz/internal/testutil"
)

const testBaseURL = "https://versz.test"

// newTestServer wires the full stack the way cmd/api does and serves it
// over httptest.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")
	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")
	ctx := context.Background()

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("failed to acquire DB lock: %v", err)
	}
	t.Cleanup(func() { _ = unlock() })

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("failed to reset schema: %v", err)
	}

	cacheClient, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to test Redis: %v", err)
	}
	t.Cleanup(func() { _ = cacheClient.Close() })

	// Flush cached shares from earlier runs so negative caching cannot
	// leak across schema resets.
	if err := cacheClient.Client().FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush test Redis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokenService := auth.NewTokenService([]byte("e2e-test-secret"), 7*24*time.Hour)
	userService, err := service.NewUserService(repo, tokenService)
	if err != nil {
		t.Fatalf("failed to build user service: %v", err)
	}
	lyricsService := service.NewLyricsService(repo)
	shareService := service.NewShareService(repo, cacheClient, testBaseURL)

	_ = handler.New()
	healthHandler := handler.NewHealthHandler(repo)
	authHandler := handler.NewAuthHandler(userService, logger)
	lyricsHandler := handler.NewLyricsHandler(lyricsService, logger)
	shareHandler := handler.NewShareHandler(shareService, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", healthHandler.Health)
	r.Post("/register", authHandler.Register)
	r.Post("/token", authHandler.Token)
	r.Get("/share/{extension}", shareHandler.Get)

	authCfg := middleware.AuthConfig{Logger: logger, Tokens: tokenService, Users: repo}
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Get("/lyrics", lyricsHandler.List)
		r.Post("/lyrics", lyricsHandler.Create)
		r.Put("/lyrics/{id}", lyricsHandler.Update)
		r.Post("/share", shareHandler.Create)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestE2E_RegisterThroughShare(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()

	// Health first: the backend must be reachable.
	resp, err := client.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Register alice.
	resp = postJSON(t, client, srv.URL+"/register", "", map[string]string{
		"username": "alice",
		"name":     "Alice",
		"password": "pw1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from /register, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Duplicate registration conflicts.
	resp = postJSON(t, client, srv.URL+"/register", "", map[string]string{
		"username": "alice",
		"name":     "Alice Again",
		"password": "pw2",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Exchange credentials for a token via the password form.
	form := url.Values{"username": {"alice"}, "password": {"pw1"}}
	resp, err = client.Post(srv.URL+"/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("token request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /token, got %d", resp.StatusCode)
	}
	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decodeBody(t, resp, &tokenResp)
	if tokenResp.TokenType != "bearer" || tokenResp.AccessToken == "" {
		t.Fatalf("unexpected token response: %+v", tokenResp)
	}
	token := tokenResp.AccessToken

	// Wrong password is rejected with a bearer challenge.
	badForm := url.Values{"username": {"alice"}, "password": {"wrong"}}
	resp, err = client.Post(srv.URL+"/token", "application/x-www-form-urlencoded", strings.NewReader(badForm.Encode()))
	if err != nil {
		t.Fatalf("token request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("expected WWW-Authenticate Bearer, got %q", got)
	}
	resp.Body.Close()

	// Unauthenticated list is rejected.
	resp, err = client.Get(srv.URL + "/lyrics")
	if err != nil {
		t.Fatalf("lyrics request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Create a document.
	content := model.LyricsContent{Title: "T", Lyrics: "la la la"}
	resp = postJSON(t, client, srv.URL+"/lyrics", token, content)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from POST /lyrics, got %d", resp.StatusCode)
	}
	var createResp struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &createResp)
	if createResp.ID == "" {
		t.Fatal("expected a document id")
	}

	// List contains exactly that document.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/lyrics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("lyrics request failed: %v", err)
	}
	var docs []struct {
		ID      string              `json:"id"`
		Content model.LyricsContent `json:"content"`
	}
	decodeBody(t, resp, &docs)
	if len(docs) != 1 || docs[0].ID != createResp.ID || docs[0].Content.Title != "T" {
		t.Fatalf("unexpected document list: %+v", docs)
	}

	// Share under extension "t"; URL must reference it.
	resp = postJSON(t, client, srv.URL+"/share", token, map[string]any{
		"extension": "t",
		"content":   content,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from POST /share, got %d", resp.StatusCode)
	}
	var shareResp struct {
		URL string `json:"url"`
	}
	decodeBody(t, resp, &shareResp)
	if shareResp.URL != testBaseURL+"/t" {
		t.Fatalf("unexpected share URL: %q", shareResp.URL)
	}

	// Duplicate extension conflicts even with different content.
	resp = postJSON(t, client, srv.URL+"/share", token, map[string]any{
		"extension": "t",
		"content":   model.LyricsContent{Title: "other"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate extension, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Editing the source does not change the published snapshot.
	updateReq, _ := http.NewRequest(http.MethodPut, srv.URL+"/lyrics/"+createResp.ID, bytes.NewReader(mustJSON(t, model.LyricsContent{Title: "T-edited"})))
	updateReq.Header.Set("Content-Type", "application/json")
	updateReq.Header.Set("Authorization", "Bearer "+token)
	resp, err = client.Do(updateReq)
	if err != nil {
		t.Fatalf("update request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from PUT /lyrics, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Unauthenticated public read returns the original snapshot.
	resp, err = client.Get(srv.URL + "/share/t")
	if err != nil {
		t.Fatalf("share read failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from GET /share/t, got %d", resp.StatusCode)
	}
	var shared model.LyricsContent
	decodeBody(t, resp, &shared)
	if shared.Title != "T" {
		t.Fatalf("snapshot changed after source edit: %+v", shared)
	}

	// Unknown extension is a 404.
	resp, err = client.Get(srv.URL + "/share/never-created")
	if err != nil {
		t.Fatalf("share read failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown extension, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestE2E_CrossOwnerUpdateIsNotFound(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()

	register := func(username, password string) string {
		resp := postJSON(t, client, srv.URL+"/register", "", map[string]string{
			"username": username,
			"name":     "Test " + username,
			"password": password,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("register %s: expected 201, got %d", username, resp.StatusCode)
		}
		resp.Body.Close()

		form := url.Values{"username": {username}, "password": {password}}
		resp, err := client.Post(srv.URL+"/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
		if err != nil {
			t.Fatalf("token request failed: %v", err)
		}
		var tokenResp struct {
			AccessToken string `json:"access_token"`
		}
		decodeBody(t, resp, &tokenResp)
		return tokenResp.AccessToken
	}

	aliceToken := register("alice", "pw1")
	bobToken := register("bob", "pw2")

	resp := postJSON(t, client, srv.URL+"/lyrics", aliceToken, model.LyricsContent{Title: "alice-song"})
	var createResp struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &createResp)

	// Bob's update on alice's document looks exactly like a missing one.
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/lyrics/"+createResp.ID, bytes.NewReader(mustJSON(t, model.LyricsContent{Title: "bob-was-here"})))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bobToken)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("update request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-owner update, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Alice's document survives untouched.
	listReq, _ := http.NewRequest(http.MethodGet, srv.URL+"/lyrics", nil)
	listReq.Header.Set("Authorization", "Bearer "+aliceToken)
	resp, err = client.Do(listReq)
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	var docs []struct {
		Content model.LyricsContent `json:"content"`
	}
	decodeBody(t, resp, &docs)
	if len(docs) != 1 || docs[0].Content.Title != "alice-song" {
		t.Fatalf("alice's document was altered: %+v", docs)
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return data
}
