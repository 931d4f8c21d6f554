package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"moviereview/internal/auth"
	"moviereview/internal/catalog"
	"moviereview/internal/comments"
	"moviereview/internal/domain/admins"
	"moviereview/internal/domain/movies"
	"moviereview/internal/domain/storage"
	"moviereview/internal/domain/users"
	"moviereview/internal/ratelimiter"

	"go.uber.org/zap"
)

func newTestApplication(t *testing.T, cfg config) *application {
	t.Helper()

	store := storage.NewMemoryContainer()
	if cfg.env == "" {
		cfg.env = "test"
	}
	return &application{
		config:        cfg,
		store:         store,
		catalog:       catalog.New(store.Movies),
		comments:      comments.NewEngine(store.Movies, store),
		logger:        zap.NewNop().Sugar(),
		authenticator: auth.NewJWTAuthenticator("test-secret", "moviereview"),
		rateLimiter: ratelimiter.NewFixedWindowLimiter(
			cfg.rateLimiter.RequestsPerTimeFrame,
			cfg.rateLimiter.TimeFrame,
		),
	}
}

func executeRequest(mux http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		buf, _ := json.Marshal(b)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected int, rr *httptest.ResponseRecorder) {
	t.Helper()
	if rr.Code != expected {
		t.Fatalf("expected response code %d, got %d: %s", expected, rr.Code, rr.Body.String())
	}
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env.Data
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if env.Success || env.Status != rr.Code {
		t.Fatalf("malformed error envelope: %+v", env)
	}
	return env.Message
}

func seedUser(t *testing.T, app *application, username string) (*users.User, string) {
	t.Helper()
	u := &users.User{Username: username, Email: username + "@example.com"}
	if err := u.Password.Set("password123"); err != nil {
		t.Fatal(err)
	}
	if err := app.store.Users.Create(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	token, err := app.authenticator.GenerateUserToken(u.ID, u.Username)
	if err != nil {
		t.Fatal(err)
	}
	return u, token
}

func seedAdmin(t *testing.T, app *application, login string) (*admins.Admin, string) {
	t.Helper()
	a := &admins.Admin{LoginID: login, Email: login + "@example.com"}
	if err := a.Password.Set("adminpass"); err != nil {
		t.Fatal(err)
	}
	if err := app.store.Admins.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	token, err := app.authenticator.GenerateAdminToken(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	return a, token
}

func seedMovie(t *testing.T, app *application, title string) *movies.Movie {
	t.Helper()
	m := &movies.Movie{
		Title:       title,
		Genre:       "Sci-Fi",
		ReleaseDate: time.Date(2021, 10, 22, 0, 0, 0, 0, time.UTC),
		Description: "desert planet",
		PosterURL:   "http://example.com/dune.jpg",
	}
	if err := app.store.Movies.Create(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestUserAuthentication(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()

	rr := executeRequest(mux, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "wonderland",
	})
	checkResponseCode(t, http.StatusCreated, rr)
	registered := decodeData[UserWithToken](t, rr)
	if registered.Token == "" || registered.User.Username != "alice" {
		t.Fatalf("unexpected register response: %+v", registered)
	}

	t.Run("duplicate registration is rejected", func(t *testing.T) {
		rr := executeRequest(mux, http.MethodPost, "/api/users/register", "", map[string]string{
			"username": "alice",
			"email":    "other@example.com",
			"password": "wonderland",
		})
		checkResponseCode(t, http.StatusBadRequest, rr)
	})

	t.Run("username may not look like an email", func(t *testing.T) {
		rr := executeRequest(mux, http.MethodPost, "/api/users/register", "", map[string]string{
			"username": "alice@example.com",
			"email":    "mallory@example.com",
			"password": "wonderland",
		})
		checkResponseCode(t, http.StatusBadRequest, rr)

		rr = executeRequest(mux, http.MethodPost, "/api/users/login", "", map[string]string{
			"loginId": "alice@example.com", "password": "wonderland",
		})
		checkResponseCode(t, http.StatusOK, rr)
	})

	t.Run("login by username and by email", func(t *testing.T) {
		for _, body := range []map[string]string{
			{"loginId": "alice", "password": "wonderland"},
			{"email": "alice@example.com", "password": "wonderland"},
		} {
			rr := executeRequest(mux, http.MethodPost, "/api/users/login", "", body)
			checkResponseCode(t, http.StatusOK, rr)
			if got := decodeData[UserWithToken](t, rr); got.Token == "" {
				t.Fatal("expected token")
			}
		}
	})

	t.Run("wrong password and unknown login look the same", func(t *testing.T) {
		wrong := executeRequest(mux, http.MethodPost, "/api/users/login", "", map[string]string{
			"loginId": "alice", "password": "nope-nope",
		})
		checkResponseCode(t, http.StatusUnauthorized, wrong)

		unknown := executeRequest(mux, http.MethodPost, "/api/users/login", "", map[string]string{
			"loginId": "bob", "password": "wonderland",
		})
		checkResponseCode(t, http.StatusUnauthorized, unknown)

		if a, b := decodeError(t, wrong), decodeError(t, unknown); a != "Invalid credentials" || a != b {
			t.Fatalf("messages differ: %q vs %q", a, b)
		}
	})

	t.Run("login without password is a bad request", func(t *testing.T) {
		rr := executeRequest(mux, http.MethodPost, "/api/users/login", "", map[string]string{"loginId": "alice"})
		checkResponseCode(t, http.StatusBadRequest, rr)
	})

	t.Run("me", func(t *testing.T) {
		rr := executeRequest(mux, http.MethodGet, "/api/users/me", registered.Token, nil)
		checkResponseCode(t, http.StatusOK, rr)
		if got := decodeData[users.User](t, rr); got.ID != registered.User.ID {
			t.Fatalf("got user %s, want %s", got.ID, registered.User.ID)
		}
	})
}

func TestAuthGatewayStatusCodes(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()
	_, userToken := seedUser(t, app, "carol")
	m := seedMovie(t, app, "Dune")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"user route without token", http.MethodGet, "/api/users/me", "", http.StatusForbidden},
		{"user route with garbage token", http.MethodGet, "/api/users/me", "garbage", http.StatusBadRequest},
		{"admin route without token", http.MethodDelete, "/api/movies/" + m.ID, "", http.StatusUnauthorized},
		{"admin route with garbage token", http.MethodDelete, "/api/movies/" + m.ID, "garbage", http.StatusForbidden},
		{"admin route with user token", http.MethodDelete, "/api/movies/" + m.ID, userToken, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := executeRequest(mux, tc.method, tc.path, tc.token, nil)
			checkResponseCode(t, tc.want, rr)
		})
	}

	t.Run("token signed with another secret is invalid", func(t *testing.T) {
		foreign := auth.NewJWTAuthenticator("other-secret", "moviereview")
		token, err := foreign.GenerateUserToken("someone", "someone")
		if err != nil {
			t.Fatal(err)
		}

		rr := executeRequest(mux, http.MethodGet, "/api/users/me", token, nil)
		checkResponseCode(t, http.StatusBadRequest, rr)
	})
}

func TestAdminLogin(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()
	seedAdmin(t, app, "admin2")

	rr := executeRequest(mux, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "admin2", "password": "adminpass",
	})
	checkResponseCode(t, http.StatusOK, rr)
	got := decodeData[AdminWithToken](t, rr)

	claims, err := app.authenticator.ValidateToken(got.Token)
	if err != nil {
		t.Fatal(err)
	}
	if !claims.IsAdmin {
		t.Fatal("admin token must carry isAdmin")
	}

	rr = executeRequest(mux, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "admin2", "password": "wrong",
	})
	checkResponseCode(t, http.StatusUnauthorized, rr)

	rr = executeRequest(mux, http.MethodPost, "/api/admin/login", "", map[string]string{"username": "admin2"})
	checkResponseCode(t, http.StatusBadRequest, rr)
}

func TestRateLimiterMiddleware(t *testing.T) {
	app := newTestApplication(t, config{
		rateLimiter: ratelimiter.Config{
			RequestsPerTimeFrame: 2,
			TimeFrame:            time.Minute,
			Enabled:              true,
		},
	})
	mux := app.mount()

	for i := 0; i < 2; i++ {
		checkResponseCode(t, http.StatusOK, executeRequest(mux, http.MethodGet, "/api/movies", "", nil))
	}

	rr := executeRequest(mux, http.MethodGet, "/api/movies", "", nil)
	checkResponseCode(t, http.StatusTooManyRequests, rr)
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestOpsEndpoints(t *testing.T) {
	app := newTestApplication(t, config{
		auth: authConfig{basic: basicConfig{user: "ops", pass: "secret"}},
	})
	mux := app.mount()

	checkResponseCode(t, http.StatusOK, executeRequest(mux, http.MethodGet, "/", "", nil))
	checkResponseCode(t, http.StatusOK, executeRequest(mux, http.MethodGet, "/api/health", "", nil))
	checkResponseCode(t, http.StatusNotFound, executeRequest(mux, http.MethodGet, "/api/nope", "", nil))

	rr := executeRequest(mux, http.MethodGet, "/api/debug/vars", "", nil)
	checkResponseCode(t, http.StatusUnauthorized, rr)

	req := httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
	req.SetBasicAuth("ops", "secret")
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	checkResponseCode(t, http.StatusOK, rr)
}

func TestConcurrentCommentsOverHTTP(t *testing.T) {
	app := newTestApplication(t, config{})
	mux := app.mount()
	m := seedMovie(t, app, "Arrival")

	const n = 10
	tokens := make([]string, n)
	for i := range tokens {
		_, tokens[i] = seedUser(t, app, "user"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rr := executeRequest(mux, http.MethodPost, "/api/movies/"+m.ID+"/comments", tokens[i], map[string]any{
				"text": "great", "rating": 4,
			})
			codes[i] = rr.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusCreated {
			t.Fatalf("request %d: got %d", i, code)
		}
	}

	rr := executeRequest(mux, http.MethodGet, "/api/movies/"+m.ID+"/comments", "", nil)
	checkResponseCode(t, http.StatusOK, rr)
	if got := decodeData[[]movies.Comment](t, rr); len(got) != n {
		t.Fatalf("got %d comments, want %d", len(got), n)
	}
}

func TestRunStopsCleanlyOnCancel(t *testing.T) {
	app := newTestApplication(t, config{addr: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.run(ctx, app.mount())
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v after shutdown, want nil", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
