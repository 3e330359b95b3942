package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/expertlane/matchd/api"
	dbfs "github.com/expertlane/matchd/db"
	"github.com/expertlane/matchd/internal/config"
	"github.com/expertlane/matchd/internal/db"
	"github.com/expertlane/matchd/internal/dispatch"
	sqlite "github.com/expertlane/matchd/internal/repository/sqlite"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

// noopEmitter satisfies the emitter contract without a worker pool behind it.
type noopEmitter struct{}

func (noopEmitter) Emit(ctx context.Context, ev dispatch.Event) error { return nil }

func setupServer(t *testing.T) (*httptest.Server, *sqlite.SQLiteRepo) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	d, err := db.New(ctx, "file:"+name+"?mode=memory&cache=shared", logger)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := db.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Addr:          ":0",
		JWTSecret:     testSecret,
		TokenDuration: time.Hour,
		MatchingConfig: config.MatchingConfig{
			MinScore:       0.65,
			MaxResults:     5,
			ResponseWindow: time.Hour,
			ScoreWorkers:   4,
		},
	}

	router := api.SetupRoutes(cfg, "test", "now", d, noopEmitter{})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, sqlite.New(d, logger)
}

// token mints a JWT the way the auth handler does, for driving protected
// endpoints without a signup round trip.
func token(t *testing.T, accountID int64, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": accountID,
		"role":       role,
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func doJSON(t *testing.T, method, url, bearer string, payload any) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return res
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealthAndVersion(t *testing.T) {
	srv, _ := setupServer(t)

	res, err := http.Get(srv.URL + "/health")
	if err != nil || res.StatusCode != http.StatusOK {
		t.Fatalf("health: %v %v", res.StatusCode, err)
	}
	res.Body.Close()

	res, err = http.Get(srv.URL + "/version")
	if err != nil || res.StatusCode != http.StatusOK {
		t.Fatalf("version: %v %v", res.StatusCode, err)
	}
	body := decodeBody(t, res)
	if body["version"] != "test" {
		t.Errorf("version = %v", body["version"])
	}
}

func TestSignupAndSignin(t *testing.T) {
	srv, _ := setupServer(t)

	res := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/signup", "", map[string]string{
		"name":     "Riley",
		"email":    "riley@expert.test",
		"password": "hunter22",
		"role":     "expert",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("signup status = %d", res.StatusCode)
	}
	if body := decodeBody(t, res); body["token"] == "" {
		t.Fatal("signup returned no token")
	}

	res = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/signin", "", map[string]string{
		"email":    "riley@expert.test",
		"password": "wrong",
	})
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d", res.StatusCode)
	}

	res = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/signin", "", map[string]string{
		"email":    "riley@expert.test",
		"password": "hunter22",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("signin status = %d", res.StatusCode)
	}
	res.Body.Close()
}

func TestSignupRejectsAdminRole(t *testing.T) {
	srv, _ := setupServer(t)

	res := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/signup", "", map[string]string{
		"name":     "Mallory",
		"email":    "mallory@test",
		"password": "pw",
		"role":     "admin",
	})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("admin signup status = %d, want 400", res.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, _ := setupServer(t)

	res, err := http.Get(srv.URL + "/v1/notifications")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d, want 401", res.StatusCode)
	}
}
