package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pratik-mahalle/linkboost/internal/auth"
	"github.com/pratik-mahalle/linkboost/internal/domain/user"
	"github.com/pratik-mahalle/linkboost/internal/pkg/logger"
)

const testSecret = "test-secret"

func mustToken(t *testing.T, tier user.SubscriptionLevel) string {
	t.Helper()
	tok, err := auth.MintToken("user-1", "ada@example.com", tier, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	expired, err := auth.MintToken("user-1", "ada@example.com", user.LevelBasic, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "missing header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", expectedStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", expectedStatus: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expired, expectedStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + mustToken(t, user.LevelBasic), expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = GetIdentity(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			AuthMiddleware(testSecret)(next).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if rr.Code == http.StatusUnauthorized {
				var body map[string]interface{}
				if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if body["success"] != false || body["code"] != "AUTHENTICATION_REQUIRED" {
					t.Errorf("unexpected error envelope: %v", body)
				}
			}
			if rr.Code == http.StatusOK && (got.UserID != "user-1" || got.Tier != user.LevelBasic) {
				t.Errorf("identity not attached: got %+v", got)
			}
		})
	}
}

func TestRequireSubscription(t *testing.T) {
	tests := []struct {
		name           string
		tier           user.SubscriptionLevel
		required       user.SubscriptionLevel
		expectedStatus int
	}{
		{"free below basic", user.LevelFree, user.LevelBasic, http.StatusForbidden},
		{"basic meets basic", user.LevelBasic, user.LevelBasic, http.StatusOK},
		{"basic below premium", user.LevelBasic, user.LevelPremium, http.StatusForbidden},
		{"enterprise above premium", user.LevelEnterprise, user.LevelPremium, http.StatusOK},
		{"unknown tier", user.SubscriptionLevel("gold"), user.LevelBasic, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: "u", Tier: tt.tier}))
			rr := httptest.NewRecorder()

			RequireSubscription(tt.required)(next).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
		})
	}

	t.Run("no identity", func(t *testing.T) {
		rr := httptest.NewRecorder()
		RequireSubscription(user.LevelBasic)(http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("wrong status code: got %v want %v", rr.Code, http.StatusUnauthorized)
		}
	})
}

func TestRecovery_HidesPanicValue(t *testing.T) {
	h := Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("db password is hunter2")
	}))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("wrong status code: got %v want %v", rr.Code, http.StatusInternalServerError)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("panic value leaked: %v", body["error"])
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("burst should allow two requests")
	}
	if rl.Allow("a") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other clients have their own bucket")
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(rr, req)

	if seen != "abc-123" || rr.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("request id not propagated: got %q", seen)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen == "abc-123" {
		t.Errorf("expected a generated request id, got %q", seen)
	}
}
