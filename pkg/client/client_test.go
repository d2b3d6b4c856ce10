package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Login(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantStatus int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"success":true,"data":{"token":"jwt-1","user":{"id":"u1","email":"a@b.c","subscriptionLevel":"basic"}}}`,
		},
		{
			name:       "rejected",
			status:     http.StatusUnauthorized,
			body:       `{"success":false,"error":"Invalid credentials"}`,
			wantErr:    true,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "success false on 200",
			status:     http.StatusOK,
			body:       `{"success":false,"error":"Account locked"}`,
			wantErr:    true,
			wantStatus: http.StatusOK,
		},
		{
			name:    "missing token",
			status:  http.StatusOK,
			body:    `{"success":true,"data":{"user":{"id":"u1"}}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/auth/login" || r.Method != http.MethodPost {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				var req LoginRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				if req.Email != "a@b.c" {
					t.Errorf("email: got %v", req.Email)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(Config{BaseURL: srv.URL})
			res, err := c.Login(context.Background(), "a@b.c", "secret")

			if (err != nil) != tt.wantErr {
				t.Fatalf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantStatus != 0 {
				apiErr, ok := AsAPIError(err)
				if !ok || apiErr.StatusCode != tt.wantStatus {
					t.Errorf("error: got %v want status %v", err, tt.wantStatus)
				}
			}
			if !tt.wantErr && (res.Token != "jwt-1" || res.User.SubscriptionLevel != "basic") {
				t.Errorf("unexpected result: %+v", res)
			}
			if c.GetToken() != "" {
				t.Error("Login must not store the token")
			}
		})
	}
}

func TestClient_VerifySendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"Invalid token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"user":{"id":"u1","linkedinConnected":true}}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	u, err := c.Verify(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !u.LinkedInConnected {
		t.Errorf("user: got %+v", u)
	}

	if _, err := c.Verify(context.Background(), "other"); err == nil {
		t.Error("expected error for rejected token")
	}
}

func TestClient_HealthUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unhealthy","services":[{"service":"database","required":true,"status":"unhealthy","message":"Connection failed"}],"overall":{"unhealthy":1,"total":1}}`))
	}))
	defer srv.Close()

	report, err := NewClient(Config{BaseURL: srv.URL}).Health(context.Background())
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if report == nil || report.Status != "unhealthy" || len(report.Services) != 1 {
		t.Errorf("report: got %+v", report)
	}
}

func TestMetricsService_Dashboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"topPosts":[{"postId":"p1","interactions":9}]},"metadata":{"totalRecords":3}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	c.SetToken("tok")
	d, meta, err := c.Metrics().Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if meta.TotalRecords != 3 || len(d.TopPosts) != 1 || d.TopPosts[0].Interactions != 9 {
		t.Errorf("got %+v %+v", d, meta)
	}
}
