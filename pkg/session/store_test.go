package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/pratik-mahalle/linkboost/pkg/client"
)

type fakeAPI struct {
	mu sync.Mutex

	loginResult  *client.AuthResult
	loginErr     error
	verifyUser   *client.User
	verifyErr    error
	refreshToken string
	refreshErr   error
	linkedInURL  string
	disconnected bool

	// block, when set, holds Login until it is closed
	block   chan struct{}
	started chan struct{}
	calls   int
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*client.AuthResult, error) {
	f.mu.Lock()
	f.calls++
	block, started := f.block, f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return f.loginResult, f.loginErr
}

func (f *fakeAPI) Register(ctx context.Context, req client.RegisterRequest) (*client.AuthResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeAPI) Verify(ctx context.Context, token string) (*client.User, error) {
	return f.verifyUser, f.verifyErr
}

func (f *fakeAPI) Refresh(ctx context.Context, token string) (string, error) {
	return f.refreshToken, f.refreshErr
}

func (f *fakeAPI) LinkedInAuthURL(ctx context.Context, token string) (string, error) {
	return f.linkedInURL, nil
}

func (f *fakeAPI) DisconnectLinkedIn(ctx context.Context, token string) error {
	f.disconnected = true
	return nil
}

func testUser() *client.User {
	return &client.User{ID: "u1", Email: "ada@example.com", FirstName: "Ada", SubscriptionLevel: "basic", LinkedInConnected: true}
}

func loggedIn(t *testing.T, api *fakeAPI, storage Storage) *Store {
	t.Helper()
	api.loginResult = &client.AuthResult{Token: "tok-1", User: testUser()}
	s := New(api, storage)
	if err := s.Login(context.Background(), "ada@example.com", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return s
}

func assertAnonymous(t *testing.T, s *Store, storage Storage) {
	t.Helper()
	snap := s.Snapshot()
	if snap.State != StateAnonymous || snap.Token != "" || snap.User != nil || s.IsAuthenticated() {
		t.Errorf("expected anonymous session, got %+v", snap)
	}
	token, user, _ := storage.Load()
	if token != "" || user != nil {
		t.Errorf("storage not cleared: %q %+v", token, user)
	}
}

func TestStore_Login(t *testing.T) {
	storage := NewMemoryStorage()
	s := loggedIn(t, &fakeAPI{}, storage)

	if !s.IsAuthenticated() || s.Token() != "tok-1" || s.State() != StateAuthenticated {
		t.Errorf("unexpected session: %+v", s.Snapshot())
	}
	token, user, _ := storage.Load()
	if token != "tok-1" || user == nil || user.ID != "u1" {
		t.Errorf("not persisted: %q %+v", token, user)
	}
}

func TestStore_LoginRejected(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"non-2xx", &client.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}, ErrInvalidCredentials},
		{"success false", &client.APIError{StatusCode: http.StatusOK, Message: "Account locked"}, ErrInvalidCredentials},
		{"incomplete body", client.ErrIncompleteAuth, ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			s := New(&fakeAPI{loginErr: tt.err}, storage)

			err := s.Login(context.Background(), "a@b.c", "pw")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
			}
			assertAnonymous(t, s, storage)
		})
	}

	t.Run("network failure is not a credential error", func(t *testing.T) {
		netErr := errors.New("request failed: connection refused")
		s := New(&fakeAPI{loginErr: netErr}, nil)
		if err := s.Login(context.Background(), "a@b.c", "pw"); errors.Is(err, ErrInvalidCredentials) || err == nil {
			t.Errorf("Login() error = %v", err)
		}
	})
}

func TestStore_FailedLoginKeepsExistingSession(t *testing.T) {
	api := &fakeAPI{}
	s := loggedIn(t, api, nil)

	api.loginErr = &client.APIError{StatusCode: http.StatusUnauthorized, Message: "nope"}
	if err := s.Login(context.Background(), "other@example.com", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v", err)
	}
	if !s.IsAuthenticated() || s.State() != StateAuthenticated {
		t.Errorf("previous session lost: %+v", s.Snapshot())
	}
}

func TestStore_VerifyFailureLogsOut(t *testing.T) {
	storage := NewMemoryStorage()
	api := &fakeAPI{}
	s := loggedIn(t, api, storage)

	api.verifyErr = &client.APIError{StatusCode: http.StatusUnauthorized, Message: "expired"}
	if err := s.Verify(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	assertAnonymous(t, s, storage)
}

func TestStore_Init(t *testing.T) {
	t.Run("valid saved token", func(t *testing.T) {
		storage := NewMemoryStorage()
		_ = storage.Save("saved", &client.User{ID: "stale"})
		s := New(&fakeAPI{verifyUser: testUser()}, storage)

		if err := s.Init(context.Background()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if s.Token() != "saved" || s.User().ID != "u1" {
			t.Errorf("unexpected session: %+v", s.Snapshot())
		}
	})

	t.Run("rejected saved token", func(t *testing.T) {
		storage := NewMemoryStorage()
		_ = storage.Save("saved", testUser())
		s := New(&fakeAPI{verifyErr: errors.New("request failed: timeout")}, storage)

		if err := s.Init(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		assertAnonymous(t, s, storage)
	})

	t.Run("nothing saved", func(t *testing.T) {
		s := New(&fakeAPI{}, nil)
		if err := s.Init(context.Background()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if s.State() != StateAnonymous {
			t.Errorf("state: got %v", s.State())
		}
	})
}

func TestStore_Refresh(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		s := New(&fakeAPI{}, nil)
		before := s.Snapshot()
		if err := s.Refresh(context.Background()); !errors.Is(err, ErrNoToken) {
			t.Errorf("Refresh() error = %v, want ErrNoToken", err)
		}
		if s.Snapshot() != before {
			t.Errorf("session changed: %+v", s.Snapshot())
		}
	})

	t.Run("replaces token only", func(t *testing.T) {
		api := &fakeAPI{refreshToken: "tok-2"}
		s := loggedIn(t, api, nil)
		userBefore := s.User()

		if err := s.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		if s.Token() != "tok-2" || *s.User() != *userBefore {
			t.Errorf("unexpected session: %+v", s.Snapshot())
		}
	})

	t.Run("failure logs out", func(t *testing.T) {
		storage := NewMemoryStorage()
		api := &fakeAPI{refreshErr: errors.New("boom")}
		s := loggedIn(t, api, storage)

		if err := s.Refresh(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		assertAnonymous(t, s, storage)
	})
}

func TestStore_RefreshRacingLogout(t *testing.T) {
	for i := 0; i < 200; i++ {
		storage := NewMemoryStorage()
		api := &fakeAPI{refreshToken: "tok-2"}
		s := loggedIn(t, api, storage)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			err := s.Refresh(context.Background())
			if err != nil && !errors.Is(err, ErrNoToken) && !errors.Is(err, ErrSessionInvalidated) {
				t.Errorf("Refresh() error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_ = s.Logout()
		}()
		wg.Wait()

		// Logout always runs, so the race can only end anonymous
		assertAnonymous(t, s, storage)
		if t.Failed() {
			t.Fatalf("iteration %d", i)
		}
	}
}

func TestStore_RefreshWithoutUserLogsOut(t *testing.T) {
	storage := NewMemoryStorage()
	s := New(&fakeAPI{refreshToken: "tok-2"}, storage)
	s.token = "tok-1"
	s.state = StateAuthenticated

	if err := s.Refresh(context.Background()); !errors.Is(err, client.ErrIncompleteAuth) {
		t.Errorf("Refresh() error = %v, want ErrIncompleteAuth", err)
	}
	assertAnonymous(t, s, storage)
}

func TestStore_InFlightGuard(t *testing.T) {
	api := &fakeAPI{
		loginResult: &client.AuthResult{Token: "tok", User: testUser()},
		block:       make(chan struct{}),
		started:     make(chan struct{}, 1),
	}
	s := New(api, nil)

	done := make(chan error, 1)
	go func() { done <- s.Login(context.Background(), "a@b.c", "pw") }()
	<-api.started

	if err := s.Login(context.Background(), "a@b.c", "pw"); !errors.Is(err, ErrOperationInProgress) {
		t.Errorf("second Login() error = %v, want ErrOperationInProgress", err)
	}
	if err := s.Refresh(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Errorf("Refresh() error = %v, want ErrNoToken", err)
	}
	if s.State() != StateAuthenticating || s.Token() != "" {
		t.Errorf("partial state observable: %+v", s.Snapshot())
	}

	close(api.block)
	if err := <-done; err != nil {
		t.Fatalf("first Login() error = %v", err)
	}
	if api.calls != 1 {
		t.Errorf("api calls: got %v want %v", api.calls, 1)
	}
}

func TestStore_LogoutDiscardsPendingLogin(t *testing.T) {
	storage := NewMemoryStorage()
	api := &fakeAPI{
		loginResult: &client.AuthResult{Token: "late", User: testUser()},
		block:       make(chan struct{}),
		started:     make(chan struct{}, 1),
	}
	s := New(api, storage)

	done := make(chan error, 1)
	go func() { done <- s.Login(context.Background(), "a@b.c", "pw") }()
	<-api.started

	if err := s.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	close(api.block)

	if err := <-done; !errors.Is(err, ErrSessionInvalidated) {
		t.Errorf("Login() error = %v, want ErrSessionInvalidated", err)
	}
	assertAnonymous(t, s, storage)

	if err := s.Logout(); err != nil {
		t.Errorf("second Logout() error = %v", err)
	}
}

func TestStore_UpdateUser(t *testing.T) {
	name := "Grace"
	s := New(&fakeAPI{}, nil)
	if err := s.UpdateUser(UserUpdate{FirstName: &name}); err != nil || s.User() != nil {
		t.Errorf("update without user should be a no-op: %v %+v", err, s.User())
	}

	storage := NewMemoryStorage()
	s = loggedIn(t, &fakeAPI{}, storage)
	level := "premium"
	if err := s.UpdateUser(UserUpdate{FirstName: &name, SubscriptionLevel: &level}); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	u := s.User()
	if u.FirstName != "Grace" || u.SubscriptionLevel != "premium" || u.Email != "ada@example.com" {
		t.Errorf("merge: got %+v", u)
	}
	_, saved, _ := storage.Load()
	if saved.FirstName != "Grace" {
		t.Errorf("not persisted: %+v", saved)
	}
}

func TestStore_LinkedIn(t *testing.T) {
	anon := New(&fakeAPI{}, nil)
	if _, err := anon.ConnectLinkedIn(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("ConnectLinkedIn() error = %v, want ErrUnauthenticated", err)
	}
	if err := anon.DisconnectLinkedIn(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("DisconnectLinkedIn() error = %v, want ErrUnauthenticated", err)
	}

	var redirected string
	api := &fakeAPI{linkedInURL: "https://www.linkedin.com/oauth/v2/authorization?state=x"}
	api.loginResult = &client.AuthResult{Token: "tok-1", User: testUser()}
	s := New(api, nil, WithRedirector(func(u string) error {
		redirected = u
		return nil
	}))
	if err := s.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	got, err := s.ConnectLinkedIn(context.Background())
	if err != nil || got != api.linkedInURL || redirected != api.linkedInURL {
		t.Errorf("ConnectLinkedIn() = %q, %v (redirected %q)", got, err, redirected)
	}

	if err := s.DisconnectLinkedIn(context.Background()); err != nil {
		t.Fatalf("DisconnectLinkedIn() error = %v", err)
	}
	if !api.disconnected || s.User().LinkedInConnected {
		t.Errorf("user still connected: %+v", s.User())
	}
}
