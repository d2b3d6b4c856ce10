package cli

import (
	"testing"
	"time"

	"github.com/pratik-mahalle/linkboost/pkg/client"
	"github.com/spf13/viper"
)

func newTestStorage() (*viperStorage, *int) {
	writes := 0
	return &viperStorage{
		v:     viper.New(),
		write: func() error { writes++; return nil },
	}, &writes
}

func TestViperStorage(t *testing.T) {
	s, writes := newTestStorage()

	token, user, err := s.Load()
	if err != nil || token != "" || user != nil {
		t.Fatalf("empty Load() = %q, %v, %v", token, user, err)
	}

	want := &client.User{ID: "u1", Email: "a@b.c", SubscriptionLevel: "premium", LinkedInConnected: true}
	if err := s.Save("tok", want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	token, user, err = s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if token != "tok" || user == nil || *user != *want {
		t.Errorf("Load(): got %q %+v want %q %+v", token, user, "tok", want)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if token, user, _ = s.Load(); token != "" || user != nil {
		t.Errorf("after Clear: got %q %+v", token, user)
	}
	if *writes != 2 {
		t.Errorf("writes: got %v want %v", *writes, 2)
	}
}

func TestViperStorage_CorruptUser(t *testing.T) {
	s, _ := newTestStorage()
	s.v.Set("auth.token", "tok")
	s.v.Set("auth.user", "{not json")

	if _, _, err := s.Load(); err == nil {
		t.Error("expected error for corrupt user")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2024-03-01", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{in: "2024-03-01T10:30:00Z", want: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{in: "03/01/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	if got := formatPercent(0.1234); got != "12.34%" {
		t.Errorf("got %v want %v", got, "12.34%")
	}
}
