package user

import (
	"fmt"
	"time"
)

// User is the profile returned by the auth service and kept in a session
type User struct {
	ID                string            `json:"id"`
	Email             string            `json:"email"`
	FirstName         string            `json:"firstName"`
	LastName          string            `json:"lastName"`
	SubscriptionLevel SubscriptionLevel `json:"subscriptionLevel"`
	LinkedInConnected bool              `json:"linkedinConnected"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// FullName joins first and last name
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// SubscriptionLevel gates access to paid endpoints
type SubscriptionLevel string

// Subscription levels, lowest first
const (
	LevelFree       SubscriptionLevel = "free"
	LevelBasic      SubscriptionLevel = "basic"
	LevelPremium    SubscriptionLevel = "premium"
	LevelEnterprise SubscriptionLevel = "enterprise"
)

var levelRank = map[SubscriptionLevel]int{
	LevelFree:       0,
	LevelBasic:      1,
	LevelPremium:    2,
	LevelEnterprise: 3,
}

// ParseSubscriptionLevel validates a level name. Empty means free.
func ParseSubscriptionLevel(s string) (SubscriptionLevel, error) {
	if s == "" {
		return LevelFree, nil
	}
	lvl := SubscriptionLevel(s)
	if _, ok := levelRank[lvl]; !ok {
		return "", fmt.Errorf("unknown subscription level %q", s)
	}
	return lvl, nil
}

// Valid reports whether the level is one of the known tiers
func (l SubscriptionLevel) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// AtLeast reports whether l grants everything required grants.
// Unknown levels never satisfy a requirement.
func (l SubscriptionLevel) AtLeast(required SubscriptionLevel) bool {
	have, ok := levelRank[l]
	if !ok {
		return false
	}
	need, ok := levelRank[required]
	if !ok {
		return false
	}
	return have >= need
}
