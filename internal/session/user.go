package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// UserKey is the storage key holding the signed-in user as JSON
	UserKey = "user"

	// TokenKey is the storage key holding the store's bearer token
	TokenKey = "jwt"

	TypeEmployee = "Employee"
	TypeAdmin    = "Admin"
)

// ErrNoUser is returned when nobody is signed in
var ErrNoUser = errors.New("no signed-in user")

// User is the signed-in user
type User struct {
	Type   string `json:"type"`
	Email  string `json:"email"`
	Status string `json:"status,omitempty"`
}

// CurrentUserProvider returns the signed-in user
type CurrentUserProvider func() (User, error)

// FromStorage reads the current user from the "user" item of s
func FromStorage(s Storage) CurrentUserProvider {
	return func() (User, error) {
		if s == nil {
			return User{}, ErrNoUser
		}
		raw, ok := s.GetItem(UserKey)
		if !ok || raw == "" {
			return User{}, ErrNoUser
		}
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return User{}, fmt.Errorf("decoding stored user: %w", err)
		}
		return u, nil
	}
}

// SignIn stores u as the current user
func SignIn(s Storage, u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	return s.SetItem(UserKey, string(data))
}
