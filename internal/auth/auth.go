// Package auth resolves the role behind a request's credentials. Deciding
// what that role may do is left to the handlers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/akave-ai/alephweb/internal/model"
)

// ErrNoCredentials is returned when the request carries no credentials at all.
var ErrNoCredentials = errors.New("no credentials")

// ErrInvalidKey is returned when the presented api key matches no role.
var ErrInvalidKey = errors.New("invalid api key")

// Authenticator resolves the role a request acts as.
type Authenticator interface {
	Authenticate(r *http.Request) (*model.Role, error)
}

// RoleStore looks up roles by api key. A nil role with a nil error means no match.
type RoleStore interface {
	GetByAPIKey(ctx context.Context, key string) (*model.Role, error)
}

// APIKeyAuthenticator authenticates requests by api key.
type APIKeyAuthenticator struct {
	Roles RoleStore
}

// NewAPIKeyAuthenticator returns an authenticator backed by roles.
func NewAPIKeyAuthenticator(roles RoleStore) *APIKeyAuthenticator {
	return &APIKeyAuthenticator{Roles: roles}
}

func (a *APIKeyAuthenticator) Authenticate(r *http.Request) (*model.Role, error) {
	key := APIKey(r)
	if key == "" {
		return nil, ErrNoCredentials
	}
	role, err := a.Roles.GetByAPIKey(r.Context(), key)
	if err != nil {
		return nil, fmt.Errorf("lookup api key: %w", err)
	}
	if role == nil {
		return nil, ErrInvalidKey
	}
	return role, nil
}

// APIKey extracts the api key from "Authorization: ApiKey <key>" or the
// api_key query parameter, in that order.
func APIKey(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, key, ok := strings.Cut(strings.TrimSpace(h), " ")
		if ok && strings.EqualFold(scheme, "apikey") {
			return strings.TrimSpace(key)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("api_key"))
}

// StaticRoleStore is a RoleStore over a fixed key -> role map.
type StaticRoleStore map[string]*model.Role

func (s StaticRoleStore) GetByAPIKey(_ context.Context, key string) (*model.Role, error) {
	return s[key], nil
}

// ParseStaticKeys builds a StaticRoleStore from entries of the form
// "key=role_id[:name][:admin]".
func ParseStaticKeys(entries []string) (StaticRoleStore, error) {
	store := make(StaticRoleStore, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, spec, ok := strings.Cut(entry, "=")
		if !ok || key == "" || spec == "" {
			return nil, fmt.Errorf("malformed auth key entry (want key=role_id[:name][:admin])")
		}
		parts := strings.Split(spec, ":")
		role := &model.Role{ID: parts[0], Name: parts[0], Type: model.RoleTypeUser}
		if role.ID == "" {
			return nil, fmt.Errorf("auth key entry without role id")
		}
		if len(parts) > 1 && parts[1] != "" {
			role.Name = parts[1]
		}
		if len(parts) > 2 {
			role.IsAdmin = parts[2] == "admin"
		}
		if _, dup := store[key]; dup {
			return nil, fmt.Errorf("duplicate auth key for role %s", role.ID)
		}
		store[key] = role
	}
	return store, nil
}
