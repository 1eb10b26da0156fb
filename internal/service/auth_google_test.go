package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/sumire/charity/internal/domain"
	"github.com/sumire/charity/internal/repository/memory"
)

// newGoogleAuth points the OAuth exchange and the userinfo lookup at a local
// server that answers with userInfo.
func newGoogleAuth(t *testing.T, userInfo string) (*AuthService, *memory.Store) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			fmt.Fprint(w, `{"access_token":"google-token","token_type":"Bearer","expires_in":3600}`)
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer google-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprint(w, userInfo)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	prev := googleUserInfoURL
	googleUserInfoURL = srv.URL + "/userinfo"
	t.Cleanup(func() { googleUserInfoURL = prev })

	store := memory.NewStore()
	auth := NewAuthService(store.Users(), AuthConfig{
		JWTSecret:   "test-secret",
		AccessTTL:   time.Minute,
		RefreshTTL:  time.Hour,
		PublicURL:   "http://localhost:8080",
		AdminEmails: []string{"admin@example.org"},
	})
	auth.google.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	auth.httpClient = srv.Client()
	return auth, store
}

func TestGoogleCallbackRejectsUnverifiedEmail(t *testing.T) {
	ctx := context.Background()
	auth, store := newGoogleAuth(t, `{"id":"g1","email":"Admin@Example.org","verified_email":false,"name":"Mallory"}`)

	_, _, err := auth.GoogleCallback(ctx, "code")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unverified email, got %v", err)
	}
	if _, err := store.Users().FindByEmail(ctx, "admin@example.org"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no account to be created, got %v", err)
	}
}

func TestGoogleCallbackClaimsPasswordAccount(t *testing.T) {
	ctx := context.Background()
	auth, _ := newGoogleAuth(t, `{"id":"g1","email":"admin@example.org","verified_email":true,"name":"Board"}`)

	squatter, err := auth.Register(ctx, RegisterInput{Email: "ADMIN@example.org", Password: "attacker-pass"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if squatter.IsAdmin() {
		t.Fatalf("password sign-up must not be admin, got %q", squatter.Role)
	}

	user, pair, err := auth.GoogleCallback(ctx, "code")
	if err != nil {
		t.Fatalf("GoogleCallback: %v", err)
	}
	if user.ID != squatter.ID || !user.IsAdmin() || user.Provider != domain.AuthProviderGoogle {
		t.Fatalf("unexpected user after google sign-in: %+v", user)
	}
	claims, err := auth.ValidateToken(pair.AccessToken)
	if err != nil || claims.Role != domain.RoleAdmin {
		t.Fatalf("expected admin access token, got %+v %v", claims, err)
	}

	if _, _, err := auth.Login(ctx, "admin@example.org", "attacker-pass"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected old password to stop working, got %v", err)
	}
}

func TestGoogleCallbackDonor(t *testing.T) {
	ctx := context.Background()
	auth, _ := newGoogleAuth(t, `{"id":"g2","email":"ann@example.org","verified_email":true,"name":"Ann","picture":"https://img.example/ann.png"}`)

	user, _, err := auth.GoogleCallback(ctx, "code")
	if err != nil {
		t.Fatalf("GoogleCallback: %v", err)
	}
	if user.Role != domain.RoleDonor || user.AvatarURL == nil || user.DisplayName != "Ann" {
		t.Fatalf("unexpected google user: %+v", user)
	}
}
