package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

type accountStoreStub struct {
	createErr error
	created   persistence.User

	users map[string]persistence.User
}

func (a *accountStoreStub) CreateUser(ctx context.Context, user persistence.User) error {
	if a.createErr != nil {
		return a.createErr
	}
	a.created = user
	return nil
}

func (a *accountStoreStub) GetUser(ctx context.Context, id string) (persistence.User, error) {
	user, ok := a.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (a *accountStoreStub) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	for _, user := range a.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

type sessionStoreStub struct {
	createErr error
	sessions  map[string]persistence.Session

	revokedToken string
	revokeErr    error
	prunedBefore time.Time
}

func (s *sessionStoreStub) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if s.createErr != nil {
		return persistence.Session{}, s.createErr
	}
	if s.sessions == nil {
		s.sessions = make(map[string]persistence.Session)
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionStoreStub) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (s *sessionStoreStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	if s.revokeErr != nil {
		return persistence.Session{}, s.revokeErr
	}
	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	s.sessions[token] = session
	s.revokedToken = token
	return session, nil
}

func (s *sessionStoreStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.prunedBefore = reference
	return nil
}

func newTestAuthService(accounts *accountStoreStub, sessions *sessionStoreStub) *AuthService {
	idGen := func() string { return "id-1" }
	tokenGen := func() string { return "token-1" }
	return NewAuthService(accounts, sessions, idGen, tokenGen, fixedNow, time.Hour)
}

func seedAccount(t *testing.T, password string) *accountStoreStub {
	t.Helper()
	hash, err := HashPassword(password, DefaultPasswordPolicy)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return &accountStoreStub{
		users: map[string]persistence.User{
			"user-1": {
				ID:           "user-1",
				Email:        "alice@example.com",
				DisplayName:  "Alice",
				PasswordHash: hash,
				IsAdmin:      true,
			},
		},
	}
}

func TestAuthService_RegisterUser(t *testing.T) {
	t.Run("validates input fields", func(t *testing.T) {
		svc := newTestAuthService(&accountStoreStub{}, &sessionStoreStub{})

		_, err := svc.RegisterUser(context.Background(), RegisterUserInput{
			Email:       "not-an-email",
			DisplayName: " ",
			Password:    "short",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		for _, field := range []string{"email", "display_name", "password"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s field error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("persists the account with a hashed password", func(t *testing.T) {
		accounts := &accountStoreStub{}
		svc := newTestAuthService(accounts, &sessionStoreStub{})

		user, err := svc.RegisterUser(context.Background(), RegisterUserInput{
			Email:       " Alice@Example.com ",
			DisplayName: "Alice",
			Password:    "correct horse battery",
		})
		if err != nil {
			t.Fatalf("RegisterUser returned error: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Fatalf("expected normalized email, got %q", user.Email)
		}
		if accounts.created.PasswordHash == "" || accounts.created.PasswordHash == "correct horse battery" {
			t.Fatalf("expected password to be hashed")
		}
		if err := ComparePassword(accounts.created.PasswordHash, "correct horse battery"); err != nil {
			t.Fatalf("stored hash does not verify: %v", err)
		}
	})

	t.Run("maps duplicate email addresses", func(t *testing.T) {
		accounts := &accountStoreStub{createErr: persistence.ErrDuplicate}
		svc := newTestAuthService(accounts, &sessionStoreStub{})

		_, err := svc.RegisterUser(context.Background(), RegisterUserInput{
			Email:       "alice@example.com",
			DisplayName: "Alice",
			Password:    "correct horse battery",
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Run("issues a session for valid credentials", func(t *testing.T) {
		accounts := seedAccount(t, "correct horse battery")
		sessions := &sessionStoreStub{}
		svc := newTestAuthService(accounts, sessions)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "ALICE@example.com",
			Password: "correct horse battery",
		})
		if err != nil {
			t.Fatalf("Authenticate returned error: %v", err)
		}
		if result.User.ID != "user-1" {
			t.Fatalf("unexpected user: %+v", result.User)
		}
		if result.Session.Token != "token-1" {
			t.Fatalf("expected issued token, got %q", result.Session.Token)
		}
		if !result.Session.ExpiresAt.Equal(testNow.Add(time.Hour)) {
			t.Fatalf("unexpected expiry: %s", result.Session.ExpiresAt)
		}
		if !sessions.prunedBefore.Equal(testNow) {
			t.Fatalf("expected expired sessions to be pruned")
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		accounts := seedAccount(t, "correct horse battery")
		svc := newTestAuthService(accounts, &sessionStoreStub{})

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "alice@example.com",
			Password: "wrong",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects an unknown account without leaking existence", func(t *testing.T) {
		svc := newTestAuthService(&accountStoreStub{}, &sessionStoreStub{})

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "nobody@example.com",
			Password: "whatever",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects empty credentials", func(t *testing.T) {
		svc := newTestAuthService(&accountStoreStub{}, &sessionStoreStub{})

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("refuses the login when token generation fails", func(t *testing.T) {
		accounts := seedAccount(t, "correct horse battery")
		sessions := &sessionStoreStub{}
		idGen := func() string { return "id-1" }
		emptyTokenGen := func() string { return "" }
		svc := NewAuthService(accounts, sessions, idGen, emptyTokenGen, fixedNow, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "alice@example.com",
			Password: "correct horse battery",
		})
		if err == nil {
			t.Fatalf("expected Authenticate to fail without a token")
		}
		if len(sessions.sessions) != 0 {
			t.Fatalf("expected no session to be stored, got %v", sessions.sessions)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	activeSession := func(expiry time.Time, revokedAt *time.Time) *sessionStoreStub {
		return &sessionStoreStub{
			sessions: map[string]persistence.Session{
				"token-1": {
					ID:        "sess-1",
					UserID:    "user-1",
					Token:     "token-1",
					ExpiresAt: expiry,
					RevokedAt: revokedAt,
				},
			},
		}
	}

	t.Run("returns the principal for an active session", func(t *testing.T) {
		accounts := seedAccount(t, "correct horse battery")
		svc := newTestAuthService(accounts, activeSession(testNow.Add(time.Hour), nil))

		principal, err := svc.ValidateSession(context.Background(), "token-1")
		if err != nil {
			t.Fatalf("ValidateSession returned error: %v", err)
		}
		if principal.UserID != "user-1" || !principal.IsAdmin {
			t.Fatalf("unexpected principal: %+v", principal)
		}
	})

	t.Run("rejects an expired session", func(t *testing.T) {
		accounts := seedAccount(t, "correct horse battery")
		svc := newTestAuthService(accounts, activeSession(testNow.Add(-time.Minute), nil))

		_, err := svc.ValidateSession(context.Background(), "token-1")
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects a revoked session", func(t *testing.T) {
		accounts := seedAccount(t, "correct horse battery")
		revokedAt := testNow.Add(-time.Minute)
		svc := newTestAuthService(accounts, activeSession(testNow.Add(time.Hour), &revokedAt))

		_, err := svc.ValidateSession(context.Background(), "token-1")
		if !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		accounts := seedAccount(t, "correct horse battery")
		svc := newTestAuthService(accounts, &sessionStoreStub{})

		_, err := svc.ValidateSession(context.Background(), "missing")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Run("revokes an existing session", func(t *testing.T) {
		sessions := &sessionStoreStub{
			sessions: map[string]persistence.Session{
				"token-1": {ID: "sess-1", UserID: "user-1", Token: "token-1", ExpiresAt: testNow.Add(time.Hour)},
			},
		}
		svc := newTestAuthService(&accountStoreStub{}, sessions)

		if err := svc.RevokeSession(context.Background(), "token-1"); err != nil {
			t.Fatalf("RevokeSession returned error: %v", err)
		}
		if sessions.revokedToken != "token-1" {
			t.Fatalf("expected token-1 to be revoked, got %q", sessions.revokedToken)
		}
	})

	t.Run("maps an unknown token to invalid credentials", func(t *testing.T) {
		svc := newTestAuthService(&accountStoreStub{}, &sessionStoreStub{})

		err := svc.RevokeSession(context.Background(), "missing")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
