package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/example/room-booking/internal/application"
)

type sessionValidatorStub struct {
	validateFn func(ctx context.Context, token string) (application.Principal, error)
}

func (s *sessionValidatorStub) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	return s.validateFn(ctx, token)
}

func TestRequireSession(t *testing.T) {
	principal := application.Principal{UserID: "user-1", IsAdmin: true}
	validator := &sessionValidatorStub{
		validateFn: func(_ context.Context, token string) (application.Principal, error) {
			if token == "valid-token" {
				return principal, nil
			}
			return application.Principal{}, application.ErrSessionExpired
		},
	}

	protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := PrincipalFromContext(r.Context())
		if !ok || got.UserID != principal.UserID {
			t.Errorf("expected principal in context, got %+v ok=%v", got, ok)
		}
		w.WriteHeader(http.StatusOK)
	})
	middleware := RequireSession(validator, discardLogger())

	t.Run("rejects requests without a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		rec := httptest.NewRecorder()
		middleware(protected).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("rejects expired sessions with a dedicated code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.Header.Set("Authorization", "Bearer stale-token")
		rec := httptest.NewRecorder()
		middleware(protected).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
		var resp errorResponse
		decodeBody(t, rec, &resp)
		if resp.ErrorCode != "AUTH_SESSION_EXPIRED" {
			t.Errorf("expected AUTH_SESSION_EXPIRED, got %q", resp.ErrorCode)
		}
	})

	t.Run("attaches the principal for a valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		middleware(protected).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("accepts the session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "valid-token"})
		rec := httptest.NewRecorder()
		middleware(protected).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("lets sign-in through without a token", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		rec := httptest.NewRecorder()
		middleware(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}
	})

	t.Run("attaches the principal on sign-up when a valid token is present", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got, ok := PrincipalFromContext(r.Context()); !ok || !got.IsAdmin {
				t.Errorf("expected admin principal on public route, got %+v ok=%v", got, ok)
			}
			w.WriteHeader(http.StatusCreated)
		})
		req := httptest.NewRequest(http.MethodPost, "/users", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		middleware(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(rate.Limit(1), 2, discardLogger())(next)

	newReq := func(addr string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.RemoteAddr = addr
		return req
	}

	t.Run("allows requests within the burst", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newReq("10.0.0.1:1234"))
			if rec.Code != http.StatusOK {
				t.Fatalf("request %d: expected status 200, got %d", i, rec.Code)
			}
		}
	})

	t.Run("rejects requests over the burst", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newReq("10.0.0.1:1234"))
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected status 429, got %d", rec.Code)
		}
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newReq("10.0.0.2:1234"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200 for a fresh client, got %d", rec.Code)
		}
	})
}

func TestCacheGET(t *testing.T) {
	t.Run("serves repeated GETs from the cache", func(t *testing.T) {
		calls := 0
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		store := gocache.New(time.Minute, time.Minute)
		handler := CacheGET(store, time.Minute)(next)

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("request %d: expected status 200, got %d", i, rec.Code)
			}
			if rec.Body.String() != `{"ok":true}` {
				t.Fatalf("request %d: unexpected body %q", i, rec.Body.String())
			}
		}
		if calls != 1 {
			t.Errorf("expected 1 upstream call, got %d", calls)
		}
	})

	t.Run("keys entries by session token", func(t *testing.T) {
		calls := 0
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusOK)
		})
		store := gocache.New(time.Minute, time.Minute)
		handler := CacheGET(store, time.Minute)(next)

		first := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		first.Header.Set("Authorization", "Bearer token-a")
		handler.ServeHTTP(httptest.NewRecorder(), first)

		second := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		second.Header.Set("Authorization", "Bearer token-b")
		handler.ServeHTTP(httptest.NewRecorder(), second)

		if calls != 2 {
			t.Errorf("expected separate cache entries per token, got %d upstream calls", calls)
		}
	})

	t.Run("bypasses event stream requests", func(t *testing.T) {
		calls := 0
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusOK)
		})
		store := gocache.New(time.Minute, time.Minute)
		handler := CacheGET(store, time.Minute)(next)

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/events", nil)
			req.Header.Set("Accept", "text/event-stream")
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}
		if calls != 2 {
			t.Errorf("expected event stream requests to skip the cache, got %d upstream calls", calls)
		}
	})

	t.Run("does not cache errors or writes", func(t *testing.T) {
		calls := 0
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if r.Method == http.MethodGet {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusCreated)
		})
		store := gocache.New(time.Minute, time.Minute)
		handler := CacheGET(store, time.Minute)(next)

		for i := 0; i < 2; i++ {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rooms/missing", nil))
		}
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/rooms", nil))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/rooms", nil))

		if calls != 4 {
			t.Errorf("expected every request to reach upstream, got %d", calls)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Error("expected request logger in context")
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := RequestLogger(discardLogger())(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
