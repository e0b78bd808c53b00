package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth         *AuthHandler
	Rooms        *RoomHandler
	Reservations *ReservationHandler
	Events       http.Handler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Auth != nil {
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		})
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.RegisterUser(w, r)
		})
	}

	if cfg.Rooms != nil {
		mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Rooms.List(w, r)
			case http.MethodPost:
				cfg.Rooms.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/rooms/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/rooms/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}

			segments := strings.Split(rest, "/")
			roomID := segments[0]
			ctx := ContextWithRoomID(r.Context(), roomID)
			r = r.WithContext(ctx)

			switch {
			case len(segments) == 1:
				switch r.Method {
				case http.MethodGet:
					cfg.Rooms.Get(w, r)
				case http.MethodDelete:
					cfg.Rooms.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodDelete)
				}
			case len(segments) == 2 && segments[1] == "status" && cfg.Reservations != nil:
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Reservations.Status(w, r)
			case len(segments) == 2 && segments[1] == "availability" && cfg.Reservations != nil:
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Reservations.Availability(w, r)
			case len(segments) == 2 && segments[1] == "reservations" && cfg.Reservations != nil:
				switch r.Method {
				case http.MethodGet:
					cfg.Reservations.List(w, r)
				case http.MethodPost:
					cfg.Reservations.Create(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			case len(segments) == 3 && segments[1] == "reservations" && cfg.Reservations != nil:
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				r = r.WithContext(ContextWithReservationID(r.Context(), segments[2]))
				cfg.Reservations.Delete(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Events != nil {
		mux.Handle("/events", cfg.Events)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
