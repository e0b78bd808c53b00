package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
)

type bookingService interface {
	CreateReservation(ctx context.Context, params application.CreateReservationParams) (application.Reservation, error)
	CancelReservation(ctx context.Context, params application.CancelReservationParams) error
	CheckAvailability(ctx context.Context, query application.AvailabilityQuery) (bool, error)
	RoomStatus(ctx context.Context, roomID string) (application.RoomStatus, error)
	ListReservationsForDate(ctx context.Context, roomID string, date time.Time) ([]application.Reservation, error)
}

type ReservationHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewReservationHandler(service bookingService, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "room_id", roomID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	start, end, err := req.interval()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "room_id", roomID)

	reservation, err := h.service.CreateReservation(r.Context(), application.CreateReservationParams{
		Principal: principal,
		Input: application.ReservationInput{
			RoomID: roomID,
			Start:  start,
			End:    end,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("reservation_id", reservation.ID).InfoContext(r.Context(), "reservation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}
	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "room_id", roomID, "reservation_id", reservationID)

	err := h.service.CancelReservation(r.Context(), application.CancelReservationParams{
		Principal:     principal,
		RoomID:        roomID,
		ReservationID: reservationID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	query := r.URL.Query()
	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	available, err := h.service.CheckAvailability(r.Context(), application.AvailabilityQuery{
		RoomID: roomID,
		Start:  start,
		End:    end,
	})
	if err != nil {
		h.log(r.Context(), "Availability", "room_id", roomID).ErrorContext(r.Context(), "availability check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		RoomID:    roomID,
		Start:     start.UTC().Format(time.RFC3339Nano),
		End:       end.UTC().Format(time.RFC3339Nano),
		Available: available,
	})
}

func (h *ReservationHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	status, err := h.service.RoomStatus(r.Context(), roomID)
	if err != nil {
		h.log(r.Context(), "Status", "room_id", roomID).ErrorContext(r.Context(), "status lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomStatusResponse{
		RoomID:           status.RoomID,
		Name:             status.Name,
		State:            string(status.State),
		ReservationCount: status.ReservationCount,
	})
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	date := time.Now()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		date = parsed
	}

	logger := h.log(r.Context(), "List", "room_id", roomID)
	reservations, err := h.service.ListReservationsForDate(r.Context(), roomID, date)
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(reservations)).InfoContext(r.Context(), "reservations listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{
		Reservations: toReservationDTOs(reservations),
	})
}

type reservationRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r reservationRequest) interval() (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(r.Start))
	if err != nil {
		return time.Time{}, time.Time{}, errBadRequestBody
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(r.End))
	if err != nil {
		return time.Time{}, time.Time{}, errBadRequestBody
	}
	return start, end, nil
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

type reservationDTO struct {
	ID          string `json:"id"`
	RoomID      string `json:"room_id"`
	RequesterID string `json:"requester_id"`
	Start       string `json:"start"`
	End         string `json:"end"`
	CreatedAt   string `json:"created_at"`
}

func toReservationDTO(res application.Reservation) reservationDTO {
	return reservationDTO{
		ID:          res.ID,
		RoomID:      res.RoomID,
		RequesterID: res.RequesterID,
		Start:       res.Start.UTC().Format(time.RFC3339Nano),
		End:         res.End.UTC().Format(time.RFC3339Nano),
		CreatedAt:   res.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toReservationDTOs(reservations []application.Reservation) []reservationDTO {
	if len(reservations) == 0 {
		return nil
	}
	out := make([]reservationDTO, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, toReservationDTO(res))
	}
	return out
}

type availabilityResponse struct {
	RoomID    string `json:"room_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

type roomStatusResponse struct {
	RoomID           string `json:"room_id"`
	Name             string `json:"name"`
	State            string `json:"state"`
	ReservationCount int    `json:"reservation_count"`
}
