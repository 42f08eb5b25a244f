package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

// ReservationStore defines the database methods needed by reservation handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReservationStore interface {
	CreateReservation(ctx context.Context, arg database.CreateReservationParams) (database.Reservation, error)
	ListReservations(ctx context.Context) ([]database.Reservation, error)
	UpdateReservationStatus(ctx context.Context, arg database.UpdateReservationStatusParams) (database.Reservation, error)
	DeleteReservation(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// ReservationHandler handles table booking endpoints.
type ReservationHandler struct {
	store ReservationStore
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(store ReservationStore) *ReservationHandler {
	return &ReservationHandler{store: store}
}

// RegisterPublicRoutes registers the storefront booking form.
// Expected to be mounted at /reservations
func (h *ReservationHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/", h.Create)
}

// RegisterAdminRoutes registers back-office reservation management.
// Expected to be mounted at /admin/reservations
func (h *ReservationHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/{id}/confirm", h.Confirm)
	r.Delete("/{id}", h.Cancel)
}

// --- Request / Response types ---

type createReservationRequest struct {
	CustomerName    string `json:"customer_name" validate:"required"`
	CustomerPhone   string `json:"customer_phone" validate:"required"`
	GuestCount      int32  `json:"guest_count" validate:"gt=0"`
	ReservationDate string `json:"reservation_date" validate:"required,datetime=2006-01-02"`
	ReservationTime string `json:"reservation_time" validate:"required,datetime=15:04"`
}

type reservationResponse struct {
	ID              uuid.UUID `json:"id"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone"`
	GuestCount      int32     `json:"guest_count"`
	ReservationDate string    `json:"reservation_date"`
	ReservationTime string    `json:"reservation_time"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func toReservationResponse(res database.Reservation) reservationResponse {
	var date string
	if res.ReservationDate.Valid {
		date = res.ReservationDate.Time.Format(time.DateOnly)
	}
	return reservationResponse{
		ID:              res.ID,
		CustomerName:    res.CustomerName,
		CustomerPhone:   res.CustomerPhone,
		GuestCount:      res.GuestCount,
		ReservationDate: date,
		ReservationTime: res.ReservationTime,
		Status:          res.Status,
		CreatedAt:       res.CreatedAt,
	}
}

// --- Handlers ---

// Create books a table. Overlapping bookings are accepted and left for
// staff to resolve when confirming.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	day, err := time.Parse(time.DateOnly, req.ReservationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reservation_date must be YYYY-MM-DD")
		return
	}

	res, err := h.store.CreateReservation(r.Context(), database.CreateReservationParams{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		GuestCount:      req.GuestCount,
		ReservationDate: pgtype.Date{Time: day, Valid: true},
		ReservationTime: req.ReservationTime,
	})
	if err != nil {
		writeInternal(w, "create reservation", err)
		return
	}

	zap.L().Info("reservation created",
		zap.String("reservation_id", res.ID.String()),
		zap.String("date", req.ReservationDate),
		zap.String("time", req.ReservationTime),
	)
	writeJSON(w, http.StatusCreated, toReservationResponse(res))
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListReservations(r.Context())
	if err != nil {
		writeInternal(w, "list reservations", err)
		return
	}

	resp := make([]reservationResponse, len(list))
	for i, res := range list {
		resp[i] = toReservationResponse(res)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation ID")
		return
	}

	res, err := h.store.UpdateReservationStatus(r.Context(), database.UpdateReservationStatusParams{
		ID:     id,
		Status: enum.ReservationStatusConfirmed,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "reservation not found")
			return
		}
		writeInternal(w, "confirm reservation", err)
		return
	}

	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

// Cancel removes the reservation.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation ID")
		return
	}

	if _, err := h.store.DeleteReservation(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "reservation not found")
			return
		}
		writeInternal(w, "cancel reservation", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
