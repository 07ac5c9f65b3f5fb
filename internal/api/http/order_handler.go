package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"proprent-backend/internal/domain"
	"proprent-backend/internal/service"
)

// OrderHandler exposes the order lifecycle and settlement operations.
type OrderHandler struct {
	orderSvc   service.OrderService
	returnSvc  service.ReturnService
	financeSvc service.FinanceService
}

func NewOrderHandler(orderSvc service.OrderService, returnSvc service.ReturnService, financeSvc service.FinanceService) *OrderHandler {
	return &OrderHandler{
		orderSvc:   orderSvc,
		returnSvc:  returnSvc,
		financeSvc: financeSvc,
	}
}

type createOrderRequest struct {
	Order domain.Order       `json:"order"`
	Items []domain.OrderItem `json:"items"`
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON: %v", err))
		return
	}
	order, err := h.orderSvc.CreateOrder(r.Context(), &req.Order, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	order, items, err := h.orderSvc.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order, "items": items})
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := parseInt32(q.Get("page"), 1)
	pageSize := parseInt32(q.Get("page_size"), 20)
	includeArchived := q.Get("include_archived") == "true"

	orders, total, err := h.orderSvc.ListOrders(r.Context(), q.Get("status"), includeArchived, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders, "total": total})
}

// transitionHandler wraps the single-status lifecycle moves.
func (h *OrderHandler) transitionHandler(fn func(r *http.Request, id int64) (*domain.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		order, err := fn(r, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

func (h *OrderHandler) Accept() http.HandlerFunc {
	return h.transitionHandler(func(r *http.Request, id int64) (*domain.Order, error) {
		return h.orderSvc.Accept(r.Context(), id)
	})
}

func (h *OrderHandler) MarkReady() http.HandlerFunc {
	return h.transitionHandler(func(r *http.Request, id int64) (*domain.Order, error) {
		return h.orderSvc.MarkReady(r.Context(), id)
	})
}

func (h *OrderHandler) Issue() http.HandlerFunc {
	return h.transitionHandler(func(r *http.Request, id int64) (*domain.Order, error) {
		return h.orderSvc.Issue(r.Context(), id)
	})
}

func (h *OrderHandler) Ship() http.HandlerFunc {
	return h.transitionHandler(func(r *http.Request, id int64) (*domain.Order, error) {
		return h.orderSvc.Ship(r.Context(), id)
	})
}

func (h *OrderHandler) Deliver() http.HandlerFunc {
	return h.transitionHandler(func(r *http.Request, id int64) (*domain.Order, error) {
		return h.orderSvc.Deliver(r.Context(), id)
	})
}

func (h *OrderHandler) StartRental() http.HandlerFunc {
	return h.transitionHandler(func(r *http.Request, id int64) (*domain.Order, error) {
		return h.orderSvc.StartRental(r.Context(), id)
	})
}

func (h *OrderHandler) BeginReturn() http.HandlerFunc {
	return h.transitionHandler(func(r *http.Request, id int64) (*domain.Order, error) {
		return h.orderSvc.BeginReturn(r.Context(), id)
	})
}

func (h *OrderHandler) Cancel() http.HandlerFunc {
	return h.transitionHandler(func(r *http.Request, id int64) (*domain.Order, error) {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, domain.NewValidationError("body", "invalid JSON: %v", err)
		}
		return h.orderSvc.Cancel(r.Context(), id, body.Reason)
	})
}

func (h *OrderHandler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req service.ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid JSON: %v", err))
		return
	}
	result, err := h.returnSvc.ConfirmReturn(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *OrderHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	snapshot, err := h.financeSvc.Snapshot(r.Context(), id, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func orderID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "invalid order id %q", raw)
	}
	return id, nil
}

func parseInt32(raw string, def int32) int32 {
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n <= 0 {
		return def
	}
	return int32(n)
}
