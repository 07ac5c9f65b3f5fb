package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"proprent-backend/internal/security"
	"proprent-backend/internal/service"
)

// NewRouter wires the order API behind request-id and auth middleware.
func NewRouter(orderSvc service.OrderService, returnSvc service.ReturnService, financeSvc service.FinanceService, tokens security.TokenManager) *mux.Router {
	h := NewOrderHandler(orderSvc, returnSvc, financeSvc)

	r := mux.NewRouter()
	r.Use(RequestID)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(Auth(tokens))

	api.HandleFunc("/orders", h.CreateOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders", h.ListOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", h.GetOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/snapshot", h.Snapshot).Methods(http.MethodGet)

	api.HandleFunc("/orders/{id}/accept", h.Accept()).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/ready", h.MarkReady()).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/issue", h.Issue()).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/ship", h.Ship()).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/deliver", h.Deliver()).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/start-rent", h.StartRental()).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/begin-return", h.BeginReturn()).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/cancel", h.Cancel()).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/return", h.ConfirmReturn).Methods(http.MethodPost)

	return r
}
