// Package api exposes the shop over HTTP.
package api

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/metrics"
)

type Deps struct {
	Items   ItemService
	Sales   SaleService
	Reports ReportService
	Auth    AuthService
	Users   UserService
	DB      Pinger

	Log         *zap.Logger
	HTTPMetrics *metrics.HTTP
	Metrics     http.Handler

	ShopName          string
	LowStockThreshold decimal.Decimal
}

type Server struct {
	items   ItemService
	sales   SaleService
	reports ReportService
	auth    AuthService
	users   UserService
	db      Pinger

	log         *zap.Logger
	httpMetrics *metrics.HTTP
	metrics     http.Handler

	shopName          string
	lowStockThreshold decimal.Decimal
}

func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		items:             d.Items,
		sales:             d.Sales,
		reports:           d.Reports,
		auth:              d.Auth,
		users:             d.Users,
		db:                d.DB,
		log:               log,
		httpMetrics:       d.HTTPMetrics,
		metrics:           d.Metrics,
		shopName:          d.ShopName,
		lowStockThreshold: d.LowStockThreshold,
	}
}

// Routes returns the full handler tree with request id, logging and metrics applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	mux.Handle("GET /api/items", s.authenticated(s.handleListItems))
	mux.Handle("GET /api/items/{id}", s.authenticated(s.handleGetItem))
	mux.Handle("POST /api/items", s.adminOnly(s.handleCreateItem))
	mux.Handle("PUT /api/items/{id}", s.adminOnly(s.handleUpdateItem))
	mux.Handle("DELETE /api/items/{id}", s.adminOnly(s.handleDeleteItem))

	mux.Handle("POST /api/sales", s.authenticated(s.handleCreateSale))
	mux.Handle("GET /api/sales", s.authenticated(s.handleListSales))
	mux.Handle("GET /api/sales/{id}", s.authenticated(s.handleGetSale))
	mux.Handle("GET /api/sales/{id}/receipt", s.authenticated(s.handlePrintReceipt))

	mux.Handle("GET /api/reports", s.authenticated(s.handleReport))
	mux.Handle("GET /api/dashboard", s.authenticated(s.handleDashboard))

	mux.Handle("GET /api/users", s.adminOnly(s.handleListUsers))
	mux.Handle("POST /api/users", s.adminOnly(s.handleCreateUser))

	return s.withRequestID(s.instrument(mux))
}
