package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/auth"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/logger"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/receipt"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/sales"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/store"
)

// numeric accepts a JSON number or a string holding one and keeps the literal text,
// so parsing into decimals happens in one place.
type numeric string

func (n *numeric) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = numeric(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = numeric(num)
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type saleLineRequest struct {
	ItemID    int64   `json:"item_id"`
	Quantity  numeric `json:"quantity"`
	UnitPrice numeric `json:"unit_price"`
}

type saleRequest struct {
	CustomerName string            `json:"customer_name"`
	Items        []saleLineRequest `json:"items"`
}

type saleResponse struct {
	Sale       *models.Sale `json:"sale"`
	ReceiptURL string       `json:"receipt_url"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, user, err := s.auth.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, loginResponse{Token: token, User: user})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			respondError(w, r, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.ListItems(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, items)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := s.items.GetItem(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in models.ItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := s.items.CreateItem(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var in models.ItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := s.items.UpdateItem(r.Context(), id, in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid item ID")
		return
	}

	if err := s.items.DeleteItem(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var req saleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	raw := make([]sales.RawLine, len(req.Items))
	for i, item := range req.Items {
		raw[i] = sales.RawLine{
			ItemID:    item.ItemID,
			Quantity:  string(item.Quantity),
			UnitPrice: string(item.UnitPrice),
		}
	}

	lines, err := sales.ParseLines(raw)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	sale, err := s.sales.SubmitSale(r.Context(), sales.Request{
		UserID:       claims.UserID,
		CustomerName: req.CustomerName,
		Lines:        lines,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	receiptURL := fmt.Sprintf("/api/sales/%d/receipt", sale.ID)
	w.Header().Set("Location", fmt.Sprintf("/api/sales/%d", sale.ID))
	respondJSON(w, r, http.StatusCreated, saleResponse{Sale: sale, ReceiptURL: receiptURL})
}

// handleListSales shows cashiers their own sales and admins everyone's.
func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	params := sales.ListParams{
		Cursor: q.Get("cursor"),
		Limit:  limit,
	}
	if !claims.IsAdmin() {
		params.UserID = claims.UserID
	}

	page, err := s.sales.ListSales(r.Context(), params)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleGetSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid sale ID")
		return
	}

	sale, err := s.sales.GetSale(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sale)
}

// handlePrintReceipt serves the till receipt as text, or as JSON with format=json.
func (s *Server) handlePrintReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid sale ID")
		return
	}

	rec, err := s.sales.GetReceipt(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		respondJSON(w, r, http.StatusOK, rec)
		return
	}

	var buf bytes.Buffer
	if err := receipt.Render(&buf, s.shopName, rec); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Error("write receipt", zap.Int64("sale_id", id), zap.Error(err))
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Summary(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.reports.Dashboard(r.Context(), s.lowStockThreshold)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, dash)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	pageSize = store.ClampPageSize(pageSize)

	result, err := s.users.ListUsers(r.Context(), page, pageSize)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, user)
}
