package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expensio/expense-docai/constants"
	"github.com/expensio/expense-docai/internal/async"
	"github.com/expensio/expense-docai/internal/common"
	"github.com/expensio/expense-docai/internal/entity"
)

// maxUploadBytes caps receipt uploads at 20 MiB.
const maxUploadBytes = 20 << 20

// handleUploadReceipt accepts a multipart receipt file, stores the asset,
// creates a Draft record, and queues it for processing.
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	stored, err := s.store.Save(file, header.Filename)
	if err != nil {
		if errors.Is(err, common.ErrUnsupportedFileType) {
			respondError(w, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		s.logger.Error("asset store failed", "filename", header.Filename, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to store receipt")
		return
	}

	exp, err := s.expenses.CreateDraft(r.Context(), &entity.Expense{
		FilePath:    stored.Path,
		FileExt:     stored.Ext,
		ContentHash: stored.HashHex,
	})
	if err != nil {
		s.logger.Error("create draft failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create expense")
		return
	}

	if err := s.queue.Enqueue(r.Context(), async.Job{
		ExpenseID:   exp.ID,
		SubmittedAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("enqueue failed", "expense_id", exp.ID, "error", err)
	}

	respondJSON(w, http.StatusAccepted, exp)
}

// handleListExpenses lists expenses by status; defaults to PENDING (the review
// inbox).
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	status := constants.ExpenseStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
	if status == "" {
		status = constants.StatusPending
	}

	recs, err := s.expenses.ListByStatus(r.Context(), status)
	if err != nil {
		s.logger.Error("list expenses failed", "status", status, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if recs == nil {
		recs = []*entity.Expense{}
	}
	respondJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := s.expenseID(w, r)
	if !ok {
		return
	}
	exp, err := s.expenses.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			respondError(w, http.StatusNotFound, "expense not found")
			return
		}
		s.logger.Error("get expense failed", "expense_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load expense")
		return
	}
	respondJSON(w, http.StatusOK, exp)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, constants.StatusApproved)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, constants.StatusRejected)
}

// review moves a PENDING expense to its reviewed status.
func (s *Server) review(w http.ResponseWriter, r *http.Request, to constants.ExpenseStatus) {
	id, ok := s.expenseID(w, r)
	if !ok {
		return
	}
	err := s.expenses.UpdateStatus(r.Context(), id, constants.StatusPending, to)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			respondError(w, http.StatusNotFound, "expense not found")
		case errors.Is(err, common.ErrInvalidTransition):
			respondError(w, http.StatusConflict, err.Error())
		default:
			s.logger.Error("review transition failed", "expense_id", id, "to", to, "error", err)
			respondError(w, http.StatusInternalServerError, "failed to update expense")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": string(to)})
}

type updateLineItemRequest struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// handleUpdateLineItem edits one line of a PENDING expense before approval.
func (s *Server) handleUpdateLineItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.expenseID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		respondError(w, http.StatusBadRequest, "index must be a non-negative integer")
		return
	}

	var req updateLineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		respondError(w, http.StatusBadRequest, "description is required")
		return
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil || quantity.Sign() < 0 {
		respondError(w, http.StatusBadRequest, "quantity must be a decimal >= 0")
		return
	}
	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unit_price must be a decimal")
		return
	}

	exp, err := s.expenses.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			respondError(w, http.StatusNotFound, "expense not found")
			return
		}
		s.logger.Error("get expense failed", "expense_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load expense")
		return
	}
	if exp.Status != constants.StatusPending {
		respondError(w, http.StatusConflict, fmt.Sprintf("expense is %s, not %s", exp.Status, constants.StatusPending))
		return
	}

	if err := s.expenses.UpdateLineItem(r.Context(), id, index, req.Description, quantity, unitPrice); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			respondError(w, http.StatusNotFound, "line item not found")
			return
		}
		s.logger.Error("line item update failed", "expense_id", id, "index", index, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update line item")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id.String(), "line_index": index})
}

// handleExport streams an XLSX workbook of approved expenses.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	parseDate := func(key string) (*time.Time, bool) {
		v := strings.TrimSpace(r.URL.Query().Get(key))
		if v == "" {
			return nil, true
		}
		t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			respondError(w, http.StatusBadRequest, key+" invalid (YYYY-MM-DD)")
			return nil, false
		}
		return &t, true
	}
	from, ok := parseDate("from")
	if !ok {
		return
	}
	to, ok := parseDate("to")
	if !ok {
		return
	}

	b, err := s.exporter.ExportExpensesXLSX(r.Context(), from, to)
	if err != nil {
		s.logger.Error("export failed", "error", err)
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) expenseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
