package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/workstream-hr/payroll-core-go/internal/domain/payroll"
	"github.com/workstream-hr/payroll-core-go/internal/handler/http/response"
)

type PayrollHandler interface {
	GenerateDraft(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	AdvanceRun(w http.ResponseWriter, r *http.Request)
	SavePenalty(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.Service
}

func NewPayrollHandler(payrollService payroll.Service) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
	}
}

// GenerateDraft implements PayrollHandler.
func (h *payrollHandlerImpl) GenerateDraft(w http.ResponseWriter, r *http.Request) {
	var req payroll.GenerateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	run, err := h.payrollService.GenerateDraft(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll draft generated", run)
}

// GetRun implements PayrollHandler.
func (h *payrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.payrollService.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, run)
}

// AdvanceRun implements PayrollHandler.
func (h *payrollHandlerImpl) AdvanceRun(w http.ResponseWriter, r *http.Request) {
	var req payroll.AdvanceRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RunID = chi.URLParam(r, "id")

	run, err := h.payrollService.AdvanceRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, run)
}

// SavePenalty implements PayrollHandler.
func (h *payrollHandlerImpl) SavePenalty(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePenaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	penalty, err := h.payrollService.SavePenalty(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Penalty saved", penalty)
}
