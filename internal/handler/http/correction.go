package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/workstream-hr/payroll-core-go/internal/domain/correction"
	"github.com/workstream-hr/payroll-core-go/internal/handler/http/response"
	"github.com/workstream-hr/payroll-core-go/internal/service/escalation"
)

type CorrectionHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	RunEscalations(w http.ResponseWriter, r *http.Request)
	SetCutoff(w http.ResponseWriter, r *http.Request)
}

type correctionHandlerImpl struct {
	correctionService correction.Service
	monitor           escalation.Monitor
}

func NewCorrectionHandler(correctionService correction.Service, monitor escalation.Monitor) CorrectionHandler {
	return &correctionHandlerImpl{
		correctionService: correctionService,
		monitor:           monitor,
	}
}

// Submit implements CorrectionHandler.
func (h *correctionHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req correction.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.correctionService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Correction request submitted", created)
}

// Decide implements CorrectionHandler.
func (h *correctionHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	var req correction.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.CorrectionID = chi.URLParam(r, "id")

	decided, err := h.correctionService.Decide(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, decided)
}

// Get implements CorrectionHandler.
func (h *correctionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.correctionService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// List implements CorrectionHandler.
func (h *correctionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter correction.Filter

	if v := r.URL.Query().Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := r.URL.Query().Get("line_manager_id"); v != "" {
		filter.LineManagerID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := correction.Status(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(w, "Invalid 'from' date, expected YYYY-MM-DD", nil)
			return
		}
		filter.From = &from
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(w, "Invalid 'to' date, expected YYYY-MM-DD", nil)
			return
		}
		filter.To = &to
	}

	results, err := h.correctionService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// RunEscalations implements CorrectionHandler.
func (h *correctionHandlerImpl) RunEscalations(w http.ResponseWriter, r *http.Request) {
	report, err := h.monitor.Run(r.Context(), time.Now().UTC())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Escalation pass completed", report)
}

type setCutoffRequest struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	CutoffAt time.Time `json:"cutoff_at"`
}

// SetCutoff implements CorrectionHandler.
func (h *correctionHandlerImpl) SetCutoff(w http.ResponseWriter, r *http.Request) {
	var req setCutoffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.CutoffAt.IsZero() {
		response.BadRequest(w, "cutoff_at is required", nil)
		return
	}

	report, err := h.monitor.SetCutoff(r.Context(), req.From, req.To, req.CutoffAt)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll cutoff stamped", report)
}
