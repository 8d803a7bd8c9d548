package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstream-hr/payroll-core-go/internal/domain/employee"
	"github.com/workstream-hr/payroll-core-go/internal/domain/notification"
	"github.com/workstream-hr/payroll-core-go/internal/repository/memory"
	attendanceService "github.com/workstream-hr/payroll-core-go/internal/service/attendance"
	correctionService "github.com/workstream-hr/payroll-core-go/internal/service/correction"
	"github.com/workstream-hr/payroll-core-go/internal/service/escalation"
	payrollService "github.com/workstream-hr/payroll-core-go/internal/service/payroll"
	shiftService "github.com/workstream-hr/payroll-core-go/internal/service/shift"
)

const routerTestSecret = "test-secret-key-for-jwt"

type dropNotifier struct{}

func (dropNotifier) Send(notification.Message) {}
func (dropNotifier) Close()                    {}

type routerFixture struct {
	router    *chi.Mux
	tokenAuth *jwtauth.JWTAuth
	employees *memory.EmployeeRepository
	records   *memory.AttendanceRepository
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()

	records := memory.NewAttendanceRepository()
	imports := memory.NewImportRepository()
	shifts := memory.NewShiftRepository()
	corrections := memory.NewCorrectionRepository()
	correctionConfigs := memory.NewCorrectionConfigRepository()
	runs := memory.NewPayrollRepository()
	payrollConfigs := memory.NewPayrollConfigRepository()
	employees := memory.NewEmployeeRepository()

	notifier := dropNotifier{}
	validator := shiftService.NewValidator(shifts, shifts)
	attendanceSvc := attendanceService.NewAttendanceService(records, imports, validator)
	correctionSvc := correctionService.NewCorrectionService(corrections, correctionConfigs, records, notifier)
	monitor := escalation.NewMonitor(corrections, notifier, 0, 0)
	payrollSvc := payrollService.NewPayrollService(runs, payrollConfigs, employees, records, payrollService.NoopPayslips{})

	tokenAuth := jwtauth.New("HS256", []byte(routerTestSecret), nil)
	router := NewRouter(
		tokenAuth,
		NewAttendanceHandler(attendanceSvc),
		NewCorrectionHandler(correctionSvc, monitor),
		NewPayrollHandler(payrollSvc),
	)

	return routerFixture{
		router:    router,
		tokenAuth: tokenAuth,
		employees: employees,
		records:   records,
	}
}

func (f routerFixture) accessToken(t *testing.T) string {
	t.Helper()
	_, tokenString, err := f.tokenAuth.Encode(map[string]interface{}{
		"sub":  "user-1",
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return tokenString
}

func (f routerFixture) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "body: %s", rec.Body.String())
	return envelope.Data
}

func TestRouter_RequiresToken(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	rec := f.request(t, http.MethodPost, "/api/v1/attendance/punch", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RejectsNonAccessToken(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	_, refreshToken, err := f.tokenAuth.Encode(map[string]interface{}{
		"sub":  "user-1",
		"type": "refresh",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	rec := f.request(t, http.MethodPost, "/api/v1/attendance/punch", refreshToken, map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RecordPunch(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)
	token := f.accessToken(t)

	rec := f.request(t, http.MethodPost, "/api/v1/attendance/punch", token, map[string]interface{}{
		"employee_id": "emp-1",
		"type":        "IN",
		"timestamp":   "2026-03-10T08:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	assert.Equal(t, "emp-1", data["employee_id"])
	assert.Equal(t, "2026-03-10", data["date"])
}

func TestRouter_RecordPunch_ValidationError(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)
	token := f.accessToken(t)

	rec := f.request(t, http.MethodPost, "/api/v1/attendance/punch", token, map[string]interface{}{
		"type": "SIDEWAYS",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestRouter_ListAttendance(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)
	token := f.accessToken(t)

	rec := f.request(t, http.MethodPost, "/api/v1/attendance/punch", token, map[string]interface{}{
		"employee_id": "emp-1",
		"type":        "IN",
		"timestamp":   "2026-03-10T08:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/v1/attendance/emp-1?from=2026-03-01&to=2026-03-31", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 1)
}

func TestRouter_CorrectionLifecycle(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)
	token := f.accessToken(t)

	punch := f.request(t, http.MethodPost, "/api/v1/attendance/punch", token, map[string]interface{}{
		"employee_id": "emp-1",
		"type":        "IN",
		"timestamp":   "2026-03-10T08:00:00Z",
	})
	require.Equal(t, http.StatusOK, punch.Code)
	recordID := decodeData(t, punch)["id"].(string)

	submitted := f.request(t, http.MethodPost, "/api/v1/corrections", token, map[string]interface{}{
		"employee_id":          "emp-1",
		"attendance_record_id": recordID,
		"duration_minutes":     120,
		"reason":               "forgot to clock out",
		"line_manager_id":      "mgr-1",
	})
	require.Equal(t, http.StatusCreated, submitted.Code, submitted.Body.String())
	correctionID := decodeData(t, submitted)["id"].(string)

	decided := f.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/corrections/%s/decision", correctionID), token,
		map[string]interface{}{
			"approver_id": "mgr-1",
			"decision":    "APPROVED",
		})
	require.Equal(t, http.StatusOK, decided.Code, decided.Body.String())
	assert.Equal(t, "APPROVED", decodeData(t, decided)["status"])

	// A second decision conflicts.
	again := f.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/corrections/%s/decision", correctionID), token,
		map[string]interface{}{
			"approver_id": "mgr-2",
			"decision":    "REJECTED",
		})
	assert.Equal(t, http.StatusConflict, again.Code)
}

func TestRouter_PayrollDraftAndAdvance(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)
	token := f.accessToken(t)

	bank := "First National"
	account := "000123"
	f.employees.Add(employee.Employee{
		ID:          "emp-1",
		FullName:    "Employee One",
		Status:      employee.StatusActive,
		BankName:    &bank,
		BankAccount: &account,
	})

	created := f.request(t, http.MethodPost, "/api/v1/payroll/runs", token, map[string]interface{}{
		"period_year":  2026,
		"period_month": 3,
		"generated_by": "admin-1",
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	data := decodeData(t, created)
	runID := data["id"].(string)
	// No grade on file forces review.
	assert.Equal(t, "UNDER_REVIEW", data["status"])

	fetched := f.request(t, http.MethodGet, "/api/v1/payroll/runs/"+runID, token, nil)
	require.Equal(t, http.StatusOK, fetched.Code)

	advanced := f.request(t, http.MethodPost, "/api/v1/payroll/runs/"+runID+"/advance", token, map[string]interface{}{
		"next_state": "PUBLISHED",
		"actor_id":   "admin-1",
	})
	require.Equal(t, http.StatusOK, advanced.Code, advanced.Body.String())
	assert.Equal(t, "PUBLISHED", decodeData(t, advanced)["status"])

	invalid := f.request(t, http.MethodPost, "/api/v1/payroll/runs/"+runID+"/advance", token, map[string]interface{}{
		"next_state": "PAID",
		"actor_id":   "admin-1",
	})
	assert.Equal(t, http.StatusConflict, invalid.Code)
}

func TestRouter_EscalationEndpoints(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)
	token := f.accessToken(t)

	rec := f.request(t, http.MethodPost, "/api/v1/corrections/escalations/run", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.request(t, http.MethodPost, "/api/v1/corrections/cutoff", token, map[string]interface{}{
		"from":      "2026-03-01T00:00:00Z",
		"to":        "2026-03-31T00:00:00Z",
		"cutoff_at": "2026-03-28T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
