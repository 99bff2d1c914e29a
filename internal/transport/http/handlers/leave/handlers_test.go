package leavehandler_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"leavedesk/internal/auth"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/testutil"
	leavehandler "leavedesk/internal/transport/http/handlers/leave"
	"leavedesk/internal/transport/http/middleware"
)

var (
	testTokens = auth.TokenIssuer{Secret: "0123456789abcdef0123456789abcdef", Issuer: "leavedesk", Audience: "leavedesk-api", TTL: time.Hour}
	clock      = time.Date(2025, 8, 14, 9, 30, 0, 0, time.UTC)
	employee   = auth.UserContext{UserID: "emp-1", Email: "neha@example.com", Role: auth.RoleEmployee, FirstName: "Neha"}
	admin      = auth.UserContext{UserID: "adm-1", Email: "asha@example.com", Role: auth.RoleAdmin, FirstName: "Asha"}
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Fields []struct {
				Field  string `json:"field"`
				Reason string `json:"reason"`
			} `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func (e envelope) errorCode() string {
	if e.Error == nil {
		return ""
	}
	return e.Error.Code
}

func (e envelope) hasField(name string) bool {
	if e.Error == nil {
		return false
	}
	for _, f := range e.Error.Details.Fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

func newRouter(t *testing.T) (http.Handler, *testutil.LeaveStore) {
	t.Helper()
	store := testutil.NewLeaveStore()
	svc := leave.NewService(store, 12, 10)
	svc.Now = func() time.Time { return clock }

	h := leavehandler.NewHandler(svc, nil)
	h.Validator.Now = func() time.Time { return clock }

	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testTokens, nil))
	h.RegisterRoutes(r)
	return r, store
}

func token(t *testing.T, user auth.UserContext) string {
	t.Helper()
	tok, err := testTokens.Generate(user)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func call(t *testing.T, h http.Handler, method, path string, user *auth.UserContext, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, *user))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, env
}

func sickLeave(start, end, reason string) map[string]string {
	return map[string]string{"startDate": start, "endDate": end, "reason": reason, "type": "sick"}
}

func TestSubmitSickLeave(t *testing.T) {
	router, _ := newRouter(t)

	rec, env := call(t, router, http.MethodPost, "/sick-leave", &employee, sickLeave("2025-08-18", "2025-08-19", "Fever and a bad cold"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created leave.Request
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if created.ID == "" || created.Status != leave.StatusPending || created.Days != 2 {
		t.Fatalf("unexpected request %+v", created)
	}

	rec, env = call(t, router, http.MethodPost, "/sick-leave", &employee, sickLeave("2025-08-19", "2025-08-20", "Still recovering at home"))
	if rec.Code != http.StatusConflict || env.errorCode() != "overlap" {
		t.Fatalf("expected 409 overlap, got %d %q", rec.Code, env.errorCode())
	}
}

func TestSubmitSickLeaveValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{name: "short reason", body: sickLeave("2025-08-18", "2025-08-18", "flu"), field: "reason"},
		{name: "markup only reason", body: sickLeave("2025-08-18", "2025-08-18", "<b></b><i></i><u></u>"), field: "reason"},
		{name: "past start", body: sickLeave("2025-08-13", "2025-08-18", "Fever and a bad cold"), field: "startDate"},
		{name: "end before start", body: sickLeave("2025-08-20", "2025-08-18", "Fever and a bad cold"), field: "endDate"},
		{name: "unknown type", body: map[string]string{"startDate": "2025-08-18", "endDate": "2025-08-18", "reason": "Fever and a bad cold", "type": "casual"}, field: "type"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			router, store := newRouter(t)
			rec, env := call(t, router, http.MethodPost, "/sick-leave", &employee, tc.body)
			if rec.Code != http.StatusBadRequest || env.errorCode() != "validation_error" {
				t.Fatalf("expected 400 validation_error, got %d %q", rec.Code, env.errorCode())
			}
			if !env.hasField(tc.field) {
				t.Fatalf("expected field %q in details, got %s", tc.field, rec.Body.String())
			}
			if out, _ := store.ListRequests(t.Context(), leave.Filter{}); out.Total != 0 {
				t.Fatalf("expected nothing stored, got %d", out.Total)
			}
		})
	}
}

func TestSickLeaveRoutesAreForEmployees(t *testing.T) {
	router, _ := newRouter(t)

	rec, _ := call(t, router, http.MethodPost, "/sick-leave", nil, sickLeave("2025-08-18", "2025-08-18", "Fever and a bad cold"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}
	rec, _ = call(t, router, http.MethodPost, "/sick-leave", &admin, sickLeave("2025-08-18", "2025-08-18", "Fever and a bad cold"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin: expected 403, got %d", rec.Code)
	}
	rec, _ = call(t, router, http.MethodGet, "/leave-requests", &employee, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("employee listing: expected 403, got %d", rec.Code)
	}
}

func TestCancelAfterDecisionConflicts(t *testing.T) {
	router, _ := newRouter(t)

	_, env := call(t, router, http.MethodPost, "/sick-leave", &employee, sickLeave("2025-08-18", "2025-08-18", "Migraine episode again"))
	var created leave.Request
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode request: %v", err)
	}

	rec, _ := call(t, router, http.MethodPost, "/leave-requests/"+created.ID+"/approve", &admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec, env = call(t, router, http.MethodPost, "/sick-leave/"+created.ID+"/cancel", &employee, nil)
	if rec.Code != http.StatusConflict || env.errorCode() != "not_pending" {
		t.Fatalf("expected 409 not_pending, got %d %q", rec.Code, env.errorCode())
	}
	rec, env = call(t, router, http.MethodPost, "/leave-requests/"+created.ID+"/reject", &admin, nil)
	if rec.Code != http.StatusConflict || env.errorCode() != "not_pending" {
		t.Fatalf("reject after approve: expected 409, got %d %q", rec.Code, env.errorCode())
	}
}

func seedHistory(store *testutil.LeaveStore) {
	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC) }
	store.Put(leave.Request{UserID: "emp-1", EmployeeName: "Neha", Type: leave.TypeSick, StartDate: day(7, 2), EndDate: day(7, 3), Days: 2, Reason: "Seasonal flu", Status: leave.StatusApproved})
	store.Put(leave.Request{UserID: "emp-2", EmployeeName: "Ravi", Type: leave.TypeMedical, StartDate: day(7, 10), EndDate: day(7, 11), Days: 2, Reason: "Knee surgery", Status: leave.StatusApproved})
	store.Put(leave.Request{UserID: "emp-2", EmployeeName: "Ravi", Type: leave.TypeMedical, StartDate: day(8, 20), EndDate: day(8, 20), Days: 1, Reason: "Follow-up visit", Status: leave.StatusPending})
	store.Put(leave.Request{UserID: "emp-3", EmployeeName: "+Meera", Type: leave.TypeSick, StartDate: day(9, 1), EndDate: day(9, 1), Days: 1, Reason: "=HYPERLINK(\"http://x\")", Status: leave.StatusRejected})
}

func TestListLeaveRequestsFilters(t *testing.T) {
	router, store := newRouter(t)
	seedHistory(store)

	tests := []struct {
		query string
		total int
	}{
		{query: "", total: 4},
		{query: "status=All&type=All", total: 4},
		{query: "status=approved", total: 2},
		{query: "type=medical", total: 2},
		{query: "status=Approved&type=medical", total: 1},
		{query: "from=2025-08-01&to=2025-08-31", total: 1},
		{query: "from=2025-07-11", total: 3},
	}
	for _, tc := range tests {
		rec, env := call(t, router, http.MethodGet, "/leave-requests?"+tc.query, &admin, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d", tc.query, rec.Code)
		}
		var out leave.ListResult
		if err := json.Unmarshal(env.Data, &out); err != nil {
			t.Fatalf("%q: decode: %v", tc.query, err)
		}
		if out.Total != tc.total || rec.Header().Get("X-Total-Count") == "" {
			t.Fatalf("%q: expected %d results, got %d", tc.query, tc.total, out.Total)
		}
	}
}

func TestListLeaveRequestsRejectsBadFilters(t *testing.T) {
	router, _ := newRouter(t)

	tests := []struct {
		query string
		field string
	}{
		{query: "status=bogus", field: "status"},
		{query: "type=casual", field: "type"},
		{query: "from=2025-09-10&to=2025-09-01", field: "from"},
		{query: "from=15/08/2025", field: "from"},
	}
	for _, tc := range tests {
		rec, env := call(t, router, http.MethodGet, "/leave-requests?"+tc.query, &admin, nil)
		if rec.Code != http.StatusBadRequest || env.errorCode() != "validation_error" || !env.hasField(tc.field) {
			t.Fatalf("%q: expected validation_error on %s, got %d %s", tc.query, tc.field, rec.Code, rec.Body.String())
		}
	}
}

func TestExportCSV(t *testing.T) {
	router, store := newRouter(t)
	seedHistory(store)

	rec, _ := call(t, router, http.MethodGet, "/leave-requests/export.csv?status=Rejected", &admin, nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("expected csv, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d rows", len(rows))
	}
	row := rows[1]
	if row[1] != "'+Meera" || row[8] != "'=HYPERLINK(\"http://x\")" {
		t.Fatalf("expected formula cells to be quoted, got %q", row)
	}
	if row[6] != "Rejected" || row[3] != "2025-09-01" {
		t.Fatalf("unexpected row %q", row)
	}
}
