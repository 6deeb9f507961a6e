package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-api/internal/handler"
	appointmenthandler "github.com/jwalitptl/clinic-api/internal/handler/appointment"
	authhandler "github.com/jwalitptl/clinic-api/internal/handler/auth"
	clinicalhandler "github.com/jwalitptl/clinic-api/internal/handler/clinical"
	dashboardhandler "github.com/jwalitptl/clinic-api/internal/handler/dashboard"
	patienthandler "github.com/jwalitptl/clinic-api/internal/handler/patient"
	"github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	schedulehandler "github.com/jwalitptl/clinic-api/internal/handler/schedule"
	shifthandler "github.com/jwalitptl/clinic-api/internal/handler/shift"
	specialtyhandler "github.com/jwalitptl/clinic-api/internal/handler/specialty"
	staffhandler "github.com/jwalitptl/clinic-api/internal/handler/staff"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/appointment"
	"github.com/jwalitptl/clinic-api/internal/service/auth"
	"github.com/jwalitptl/clinic-api/internal/service/clinical"
	"github.com/jwalitptl/clinic-api/internal/service/dashboard"
	"github.com/jwalitptl/clinic-api/internal/service/patient"
	"github.com/jwalitptl/clinic-api/internal/service/schedule"
	"github.com/jwalitptl/clinic-api/internal/service/shift"
	"github.com/jwalitptl/clinic-api/internal/service/specialty"
	"github.com/jwalitptl/clinic-api/internal/service/staff"
	"github.com/jwalitptl/clinic-api/internal/store"
	jwtauth "github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

// TestResponse wraps the API envelope for assertions.
type TestResponse struct {
	Code    int
	Status  string
	Message string
	Data    map[string]interface{}
	List    []map[string]interface{}
	Errors  []map[string]string
}

func (r TestResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r TestResponse) GetString(key string) string {
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func (a testAPI) makeRequest(method, path string, body interface{}, token string) TestResponse {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var envelope struct {
		Status  string              `json:"status"`
		Message string              `json:"message"`
		Data    json.RawMessage     `json:"data"`
		Errors  []map[string]string `json:"errors"`
	}
	resp := TestResponse{Code: w.Code}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		return resp
	}
	resp.Status, resp.Message, resp.Errors = envelope.Status, envelope.Message, envelope.Errors
	if len(envelope.Data) > 0 && envelope.Data[0] == '[' {
		_ = json.Unmarshal(envelope.Data, &resp.List)
	} else if len(envelope.Data) > 0 {
		_ = json.Unmarshal(envelope.Data, &resp.Data)
	}
	return resp
}

func (a testAPI) login(username, password string) string {
	a.t.Helper()
	resp := a.makeRequest(http.MethodPost, "/auth/login", map[string]string{"username": username, "password": password}, "")
	require.True(a.t, resp.IsSuccess(), "login %s: %s", username, resp.Message)
	return resp.GetString("token")
}

func setup(t *testing.T) testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	hasher := security.NewBcryptHasher(bcrypt.MinCost)

	repos := repository.New(store.NewMemory(), store.DefaultPrefix)
	require.NoError(t, repos.Seed(ctx, repository.SeedCredentials{
		AdminPassword:   "admin123",
		PatientPassword: "cliente123",
		StaffPassword:   "medico123",
	}, hasher, now, nil))

	tokens, err := jwtauth.NewJWTService("test-secret", "clinic-api", 0)
	require.NoError(t, err)

	authSvc := auth.NewService(repos, tokens, hasher, nil, clock)
	appointmentSvc := appointment.NewService(repos, nil, nil,
		appointment.WithClock(clock),
		appointment.WithLocation(time.UTC),
	)

	reg := prom.NewRegistry()
	log := zerolog.Nop()
	r := NewRouter(middleware.NewAuthMiddleware(authSvc), Handlers{
		Health:  handler.NewHandler(store.NewMemory()),
		Metrics: prometheus.New("clinic", reg),
		Auth:    authhandler.NewHandler(authSvc),
		Resources: []Handler{
			appointmenthandler.NewHandler(appointmentSvc),
			patienthandler.NewHandler(patient.NewService(repos, nil, clock)),
			staffhandler.NewHandler(staff.NewService(repos, nil, clock)),
			specialtyhandler.NewHandler(specialty.NewService(repos, nil, clock)),
			shifthandler.NewHandler(shift.NewService(repos, nil, clock)),
			schedulehandler.NewHandler(schedule.NewService(repos, nil, clock)),
			clinicalhandler.NewHandler(clinical.NewService(repos, nil, clock, time.UTC)),
			dashboardhandler.NewHandler(dashboard.NewService(repos, clock, time.UTC)),
		},
	}, &log, RouterConfig{CORSConfig: middleware.DefaultCORSConfig()})
	r.Setup()

	return testAPI{t: t, engine: r.Engine()}
}

func TestHealthAndMetrics(t *testing.T) {
	api := setup(t)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))
	}

	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "clinic_http_requests_total")
}

func TestAuthFlow(t *testing.T) {
	api := setup(t)

	bad := api.makeRequest(http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, "error", bad.Status)

	anon := api.makeRequest(http.MethodGet, "/appointments", nil, "")
	assert.Equal(t, http.StatusUnauthorized, anon.Code)

	reg := api.makeRequest(http.MethodPost, "/auth/register", map[string]string{
		"username": "lucia", "password": "secreto", "confirmPassword": "secreto",
		"name": "Lucía Gómez", "email": "lucia@mail.com",
	}, "")
	require.Equal(t, http.StatusCreated, reg.Code, reg.Message)
	assert.Equal(t, "patient", reg.GetString("role"))
	_, leaked := reg.Data["passwordHash"]
	assert.False(t, leaked)

	dup := api.makeRequest(http.MethodPost, "/auth/register", map[string]string{
		"username": "lucia", "password": "secreto", "confirmPassword": "secreto",
		"name": "Otra", "email": "otra@mail.com",
	}, "")
	assert.Equal(t, http.StatusConflict, dup.Code)

	invalid := api.makeRequest(http.MethodPost, "/auth/register", map[string]string{"username": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
	assert.NotEmpty(t, invalid.Errors)

	token := api.login("lucia", "secreto")
	me := api.makeRequest(http.MethodGet, "/auth/me", nil, token)
	require.True(t, me.IsSuccess())

	out := api.makeRequest(http.MethodPost, "/auth/logout", nil, token)
	assert.True(t, out.IsSuccess())
	gone := api.makeRequest(http.MethodGet, "/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, gone.Code)
}

func TestAppointmentFlow(t *testing.T) {
	api := setup(t)
	patientToken := api.login("cliente", "cliente123")
	staffToken := api.login("medico", "medico123")
	adminToken := api.login("admin", "admin123")

	booking := map[string]string{
		"medicalStaffId": "1",
		"specialtyId":    "1",
		"date":           "2025-06-10",
		"time":           "10:00",
	}

	empty := api.makeRequest(http.MethodPost, "/appointments", map[string]string{}, patientToken)
	assert.Equal(t, http.StatusBadRequest, empty.Code)
	assert.Len(t, empty.Errors, 4)

	created := api.makeRequest(http.MethodPost, "/appointments", booking, patientToken)
	require.Equal(t, http.StatusCreated, created.Code, created.Message)
	id := created.GetString("id")
	assert.Equal(t, "scheduled", created.GetString("status"))
	assert.Equal(t, "2", created.GetString("patientId"))
	assert.Equal(t, true, created.Data["emailSent"])

	taken := api.makeRequest(http.MethodPost, "/appointments", booking, patientToken)
	assert.Equal(t, http.StatusConflict, taken.Code)

	byStaff := api.makeRequest(http.MethodPost, "/appointments", booking, staffToken)
	assert.Equal(t, http.StatusForbidden, byStaff.Code)

	list := api.makeRequest(http.MethodGet, "/appointments?period=upcoming", nil, patientToken)
	require.True(t, list.IsSuccess())
	require.Len(t, list.List, 1)
	assert.Equal(t, true, list.List[0]["canCancel"])

	badPeriod := api.makeRequest(http.MethodGet, "/appointments?period=someday", nil, patientToken)
	assert.Equal(t, http.StatusBadRequest, badPeriod.Code)

	notes := api.makeRequest(http.MethodPut, "/appointments/"+id+"/notes", map[string]string{"notes": "Traer análisis"}, staffToken)
	require.True(t, notes.IsSuccess(), notes.Message)
	assert.Equal(t, "Traer análisis", notes.GetString("notes"))

	done := api.makeRequest(http.MethodPost, "/appointments/"+id+"/complete", nil, staffToken)
	require.True(t, done.IsSuccess(), done.Message)
	assert.Equal(t, "completed", done.GetString("status"))

	again := api.makeRequest(http.MethodPost, "/appointments/"+id+"/cancel", nil, adminToken)
	assert.Equal(t, http.StatusConflict, again.Code)

	missing := api.makeRequest(http.MethodGet, "/appointments/nope", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestResourceAccess(t *testing.T) {
	api := setup(t)
	patientToken := api.login("cliente", "cliente123")
	adminToken := api.login("admin", "admin123")
	staffToken := api.login("medico", "medico123")

	body := map[string]string{"identificationNumber": "55555555C", "name": "Rosa Díaz"}
	forbidden := api.makeRequest(http.MethodPost, "/patients", body, patientToken)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	created := api.makeRequest(http.MethodPost, "/patients", body, adminToken)
	require.Equal(t, http.StatusCreated, created.Code, created.Message)

	list := api.makeRequest(http.MethodGet, "/patients", nil, patientToken)
	require.True(t, list.IsSuccess())
	assert.Len(t, list.List, 2)

	sched := api.makeRequest(http.MethodPost, "/work-schedules", map[string]interface{}{
		"medicalStaffId": "1", "workShiftId": "1", "dayOfWeek": 1,
	}, adminToken)
	require.Equal(t, http.StatusCreated, sched.Code, sched.Message)
	dupSched := api.makeRequest(http.MethodPost, "/work-schedules", map[string]interface{}{
		"medicalStaffId": "1", "workShiftId": "2", "dayOfWeek": 1,
	}, adminToken)
	assert.Equal(t, http.StatusConflict, dupSched.Code)

	shifts := api.makeRequest(http.MethodGet, "/work-shifts?active=true", nil, staffToken)
	require.True(t, shifts.IsSuccess())
	assert.Len(t, shifts.List, 2)

	clinicalDenied := api.makeRequest(http.MethodGet, "/consultations", nil, patientToken)
	assert.Equal(t, http.StatusForbidden, clinicalDenied.Code)

	consult := api.makeRequest(http.MethodPost, "/consultations", map[string]string{
		"patientId": "1", "chiefComplaint": "Tos", "currentIllness": "Una semana",
	}, staffToken)
	require.Equal(t, http.StatusCreated, consult.Code, consult.Message)
	assert.Equal(t, "1", consult.GetString("medicalStaffId"))

	stats := api.makeRequest(http.MethodGet, "/dashboard/stats", nil, patientToken)
	require.True(t, stats.IsSuccess())
	assert.Equal(t, float64(2), stats.Data["patients"])
	assert.Equal(t, float64(3), stats.Data["specialties"])
}
