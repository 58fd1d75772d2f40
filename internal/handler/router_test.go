package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/skateflow-api/internal/middleware"
	"github.com/noah-isme/skateflow-api/internal/repository"
	"github.com/noah-isme/skateflow-api/internal/service"
	"github.com/noah-isme/skateflow-api/pkg/storage"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := service.NewMetricsService()
	store := repository.NewEntityStore(repository.NewMemoryBackend(), zap.NewNop(), metrics)
	skaterRepo := repository.NewSkaterRepository(store)
	sessionRepo := repository.NewSessionRepository(store)
	rosters := repository.NewEnrollmentRepository(store)

	instructor := service.NewInstructorService(repository.NewInstructorRepository(store), "Bruno Oliveira", nil, nil)
	skaters := service.NewSkaterService(skaterRepo, nil, nil, time.UTC, nil)
	sessions := service.NewSessionService(service.SessionServiceParams{Repo: sessionRepo, Instructor: instructor, Location: time.UTC})
	enrollments := service.NewEnrollmentService(service.EnrollmentServiceParams{Rosters: rosters, Sessions: sessionRepo, Skaters: skaterRepo, Metrics: metrics})
	attendance := service.NewAttendanceService(service.AttendanceServiceParams{Rosters: rosters, Sessions: sessionRepo, Skaters: skaterRepo, Metrics: metrics})
	notes := service.NewNoteService(repository.NewNoteRepository(store), skaterRepo, instructor, nil, nil, time.UTC, nil)
	stats := service.NewStatsService(service.StatsServiceParams{Skaters: skaterRepo, Sessions: sessionRepo, Rosters: rosters, Instructor: instructor})
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	media := service.NewMediaService(local, storage.NewSignedURLSigner("secret", time.Hour), service.MediaConfig{APIPrefix: "/api/v1", MaxFileSize: 64}, nil)
	exports := service.NewExportService(attendance, sessions, nil, nil, nil)

	r := gin.New()
	r.Use(middleware.Metrics(metrics), middleware.WithResponseMeta())
	RegisterOps(r, NewMetricsHandler(metrics, store))
	RegisterRoutes(r.Group("/api/v1"), Handlers{
		Skaters:     NewSkaterHandler(skaters, attendance, media),
		Notes:       NewNoteHandler(notes),
		Sessions:    NewSessionHandler(sessions),
		Enrollments: NewEnrollmentHandler(enrollments),
		Attendance:  NewAttendanceHandler(attendance),
		Exports:     NewExportHandler(exports),
		Dashboard:   NewDashboardHandler(stats),
		Instructor:  NewInstructorHandler(instructor, media),
		Media:       NewMediaHandler(media),
	})
	return &testServer{t: t, router: r}
}

func (s *testServer) do(method, path string, body interface{}) (*httptest.ResponseRecorder, responseEnvelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var envelope responseEnvelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	}
	return rec, envelope
}

func (s *testServer) createID(path string, body interface{}) int64 {
	s.t.Helper()
	rec, env := s.do(http.MethodPost, path, body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &created))
	return created.ID
}

func TestRouterRosterFlow(t *testing.T) {
	s := newTestServer(t)
	ana := s.createID("/api/v1/skaters", map[string]interface{}{"name": "Ana", "national_id": "1"})
	bia := s.createID("/api/v1/skaters", map[string]interface{}{"name": "Bia", "national_id": "2"})
	session := s.createID("/api/v1/sessions", map[string]interface{}{"title": "Street", "date_time": "2024-05-20T18:00", "max_skaters": "5"})

	rec, env := s.do(http.MethodPost, fmt.Sprintf("/api/v1/sessions/%d/enrollments", session), map[string]interface{}{"skater_ids": []int64{ana}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var enrolled struct {
		Session struct {
			EnrolledCount int `json:"enrolled_count"`
		} `json:"session"`
		SkaterIDs []int64 `json:"skater_ids"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &enrolled))
	assert.Equal(t, 1, enrolled.Session.EnrolledCount)
	assert.Equal(t, []int64{ana}, enrolled.SkaterIDs)

	rec, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/sessions/%d/candidates", session), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"name":"Bia"`)
	assert.NotContains(t, string(env.Data), `"name":"Ana"`)

	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/v1/sessions/%d/attendance/%d/toggle", session, ana), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/sessions/%d/attendance?status=present", session), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"name":"Ana"`)
	summary, ok := env.Meta["summary"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), summary["present"])

	rec, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/sessions/%d/attendance?status=late", session), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/skaters/%d", ana), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	rec, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/sessions/%d/enrollments/%d", session, ana), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/skaters/%d", ana), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/skaters/%d/history", bia), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterValidationAndNotFound(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(http.MethodGet, "/api/v1/skaters/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, _ = s.do(http.MethodGet, "/api/v1/sessions/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/v1/skaters", map[string]interface{}{"name": "No id"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/v1/sessions?date=2024-13-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterNotesAndInstructor(t *testing.T) {
	s := newTestServer(t)
	kai := s.createID("/api/v1/skaters", map[string]interface{}{"name": "Kai", "national_id": "9"})

	rec, env := s.do(http.MethodPut, "/api/v1/instructor", map[string]interface{}{"name": "Rita Lopes"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(env.Data), `"name":"Rita Lopes"`)

	s.createID(fmt.Sprintf("/api/v1/skaters/%d/notes", kai), map[string]interface{}{"title": "Ollie", "content": "Clean"})
	rec, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/skaters/%d/notes", kai), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"instructor":"Rita Lopes"`)

	rec, env = s.do(http.MethodGet, "/api/v1/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dashboard struct {
		Instructor string `json:"instructor"`
		Stats      struct {
			ActiveSkaters int `json:"active_skaters"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	assert.Equal(t, "Rita Lopes", dashboard.Instructor)
	assert.Equal(t, 1, dashboard.Stats.ActiveSkaters)
}

func TestRouterExports(t *testing.T) {
	s := newTestServer(t)
	session := s.createID("/api/v1/sessions", map[string]interface{}{"title": "Ramp", "date_time": "2024-05-20T18:00"})

	rec, _ := s.do(http.MethodGet, fmt.Sprintf("/api/v1/sessions/%d/attendance/export", session), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	rec, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/sessions/%d/attendance/export?format=pdf", session), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestRouterPhotoUploadAndDownload(t *testing.T) {
	s := newTestServer(t)

	upload := func(contentType string, payload []byte) *httptest.ResponseRecorder {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		partHeader := textproto.MIMEHeader{}
		partHeader.Set("Content-Disposition", `form-data; name="file"; filename="avatar.png"`)
		partHeader.Set("Content-Type", contentType)
		part, err := writer.CreatePart(partHeader)
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/photos", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("image/png", []byte("png-bytes"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var photo struct {
		Reference string `json:"reference"`
		URL       string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &photo))

	download := httptest.NewRecorder()
	s.router.ServeHTTP(download, httptest.NewRequest(http.MethodGet, photo.URL, nil))
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, "png-bytes", download.Body.String())
	assert.Equal(t, "image/png", download.Header().Get("Content-Type"))

	kai := s.createID("/api/v1/skaters", map[string]interface{}{"name": "Kai", "national_id": "9"})
	rec, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/skaters/%d", kai), map[string]interface{}{"photo": photo.Reference})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/skaters/%d", kai), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	linked, ok := env.Meta["photo_url"].(string)
	require.True(t, ok, rec.Body.String())
	fresh := httptest.NewRecorder()
	s.router.ServeHTTP(fresh, httptest.NewRequest(http.MethodGet, linked, nil))
	assert.Equal(t, "png-bytes", fresh.Body.String())

	rec, _ = s.do(http.MethodPut, "/api/v1/instructor", map[string]interface{}{"photo": "https://cdn.example.com/bruno.jpg"})
	require.Equal(t, http.StatusOK, rec.Code)
	_, env = s.do(http.MethodGet, "/api/v1/instructor", nil)
	assert.NotContains(t, env.Meta, "photo_url")

	assert.Equal(t, http.StatusUnsupportedMediaType, upload("text/plain", []byte("x")).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, upload("image/png", bytes.Repeat([]byte("x"), 100)).Code)
}

func TestRouterOpsEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/api/v1/skaters", nil)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/v1/skaters",status="200"}`)
}
