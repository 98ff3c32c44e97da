package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"trailsafe/internal/report"
)

type stubReportService struct {
	got  report.Request
	hits int
	err  error
}

func (s *stubReportService) BuildReport(_ context.Context, req report.Request) (*report.Report, error) {
	s.got = req
	s.hits++
	if s.err != nil {
		return nil, s.err
	}
	return &report.Report{}, nil
}

func newTestApp(svc report.Service) *App {
	gin.SetMode(gin.TestMode)
	app := &App{
		router:        gin.New(),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		reportService: svc,
	}
	app.registerRoutes()
	return app
}

func TestHandleGetReport_ZeroCoordinatesBind(t *testing.T) {
	svc := &stubReportService{}
	app := newTestApp(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/report?latitude=0&longitude=0", nil)
	app.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if svc.hits != 1 {
		t.Fatalf("BuildReport called %d times, want 1", svc.hits)
	}
	if svc.got.Latitude != 0 || svc.got.Longitude != 0 {
		t.Errorf("coordinates = %v,%v, want 0,0", svc.got.Latitude, svc.got.Longitude)
	}
}

func TestHandleGetReport_MissingCoordinateRejected(t *testing.T) {
	svc := &stubReportService{}
	app := newTestApp(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/report?latitude=39.18", nil)
	app.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if svc.hits != 0 {
		t.Errorf("BuildReport called %d times, want 0", svc.hits)
	}
}

func TestHandleGetReport_ValidationErrorMapsTo400(t *testing.T) {
	svc := &stubReportService{err: report.ErrInvalidCoordinates}
	app := newTestApp(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/report?latitude=94.0&longitude=-106.82", nil)
	app.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
