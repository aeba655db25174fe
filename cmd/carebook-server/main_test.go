package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carebook/carebook/internal/config"
	"github.com/carebook/carebook/internal/domain/records"
	"github.com/carebook/carebook/internal/platform/filestore"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Port:        "0",
		Env:         "test",
		DataFile:    filepath.Join(dir, "healthcare_data.json"),
		StaticDir:   dir,
		CORSOrigins: []string{"*"},
		BodyLimit:   "1K",
		LogLevel:    "info",
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()
	store := records.NewStore(filestore.New[records.Snapshot](cfg.DataFile), zerolog.Nop())
	svc := records.NewService(store, nil)
	if err := svc.SeedIDs(context.Background()); err != nil {
		t.Fatalf("seed ids: %v", err)
	}
	return newRouter(cfg, zerolog.Nop(), svc, 1024)
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestRouter_Health(t *testing.T) {
	e := newTestServer(t, testConfig(t))
	rec := doRequest(e, http.MethodGet, "/api/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["status"] != "Healthcare System Running" {
		t.Errorf("unexpected status %q", body["status"])
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on /api responses")
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRouter_PatientFlowPersists(t *testing.T) {
	cfg := testConfig(t)
	e := newTestServer(t, cfg)

	rec := doRequest(e, http.MethodPost, "/api/patients", `{"name":"Asha","age":"34","contact":"9876543210"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	doRequest(e, http.MethodPost, "/api/bmi", `{"patient_id":"P001","weight":92.48,"height":1.7}`)

	rec = doRequest(e, http.MethodGet, "/api/predict/P001", "")
	var risk struct {
		RiskScore   int      `json:"risk_score"`
		Predictions []string `json:"predictions"`
	}
	decode(t, rec, &risk)
	if risk.RiskScore != 70 {
		t.Errorf("expected risk 70, got %d", risk.RiskScore)
	}

	snap, err := filestore.New[records.Snapshot](cfg.DataFile).Load()
	if err != nil {
		t.Fatalf("load data file: %v", err)
	}
	if len(snap.Patients) != 1 || snap.Patients[0].Age != 34 || len(snap.BMI) != 1 {
		t.Errorf("unexpected persisted snapshot: %+v", snap)
	}

	// A restarted server continues numbering after the stored patient.
	e = newTestServer(t, cfg)
	rec = doRequest(e, http.MethodPost, "/api/patients", `{"name":"Ben","age":50,"contact":"9123456780"}`)
	var created map[string]string
	decode(t, rec, &created)
	if created["patient_id"] != "P002" {
		t.Errorf("expected P002 after restart, got %q", created["patient_id"])
	}
}

func TestRouter_ErrorBodies(t *testing.T) {
	e := newTestServer(t, testConfig(t))

	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   int
		msg    string
	}{
		{"missing field", http.MethodPost, "/api/patients", `{"age":3,"contact":"9876543210"}`, 400, "Missing required field: name"},
		{"malformed json", http.MethodPost, "/api/symptoms", `{"patient_id":`, 400, "invalid request body"},
		{"too large", http.MethodPost, "/api/symptoms", `{"patient_id":"P001","symptoms":"` + strings.Repeat("a", 2048) + `"}`, 413, "request body too large"},
		{"unknown route", http.MethodGet, "/api/nope", "", 404, "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, tt.method, tt.target, tt.body)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
			var body map[string]string
			decode(t, rec, &body)
			if body["error"] != tt.msg {
				t.Errorf("expected error %q, got %q", tt.msg, body["error"])
			}
		})
	}
}

func TestRouter_StaticIndex(t *testing.T) {
	cfg := testConfig(t)
	e := newTestServer(t, cfg)

	if rec := doRequest(e, http.MethodGet, "/", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without index.html, got %d", rec.Code)
	}

	if err := os.WriteFile(filepath.Join(cfg.StaticDir, "index.html"), []byte("<h1>clinic</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := doRequest(e, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "clinic") {
		t.Errorf("expected index page, got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Security-Policy") != "" {
		t.Error("security headers must not apply to the static page")
	}
}

func TestStoreCmd_Stats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	snap := records.EmptySnapshot()
	snap.Patients = append(snap.Patients, records.Patient{PatientID: "P001"}, records.Patient{PatientID: "P002"})
	snap.Symptoms = append(snap.Symptoms, records.SymptomRecord{PatientID: "P001"})
	if err := filestore.New[records.Snapshot](path).SaveAll(snap); err != nil {
		t.Fatal(err)
	}

	cmd := storeCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"stats", "--file", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"patients       2", "appointments   0", "bmi            0", "symptoms       1"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestStoreCmd_CheckCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := storeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"check", "--file", path})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for corrupt data file")
	}
}

func TestRouter_SaveFailureHidesDetail(t *testing.T) {
	cfg := testConfig(t)
	// A directory cannot be written as a file.
	cfg.DataFile = cfg.StaticDir
	e := newTestServer(t, cfg)

	rec := doRequest(e, http.MethodPost, "/api/patients", `{"name":"Asha","age":34,"contact":"9876543210"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] != "internal server error" {
		t.Errorf("unexpected error body %q", body["error"])
	}
	if strings.Contains(rec.Body.String(), cfg.DataFile) {
		t.Error("response must not expose the data file path")
	}
}
