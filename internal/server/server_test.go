package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trustgate/trustgate/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testConfig returns a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		Env:              "development",
		LogLevel:         "error",
		BlacklistIDs:     config.DefaultBlacklistIDs,
		LowRiskCountries: config.DefaultLowRiskCountries,
		VelocityWindow:   60 * time.Second,
		RateLimitRPS:     1000,
	}
}

// newTestServer creates an in-memory server
func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	t.Cleanup(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
	})
	return s
}

// ---------------------------------------------------------------------------
// Health endpoint tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}
}

func TestLivenessEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health/live", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestReadinessEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health/ready", nil)
	s.router.ServeHTTP(w, req)

	// Server hasn't called Run() so ready is false
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 (not ready), got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Route registration tests
// ---------------------------------------------------------------------------

func TestCoreRoutesRegistered(t *testing.T) {
	s := newTestServer(t, testConfig())

	routes := s.router.Routes()
	expected := []string{
		"GET:/health",
		"GET:/health/live",
		"GET:/health/ready",
		"GET:/metrics",
		"GET:/ws",
		"POST:/v1/profiles",
		"POST:/v1/otp/verify",
		"GET:/v1/admin/cases",
		"POST:/v1/admin/cases/decision",
		"GET:/v1/admin/audit",
		"GET:/v1/admin/analytics",
	}

	routeSet := make(map[string]bool)
	for _, route := range routes {
		routeSet[route.Method+":"+route.Path] = true
	}

	for _, e := range expected {
		if !routeSet[e] {
			t.Errorf("Core route %s not registered", e)
		}
	}
}

// ---------------------------------------------------------------------------
// Onboarding flow tests
// ---------------------------------------------------------------------------

func TestProfileSubmission(t *testing.T) {
	s := newTestServer(t, testConfig())

	body := `{"email":"asha@gmail.com","name":"Asha Patel","id_number":"ZXCV123456","country":"India"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/profiles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["status"] != "otp_sent" {
		t.Errorf("Expected status 'otp_sent', got %v", resp["status"])
	}
}

func TestVerifyWrongCodeCountsAttempt(t *testing.T) {
	s := newTestServer(t, testConfig())

	submit := `{"email":"asha@gmail.com","name":"Asha Patel","id_number":"ZXCV123456","country":"India"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/profiles", strings.NewReader(submit))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("submit failed: %d", w.Code)
	}

	// Codes are six random digits with a nonzero lead, so this can never match.
	verify := `{"email":"asha@gmail.com","otp":"000000"}`
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/v1/otp/verify", strings.NewReader(verify))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["status"] != "failed" {
		t.Errorf("Expected status 'failed', got %v", resp["status"])
	}
	if resp["attempts"] != float64(1) {
		t.Errorf("Expected 1 attempt, got %v", resp["attempts"])
	}
}

func TestProfileValidationRejected(t *testing.T) {
	s := newTestServer(t, testConfig())

	body := `{"email":"not-an-email","name":"X"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/profiles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Admin auth tests
// ---------------------------------------------------------------------------

func TestAdminRoutesRequireSecret(t *testing.T) {
	cfg := testConfig()
	cfg.AdminSecret = "letmein"
	s := newTestServer(t, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/admin/cases", nil)
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 without secret, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/v1/admin/cases", nil)
	req.Header.Set("X-Admin-Secret", "letmein")
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with secret, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminRoutesOpenWithoutSecretConfigured(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/admin/analytics", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Middleware tests
// ---------------------------------------------------------------------------

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	s.router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header to be set")
	}

	// Existing request IDs pass through
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	s.router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("Expected X-Request-ID 'req-123', got %q", got)
	}
}

func TestNotFoundRoute(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/nonexistent", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}
