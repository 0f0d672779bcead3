package endpoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func serveHealth(checker Checker) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/health", Health("microbees", checker))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	return rec
}

func TestHealth_NoChecker(t *testing.T) {
	rec := serveHealth(nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHealth_HealthyDependencies(t *testing.T) {
	rec := serveHealth(func(_ context.Context) []Check {
		return []Check{{Name: "store", Status: "healthy"}}
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"name":"store"`) {
		t.Errorf("expected the component in the body, got %s", rec.Body.String())
	}
}

func TestHealth_UnhealthyDependency(t *testing.T) {
	rec := serveHealth(func(_ context.Context) []Check {
		return []Check{
			{Name: "store", Status: "unhealthy", Message: "base store unreachable"},
		}
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"unhealthy"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
