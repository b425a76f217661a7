package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHandlerExposesCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	before := testutil.ToFloat64(DocumentsCreated)
	DocumentsCreated.Inc()
	if got := testutil.ToFloat64(DocumentsCreated); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}

	r := gin.New()
	r.GET("/metrics", Handler())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "resume_documents_created_total") {
		t.Fatalf("expected documents counter in output")
	}
}
