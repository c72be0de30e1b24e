package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(ingestFailuresTotal.WithLabelValues("metadata"))
	IncIngestFailed("metadata")
	if got := testutil.ToFloat64(ingestFailuresTotal.WithLabelValues("metadata")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}

	orphans := testutil.ToFloat64(orphanBlobsTotal)
	IncOrphanBlob()
	if got := testutil.ToFloat64(orphanBlobsTotal); got != orphans+1 {
		t.Fatalf("expected %v orphans, got %v", orphans+1, got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncDocumentIngested()

	r := gin.New()
	r.GET("/metrics", Handler())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "docqa_documents_ingested_total") {
		t.Fatalf("expected ingested counter in output")
	}
}
