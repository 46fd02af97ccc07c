package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"travel_cms/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample per family so they show up in the exposition
	observability.ObserveHTTP("/v1/packages", "GET", 200, 12*time.Millisecond)
	observability.ObserveMutation("packages", "insert", "ok")
	observability.ObserveUpload(2048)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{
		"travelcms_http_requests_total",
		`travelcms_content_mutations_total{collection="packages",op="insert",outcome="ok"}`,
		`travelcms_upload_size_bytes_bucket{le="65536"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output", want)
		}
	}
}
