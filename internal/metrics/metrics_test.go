package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRetrieval(t *testing.T) {
	before := testutil.ToFloat64(RetrievalsTotal.WithLabelValues(OutcomeUnknown))
	RecordRetrieval(OutcomeUnknown, 3*time.Millisecond)
	after := testutil.ToFloat64(RetrievalsTotal.WithLabelValues(OutcomeUnknown))
	if after != before+1 {
		t.Errorf("Expected counter to grow by 1, got %v -> %v", before, after)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits)
	misses := testutil.ToFloat64(CacheMisses)

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	if got := testutil.ToFloat64(CacheHits) - hits; got != 1 {
		t.Errorf("Expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(CacheMisses) - misses; got != 2 {
		t.Errorf("Expected 2 misses, got %v", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200"))
	RecordAPIRequest("GET", "/health", "200", time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200"))
	if after != before+1 {
		t.Errorf("Expected counter to grow by 1, got %v -> %v", before, after)
	}
}
