package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAssistantRequestsCounts(t *testing.T) {
	c := AssistantRequests.WithLabelValues("recommend", "metrics_test")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestCacheLookupsLabels(t *testing.T) {
	CacheLookups.WithLabelValues("hit").Add(0)
	CacheLookups.WithLabelValues("miss").Add(0)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(CacheLookups), 2)
}
