package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := NewCollector("eventdocs")

	c.CacheLookup("policies", "currentVersions", false)
	c.CacheLookup("policies", "currentVersions", true)
	c.CacheLookup("policies", "currentVersions", true)
	c.GraphBuilt("policy", true, 4, 10*time.Millisecond)
	c.UnresolvedReference("no_candidate")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.CacheHits.WithLabelValues("policies", "currentVersions")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheMisses.WithLabelValues("policies", "currentVersions")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.GraphBuilds.WithLabelValues("policy", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Unresolved.WithLabelValues("no_candidate")))

	t.Run("independent registries", func(t *testing.T) {
		other := NewCollector("eventdocs")
		assert.Equal(t, 0.0, testutil.ToFloat64(other.CacheHits.WithLabelValues("policies", "currentVersions")))
	})

	t.Run("nil collector is a no-op", func(t *testing.T) {
		var nilCollector *Collector
		nilCollector.CacheLookup("views", "allVersions", true)
		nilCollector.GraphBuilt("view", false, 0, 0)
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", true)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("loud", false)
	assert.Error(t, err)
}
