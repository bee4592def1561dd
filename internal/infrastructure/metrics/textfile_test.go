package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/cmdverify/internal/domain"
)

func sampleSummary() domain.Summary {
	return domain.Summary{
		Total:      4,
		ByCategory: map[domain.Category]int{domain.CategorySafe: 2, domain.CategoryDangerous: 1, domain.CategorySkip: 1},
		Succeeded:  3,
		Failed:     1,
		Cache:      domain.CacheSummary{Hits: 3, Misses: 1, Writes: 1, HitRate: 0.75},
		DurationMS: 1500,
	}
}

func TestCollectorsReflectSummary(t *testing.T) {
	c, err := NewCollectors(prometheus.NewRegistry())
	require.NoError(t, err)

	c.Set(sampleSummary(), fixedNow())

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Commands.WithLabelValues("safe")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.Commands.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Results.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.Cache.WithLabelValues("hits")))
	assert.Equal(t, 0.75, testutil.ToFloat64(c.HitRatio))
	assert.Equal(t, 1.5, testutil.ToFloat64(c.Duration))
}

func TestCollectorsRejectDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollectors(reg)
	require.NoError(t, err)
	_, err = NewCollectors(reg)
	assert.Error(t, err)
}

func TestTextfileSinkWritesPromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics", "cmdverify.prom")
	sink, err := NewTextfileSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Observe(sampleSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `cmdverify_commands{category="dangerous"} 1`), text)
	assert.Contains(t, text, "cmdverify_cache_hit_ratio 0.75")
}

func fixedNow() time.Time {
	return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
}
