package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HealthzUp)
	assert.NotNil(t, ReadyzUp)
	assert.NotNil(t, RunsTotal)
	assert.NotNil(t, RunDuration)
	assert.NotNil(t, LastRunTimestamp)
	assert.NotNil(t, ChecksTotal)
	assert.NotNil(t, FetchDuration)
	assert.NotNil(t, ItemInStock)
	assert.NotNil(t, TransitionsTotal)
	assert.NotNil(t, SnapshotWritesTotal)
	assert.NotNil(t, SnapshotErrorsTotal)
	assert.NotNil(t, NotificationsSentTotal)
	assert.NotNil(t, NotificationFailuresTotal)
	assert.NotNil(t, NotificationDuration)
	assert.NotNil(t, PauseToggleTotal)
	assert.NotNil(t, Paused)
}

func TestMetricNames(t *testing.T) {
	t.Parallel()

	Paused.Set(1)
	assert.InDelta(t, 1.0, testutil.ToFloat64(Paused), 0)

	problems, err := testutil.CollectAndLint(RunsTotal)
	assert.NoError(t, err)
	assert.Empty(t, problems)
}
