//go:build api

package testserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// CleanupBetweenTests clears all data between tests.
// Call this at the start of each test function for isolation.
func (ts *TestServer) CleanupBetweenTests(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	// Jobs from the previous test must land before their collections are emptied.
	ts.WaitForJobs(t)

	err := ts.MongoDB.CleanupCollections(ctx)
	require.NoError(t, err, "failed to cleanup MongoDB collections")

	err = ts.Redis.FlushDB(ctx)
	require.NoError(t, err, "failed to flush Redis")

	err = ts.MinIO.ClearBucket(ctx)
	require.NoError(t, err, "failed to clear MinIO bucket")

	ts.Events.Reset()
}

// WaitForJobs blocks until the activity queue is empty.
func (ts *TestServer) WaitForJobs(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return ts.PendingJobs() == 0 }, waitTimeout, waitTick,
		"activity queue did not drain")
}
