package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestContext creates a context with timeout for tests.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// WaitFor polls cond until it holds, for work finished by background workers.
func WaitFor(t *testing.T, cond func() bool, msgAndArgs ...interface{}) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, 25*time.Millisecond, msgAndArgs...)
}
