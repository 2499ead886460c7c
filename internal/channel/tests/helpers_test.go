package tests

import (
	"context"
	"testing"
	"time"
)

// testContext returns a context bound to the test's lifetime with a generous
// upper bound so a bug that blocks forever fails the test instead of hanging
// the suite.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
