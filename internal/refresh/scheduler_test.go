package refresh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParse(t *testing.T) {
	sched, err := Parse("*/5 * * * *")
	require.NoError(t, err)

	from := time.Date(2026, 3, 2, 9, 1, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC), sched.Next(from))

	_, err = Parse("every five minutes")
	assert.Error(t, err)

	_, err = Parse("* * * * * *")
	assert.Error(t, err, "seconds field is not accepted")
}

func TestStartDisabledWhenEmpty(t *testing.T) {
	done, err := Start(context.Background(), "  ", time.UTC, zap.NewNop(), func(context.Context) {
		t.Fatal("must not run")
	})
	require.NoError(t, err)
	select {
	case <-done:
	default:
		t.Fatal("done should be closed for a disabled scheduler")
	}
}

func TestStartInvalidSchedule(t *testing.T) {
	done, err := Start(context.Background(), "61 * * * *", time.UTC, zap.NewNop(), func(context.Context) {})
	assert.Error(t, err)
	<-done
}

func TestStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan struct{}, 1)
	done, err := Start(ctx, "0 0 1 1 *", time.UTC, zap.NewNop(), func(context.Context) {
		runs <- struct{}{}
	})
	require.NoError(t, err)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	assert.Empty(t, runs)
}
