package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedulerRejectsInvalidExpression(t *testing.T) {
	_, err := NewScheduler("every tuesday", time.UTC, func(context.Context) error { return nil }, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewSchedulerAcceptsDescriptors(t *testing.T) {
	for _, spec := range []string{"0 9 * * 1", "@daily", "@every 6h"} {
		_, err := NewScheduler(spec, nil, func(context.Context) error { return nil }, zerolog.Nop())
		assert.NoError(t, err, spec)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	loc, err := LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	s, err := NewScheduler("0 9 * * *", loc, func(context.Context) error { return nil }, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return !s.NextRun().IsZero() }, time.Second, 10*time.Millisecond)
	next := s.NextRun().In(loc)
	assert.Equal(t, 9, next.Hour())
	assert.Equal(t, 0, next.Minute())

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRunJobSurvivesFailures(t *testing.T) {
	calls := 0
	s, err := NewScheduler("@daily", time.UTC, func(context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("run failed")
		}
		panic("boom")
	}, zerolog.Nop())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		s.runJob(context.Background())
		s.runJob(context.Background())
	})
	assert.Equal(t, 2, calls)
}

func TestRunJobSkipsAfterCancel(t *testing.T) {
	called := false
	s, err := NewScheduler("@daily", time.UTC, func(context.Context) error {
		called = true
		return nil
	}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.runJob(ctx)
	assert.False(t, called)
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = LoadLocation("Mars/Olympus")
	assert.Error(t, err)
}
