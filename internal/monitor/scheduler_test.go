package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsDueTasksInOrder(t *testing.T) {
	s := NewScheduler(time.Second)
	var order []string
	s.Every("fast", 3*time.Second, func(context.Context) { order = append(order, "fast") })
	s.Every("slow", 12*time.Second, func(context.Context) { order = append(order, "slow") })
	s.Every("fast2", 3*time.Second, func(context.Context) { order = append(order, "fast2") })

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, task := range s.tasks {
		task.lastRun = start
	}
	ctx := context.Background()

	s.runDue(ctx, start.Add(time.Second))
	assert.Empty(t, order, "nothing due before its interval")

	s.runDue(ctx, start.Add(3*time.Second))
	assert.Equal(t, []string{"fast", "fast2"}, order)

	order = nil
	s.runDue(ctx, start.Add(12*time.Second))
	assert.Equal(t, []string{"fast", "slow", "fast2"}, order)

	order = nil
	s.runDue(ctx, start.Add(13*time.Second))
	assert.Empty(t, order)
}

func TestSchedulerRecoversPanics(t *testing.T) {
	s := NewScheduler(time.Second)
	ran := false
	s.Every("boom", time.Second, func(context.Context) { panic("boom") })
	s.Every("after", time.Second, func(context.Context) { ran = true })

	assert.NotPanics(t, func() {
		s.runDue(context.Background(), time.Now().Add(time.Hour))
	})
	assert.True(t, ran)
}

func TestSchedulerStopsOnCancelledContext(t *testing.T) {
	s := NewScheduler(time.Second)
	ran := false
	s.Every("task", time.Second, func(context.Context) { ran = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.runDue(ctx, time.Now().Add(time.Hour))
	assert.False(t, ran)
	assert.NoError(t, s.Run(ctx))
}

func TestNewSchedulerDefaultTick(t *testing.T) {
	assert.Equal(t, DefaultTick, NewScheduler(0).tick)
}
