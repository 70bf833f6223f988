package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"devtogether/internal/common/config"
	"devtogether/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSyncer struct {
	calls   atomic.Int32
	block   chan struct{}
	started chan struct{}
	err     error
}

func (c *countingSyncer) Sync(ctx context.Context) (*SyncResult, error) {
	c.calls.Add(1)
	if c.started != nil {
		c.started <- struct{}{}
	}
	if c.block != nil {
		<-c.block
	}
	if c.err != nil {
		return nil, c.err
	}
	return &SyncResult{}, nil
}

func TestScheduler_RunOnceSkipsOverlappingRuns(t *testing.T) {
	syncer := &countingSyncer{block: make(chan struct{}), started: make(chan struct{}, 1)}
	s := NewScheduler(syncer, config.SearchConfig{}, logger.NewTestLogger(t))

	done := make(chan bool)
	go func() { done <- s.RunOnce(context.Background()) }()
	<-syncer.started

	assert.False(t, s.RunOnce(context.Background()))

	close(syncer.block)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), syncer.calls.Load())
}

func TestScheduler_SyncErrorIsLogged(t *testing.T) {
	syncer := &countingSyncer{err: errors.New("es down")}
	s := NewScheduler(syncer, config.SearchConfig{}, logger.NewTestLogger(t))

	assert.True(t, s.RunOnce(context.Background()))
}

func TestScheduler_StartRunsOnStartAndOnSchedule(t *testing.T) {
	syncer := &countingSyncer{}
	s := NewScheduler(syncer, config.SearchConfig{SyncInterval: "@every 1s", SyncOnStart: true}, logger.NewNoOpLogger())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return syncer.calls.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(&countingSyncer{}, config.SearchConfig{SyncInterval: "every now and then"}, logger.NewTestLogger(t))
	assert.Error(t, s.Start(context.Background()))
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"entry", 1, "next", "soon", "dangling"})
	assert.Equal(t, map[string]interface{}{"entry": 1, "next": "soon"}, fields)
}
