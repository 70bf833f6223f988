package search

import (
	"context"
	"fmt"
	"sync"

	"devtogether/internal/common/config"
	"devtogether/internal/common/logger"

	"github.com/robfig/cron/v3"
)

// Syncer is satisfied by *Indexer.
type Syncer interface {
	Sync(ctx context.Context) (*SyncResult, error)
}

// Scheduler re-synchronises the index on a cron spec. Overlapping runs are skipped.
type Scheduler struct {
	cron        *cron.Cron
	syncer      Syncer
	spec        string
	syncOnStart bool
	logger      logger.Logger

	mu      sync.Mutex
	running bool
}

func NewScheduler(syncer Syncer, cfg config.SearchConfig, log logger.Logger) *Scheduler {
	spec := cfg.SyncInterval
	if spec == "" {
		spec = "@every 15m"
	}
	l := log.WithFields(map[string]interface{}{"component": "search-scheduler"})
	return &Scheduler{
		cron:        cron.New(cron.WithLogger(cronLogger{l})),
		syncer:      syncer,
		spec:        spec,
		syncOnStart: cfg.SyncOnStart,
		logger:      l,
	}
}

// Start registers the sync job and starts the cron loop. When configured, one sync
// also runs immediately in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("Search sync scheduled", map[string]interface{}{"spec": s.spec})

	if s.syncOnStart {
		go s.RunOnce(ctx)
	}
	return nil
}

// Stop stops the cron loop and waits for a running sync to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.logger.Info("Search sync stopped", nil)
}

// RunOnce performs a sync unless one is already in progress. It reports whether it ran.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Debug("Search sync already running, skipping", nil)
		return false
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if _, err := s.syncer.Sync(ctx); err != nil {
		s.logger.Error("Search sync failed", map[string]interface{}{"error": err.Error()})
	}
	return true
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvFields(keysAndValues)
	fields["error"] = err.Error()
	c.l.Error("cron: "+msg, fields)
}

func kvFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
