package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Worker is a background job that runs once per tick
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

// Manager drives registered workers on their own poll intervals and stops
// them together on shutdown
type Manager struct {
	logger  *zap.Logger
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	entries []entry
}

type entry struct {
	worker   Worker
	interval time.Duration
}

// NewManager creates a worker manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Register adds a worker to be driven at the given interval
func (m *Manager) Register(w Worker, interval time.Duration) {
	m.entries = append(m.entries, entry{worker: w, interval: interval})
}

// Start launches every registered worker. Each worker runs in its own
// goroutine; a failing run is logged and retried next tick.
func (m *Manager) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)

	for _, e := range m.entries {
		m.wg.Add(1)
		go m.drive(ctx, e)
	}
	m.logger.Info("Worker manager started", zap.Int("workers", len(m.entries)))
}

// Stop cancels all workers and waits for in-flight runs to finish
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info("Worker manager stopped")
}

func (m *Manager) drive(ctx context.Context, e entry) {
	defer m.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.worker.Run(ctx); err != nil && ctx.Err() == nil {
				m.logger.Error("Worker run failed",
					zap.String("worker", e.worker.Name()),
					zap.Error(err))
			}
		}
	}
}
