package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/atm/internal/domain/model"
)

// InventoryReader exposes the subset of application functionality the
// monitor needs. It never mutates anything.
type InventoryReader interface {
	InventoryStatus(ctx context.Context) (model.NoteBundle, error)
}

// CashMonitor periodically inspects the note inventory and warns when
// the machine is running low, so the branch can schedule a refill before
// withdrawals start failing.
type CashMonitor struct {
	facade    InventoryReader
	interval  time.Duration
	threshold int64
	logger    *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewCashMonitor constructs the monitor.
func NewCashMonitor(facade InventoryReader, interval time.Duration, threshold int64, logger *slog.Logger) *CashMonitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CashMonitor{
		facade:    facade,
		interval:  interval,
		threshold: threshold,
		logger:    logger,
	}
}

// Start launches background checks.
func (m *CashMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go m.run(runCtx)
}

// Stop waits for the monitor to finish.
func (m *CashMonitor) Stop() {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *CashMonitor) run(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *CashMonitor) check(ctx context.Context) {
	inv, err := m.facade.InventoryStatus(ctx)
	if err != nil {
		m.logger.Error("inventory check failed", slog.String("error", err.Error()))
		return
	}

	total := inv.Total()
	if total < m.threshold {
		m.logger.Warn("cash running low",
			slog.Int64("total", total),
			slog.Int64("threshold", m.threshold),
			slog.Int("note100", inv.Note100),
		)
	}
	if inv.Note100 == 0 {
		// Without 100s most non-round amounts become undispensable.
		m.logger.Warn("no 100 notes left", slog.Int64("total", total))
	}
}
