package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/polkiloo/atm/internal/domain/model"
)

type inventoryReaderStub struct {
	mu     sync.Mutex
	bundle model.NoteBundle
	err    error
	calls  int
}

func (s *inventoryReaderStub) InventoryStatus(context.Context) (model.NoteBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return model.NoteBundle{}, s.err
	}
	return s.bundle, nil
}

func (s *inventoryReaderStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func (h *recordingHandler) messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.records))
	for _, r := range h.records {
		out = append(out, r.Message)
	}
	return out
}

func hasMessage(messages []string, want string) bool {
	for _, msg := range messages {
		if msg == want {
			return true
		}
	}
	return false
}

func TestCheckWarnsBelowThreshold(t *testing.T) {
	handler := &recordingHandler{}
	stub := &inventoryReaderStub{bundle: model.NoteBundle{Note500: 2, Note100: 3}}
	monitor := NewCashMonitor(stub, time.Minute, 20000, slog.New(handler))

	monitor.check(context.Background())

	messages := handler.messages()
	if !hasMessage(messages, "cash running low") {
		t.Fatalf("expected low-cash warning, got %v", messages)
	}
}

func TestCheckWarnsWhenSmallNotesGone(t *testing.T) {
	handler := &recordingHandler{}
	stub := &inventoryReaderStub{bundle: model.NoteBundle{Note2000: 100}}
	monitor := NewCashMonitor(stub, time.Minute, 20000, slog.New(handler))

	monitor.check(context.Background())

	if !hasMessage(handler.messages(), "no 100 notes left") {
		t.Fatalf("expected small-note warning, got %v", handler.messages())
	}
}

func TestCheckQuietWhenStocked(t *testing.T) {
	handler := &recordingHandler{}
	stub := &inventoryReaderStub{bundle: model.DefaultInventory()}
	monitor := NewCashMonitor(stub, time.Minute, 20000, slog.New(handler))

	monitor.check(context.Background())

	if len(handler.messages()) != 0 {
		t.Fatalf("expected no warnings, got %v", handler.messages())
	}
}

func TestCheckLogsReadFailure(t *testing.T) {
	handler := &recordingHandler{}
	stub := &inventoryReaderStub{err: errors.New("backend down")}
	monitor := NewCashMonitor(stub, time.Minute, 20000, slog.New(handler))

	monitor.check(context.Background())

	if !hasMessage(handler.messages(), "inventory check failed") {
		t.Fatalf("expected failure log, got %v", handler.messages())
	}
}

func TestStartStopRunsPeriodically(t *testing.T) {
	handler := &recordingHandler{}
	stub := &inventoryReaderStub{bundle: model.DefaultInventory()}
	monitor := NewCashMonitor(stub, 5*time.Millisecond, 20000, slog.New(handler))

	monitor.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for stub.callCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("monitor never ticked")
		case <-time.After(time.Millisecond):
		}
	}

	monitor.Stop()
	after := stub.callCount()
	time.Sleep(20 * time.Millisecond)
	if stub.callCount() != after {
		t.Fatal("monitor kept running after Stop")
	}
}

func TestStopWithoutStart(t *testing.T) {
	monitor := NewCashMonitor(&inventoryReaderStub{}, time.Minute, 0, slog.New(&recordingHandler{}))
	monitor.Stop()
}

func TestNewCashMonitorDefaultsInterval(t *testing.T) {
	monitor := NewCashMonitor(&inventoryReaderStub{}, 0, 0, slog.New(&recordingHandler{}))
	if monitor.interval != time.Minute {
		t.Fatalf("interval = %v", monitor.interval)
	}
}
