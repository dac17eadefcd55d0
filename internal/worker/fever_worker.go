package worker

import (
	"context"
	"sync"
	"time"

	"github.com/hydrangea-games/fishpond/internal/logger"
)

// FeverRoller rolls the evening fever for every pond.
type FeverRoller interface {
	FeverCheck(ctx context.Context) error
}

// FeverWorker rolls the daily fever window at 19:30 local time
type FeverWorker struct {
	svc      FeverRoller
	timer    *time.Timer
	shutdown chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewFeverWorker creates a new FeverWorker
func NewFeverWorker(svc FeverRoller) *FeverWorker {
	return &FeverWorker{
		svc:      svc,
		shutdown: make(chan struct{}),
	}
}

// Start schedules the first fever roll
func (w *FeverWorker) Start() {
	w.scheduleNext()
}

// scheduleNext calculates the time until the next 19:30 and schedules the roll
func (w *FeverWorker) scheduleNext() {
	duration := timeUntilNextRoll()
	log := logger.FromContext(context.Background())

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}

	// Two-stage scheduling to prevent "tight loop" rescheduling caused by early triggers
	if duration > 1*time.Hour {
		// Stage 1: Long-range (Standby). Wake up 45 minutes before the roll.
		waitDuration := duration - 45*time.Minute
		w.timer = time.AfterFunc(waitDuration, func() {
			w.scheduleNext()
		})
		w.mu.Unlock()

		nextCheck := time.Now().Add(waitDuration)
		log.Info(LogMsgFeverRollStandby, "next_check_at", nextCheck)
		return
	}

	// Stage 2: Final approach. Schedule the actual roll.
	w.timer = time.AfterFunc(duration, func() {
		select {
		case <-w.shutdown:
			return
		default:
		}

		// Jitter protection: if the timer triggered early (jitter > 10s),
		// simply reschedule for the remaining time.
		rem := timeUntilNextRoll()
		if rem > 10*time.Second && rem < 23*time.Hour {
			w.scheduleNext()
			return
		}

		w.executeRoll()
		w.scheduleNext()
	})
	w.mu.Unlock()

	nextRoll := time.Now().Add(duration)
	log.Info(LogMsgFeverRollApproach, "next_roll_at", nextRoll)
}

// executeRoll performs the fever roll in a tracked goroutine
func (w *FeverWorker) executeRoll() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ctx := context.Background()
		log := logger.FromContext(ctx)
		log.Info(LogMsgFeverRollStarting)

		if err := w.svc.FeverCheck(ctx); err != nil {
			log.Error(LogMsgFeverRollFailed, "error", err)
			return
		}

		log.Info(LogMsgFeverRollCompleted)
	}()
}

// Shutdown cancels the pending timer and waits for any in-flight roll to complete
func (w *FeverWorker) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("Shutting down fever worker")

	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		log.Info("Cancelled pending fever roll")
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Fever worker shutdown complete")
		return nil
	case <-ctx.Done():
		log.Warn("Fever worker shutdown timeout, a roll may still be running")
		return ctx.Err()
	}
}

// timeUntilNextRoll calculates the duration until the next 19:30 local time
func timeUntilNextRoll() time.Duration {
	now := time.Now()
	next := time.Date(
		now.Year(), now.Month(), now.Day(),
		19, 30, 0, 0, now.Location(),
	)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
