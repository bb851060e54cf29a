// Package scheduler runs the daily medication reset: once per day at local
// midnight every schedule's check-off flag goes back to unchecked.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/everydaycare/server/internal/repository"
)

// MedicationReset owns the midnight timer. Each firing is independent: a
// failed reset is logged and the next day's firing is unaffected. The last
// completed reset date is persisted, so a process that restarts after
// midnight but before its timer fired catches up on boot instead of skipping
// the day.
type MedicationReset struct {
	meds *repository.MedicationRepo
	log  *zap.Logger
	now  func() time.Time // injected for tests
}

func NewMedicationReset(meds *repository.MedicationRepo, log *zap.Logger) *MedicationReset {
	return &MedicationReset{meds: meds, log: log, now: time.Now}
}

// Start runs the catch-up check, then arms a timer for the next local
// midnight and re-arms every 24 hours. Blocks until ctx is done, so run it
// in its own goroutine.
func (s *MedicationReset) Start(ctx context.Context) {
	s.catchUp(ctx)

	timer := time.NewTimer(NextMidnightDelay(s.now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.runReset(ctx)
			timer.Reset(NextMidnightDelay(s.now()))
		}
	}
}

// catchUp fires a reset immediately when the persisted last-run date is
// before today, covering restarts that crossed midnight.
func (s *MedicationReset) catchUp(ctx context.Context) {
	last, err := s.meds.LastResetDate(ctx)
	if err != nil {
		s.log.Error("medication reset: reading last run failed", zap.Error(err))
		return
	}
	today := s.now().Format("2006-01-02")
	if last == today {
		return
	}
	s.log.Info("medication reset: catching up missed run",
		zap.String("last", last), zap.String("today", today))
	s.runReset(ctx)
}

// runReset clears every check-off flag and records the run. Errors are
// swallowed after logging: one bad day never crashes the process or blocks
// the next firing.
func (s *MedicationReset) runReset(ctx context.Context) {
	n, err := s.meds.ResetAllChecks(ctx)
	if err != nil {
		s.log.Error("medication reset failed", zap.Error(err))
		return
	}
	if err := s.meds.RecordReset(ctx, s.now(), n); err != nil {
		s.log.Error("medication reset: recording run failed", zap.Error(err))
		return
	}
	s.log.Info("medication reset complete", zap.Int64("rows", n))
}

// NextMidnightDelay computes how long to sleep until the next local
// midnight. Always positive: at exactly midnight it returns a full day.
func NextMidnightDelay(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}
