package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"investhub/internal/services"

	"github.com/robfig/cron/v3"
)

// Scheduler fires one batch cycle at local midnight in the batch
// timezone: the daily profit accrual followed by the daily affiliate
// rewards, sequential. The per-day run-lock row keeps a finished day
// from running twice while leaving a crashed (unfinished) day
// reclaimable, and the mutex keeps cycles from overlapping within this
// process.
type Scheduler struct {
	clock       Clock
	batches     BatchStore
	investments Accruer
	commissions Rewarder
	cron        *cron.Cron

	mu sync.Mutex
}

type Clock interface {
	Now() time.Time
	StartOfToday() time.Time
	Location() *time.Location
}

type BatchStore interface {
	ClaimRun(ctx context.Context, runDate time.Time) (bool, error)
	FinishRun(ctx context.Context, runDate time.Time, summary string) error
}

type Accruer interface {
	AccrueDailyProfit(ctx context.Context, now time.Time) (services.AccrualSummary, error)
}

type Rewarder interface {
	ProcessDailyAffiliateRewards(ctx context.Context, now time.Time) (services.RewardSummary, error)
}

func New(clock Clock, batches BatchStore, investments Accruer, commissions Rewarder) *Scheduler {
	return &Scheduler{
		clock:       clock,
		batches:     batches,
		investments: investments,
		commissions: commissions,
		cron:        cron.New(cron.WithLocation(clock.Location())),
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 0 * * *", func() {
		if err := s.RunCycle(context.Background()); err != nil {
			log.Printf("daily batch cycle failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunCycle executes one daily batch cycle unless today already finished.
// A finished day is a normal skip, not an error; an unfinished claim
// from a crashed run is taken over and resumed.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	runDate := s.clock.StartOfToday()
	claimed, err := s.batches.ClaimRun(ctx, runDate)
	if err != nil {
		return err
	}
	if !claimed {
		log.Printf("batch for %s already ran, skipping", runDate.Format("2006-01-02"))
		return nil
	}

	accrual, accrualErr := s.investments.AccrueDailyProfit(ctx, now)
	if accrualErr != nil {
		log.Printf("profit accrual pass failed: %v", accrualErr)
	}
	rewards, rewardsErr := s.commissions.ProcessDailyAffiliateRewards(ctx, now)
	if rewardsErr != nil {
		log.Printf("affiliate reward pass failed: %v", rewardsErr)
	}

	// A wholesale pass failure leaves the day unfinished so the next
	// trigger reclaims and resumes it. Per-item failures inside a pass
	// are already in the summaries and do not block the finish.
	if accrualErr != nil || rewardsErr != nil {
		return errors.Join(accrualErr, rewardsErr)
	}

	summary, _ := json.Marshal(map[string]any{
		"accrual": accrual,
		"rewards": rewards,
	})
	if err := s.batches.FinishRun(ctx, runDate, string(summary)); err != nil {
		log.Printf("failed to record batch summary: %v", err)
	}
	log.Printf("daily batch for %s: accrued=%d completed=%d referrers_rewarded=%d paid=%d errors=%d",
		runDate.Format("2006-01-02"), accrual.Processed, accrual.Completed,
		rewards.ReferrersRewarded, rewards.TotalPaidMinor,
		len(accrual.Errors)+len(rewards.PerReferrerErrors))
	return nil
}
