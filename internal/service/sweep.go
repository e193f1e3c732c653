package service

import (
	"context"
	"log"
	"time"

	"farebid/internal/domain"
	"farebid/internal/redis"
	"farebid/internal/repository"
)

// SweepConfig contains the timing parameters for the subscription sweeps.
type SweepConfig struct {
	Interval         time.Duration // how often expired drivers are suspended
	ReminderInterval time.Duration // how often upcoming expiries are scanned
	ReminderLead     time.Duration // how far ahead of expiry reminders fire
	ReminderMarkTTL  time.Duration // dedupe window for a single reminder
}

// DefaultSweepConfig returns the default sweep configuration.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Interval:         time.Minute,
		ReminderInterval: 10 * time.Minute,
		ReminderLead:     2 * time.Hour,
		ReminderMarkTTL:  48 * time.Hour,
	}
}

// SweepResult summarizes one pass of a sweep.
type SweepResult struct {
	Processed int
	Suspended int
	Reminded  int
	Failed    int
}

// SweepService periodically suspends drivers whose grace window has run out
// and sends expiry reminders. Suspension through the sweep keeps the gate
// lazy everywhere else: services consult CurrentStatus at decision time and
// never depend on the sweep having already run.
type SweepService struct {
	store        repository.Store
	subs         *SubscriptionService
	availability *AvailabilityService
	locks        redis.LockStoreInterface
	publisher    StatusPublisher
	clock        Clock
	cfg          SweepConfig
}

// NewSweepService creates a new SweepService.
func NewSweepService(
	store repository.Store,
	subs *SubscriptionService,
	availability *AvailabilityService,
	locks redis.LockStoreInterface,
	publisher StatusPublisher,
	clock Clock,
	cfg SweepConfig,
) *SweepService {
	return &SweepService{
		store:        store,
		subs:         subs,
		availability: availability,
		locks:        locks,
		publisher:    publisher,
		clock:        clock,
		cfg:          cfg,
	}
}

// SweepExpired suspends every AVAILABLE driver whose subscription is past
// its grace window. Failures on individual drivers are logged and counted
// but do not stop the pass.
func (s *SweepService) SweepExpired(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	drivers, err := s.store.Drivers().ListByStatus(ctx, domain.DriverStatusAvailable)
	if err != nil {
		return result, err
	}

	now := s.clock.Now()
	for _, driver := range drivers {
		result.Processed++

		if s.subs.CurrentStatus(driver, now) != domain.SubscriptionExpired {
			continue
		}

		if err := s.availability.Suspend(ctx, driver.ID); err != nil {
			log.Printf("suspend driver %s failed: %v", driver.ID, err)
			result.Failed++
			continue
		}
		result.Suspended++
	}

	return result, nil
}

// SendReminders notifies drivers whose subscription expires within the
// reminder lead. A redis mark keyed by driver and expiry keeps each window
// to a single reminder even across process restarts.
func (s *SweepService) SendReminders(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	now := s.clock.Now()
	drivers, err := s.store.Drivers().ListExpiringBefore(ctx, now, now.Add(s.cfg.ReminderLead))
	if err != nil {
		return result, err
	}

	for _, driver := range drivers {
		result.Processed++

		fresh, err := s.locks.MarkReminderSent(ctx, driver.ID, driver.SubscriptionExpiry, s.cfg.ReminderMarkTTL)
		if err != nil {
			log.Printf("mark reminder for driver %s failed: %v", driver.ID, err)
			result.Failed++
			continue
		}
		if !fresh {
			continue
		}

		s.publish(DriverTopic(driver.ID), Event{
			Type: EventSubscriptionReminder,
			Data: map[string]any{
				"driver_id":  driver.ID,
				"expires_at": driver.SubscriptionExpiry,
			},
			At: now,
		})
		result.Reminded++
	}

	return result, nil
}

// Run drives both sweeps on their tickers until the context is cancelled.
func (s *SweepService) Run(ctx context.Context) {
	sweepTicker := time.NewTicker(s.cfg.Interval)
	defer sweepTicker.Stop()

	reminderTicker := time.NewTicker(s.cfg.ReminderInterval)
	defer reminderTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweepTicker.C:
			if result, err := s.SweepExpired(ctx); err != nil {
				log.Printf("subscription sweep failed: %v", err)
			} else if result.Suspended > 0 || result.Failed > 0 {
				log.Printf("subscription sweep: %d checked, %d suspended, %d failed",
					result.Processed, result.Suspended, result.Failed)
			}
		case <-reminderTicker.C:
			if result, err := s.SendReminders(ctx); err != nil {
				log.Printf("reminder sweep failed: %v", err)
			} else if result.Reminded > 0 {
				log.Printf("reminder sweep: %d reminded", result.Reminded)
			}
		}
	}
}

func (s *SweepService) publish(topic string, event Event) {
	if err := s.publisher.Publish(topic, event); err != nil {
		log.Printf("publish %s to %s failed: %v", event.Type, topic, err)
	}
}
