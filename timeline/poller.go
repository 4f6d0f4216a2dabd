package timeline

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
)

// Poller runs a task every interval while a condition holds
type Poller struct {
	scheduler *gocron.Scheduler
}

// PollWhile schedules task every interval; runs where cond() is false are skipped.
// Overlapping runs are not started.
func PollWhile(interval time.Duration, cond func() bool, task func()) (*Poller, error) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	_, err := s.Every(interval).WaitForSchedule().Do(func() {
		if cond() {
			task()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule poll: %w", err)
	}
	s.StartAsync()
	return &Poller{scheduler: s}, nil
}

// Stop ends polling
func (p *Poller) Stop() {
	if p != nil && p.scheduler != nil {
		p.scheduler.Stop()
	}
}
