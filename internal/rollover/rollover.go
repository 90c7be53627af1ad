// Package rollover clears yesterday's assigned tasks off the board and
// spawns today's instances from repeat templates. The scheduler fires once
// at every local midnight; RunOnce can also be called directly, typically
// at startup.
package rollover

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/evertsen/kidschores/internal/engine"
	"github.com/evertsen/kidschores/internal/model"
)

// Scheduler runs the daily rollover at local midnight.
type Scheduler struct {
	mu     sync.Mutex
	engine *engine.Engine
	logger *slog.Logger
	now    func() time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(eng *engine.Engine, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine: eng,
		logger: logger.With("component", "rollover"),
		now:    time.Now,
	}
}

// Start begins the midnight loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		for {
			now := s.now()
			timer := time.NewTimer(untilNextMidnight(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.RunOnce(s.now())
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// RunOnce executes a full rollover for the day containing now. Calls are
// serialized; running it twice on the same day is a no-op because instance
// generation is idempotent per template per day.
func (s *Scheduler) RunOnce(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.engine.ListTasks()
	if err != nil {
		s.logger.Error("list tasks", "error", err)
		return
	}

	pruned := s.prune(tasks, now)
	spawned := s.generate(tasks, now)

	s.logger.Info("daily rollover complete",
		"date", now.Format("2006-01-02"), "pruned", pruned, "spawned", spawned)
}

// prune deletes stale assigned one-offs: non-templates with an assignee
// whose effective date (due date, or creation date when no due is set)
// falls strictly before today. Status does not matter; yesterday's board is
// wiped whether a task was finished, judged, or never touched. Unassigned
// one-offs are backlog and stay.
func (s *Scheduler) prune(tasks []model.Task, now time.Time) int {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var pruned int
	for _, t := range tasks {
		if t.IsTemplate() || t.AssignedTo == nil {
			continue
		}
		effective := t.CreatedAt
		if t.Due != nil {
			effective = *t.Due
		}
		if !effective.Before(dayStart) {
			continue
		}
		if err := s.engine.DeleteTask(t.ID); err != nil {
			s.logger.Error("prune task", "task_id", t.ID, "error", err)
			continue
		}
		pruned++
	}
	return pruned
}

// generate spawns today's instance for every template whose repeat rule
// includes today's weekday. A failing template is logged and skipped; it
// never blocks the others.
func (s *Scheduler) generate(tasks []model.Task, now time.Time) int {
	today := engine.WeekdayIndex(now)

	var spawned int
	for _, t := range tasks {
		if !t.IsTemplate() || !containsDay(t.RepeatDays, today) {
			continue
		}
		instance, err := s.engine.SpawnTaskInstance(t.ID, now)
		if err != nil {
			s.logger.Error("spawn task instance", "template_id", t.ID, "error", err)
			continue
		}
		if instance != nil {
			spawned++
		}
	}
	return spawned
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}
