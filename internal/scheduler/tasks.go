package scheduler

import (
	"context"
	"time"

	"github.com/Kayushan/JSTREAM/internal/library"
	"github.com/Kayushan/JSTREAM/internal/preview"
	"github.com/Kayushan/JSTREAM/internal/users"
)

// Continue-watching rows untouched this long are dropped.
const staleProgressAge = 90 * 24 * time.Hour

// RegisterMaintenanceTasks wires the library housekeeping jobs.
// Pruned sessions also lose their preview entries.
func RegisterMaintenanceTasks(s *Scheduler, userService *users.Service, progress *library.Progress, previews *preview.Store) error {
	if err := s.RegisterTask(TaskConfig{
		ID:   "prune-sessions",
		Name: "Prune expired sessions",
		Cron: "0 * * * *",
		Func: func(ctx context.Context) error {
			pruned, err := userService.PruneExpiredSessions(ctx)
			if err != nil {
				return err
			}
			for _, id := range pruned {
				previews.Drop(id)
			}
			if len(pruned) > 0 {
				s.logger.Info().Int("pruned", len(pruned)).Msg("expired sessions removed")
			}
			return nil
		},
		RunOnStart: true,
	}); err != nil {
		return err
	}

	return s.RegisterTask(TaskConfig{
		ID:   "prune-progress",
		Name: "Prune stale watch progress",
		Cron: "30 4 * * *",
		Func: func(ctx context.Context) error {
			pruned, err := progress.PruneStale(ctx, staleProgressAge)
			if err != nil {
				return err
			}
			if pruned > 0 {
				s.logger.Info().Int64("pruned", pruned).Msg("stale watch progress removed")
			}
			return nil
		},
	})
}
