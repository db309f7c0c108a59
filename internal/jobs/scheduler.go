package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"photolock/api/internal/service"
	"photolock/api/internal/storage"
)

// Scheduler runs the periodic housekeeping of the API process: pruning the
// signed-URL cache in place and handing the nightly storage sweep to the
// worker stream.
type Scheduler struct {
	cron      *cron.Cron
	queue     *redis.Client
	stream    string
	urls      *storage.SignedURLCache
	sweepSpec string
	log       zerolog.Logger
}

func NewScheduler(queue *redis.Client, stream string, urls *storage.SignedURLCache, sweepSpec string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		queue:     queue,
		stream:    stream,
		urls:      urls,
		sweepSpec: sweepSpec,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.sweepSpec, s.sweepURLCache); err != nil {
		return err
	}
	if s.queue != nil {
		if _, err := s.cron.AddFunc("0 0 0 * * *", s.enqueueCleanup); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop waits for in-flight jobs, but never longer than five seconds.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) sweepURLCache() {
	removed := s.urls.Sweep()
	if removed > 0 {
		s.log.Debug().Int("removed", removed).Msg("signed url cache swept")
	}
}

func (s *Scheduler) enqueueCleanup() {
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"type": service.TaskCleanup},
	}).Result()
	if err != nil {
		s.log.Error().Err(err).Msg("enqueue cleanup failed")
	}
}
