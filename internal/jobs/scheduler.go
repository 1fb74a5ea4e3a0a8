package jobs

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"radblog/internal/repository"
	"radblog/internal/service"
)

// Scheduler keeps the post-count cache warm so the public listing rarely
// pays for a COUNT query.
type Scheduler struct {
	cron  *cron.Cron
	posts repository.PostRepository
	cache *redis.Client
	log   zerolog.Logger
}

func NewScheduler(posts repository.PostRepository, cache *redis.Client, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		posts: posts,
		cache: cache,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.cache == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 * * * * *", s.warmPostCount); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish, but not longer than five seconds.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) warmPostCount() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := s.posts.Count(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("post count refresh failed")
		return
	}

	if err := s.cache.Set(ctx, service.PostCountKey, strconv.Itoa(total), service.PostCountTTL).Err(); err != nil {
		s.log.Error().Err(err).Msg("post count cache write failed")
	}
}
