package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/robfig/cron"
	"go.uber.org/zap"
)

// Lease guards a tick across replicas.
type Lease interface {
	Acquire(ctx context.Context) (release func(context.Context) error, ok bool, err error)
}

// TickSummary reports what one dispatch tick did.
type TickSummary struct {
	Due    int
	Sent   int
	Failed int
	Stale  int
	// Skipped is set when another tick held the lock or lease.
	Skipped bool
	// Err is the store failure that ended the tick early.
	Err error
}

// DispatchJob publishes due posts on every tick.
type DispatchJob struct {
	posts     repository.PostRepository
	accounts  repository.AccountRepository
	publisher service.PublishService
	lease     Lease
	now       func() time.Time
	logger    *zap.Logger

	mu       sync.Mutex
	stopping atomic.Bool
}

// NewDispatchJob builds the job. lease may be nil for single-replica runs.
func NewDispatchJob(
	posts repository.PostRepository,
	accounts repository.AccountRepository,
	publisher service.PublishService,
	lease Lease,
	logger *zap.Logger) *DispatchJob {
	return &DispatchJob{
		posts:     posts,
		accounts:  accounts,
		publisher: publisher,
		lease:     lease,
		now:       time.Now,
		logger:    logger,
	}
}

// Schedule registers the job on c at a fixed interval. Ticks run with ctx so
// shutdown cancels in-flight provider calls.
func (j *DispatchJob) Schedule(ctx context.Context, c *cron.Cron, interval time.Duration) {
	c.Schedule(cron.Every(interval), cron.FuncJob(func() {
		j.Tick(ctx)
	}))
}

// Stop makes later ticks return immediately and blocks until an in-flight
// tick returns. cron.Stop does not wait for jobs it already launched, so a
// tick can still start after it.
func (j *DispatchJob) Stop() {
	j.stopping.Store(true)
	j.mu.Lock()
	defer j.mu.Unlock()
}

func (j *DispatchJob) Tick(ctx context.Context) (summary TickSummary) {
	if !j.mu.TryLock() {
		j.logger.Warn("previous dispatch tick still running, skipping")
		return TickSummary{Skipped: true}
	}
	defer j.mu.Unlock()

	if j.stopping.Load() {
		return TickSummary{Skipped: true}
	}

	defer func() {
		if r := recover(); r != nil {
			summary.Err = fmt.Errorf("dispatch tick panicked: %v", r)
			j.logger.Error("dispatch tick panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	if j.lease != nil {
		release, ok, err := j.lease.Acquire(ctx)
		if err != nil {
			j.logger.Error("acquire dispatch lease", zap.Error(err))
			return TickSummary{Err: err}
		}
		if !ok {
			j.logger.Info("dispatch lease held by another replica, skipping")
			return TickSummary{Skipped: true}
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				j.logger.Warn("release dispatch lease", zap.Error(err))
			}
		}()
	}

	start := j.now()
	summary.Err = j.dispatch(ctx, start, &summary)

	fields := []zap.Field{
		zap.Int("due", summary.Due),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("stale", summary.Stale),
		zap.Duration("took", j.now().Sub(start)),
	}
	if summary.Err != nil {
		j.logger.Error("dispatch tick aborted", append(fields, zap.Error(summary.Err))...)
	} else {
		j.logger.Info("dispatch tick finished", fields...)
	}
	return summary
}

func (j *DispatchJob) dispatch(ctx context.Context, now time.Time, summary *TickSummary) error {
	posts, err := j.posts.ListDue(ctx, now)
	if err != nil {
		return fmt.Errorf("list due posts: %w", err)
	}
	summary.Due = len(posts)

	// one copy per account so a refresh is seen by the account's later posts
	accounts := make(map[string]*models.Account)

	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}

		acc, ok := accounts[post.AccountID]
		if !ok {
			acc, err = j.accounts.GetByID(ctx, post.AccountID)
			switch {
			case err == nil, errors.Is(err, repository.ErrNotFound):
			case errors.Is(err, repository.ErrCorruptRecord):
				// posts of an unreadable account fail as missing_credential
				j.logger.Error("account credentials unreadable",
					zap.String("account_id", post.AccountID), zap.Error(err))
				acc = nil
			default:
				return fmt.Errorf("load account %s: %w", post.AccountID, err)
			}
			accounts[post.AccountID] = acc
		}

		outcome, err := j.publisher.Process(ctx, post, acc)
		if err != nil {
			return fmt.Errorf("process post %s: %w", post.ID, err)
		}

		switch {
		case outcome.Stale:
			summary.Stale++
		case outcome.Status == models.PostStatusSent:
			summary.Sent++
		default:
			summary.Failed++
		}
	}
	return nil
}
