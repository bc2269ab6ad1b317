package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/quizwhiz/internal/entity"
	"github.com/eslsoft/quizwhiz/internal/repository"
)

// correctReviewSampleLimit caps how many correctly answered questions
// get a review entry per session, so the review log is not flooded
// with trivial successes.
const correctReviewSampleLimit = 2

// ProgressReporter receives cosmetic progress callbacks while the
// coordinator settles its writes. It must not gate correctness;
// implementations are free to drop updates.
type ProgressReporter interface {
	Start(totalWrites int)
	Increment(delta int)
	Finish()
}

type noopProgress struct{}

func (noopProgress) Start(int)     {}
func (noopProgress) Increment(int) {}
func (noopProgress) Finish()       {}

// SyncReport summarises where a session's writes ended up. Callers use
// it to distinguish "everything reached the server" from "some data is
// only in the fallback cache".
type SyncReport struct {
	Settled   int
	Remote    int
	Fallback  int
	StudyTime bool
}

// AllRemote reports whether every write reached the remote store.
func (r *SyncReport) AllRemote() bool { return r.Fallback == 0 }

// syncWrite pairs one remote operation with its downgrade target. A
// nil fallback means the write is best-effort: its failure is logged
// and nothing else happens.
type syncWrite struct {
	name     string
	retry    bool
	attempt  func(ctx context.Context) error
	fallback *entity.CacheEntry
}

// SyncCoordinator fans a finalized SessionResult out to the remote
// record store, downgrading each failed write to the local fallback
// cache. No error from any individual write escapes; Sync returns only
// after every dispatched write has settled.
type SyncCoordinator struct {
	store  repository.RecordStore
	cache  repository.FallbackCache
	logger logrus.FieldLogger
	clock  func() time.Time
}

// CoordinatorOption customises a SyncCoordinator.
type CoordinatorOption func(*SyncCoordinator)

// WithCoordinatorClock replaces the cache timestamp source.
func WithCoordinatorClock(clock func() time.Time) CoordinatorOption {
	return func(c *SyncCoordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewSyncCoordinator wires the coordinator with its store, cache and
// logger.
func NewSyncCoordinator(store repository.RecordStore, cache repository.FallbackCache, logger logrus.FieldLogger, opts ...CoordinatorOption) *SyncCoordinator {
	c := &SyncCoordinator{
		store:  store,
		cache:  cache,
		logger: logger,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sync persists the four write categories derived from result — quiz
// completion, per-answered-question progress, reviews and achievement
// unlocks — concurrently, plus a best-effort study time write. The
// quiz summary is always written to the fallback cache as a durable
// audit trail, independent of remote success.
func (c *SyncCoordinator) Sync(ctx context.Context, result *entity.SessionResult, reporter ProgressReporter) *SyncReport {
	if reporter == nil {
		reporter = noopProgress{}
	}

	writes := c.buildWrites(result)
	reporter.Start(len(writes) + 1)

	c.writeSummary(ctx, result)
	reporter.Increment(1)

	report := c.settleAll(ctx, writes, reporter)
	reporter.Finish()

	if report.Fallback > 0 {
		c.logger.WithFields(logrus.Fields{
			"deck_id":  result.DeckID,
			"remote":   report.Remote,
			"fallback": report.Fallback,
		}).Warn("quiz sync settled with cached writes")
	}
	return report
}

// settleAll dispatches every write concurrently and waits for all of
// them regardless of individual outcome. One write's failure never
// cancels a sibling.
func (c *SyncCoordinator) settleAll(ctx context.Context, writes []syncWrite, reporter ProgressReporter) *SyncReport {
	var (
		mu     sync.Mutex
		report = &SyncReport{}
		wg     sync.WaitGroup
	)

	for _, w := range writes {
		wg.Add(1)
		go func(w syncWrite) {
			defer wg.Done()
			remote := c.settle(ctx, w)

			mu.Lock()
			report.Settled++
			if remote {
				report.Remote++
				if w.name == "trackStudyTime" {
					report.StudyTime = true
				}
			} else if w.fallback != nil {
				report.Fallback++
			}
			mu.Unlock()

			reporter.Increment(1)
		}(w)
	}

	wg.Wait()
	return report
}

// settle runs one write to completion: attempt, retry once on a
// transient failure, then downgrade to the fallback cache. Cache
// failures are logged and swallowed; losing the fallback must not
// crash the session.
func (c *SyncCoordinator) settle(ctx context.Context, w syncWrite) (remote bool) {
	err := w.attempt(ctx)
	if err == nil {
		return true
	}

	if w.retry && entity.IsTransientWrite(err) {
		c.logger.WithError(err).WithField("write", w.name).Debug("retrying remote write")
		if err = w.attempt(ctx); err == nil {
			return true
		}
	}

	if w.fallback == nil {
		c.logger.WithError(err).WithField("write", w.name).Warn("best-effort write failed")
		return false
	}

	entry := *w.fallback
	entry.CreatedAt = c.clock()
	if cacheErr := c.cache.Append(ctx, entry); cacheErr != nil {
		c.logger.WithError(cacheErr).WithField("write", w.name).Error("fallback cache write failed")
	}
	return false
}

// buildWrites derives every dispatchable write from the frozen result.
func (c *SyncCoordinator) buildWrites(result *entity.SessionResult) []syncWrite {
	writes := []syncWrite{{
		name:  "completeQuiz",
		retry: true,
		attempt: func(ctx context.Context) error {
			return c.store.CompleteQuiz(ctx, result.UserID, result.DeckID, result.Score)
		},
		// The unconditional quiz summary already preserves this data
		// locally, so the completion call carries no extra fallback.
	}}

	for _, entry := range buildProgressEntries(result) {
		entry := entry
		writes = append(writes, syncWrite{
			name:  fmt.Sprintf("createProgress:%d", entry.FlashcardID),
			retry: true,
			attempt: func(ctx context.Context) error {
				return c.store.CreateProgress(ctx, entry)
			},
			fallback: &entity.CacheEntry{
				UserID:  result.UserID,
				Kind:    entity.KindProgress,
				Payload: cachePayload(entry),
			},
		})
	}

	for _, entry := range buildReviewEntries(result) {
		entry := entry
		writes = append(writes, syncWrite{
			name:  fmt.Sprintf("createReview:%d", entry.FlashcardID),
			retry: true,
			attempt: func(ctx context.Context) error {
				return c.store.CreateReview(ctx, entry)
			},
			fallback: &entity.CacheEntry{
				UserID:  result.UserID,
				Kind:    entity.KindReview,
				Payload: cachePayload(entry),
			},
		})
	}

	for _, unlock := range EvaluateAchievements(result) {
		unlock := unlock
		writes = append(writes, syncWrite{
			name:  "unlockAchievement:" + unlock.Title,
			retry: true,
			attempt: func(ctx context.Context) error {
				return c.store.UnlockAchievement(ctx, unlock)
			},
			fallback: &entity.CacheEntry{
				UserID:  result.UserID,
				Kind:    entity.KindAchievement,
				Title:   unlock.Title,
				Payload: cachePayload(unlock),
			},
		})
	}

	minutes := int(math.Ceil(float64(result.TimeSpentSeconds) / 60))
	writes = append(writes, syncWrite{
		name: "trackStudyTime",
		attempt: func(ctx context.Context) error {
			return c.store.TrackStudyTime(ctx, result.UserID, minutes)
		},
	})

	return writes
}

// writeSummary appends the coarse quiz summary to the fallback cache.
// Failure is logged and swallowed like any other cache error.
func (c *SyncCoordinator) writeSummary(ctx context.Context, result *entity.SessionResult) {
	entry := entity.CacheEntry{
		UserID: result.UserID,
		Kind:   entity.KindQuizSummary,
		Payload: cachePayload(entity.QuizSummary{
			DeckID:           result.DeckID,
			DeckTitle:        result.DeckTitle,
			Score:            result.Score,
			CorrectCount:     result.CorrectCount,
			TotalQuestions:   result.TotalQuestions,
			TimeSpentSeconds: result.TimeSpentSeconds,
		}),
		CreatedAt: c.clock(),
	}
	if err := c.cache.Append(ctx, entry); err != nil {
		c.logger.WithError(err).Error("quiz summary cache write failed")
	}
}

// buildProgressEntries produces one progress record per answered
// question; unanswered questions never produce a progress write.
func buildProgressEntries(result *entity.SessionResult) []entity.ProgressEntry {
	perQuestionSeconds := 0
	if result.TotalQuestions > 0 {
		perQuestionSeconds = int(math.Round(float64(result.TimeSpentSeconds) / float64(result.TotalQuestions)))
	}

	answered := lo.Filter(result.PerQuestion, func(q entity.QuestionResult, _ int) bool {
		return q.Answered
	})
	return lo.Map(answered, func(q entity.QuestionResult, _ int) entity.ProgressEntry {
		score := 0
		if q.Correct {
			score = 100
		}
		return entity.ProgressEntry{
			FlashcardID:      q.FlashcardID,
			Score:            score,
			TimeSpentSeconds: perQuestionSeconds,
			Comparison:       entity.CompareScore(score),
		}
	})
}

// buildReviewEntries emits one review per incorrect answer plus a
// capped sample of correct ones.
func buildReviewEntries(result *entity.SessionResult) []entity.ReviewEntry {
	var entries []entity.ReviewEntry

	for _, q := range result.PerQuestion {
		if q.Correct {
			continue
		}
		submitted := q.Submitted
		entries = append(entries, entity.ReviewEntry{
			FlashcardID:   q.FlashcardID,
			Prompt:        q.Prompt,
			CorrectAnswer: q.Expected,
			Submitted:     &submitted,
		})
	}

	sampled := 0
	for _, q := range result.PerQuestion {
		if !q.Correct || sampled == correctReviewSampleLimit {
			continue
		}
		entries = append(entries, entity.ReviewEntry{
			FlashcardID:   q.FlashcardID,
			CorrectAnswer: q.Expected,
		})
		sampled++
	}

	return entries
}

func cachePayload(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// Entities here are plain structs; marshalling cannot fail.
		return json.RawMessage("{}")
	}
	return data
}
