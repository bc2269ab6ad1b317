package entity

import (
	"encoding/json"
	"time"
)

// ScoreComparison is the qualitative bucket derived from a numeric
// score. It is always derived, never stored as free text.
type ScoreComparison string

const (
	ScoreExcellent        ScoreComparison = "EXCELLENT"
	ScoreGood             ScoreComparison = "GOOD"
	ScoreFair             ScoreComparison = "FAIR"
	ScoreNeedsImprovement ScoreComparison = "NEEDS_IMPROVEMENT"
)

// CompareScore buckets a 0-100 score into its qualitative tier.
func CompareScore(score int) ScoreComparison {
	switch {
	case score >= 90:
		return ScoreExcellent
	case score >= 75:
		return ScoreGood
	case score >= 60:
		return ScoreFair
	default:
		return ScoreNeedsImprovement
	}
}

// QuestionResult records the outcome of a single question within a
// finalized session.
type QuestionResult struct {
	FlashcardID int64
	Kind        QuestionKind
	Prompt      string
	Expected    string
	Submitted   string
	Answered    bool
	Correct     bool
}

// SessionResult is the frozen outcome of one quiz session. It is
// created exactly once when the session enters tallying and is the
// single source of truth for every downstream write; it must never be
// recomputed from mutable session state.
type SessionResult struct {
	DeckID           int64
	DeckTitle        string
	UserID           int64
	TotalQuestions   int
	CorrectCount     int
	IncorrectCount   int
	Score            int
	TimeSpentSeconds int
	PerQuestion      []QuestionResult
	CompletedAt      time.Time
}

// ProgressEntry is the per-answered-question progress record sent to
// the remote store. Score is 0 or 100 for a single question.
type ProgressEntry struct {
	FlashcardID      int64           `json:"flashCardId"`
	Score            int             `json:"score"`
	TimeSpentSeconds int             `json:"timeSpent"`
	Comparison       ScoreComparison `json:"scoreComparison"`
}

// ReviewEntry is a recorded question/answer pair kept for later study.
// Submitted is nil for the sampled correct answers and non-nil
// (possibly empty) for incorrect ones.
type ReviewEntry struct {
	FlashcardID   int64   `json:"flashCardId"`
	Prompt        string  `json:"questionText,omitempty"`
	CorrectAnswer string  `json:"reviewCorrectAnswer"`
	Submitted     *string `json:"reviewIncorrectAnswer"`
}

// AchievementUnlockRequest asks the store to unlock an achievement.
// Uniqueness is by (userID, title); repeating an unlock is a no-op.
type AchievementUnlockRequest struct {
	UserID      int64  `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// QuizSummary is the coarse per-session audit record always written to
// the local fallback cache, readable without a network round trip.
type QuizSummary struct {
	DeckID           int64  `json:"deckId"`
	DeckTitle        string `json:"deckTitle"`
	Score            int    `json:"score"`
	CorrectCount     int    `json:"correctCount"`
	TotalQuestions   int    `json:"totalQuestions"`
	TimeSpentSeconds int    `json:"timeSpent"`
}

// EntityKind tags fallback cache entries with the write category they
// were downgraded from.
type EntityKind string

const (
	KindProgress    EntityKind = "progress"
	KindReview      EntityKind = "review"
	KindAchievement EntityKind = "achievement"
	KindQuizSummary EntityKind = "quizSummary"
)

// CacheEntry is one record in the local fallback cache. Title is the
// dedupe key for achievement entries and empty for every other kind.
type CacheEntry struct {
	UserID    int64
	Kind      EntityKind
	Title     string
	Payload   json.RawMessage
	CreatedAt time.Time
}
