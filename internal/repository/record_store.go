package repository

import (
	"context"

	"github.com/eslsoft/quizwhiz/internal/entity"
)

// RecordStore abstracts the remote record endpoints a finished session
// fans out to. Implementations classify failures as transient or
// permanent write errors (entity.TransientWriteError /
// entity.PermanentWriteError); retry policy lives in the caller.
type RecordStore interface {
	CompleteQuiz(ctx context.Context, userID, deckID int64, score int) error
	CreateProgress(ctx context.Context, entry entity.ProgressEntry) error
	CreateReview(ctx context.Context, entry entity.ReviewEntry) error
	UnlockAchievement(ctx context.Context, req entity.AchievementUnlockRequest) error
	TrackStudyTime(ctx context.Context, userID int64, minutes int) error
}

// DeckRepository provides read access to decks and their flashcards,
// consumed only when a session loads.
type DeckRepository interface {
	GetDeck(ctx context.Context, deckID int64) (*entity.Deck, error)
	ListFlashcards(ctx context.Context, deckID int64) ([]entity.Flashcard, error)
}
