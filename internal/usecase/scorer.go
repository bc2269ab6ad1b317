package usecase

import (
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/quizwhiz/internal/entity"
)

// answerMatches applies the single comparison rule for each question
// kind. Identification answers compare case-insensitively with
// surrounding whitespace trimmed; the option-based kinds compare
// exactly. There is no fuzzy matching and no partial credit.
func answerMatches(q entity.Question, submitted string) bool {
	switch q.Kind {
	case entity.QuestionKindIdentification:
		return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(q.Expected))
	case entity.QuestionKindTrueFalse, entity.QuestionKindMultipleChoice:
		return submitted == q.Expected
	default:
		return false
	}
}

// scoreQuestions grades every question in sequence order. Unanswered
// questions are incorrect with an empty submitted answer.
func scoreQuestions(questions []entity.Question, answers entity.AnswerRecord) []entity.QuestionResult {
	return lo.Map(questions, func(q entity.Question, _ int) entity.QuestionResult {
		submitted, answered := answers[q.FlashcardID]
		return entity.QuestionResult{
			FlashcardID: q.FlashcardID,
			Kind:        q.Kind,
			Prompt:      q.Prompt,
			Expected:    q.Expected,
			Submitted:   submitted,
			Answered:    answered,
			Correct:     answered && answerMatches(q, submitted),
		}
	})
}

// aggregateScore is round(correct/total*100) as an integer percentage.
func aggregateScore(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// NewSessionResult grades a finished question sequence and freezes the
// outcome. Pure: no I/O, no clocks beyond the supplied completion
// time.
func NewSessionResult(deck *entity.Deck, userID int64, questions []entity.Question, answers entity.AnswerRecord, timeSpentSeconds int, completedAt time.Time) *entity.SessionResult {
	perQuestion := scoreQuestions(questions, answers)
	correct := lo.CountBy(perQuestion, func(r entity.QuestionResult) bool { return r.Correct })

	return &entity.SessionResult{
		DeckID:           deck.ID,
		DeckTitle:        deck.Title,
		UserID:           userID,
		TotalQuestions:   len(questions),
		CorrectCount:     correct,
		IncorrectCount:   len(questions) - correct,
		Score:            aggregateScore(correct, len(questions)),
		TimeSpentSeconds: timeSpentSeconds,
		PerQuestion:      perQuestion,
		CompletedAt:      completedAt,
	}
}
