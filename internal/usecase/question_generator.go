package usecase

import (
	"math/rand"

	"github.com/eslsoft/quizwhiz/internal/entity"
)

// maxQuestionsPerSession bounds the question sequence regardless of
// deck size.
const maxQuestionsPerSession = 10

// QuestionGenerator samples a deck's flashcards into a bounded,
// randomized question sequence. It is stateless apart from its random
// source and is invoked once per session start.
type QuestionGenerator struct {
	rng *rand.Rand
}

// GeneratorOption customises a QuestionGenerator.
type GeneratorOption func(*QuestionGenerator)

// WithRand replaces the random source, making generation
// deterministic in tests.
func WithRand(rng *rand.Rand) GeneratorOption {
	return func(g *QuestionGenerator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// NewQuestionGenerator constructs a generator with a self-seeded
// random source.
func NewQuestionGenerator(opts ...GeneratorOption) *QuestionGenerator {
	g := &QuestionGenerator{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate shuffles the flashcards uniformly and turns the first
// min(10, len(cards)) of them into identification questions, with the
// term as the prompt and the definition as the expected answer.
// Returns entity.ErrEmptyDeck when there is nothing to quiz on.
func (g *QuestionGenerator) Generate(cards []entity.Flashcard) ([]entity.Question, error) {
	if len(cards) == 0 {
		return nil, entity.ErrEmptyDeck
	}

	shuffled := make([]entity.Flashcard, len(cards))
	copy(shuffled, cards)
	g.shuffle(shuffled)

	count := maxQuestionsPerSession
	if len(shuffled) < count {
		count = len(shuffled)
	}

	questions := make([]entity.Question, 0, count)
	for _, card := range shuffled[:count] {
		questions = append(questions, entity.Question{
			FlashcardID: card.ID,
			Kind:        entity.QuestionKindIdentification,
			Prompt:      card.Term,
			Expected:    card.Definition,
		})
	}
	return questions, nil
}

func (g *QuestionGenerator) shuffle(cards []entity.Flashcard) {
	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if g.rng != nil {
		g.rng.Shuffle(len(cards), swap)
		return
	}
	rand.Shuffle(len(cards), swap)
}
