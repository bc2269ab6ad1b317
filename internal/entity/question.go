package entity

// QuestionKind discriminates the closed set of question variants a
// session can contain. Only identification questions are generated
// today; the scorer still handles every kind so adding a generator for
// the others is a local change.
type QuestionKind int32

const (
	QuestionKindUnspecified QuestionKind = iota
	QuestionKindIdentification
	QuestionKindTrueFalse
	QuestionKindMultipleChoice
)

func (k QuestionKind) String() string {
	switch k {
	case QuestionKindIdentification:
		return "identification"
	case QuestionKindTrueFalse:
		return "true_false"
	case QuestionKindMultipleChoice:
		return "multiple_choice"
	default:
		return "unspecified"
	}
}

// Question is one entry of a session's question sequence. Immutable
// once generated.
type Question struct {
	FlashcardID int64
	Kind        QuestionKind
	Prompt      string
	Expected    string
	Choices     []string // multiple choice only
}

// AnswerRecord maps flashcard IDs to submitted answer text. It grows
// monotonically while a session is in progress and never holds entries
// for unanswered questions.
type AnswerRecord map[int64]string

// Deck is the remote deck header a session is started from.
type Deck struct {
	ID    int64
	Title string
}

// Flashcard is a single term/definition pair belonging to a deck.
type Flashcard struct {
	ID         int64
	DeckID     int64
	Term       string
	Definition string
}
