package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/quizwhiz/internal/entity"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type recordedRequest struct {
	method string
	path   string
	query  map[string]string
	header http.Header
	body   []byte
}

// newTestClient spins up an httptest server answering every request
// with the given handler and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) (*Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = map[string]string{}
		for k := range r.URL.Query() {
			rec.query[k] = r.URL.Query().Get(k)
		}
		rec.header = r.Header.Clone()
		rec.body, _ = io.ReadAll(r.Body)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	opts = append(opts, WithHTTPClient(srv.Client()))
	return NewClient(srv.URL, testLogger(), opts...), rec
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestCompleteQuizRequest(t *testing.T) {
	client, rec := newTestClient(t, ok, WithToken("sekrit"))

	if err := client.CompleteQuiz(context.Background(), 42, 9, 85); err != nil {
		t.Fatalf("CompleteQuiz() error = %v", err)
	}
	if rec.method != http.MethodPost || rec.path != "/quiz/complete" {
		t.Errorf("request = %s %s, want POST /quiz/complete", rec.method, rec.path)
	}
	want := map[string]string{"userId": "42", "quizId": "9", "score": "85"}
	for k, v := range want {
		if rec.query[k] != v {
			t.Errorf("query %s = %q, want %q", k, rec.query[k], v)
		}
	}
	if got := rec.header.Get("Authorization"); got != "Bearer sekrit" {
		t.Errorf("Authorization = %q, want bearer token", got)
	}
}

func TestCreateProgressBody(t *testing.T) {
	client, rec := newTestClient(t, ok)

	entry := entity.ProgressEntry{
		FlashcardID:      7,
		Score:            100,
		TimeSpentSeconds: 12,
		Comparison:       entity.ScoreExcellent,
	}
	if err := client.CreateProgress(context.Background(), entry); err != nil {
		t.Fatalf("CreateProgress() error = %v", err)
	}
	if rec.path != "/progress/add" {
		t.Errorf("path = %s, want /progress/add", rec.path)
	}

	var sent map[string]any
	if err := json.Unmarshal(rec.body, &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if sent["flashCardId"] != float64(7) {
		t.Errorf("flashCardId = %v, want 7", sent["flashCardId"])
	}
	if sent["scoreComparison"] != "EXCELLENT" {
		t.Errorf("scoreComparison = %v, want EXCELLENT", sent["scoreComparison"])
	}
}

func TestUnlockAchievementQuery(t *testing.T) {
	client, rec := newTestClient(t, ok)

	req := entity.AchievementUnlockRequest{
		UserID:      42,
		Title:       "Perfect Score",
		Description: "Got 100% on a quiz",
	}
	if err := client.UnlockAchievement(context.Background(), req); err != nil {
		t.Fatalf("UnlockAchievement() error = %v", err)
	}
	if rec.path != "/achievements/unlock" {
		t.Errorf("path = %s, want /achievements/unlock", rec.path)
	}
	if rec.query["title"] != "Perfect Score" || rec.query["userId"] != "42" {
		t.Errorf("query = %v", rec.query)
	}
}

func TestTrackStudyTimeQuery(t *testing.T) {
	client, rec := newTestClient(t, ok)

	if err := client.TrackStudyTime(context.Background(), 42, 3); err != nil {
		t.Fatalf("TrackStudyTime() error = %v", err)
	}
	if rec.path != "/progress/trackStudyTime" {
		t.Errorf("path = %s, want /progress/trackStudyTime", rec.path)
	}
	if rec.query["minutesSpent"] != "3" {
		t.Errorf("minutesSpent = %q, want 3", rec.query["minutesSpent"])
	}
}

func TestWriteStatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
		permanent bool
	}{
		{name: "server error", status: 500, transient: true},
		{name: "bad gateway", status: 502, transient: true},
		{name: "timeout", status: 408, transient: true},
		{name: "throttled", status: 429, transient: true},
		{name: "bad request", status: 400, permanent: true},
		{name: "unauthorized", status: 401, permanent: true},
		{name: "conflict", status: 409, permanent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			})
			err := client.CompleteQuiz(context.Background(), 1, 1, 50)
			if err == nil {
				t.Fatal("CompleteQuiz() succeeded on a rejecting server")
			}

			var transient *entity.TransientWriteError
			var permanent *entity.PermanentWriteError
			if got := errors.As(err, &transient); got != tt.transient {
				t.Errorf("transient = %v, want %v (err %v)", got, tt.transient, err)
			}
			if got := errors.As(err, &permanent); got != tt.permanent {
				t.Errorf("permanent = %v, want %v (err %v)", got, tt.permanent, err)
			}
			if permanent != nil && permanent.Status != tt.status {
				t.Errorf("permanent status = %d, want %d", permanent.Status, tt.status)
			}
		})
	}
}

func TestConnectionErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(ok))
	client := NewClient(srv.URL, testLogger())
	srv.Close()

	err := client.CreateReview(context.Background(), entity.ReviewEntry{FlashcardID: 1})
	if !entity.IsTransientWrite(err) {
		t.Fatalf("connection error classified as %T, want transient", err)
	}
}

func TestGetDeck(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 9, "title": "Capitals"})
	})

	deck, err := client.GetDeck(context.Background(), 9)
	if err != nil {
		t.Fatalf("GetDeck() error = %v", err)
	}
	if rec.method != http.MethodGet || rec.path != "/decks/9" {
		t.Errorf("request = %s %s, want GET /decks/9", rec.method, rec.path)
	}
	if deck.ID != 9 || deck.Title != "Capitals" {
		t.Errorf("deck = %+v", deck)
	}
}

func TestGetDeckNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such deck", http.StatusNotFound)
	})

	_, err := client.GetDeck(context.Background(), 404)
	if !errors.Is(err, entity.ErrDeckNotFound) {
		t.Fatalf("GetDeck() error = %v, want ErrDeckNotFound", err)
	}
}

func TestListFlashcards(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "deckId": 9, "term": "France", "definition": "Paris"},
			{"id": 2, "deckId": 9, "term": "Spain", "definition": "Madrid"},
		})
	})

	cards, err := client.ListFlashcards(context.Background(), 9)
	if err != nil {
		t.Fatalf("ListFlashcards() error = %v", err)
	}
	if rec.path != "/flashcards/getByDeckId/9" {
		t.Errorf("path = %s, want /flashcards/getByDeckId/9", rec.path)
	}
	if len(cards) != 2 || cards[0].Term != "France" || cards[1].Definition != "Madrid" {
		t.Errorf("cards = %+v", cards)
	}
}
