// Package recordstore implements the remote record endpoints over the
// flashcard backend's REST API.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/quizwhiz/internal/entity"
)

const defaultTimeout = 10 * time.Second

// Client talks to the remote record store. It implements both
// repository.RecordStore and repository.DeckRepository; write failures
// are classified into the transient/permanent taxonomy so the sync
// coordinator can apply its retry policy.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for
// httptest servers.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sets the bearer token attached to every request.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// NewClient builds a record store client for the given base URL.
func NewClient(baseURL string, logger logrus.FieldLogger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompleteQuiz records a finished quiz. Duplicate calls on retry are
// acceptable; the endpoint is idempotent from the client's view.
func (c *Client) CompleteQuiz(ctx context.Context, userID, deckID int64, score int) error {
	query := url.Values{}
	query.Set("userId", strconv.FormatInt(userID, 10))
	query.Set("quizId", strconv.FormatInt(deckID, 10))
	query.Set("score", strconv.Itoa(score))
	return c.post(ctx, "completeQuiz", "/quiz/complete", query, nil)
}

// CreateProgress records one answered question's progress.
func (c *Client) CreateProgress(ctx context.Context, entry entity.ProgressEntry) error {
	return c.post(ctx, "createProgress", "/progress/add", nil, entry)
}

// CreateReview records one review entry.
func (c *Client) CreateReview(ctx context.Context, entry entity.ReviewEntry) error {
	return c.post(ctx, "createReview", "/review/add", nil, entry)
}

// UnlockAchievement asks the store to unlock an achievement. The store
// dedupes by (userId, title), so repeating the call is safe.
func (c *Client) UnlockAchievement(ctx context.Context, req entity.AchievementUnlockRequest) error {
	query := url.Values{}
	query.Set("userId", strconv.FormatInt(req.UserID, 10))
	query.Set("title", req.Title)
	query.Set("description", req.Description)
	return c.post(ctx, "unlockAchievement", "/achievements/unlock", query, nil)
}

// TrackStudyTime accumulates study minutes for the user.
func (c *Client) TrackStudyTime(ctx context.Context, userID int64, minutes int) error {
	query := url.Values{}
	query.Set("userId", strconv.FormatInt(userID, 10))
	query.Set("minutesSpent", strconv.Itoa(minutes))
	return c.post(ctx, "trackStudyTime", "/progress/trackStudyTime", query, nil)
}

type deckPayload struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// GetDeck fetches a deck header.
func (c *Client) GetDeck(ctx context.Context, deckID int64) (*entity.Deck, error) {
	var payload deckPayload
	if err := c.get(ctx, "getDeck", fmt.Sprintf("/decks/%d", deckID), &payload); err != nil {
		return nil, err
	}
	return &entity.Deck{ID: payload.ID, Title: payload.Title}, nil
}

type flashcardPayload struct {
	ID         int64  `json:"id"`
	DeckID     int64  `json:"deckId"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// ListFlashcards fetches every flashcard of a deck.
func (c *Client) ListFlashcards(ctx context.Context, deckID int64) ([]entity.Flashcard, error) {
	var payload []flashcardPayload
	if err := c.get(ctx, "getFlashcards", fmt.Sprintf("/flashcards/getByDeckId/%d", deckID), &payload); err != nil {
		return nil, err
	}
	cards := make([]entity.Flashcard, 0, len(payload))
	for _, p := range payload {
		cards = append(cards, entity.Flashcard{
			ID:         p.ID,
			DeckID:     p.DeckID,
			Term:       p.Term,
			Definition: p.Definition,
		})
	}
	return cards, nil
}

func (c *Client) post(ctx context.Context, op, path string, query url.Values, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, query, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &entity.TransientWriteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	return classifyWriteStatus(op, resp)
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, entity.ErrDeckNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// classifyWriteStatus maps the response status onto the write error
// taxonomy: 408/429/5xx are transient, any other non-2xx is permanent.
func classifyWriteStatus(op string, resp *http.Response) error {
	status := resp.StatusCode
	if status >= 200 && status < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	err := fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(body)))

	if isRetryableStatus(status) {
		return &entity.TransientWriteError{Op: op, Err: err}
	}
	return &entity.PermanentWriteError{Op: op, Status: status, Err: err}
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	default:
		return status >= 500
	}
}
