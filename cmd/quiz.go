/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/quizwhiz/internal/adapter/fallbackcache"
	"github.com/eslsoft/quizwhiz/internal/adapter/recordstore"
	"github.com/eslsoft/quizwhiz/internal/entity"
	"github.com/eslsoft/quizwhiz/internal/infrastructure/config"
	"github.com/eslsoft/quizwhiz/internal/infrastructure/logging"
	"github.com/eslsoft/quizwhiz/internal/usecase"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Run an interactive quiz session for a deck",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		deckID, _ := cmd.Flags().GetInt64("deck")
		userID, _ := cmd.Flags().GetInt64("user")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := logging.NewLogger(cfg)
		if err != nil {
			return err
		}

		cache, err := fallbackcache.Open(cfg.Cache.Path)
		if err != nil {
			return err
		}
		defer cache.Close()

		client := recordstore.NewClient(cfg.API.BaseURL, logger,
			recordstore.WithToken(cfg.API.Token),
			recordstore.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
			}),
		)

		session := usecase.NewSession(userID, client)
		if err := session.Start(ctx, deckID); err != nil {
			if errors.Is(err, entity.ErrEmptyDeck) {
				return fmt.Errorf("deck %d has no flashcards; add some before taking a quiz", deckID)
			}
			return fmt.Errorf("start quiz: %w", err)
		}

		if err := runQuestionLoop(cmd, session); err != nil {
			return err
		}
		if session.State() != usecase.StateTallying {
			// Abandoned: nothing to persist.
			return nil
		}

		result, err := session.Result()
		if err != nil {
			return err
		}

		coordinator := usecase.NewSyncCoordinator(client, cache, logger)
		report := coordinator.Sync(ctx, result, newCLIProgress(cmd.ErrOrStderr()))
		if err := session.MarkComplete(); err != nil {
			return err
		}

		printResult(cmd.OutOrStdout(), result, report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quizCmd)

	quizCmd.Flags().Int64("deck", 0, "deck ID to quiz on")
	quizCmd.Flags().Int64("user", 0, "user ID taking the quiz")
	cobra.CheckErr(quizCmd.MarkFlagRequired("deck"))
	cobra.CheckErr(quizCmd.MarkFlagRequired("user"))
}

// runQuestionLoop walks the question sequence over stdin until the
// session finishes or the user quits.
func runQuestionLoop(cmd *cobra.Command, session *usecase.Session) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	fmt.Fprintln(out, "Answer each question, or use /prev, /skip, /quit.")
	for {
		question, index, ok := session.Current()
		if !ok {
			return nil
		}

		fmt.Fprintf(out, "\n[%s] Question %d of %d\n%s\n> ",
			formatTime(session.Elapsed()), index+1, session.TotalQuestions(), question.Prompt)

		if !scanner.Scan() {
			return session.Abandon()
		}

		switch line := strings.TrimSpace(scanner.Text()); line {
		case "/quit":
			return session.Abandon()
		case "/prev":
			if err := session.Prev(); err != nil {
				return err
			}
		case "/skip":
			if done, err := session.Next(); err != nil || done {
				return err
			}
		default:
			if err := session.Answer(line); err != nil {
				return err
			}
			if done, err := session.Next(); err != nil || done {
				return err
			}
		}
	}
}

func printResult(out io.Writer, result *entity.SessionResult, report *usecase.SyncReport) {
	fmt.Fprintf(out, "\n%s: %d%% (%d of %d correct) in %s\n",
		result.DeckTitle, result.Score, result.CorrectCount, result.TotalQuestions,
		formatTime(result.TimeSpentSeconds))

	for _, unlock := range usecase.EvaluateAchievements(result) {
		fmt.Fprintf(out, "Achievement unlocked: %s (%s)\n", unlock.Title, unlock.Description)
	}

	if !report.AllRemote() {
		fmt.Fprintf(out, "%d write(s) were saved locally and will appear once the backend is reachable.\n", report.Fallback)
	}
}

// formatTime renders seconds as mm:ss.
func formatTime(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
