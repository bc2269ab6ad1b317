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
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/quizwhiz/internal/adapter/fallbackcache"
	"github.com/eslsoft/quizwhiz/internal/entity"
	"github.com/eslsoft/quizwhiz/internal/infrastructure/config"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List locally cached quiz records",
	Long: `history reads the local fallback cache: quiz summaries plus any
progress, review or achievement writes that never reached the backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		userID, _ := cmd.Flags().GetInt64("user")
		kindFlag, _ := cmd.Flags().GetString("kind")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cache, err := fallbackcache.Open(cfg.Cache.Path)
		if err != nil {
			return err
		}
		defer cache.Close()

		kinds := []entity.EntityKind{
			entity.KindQuizSummary,
			entity.KindProgress,
			entity.KindReview,
			entity.KindAchievement,
		}
		if kindFlag != "" {
			kinds = []entity.EntityKind{entity.EntityKind(kindFlag)}
		}

		for _, kind := range kinds {
			entries, err := cache.List(ctx, userID, kind)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s  %s\n",
					entry.CreatedAt.Format(time.RFC3339), entry.Kind, entry.Payload)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().Int64("user", 0, "user ID to list cached records for")
	historyCmd.Flags().String("kind", "", "restrict to one kind (progress, review, achievement, quizSummary)")
	cobra.CheckErr(historyCmd.MarkFlagRequired("user"))
}
