package usecase

import (
	"testing"

	"github.com/samber/lo"

	"github.com/eslsoft/quizwhiz/internal/entity"
)

func unlockTitles(unlocks []entity.AchievementUnlockRequest) []string {
	return lo.Map(unlocks, func(u entity.AchievementUnlockRequest, _ int) string { return u.Title })
}

func TestEvaluateAchievements(t *testing.T) {
	cases := []struct {
		name   string
		result entity.SessionResult
		want   []string
	}{
		{
			name:   "quiz taker is always requested",
			result: entity.SessionResult{Score: 40, TotalQuestions: 10, TimeSpentSeconds: 300},
			want:   []string{"Quiz Taker"},
		},
		{
			name:   "perfect score implies high achiever",
			result: entity.SessionResult{Score: 100, TotalQuestions: 10, TimeSpentSeconds: 300},
			want:   []string{"Quiz Taker", "Perfect Score", "High Achiever"},
		},
		{
			name:   "high score without perfection",
			result: entity.SessionResult{Score: 80, TotalQuestions: 10, TimeSpentSeconds: 300},
			want:   []string{"Quiz Taker", "High Achiever"},
		},
		{
			name:   "fast session with enough questions",
			result: entity.SessionResult{Score: 50, TotalQuestions: 8, TimeSpentSeconds: 90},
			want:   []string{"Quiz Taker", "Speed Learner"},
		},
		{
			name:   "fast session with too few questions",
			result: entity.SessionResult{Score: 50, TotalQuestions: 3, TimeSpentSeconds: 30},
			want:   []string{"Quiz Taker"},
		},
		{
			name:   "exactly two minutes is not fast",
			result: entity.SessionResult{Score: 50, TotalQuestions: 8, TimeSpentSeconds: 120},
			want:   []string{"Quiz Taker"},
		},
		{
			name:   "everything at once",
			result: entity.SessionResult{Score: 100, TotalQuestions: 5, TimeSpentSeconds: 60},
			want:   []string{"Quiz Taker", "Perfect Score", "High Achiever", "Speed Learner"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.result.UserID = 7
			unlocks := EvaluateAchievements(&tc.result)

			got := unlockTitles(unlocks)
			if len(got) != len(tc.want) {
				t.Fatalf("titles = %v, want %v", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("titles = %v, want %v", got, tc.want)
				}
			}

			for _, u := range unlocks {
				if u.UserID != 7 {
					t.Errorf("unlock %q has user %d, want 7", u.Title, u.UserID)
				}
				if u.Description == "" {
					t.Errorf("unlock %q has no description", u.Title)
				}
			}
		})
	}
}
