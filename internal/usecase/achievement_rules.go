package usecase

import "github.com/eslsoft/quizwhiz/internal/entity"

// Achievement titles and descriptions are part of the store's
// uniqueness contract; the store recognises "first" unlocks, this
// engine requests them unconditionally.
const (
	achievementQuizTaker    = "Quiz Taker"
	achievementPerfectScore = "Perfect Score"
	achievementHighAchiever = "High Achiever"
	achievementSpeedLearner = "Speed Learner"

	speedLearnerMaxSeconds   = 120
	speedLearnerMinQuestions = 5
)

// EvaluateAchievements derives unlock requests from a finalized
// session. Rules are fixed and evaluated independently; a single
// session can unlock several at once.
func EvaluateAchievements(result *entity.SessionResult) []entity.AchievementUnlockRequest {
	unlocks := []entity.AchievementUnlockRequest{
		{
			UserID:      result.UserID,
			Title:       achievementQuizTaker,
			Description: "Completed your first quiz",
		},
	}

	if result.Score == 100 {
		unlocks = append(unlocks, entity.AchievementUnlockRequest{
			UserID:      result.UserID,
			Title:       achievementPerfectScore,
			Description: "Achieved a perfect score on a quiz",
		})
	}
	if result.Score >= 80 {
		unlocks = append(unlocks, entity.AchievementUnlockRequest{
			UserID:      result.UserID,
			Title:       achievementHighAchiever,
			Description: "Scored 80% or higher on a quiz",
		})
	}
	if result.TimeSpentSeconds < speedLearnerMaxSeconds && result.TotalQuestions >= speedLearnerMinQuestions {
		unlocks = append(unlocks, entity.AchievementUnlockRequest{
			UserID:      result.UserID,
			Title:       achievementSpeedLearner,
			Description: "Completed a quiz in record time",
		})
	}

	return unlocks
}
