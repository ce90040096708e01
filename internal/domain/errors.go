package domain

import "errors"

// Domain errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrStreakNotFound      = errors.New("streak not found")
	ErrInvalidActivity     = errors.New("invalid activity")
	ErrInvalidLeaderboard  = errors.New("invalid leaderboard type or period")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInternalError       = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrAchievementNotFound) ||
		errors.Is(err, ErrStreakNotFound)
}
