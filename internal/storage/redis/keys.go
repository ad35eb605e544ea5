package redis

import (
	"fmt"

	"github.com/quizrace/quizrace/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "quizrace"

// sessionKey returns the Redis key for a Session
func sessionKey(code model.SessionCode) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, code)
}

// questionsKey returns the Redis key for the loaded question set
func questionsKey() string {
	return fmt.Sprintf("%s:questions", keyPrefix)
}
