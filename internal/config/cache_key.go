package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizPaperKey returns the cache key for the student view of a quiz
func (r *CacheKeyStruct) QuizPaperKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:paper", quizID)
}

// QuizLiveChannel returns the Redis PubSub channel carrying a quiz's attempt events
func (r *CacheKeyStruct) QuizLiveChannel(quizID string) string {
	return fmt.Sprintf("quiz:%s:live", quizID)
}

// SubmitRateKey returns the counter key limiting a student's submissions in one window
func (r *CacheKeyStruct) SubmitRateKey(studentID int, window int64) string {
	return fmt.Sprintf("student:%d:submit_rate:%d", studentID, window)
}

var CacheKey = NewCacheKeyStruct()
