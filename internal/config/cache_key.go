package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's active exam session token.
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("exam_login:%d", studentID)
}

// SchedulePayloadKey returns the cache key for a schedule's assembled question payload.
func (r *CacheKeyStruct) SchedulePayloadKey(scheduleID int) string {
	return fmt.Sprintf("schedule:%d:payload", scheduleID)
}

// ScheduleQuestionCountKey returns the cache key for a schedule's total question count.
func (r *CacheKeyStruct) ScheduleQuestionCountKey(scheduleID int) string {
	return fmt.Sprintf("schedule:%d:question_count", scheduleID)
}

var CacheKey = NewCacheKeyStruct()
