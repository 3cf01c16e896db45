package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AttemptKey returns the cache key holding a candidate's attempt snapshot.
func (r *CacheKeyStruct) AttemptKey(examID, candidateID string) string {
	return fmt.Sprintf("candidate:%s:exam:%s:attempt", candidateID, examID)
}

// ExamDefinitionKey returns the cache key for a published exam definition.
func (r *CacheKeyStruct) ExamDefinitionKey(examID string) string {
	return fmt.Sprintf("exam:%s:definition", examID)
}

// ExamIndexKey returns the set key listing all published exam ids.
func (r *CacheKeyStruct) ExamIndexKey() string {
	return "exams:published"
}

// ExamResultsKey returns the hash key holding recorded results for an exam,
// one field per candidate.
func (r *CacheKeyStruct) ExamResultsKey(examID string) string {
	return fmt.Sprintf("exam:%s:results", examID)
}

// ExamSubmissionsChannel returns the PubSub channel announcing graded
// submissions for an exam.
func (r *CacheKeyStruct) ExamSubmissionsChannel(examID string) string {
	return fmt.Sprintf("exam:%s:submissions", examID)
}

var CacheKey = NewCacheKeyStruct()
