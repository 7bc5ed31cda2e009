package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionAnswersKey returns the hash holding the autosaved answers of a test session,
// keyed by question id.
func (r *CacheKeyStruct) SessionAnswersKey(sessionID string) string {
	return fmt.Sprintf("session:%s:answers", sessionID)
}

// SessionReportKey returns the cache key for the analysis report of a completed session.
func (r *CacheKeyStruct) SessionReportKey(sessionID string) string {
	return fmt.Sprintf("session:%s:report", sessionID)
}

// SessionClosedKey marks a session closed to autosave once it is completed or cancelled.
func (r *CacheKeyStruct) SessionClosedKey(sessionID string) string {
	return fmt.Sprintf("session:%s:closed", sessionID)
}

var CacheKey = NewCacheKeyStruct()
