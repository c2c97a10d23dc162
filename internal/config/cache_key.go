package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// MountChecksKey returns the hash key of a mount's inline check selections
func (r *CacheKeyStruct) MountChecksKey(mountID string) string {
	return fmt.Sprintf("mount:%s:checks", mountID)
}

// MountQuizKey returns the hash key of a mount's quiz answers
func (r *CacheKeyStruct) MountQuizKey(mountID string) string {
	return fmt.Sprintf("mount:%s:quiz", mountID)
}

var CacheKey = NewCacheKeyStruct()
