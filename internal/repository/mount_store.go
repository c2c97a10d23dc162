package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/sitesafe-learn/internal/config"
	"github.com/stemsi/sitesafe-learn/internal/model"
)

// RedisMountStore keeps mount snapshots in two Redis hashes per mount, one
// for inline checks and one for the quiz. Each selection is a single HSET so
// concurrent clicks on different widgets never overwrite each other.
type RedisMountStore struct {
	rdb *redis.Client
}

// NewRedisMountStore creates a new RedisMountStore.
func NewRedisMountStore(rdb *redis.Client) *RedisMountStore {
	return &RedisMountStore{rdb: rdb}
}

// Load returns the mount snapshot. A mount with no selections yields an
// empty snapshot.
func (s *RedisMountStore) Load(ctx context.Context, mountID uuid.UUID) (*model.MountSnapshot, error) {
	id := mountID.String()

	pipe := s.rdb.Pipeline()
	checksCmd := pipe.HGetAll(ctx, config.CacheKey.MountChecksKey(id))
	quizCmd := pipe.HGetAll(ctx, config.CacheKey.MountQuizKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load mount %s: %w", id, err)
	}

	checks, err := parseSelections(checksCmd.Val())
	if err != nil {
		return nil, fmt.Errorf("mount %s checks: %w", id, err)
	}
	answers, err := parseSelections(quizCmd.Val())
	if err != nil {
		return nil, fmt.Errorf("mount %s quiz: %w", id, err)
	}

	return &model.MountSnapshot{Checks: checks, Quiz: answers}, nil
}

// SaveCheck records the selected option of one inline check.
func (s *RedisMountStore) SaveCheck(ctx context.Context, mountID uuid.UUID, sectionID string, option int, ttl time.Duration) error {
	return s.set(ctx, config.CacheKey.MountChecksKey(mountID.String()), sectionID, option, ttl)
}

// SaveQuizAnswer records the selected option of one quiz question.
func (s *RedisMountStore) SaveQuizAnswer(ctx context.Context, mountID uuid.UUID, questionID string, option int, ttl time.Duration) error {
	return s.set(ctx, config.CacheKey.MountQuizKey(mountID.String()), questionID, option, ttl)
}

// ClearQuiz drops every quiz answer of the mount. Inline checks are kept.
func (s *RedisMountStore) ClearQuiz(ctx context.Context, mountID uuid.UUID) error {
	return s.rdb.Del(ctx, config.CacheKey.MountQuizKey(mountID.String())).Err()
}

// Delete discards all state of the mount.
func (s *RedisMountStore) Delete(ctx context.Context, mountID uuid.UUID) error {
	id := mountID.String()
	return s.rdb.Del(ctx, config.CacheKey.MountChecksKey(id), config.CacheKey.MountQuizKey(id)).Err()
}

func (s *RedisMountStore) set(ctx context.Context, key, field string, option int, ttl time.Duration) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, field, option)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

func parseSelections(raw map[string]string) (map[string]int, error) {
	out := make(map[string]int, len(raw))
	for field, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		out[field] = n
	}
	return out, nil
}
