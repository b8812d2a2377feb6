// Package storage persists completed quiz results as an append-only log
// partitioned by quiz (and optionally user). Values are JSON arrays of
// results under a deterministic key, so any KV backend works.
//
// Storage failures never surface to callers: reads degrade to an empty
// history and writes are logged and dropped, keeping the quiz flow alive.
package storage

import (
	"context"
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"quiz-attempt-service/internal/domain"
)

const keyPrefix = "quiz-results-"

// Key builds the partition key for a quiz's result history. The userID
// suffix isolates per-user histories of the same quiz.
func Key(quizID, userID string) string {
	if userID == "" {
		return keyPrefix + quizID
	}
	return keyPrefix + quizID + "-" + userID
}

// Store reads and writes result histories through an injected KV backend.
type Store struct {
	kv         KV
	log        *zap.Logger
	maxResults int // 0 disables the capacity guard
}

// Option configures a Store.
type Option func(*Store)

// WithMaxResults caps each partition at max entries; Save trims the oldest
// beyond the cap.
func WithMaxResults(max int) Option {
	return func(s *Store) { s.maxResults = max }
}

func New(kv KV, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{kv: kv, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save appends result to its partition. A missing or unparsable stored
// value is treated as an empty history; write failures are logged and
// swallowed so the caller's result screen still renders.
func (s *Store) Save(ctx context.Context, result domain.QuizResult) {
	key := Key(result.QuizID, result.UserID)
	results := s.load(ctx, key)
	results = append(results, result)

	if s.maxResults > 0 && len(results) > s.maxResults {
		results = trimOldest(results, s.maxResults)
	}

	data, err := json.Marshal(results)
	if err != nil {
		s.log.Warn("failed to encode quiz results", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.log.Warn("failed to save quiz result", zap.String("key", key), zap.Error(err))
	}
}

// Results returns the stored history for (quizID, userID) sorted newest
// first. Corrupted or unreadable storage yields an empty slice.
func (s *Store) Results(ctx context.Context, quizID, userID string) []domain.QuizResult {
	results := s.load(ctx, Key(quizID, userID))
	sort.Slice(results, func(i, j int) bool {
		return results[i].CompletedAt.After(results[j].CompletedAt)
	})
	return results
}

// ResultByID looks up a single result by its completion-time identity
// (Unix milliseconds as a decimal string). The second return reports
// whether a match was found.
func (s *Store) ResultByID(ctx context.Context, quizID, resultID, userID string) (domain.QuizResult, bool) {
	for _, result := range s.Results(ctx, quizID, userID) {
		if result.ResultID() == resultID {
			return result, true
		}
	}
	return domain.QuizResult{}, false
}

// Clear deletes one partition's history. Other quizzes and other users of
// the same quiz are unaffected.
func (s *Store) Clear(ctx context.Context, quizID, userID string) {
	key := Key(quizID, userID)
	if err := s.kv.Delete(ctx, key); err != nil {
		s.log.Warn("failed to clear quiz results", zap.String("key", key), zap.Error(err))
	}
}

// All scans every result partition. Keys whose values fail to parse are
// skipped with a log line rather than aborting the scan.
func (s *Store) All(ctx context.Context) map[string][]domain.QuizResult {
	keys, err := s.kv.Keys(ctx, keyPrefix)
	if err != nil {
		s.log.Warn("failed to enumerate result keys", zap.Error(err))
		return map[string][]domain.QuizResult{}
	}

	all := make(map[string][]domain.QuizResult, len(keys))
	for _, key := range keys {
		raw, ok, err := s.kv.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		var results []domain.QuizResult
		if err := json.Unmarshal([]byte(raw), &results); err != nil {
			s.log.Warn("skipping unparsable result key", zap.String("key", key), zap.Error(err))
			continue
		}
		all[key] = results
	}
	return all
}

// TrimToCapacity shrinks one partition to its max most-recent entries.
// Save applies the same policy automatically when a cap is configured.
func (s *Store) TrimToCapacity(ctx context.Context, quizID, userID string, max int) {
	if max <= 0 {
		return
	}
	key := Key(quizID, userID)
	results := s.load(ctx, key)
	if len(results) <= max {
		return
	}
	data, err := json.Marshal(trimOldest(results, max))
	if err != nil {
		s.log.Warn("failed to encode trimmed results", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.log.Warn("failed to trim quiz results", zap.String("key", key), zap.Error(err))
	}
}

// load reads one partition in stored order. Any failure (missing key,
// read error, non-array JSON) yields an empty history.
func (s *Store) load(ctx context.Context, key string) []domain.QuizResult {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Warn("failed to read quiz results", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var results []domain.QuizResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		s.log.Warn("ignoring corrupted quiz results", zap.String("key", key), zap.Error(err))
		return nil
	}
	return results
}

// trimOldest keeps the max most-recently-completed entries, preserving
// chronological order.
func trimOldest(results []domain.QuizResult, max int) []domain.QuizResult {
	sorted := make([]domain.QuizResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CompletedAt.Before(sorted[j].CompletedAt)
	})
	return sorted[len(sorted)-max:]
}
