package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/scoring"
	"github.com/redis/go-redis/v9"
)

// bufferedAnswers reads the answers autosaved in Redis for a session.
// Undecodable entries are skipped.
func bufferedAnswers(ctx context.Context, rdb *redis.Client, sessionID uuid.UUID) ([]model.TestResponse, error) {
	raw, err := rdb.HGetAll(ctx, config.CacheKey.SessionAnswersKey(sessionID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("read autosaved answers: %w", err)
	}
	return decodeAnswers(raw), nil
}

// decodeAnswers parses the values of an answer hash, skipping undecodable entries.
func decodeAnswers(raw map[string]string) []model.TestResponse {
	out := make([]model.TestResponse, 0, len(raw))
	for _, v := range raw {
		var resp model.TestResponse
		if err := json.Unmarshal([]byte(v), &resp); err != nil {
			continue
		}
		out = append(out, resp)
	}
	return out
}

// sessionAnswers merges persisted responses with buffered ones, keyed by question id.
// The most recent answer to a question wins.
func sessionAnswers(ctx context.Context, rdb *redis.Client, responses ResponseStore, sessionID uuid.UUID) (map[string]model.TestResponse, error) {
	stored, err := responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	buffered, err := bufferedAnswers(ctx, rdb, sessionID)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]model.TestResponse, len(stored)+len(buffered))
	for _, list := range [][]model.TestResponse{stored, buffered} {
		for _, resp := range list {
			if prev, ok := merged[resp.QuestionID]; ok && prev.ResponseTime.After(resp.ResponseTime) {
				continue
			}
			merged[resp.QuestionID] = resp
		}
	}
	return merged, nil
}

func toScoringAnswers(responses map[string]model.TestResponse) map[string]scoring.Answer {
	out := make(map[string]scoring.Answer, len(responses))
	for id, resp := range responses {
		out[id] = scoring.Answer{Score: resp.AnswerScore, Notes: resp.Notes}
	}
	return out
}
