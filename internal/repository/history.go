package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pixeltown/pixeltown-backend/internal/entity"
)

// HistoryRepository - durable store of finished game results per room.
type HistoryRepository interface {
	Append(ctx context.Context, roomID string, result entity.GameResult) error
	ListByRoom(ctx context.Context, roomID string) ([]entity.GameResult, error)
}

type dbHistory struct {
	client *redis.Client
	limit  int64
}

// NewHistoryRepository - Redis-backed history, trimmed to the newest
// `limit` entries per room. A non-positive limit keeps everything.
func NewHistoryRepository(client *redis.Client, limit int) HistoryRepository {
	return &dbHistory{
		client: client,
		limit:  int64(limit),
	}
}

func historyKey(roomID string) string {
	return "history:" + roomID
}

func historyIDsKey(roomID string) string {
	return "history:ids:" + roomID
}

// Append - records a finished instance's result. Appending the same
// instance ID twice is a no-op, so a result is stored at most once.
func (that *dbHistory) Append(ctx context.Context, roomID string, result entity.GameResult) error {
	added, err := that.client.SAdd(ctx, historyIDsKey(roomID), result.InstanceID).Result()
	if err != nil {
		return fmt.Errorf("failed to register instance id: %w", err)
	}

	if added == 0 {
		return nil
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal game result: %w", err)
	}

	if err = that.client.RPush(ctx, historyKey(roomID), resultJSON).Err(); err != nil {
		return fmt.Errorf("failed to append game result: %w", err)
	}

	if that.limit > 0 {
		if err = that.client.LTrim(ctx, historyKey(roomID), -that.limit, -1).Err(); err != nil {
			return fmt.Errorf("failed to trim history: %w", err)
		}
	}

	return nil
}

// ListByRoom - the room's recorded results, oldest first.
func (that *dbHistory) ListByRoom(ctx context.Context, roomID string) ([]entity.GameResult, error) {
	entries, err := that.client.LRange(ctx, historyKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	results := make([]entity.GameResult, 0, len(entries))
	for _, entry := range entries {
		var result entity.GameResult
		if err = json.Unmarshal([]byte(entry), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game result: %w", err)
		}

		results = append(results, result)
	}

	return results, nil
}
