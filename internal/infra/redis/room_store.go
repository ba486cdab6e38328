package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/domain"
)

// RoomStore keeps room snapshots as JSON under room:{pin} and implements the version check with
// WATCH/MULTI, so several service instances can share rooms.
// Live rooms expire after ttl of inactivity; ended rooms after retention.
type RoomStore struct {
	client    *redis.Client
	ttl       time.Duration
	retention time.Duration
}

func NewRoomStore(client *redis.Client, ttl, retention time.Duration) *RoomStore {
	return &RoomStore{client: client, ttl: ttl, retention: retention}
}

func (s *RoomStore) Create(ctx context.Context, room domain.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(room.Pin), data, s.ttlFor(room)).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrPinTaken
	}
	return nil
}

func (s *RoomStore) Get(ctx context.Context, pin string) (domain.Room, error) {
	raw, err := s.client.Get(ctx, s.key(pin)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	var room domain.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		return domain.Room{}, fmt.Errorf("decode room %s: %w", pin, err)
	}
	return room, nil
}

func (s *RoomStore) Save(ctx context.Context, room *domain.Room) error {
	key := s.key(room.Pin)
	next := *room
	next.Version++

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		var stored struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal(raw, &stored); err != nil {
			return fmt.Errorf("decode room %s: %w", room.Pin, err)
		}
		if stored.Version != room.Version {
			return domain.ErrStoreConflict
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode room: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttlFor(next))
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrStoreConflict
	}
	if err != nil {
		return err
	}
	room.Version = next.Version
	return nil
}

func (s *RoomStore) ttlFor(room domain.Room) time.Duration {
	if room.Status == domain.StatusEnded && s.retention > 0 {
		return s.retention
	}
	return s.ttl
}

func (s *RoomStore) key(pin string) string {
	return "room:" + pin
}
