package fallback

import (
	"context"
	"encoding/json"
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// envelope wraps a snapshot payload with its write time so redis
// records carry the same metadata as the postgres table.
type envelope struct {
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Redis stores one persistent (no-TTL) JSON envelope per cache key.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr string, password string, db int) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Redis{client: client}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Save(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Printf("[fallback] WARN: failed to marshal snapshot key=%s: %v", key, err)
		return
	}
	env, err := json.Marshal(envelope{Payload: payload, UpdatedAt: time.Now().UTC()})
	if err != nil {
		log.Printf("[fallback] WARN: failed to marshal envelope key=%s: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, snapshotKey(key), env, 0).Err(); err != nil {
		log.Printf("[fallback] WARN: failed to save snapshot key=%s: %v", key, err)
	}
}

func (r *Redis) Load(ctx context.Context, key string, dst any) bool {
	raw, err := r.client.Get(ctx, snapshotKey(key)).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Printf("[fallback] WARN: failed to load snapshot key=%s: %v", key, err)
		return false
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		log.Printf("[fallback] WARN: corrupt snapshot key=%s: %v", key, err)
		return false
	}
	return json.Unmarshal(env.Payload, dst) == nil
}

func snapshotKey(key string) string {
	return "mpdash:snapshot:" + key
}
