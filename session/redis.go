package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps every transport-level Redis failure.
var ErrRedisUnavailable = errors.New("redis unavailable")

const defaultRedisPrefix = "us"

const removeRecordScript = `
local existed = redis.call("EXISTS", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
if existed == 1 then
  redis.call("DEL", KEYS[1])
end
return existed
`

var removeRecordLua = redis.NewScript(removeRecordScript)

// RedisRepository stores session records in Redis.
//
// Keys:
//   - <prefix>:<sessionID>  encoded [Record]
//   - <prefix>u:<userID>    set of session ids owned by the user
//
// No key carries a TTL: expiry is evaluated by the caller at lookup time.
type RedisRepository struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisRepository creates a repository on client. An empty prefix falls
// back to "us".
func NewRedisRepository(client redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisRepository{redis: client, prefix: prefix}
}

func (r *RedisRepository) key(sessionID string) string {
	return r.prefix + ":" + sessionID
}

func (r *RedisRepository) userKey(userID string) string {
	return r.prefix + "u:" + userID
}

// Save writes the record blob and indexes it under its user in one transaction.
func (r *RedisRepository) Save(ctx context.Context, rec Record) error {
	if rec.UserID == "" {
		return ErrInvalidUserID
	}

	data, err := Encode(rec)
	if err != nil {
		return err
	}

	existing, err := r.get(ctx, rec.SessionID)
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if err == nil && existing.UserID != rec.UserID {
		return ErrConflict
	}

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(rec.SessionID), data, 0)
		pipe.SAdd(ctx, r.userKey(rec.UserID), rec.SessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Search resolves filters in order of selectivity: session id, then user
// index, then a full SCAN of the prefix.
func (r *RedisRepository) Search(ctx context.Context, filter Filter) ([]Record, error) {
	if filter.SessionID != "" {
		rec, err := r.get(ctx, filter.SessionID)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return []Record{}, nil
			}
			return nil, err
		}
		if !filter.Match(rec) {
			return []Record{}, nil
		}
		return []Record{rec}, nil
	}

	var ids []string
	if filter.UserID != "" {
		members, err := r.redis.SMembers(ctx, r.userKey(filter.UserID)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		ids = members
	} else {
		scanned, err := r.scanIDs(ctx)
		if err != nil {
			return nil, err
		}
		ids = scanned
	}

	return r.getMany(ctx, ids, filter)
}

// Remove deletes the record and its user-index entry atomically. Removing a
// record that is already gone is not an error.
func (r *RedisRepository) Remove(ctx context.Context, rec Record) error {
	keys := []string{r.key(rec.SessionID), r.userKey(rec.UserID)}
	if err := removeRecordLua.Run(ctx, r.redis, keys, rec.SessionID).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (r *RedisRepository) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func (r *RedisRepository) get(ctx context.Context, sessionID string) (Record, error) {
	data, err := r.redis.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return Decode(data)
}

func (r *RedisRepository) getMany(ctx context.Context, ids []string, filter Filter) ([]Record, error) {
	if len(ids) == 0 {
		return []Record{}, nil
	}

	pipe := r.redis.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, r.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	out := make([]Record, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		rec, err := Decode(data)
		if err != nil {
			return nil, err
		}
		if filter.Match(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *RedisRepository) scanIDs(ctx context.Context) ([]string, error) {
	pattern := r.prefix + ":*"
	keyPrefix := r.prefix + ":"

	var (
		cursor uint64
		ids    []string
	)
	for {
		keys, next, err := r.redis.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		for _, key := range keys {
			ids = append(ids, strings.TrimPrefix(key, keyPrefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return ids, nil
}
