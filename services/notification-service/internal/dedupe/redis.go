package dedupe

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis stores one hash per recipient: booking id -> last seen status.
type Redis struct {
	rdb redis.Cmdable
}

func NewRedis(rdb redis.Cmdable) *Redis {
	return &Redis{rdb: rdb}
}

var swapScript = redis.NewScript(`
local prev = redis.call("HGET", KEYS[1], ARGV[1])
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
if prev then
  return prev
end
return ""
`)

func (r *Redis) Swap(ctx context.Context, audience, userID, bookingID, status string) (string, error) {
	prev, err := swapScript.Run(ctx, r.rdb, []string{key(audience, userID)}, bookingID, status).Text()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return prev, err
}

func (r *Redis) Clear(ctx context.Context, userID string, audiences ...string) error {
	if len(audiences) == 0 {
		return nil
	}
	keys := make([]string, 0, len(audiences))
	for _, a := range audiences {
		keys = append(keys, key(a, userID))
	}
	return r.rdb.Del(ctx, keys...).Err()
}
