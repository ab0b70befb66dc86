package ratelimit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// 滑动窗口，时间单位为微秒，清理、计数、写入在一个脚本内完成
const slidingWindowScript = `
local now = tonumber(ARGV[1])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - tonumber(ARGV[2]))
if redis.call("ZCARD", KEYS[1]) >= tonumber(ARGV[3]) then
    return 1
end
redis.call("ZADD", KEYS[1], now, ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return 0
`

// Redis 多实例共享的滑动窗口限流
type Redis struct {
	rdb  redis.Cmdable
	key  string
	rate int
	per  time.Duration
	now  Clock
}

func NewRedis(rdb redis.Cmdable, key string, rate int, per time.Duration, now Clock) *Redis {
	if rate < 1 {
		rate = 1
	}
	if per <= 0 {
		per = time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &Redis{
		rdb:  rdb,
		key:  key,
		rate: rate,
		per:  per,
		now:  now,
	}
}

// Limit redis 出错时放行
func (r *Redis) Limit(ctx context.Context) bool {
	res, err := r.rdb.Eval(ctx, slidingWindowScript, []string{r.key},
		r.now().UnixMicro(),
		r.per.Microseconds(),
		r.rate,
		uuid.NewString(),
		(r.per + time.Second).Milliseconds(),
	).Int64()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", r.key).Msg("rate limit script failed, allowing request")
		return false
	}
	return res == 1
}
