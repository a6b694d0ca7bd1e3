package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	redisKeyIndex   = ":index"   // hash -> swap id
	redisKeyRecords = ":records" // swap id -> record json
	redisKeyOrder   = ":order"   // swap ids, newest first
	redisKeyClaim   = ":claim:"
	redisKeyHeld    = ":held" // hash -> reason

	redisPingTimeout = 5 * time.Second
)

// appendScript checks every hash against the index and stores the record only if none is known.
var appendScript = redis.NewScript(`
for i = 3, #ARGV do
	if redis.call('HEXISTS', KEYS[1], ARGV[i]) == 1 then
		return ARGV[i]
	end
end
for i = 3, #ARGV do
	redis.call('HSET', KEYS[1], ARGV[i], ARGV[1])
end
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
redis.call('LPUSH', KEYS[3], ARGV[1])
return ''
`)

// claimScript returns 1 on success, 0 if claimed, -1 if already recorded and -2 if held.
var claimScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	return -1
end
if redis.call('HEXISTS', KEYS[3], ARGV[1]) == 1 then
	return -2
end
if redis.call('SET', KEYS[2], ARGV[2], 'NX', 'PX', ARGV[3]) then
	return 1
end
return 0
`)

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	ClaimTTL time.Duration
}

type redisLog struct {
	client   *redis.Client
	prefix   string
	claimTTL time.Duration
	logger   zerolog.Logger
}

// NewRedis connects to a redis backed Log shared by several processes.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewRedis(ctx context.Context, cfg RedisConfig) (Log, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "failed to connect to redis at %s", cfg.Addr)
	}

	claimTTL := cfg.ClaimTTL
	if claimTTL <= 0 {
		claimTTL = DefaultClaimTTL
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "chainswap:history"
	}

	logger := log.With().Str("component", "history").Str("backend", "redis").Logger()
	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Str("prefix", prefix).Msg("Redis history connected")

	return &redisLog{
		client:   client,
		prefix:   prefix,
		claimTTL: claimTTL,
		logger:   logger,
	}, nil
}

func (r *redisLog) key(suffix string) string {
	return r.prefix + suffix
}

func (r *redisLog) Append(ctx context.Context, rec *SwapRecord) error {
	if err := validate(rec); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "failed to marshal swap record")
	}

	args := []any{rec.SwapID, data}
	for _, h := range rec.Hashes() {
		args = append(args, h)
	}

	keys := []string{r.key(redisKeyIndex), r.key(redisKeyRecords), r.key(redisKeyOrder)}
	dup, err := appendScript.Run(ctx, r.client, keys, args...).Text()
	if err != nil {
		return errors.Wrap(err, "failed to append swap record")
	}
	if dup != "" {
		return errors.Wrapf(ErrDuplicate, "hash %s", dup)
	}

	return nil
}

func (r *redisLog) FindByHash(ctx context.Context, hash string) (*SwapRecord, error) {
	id, err := r.client.HGet(ctx, r.key(redisKeyIndex), hash).Result()
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(ErrNotFound, "hash %s", hash)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read hash index")
	}

	data, err := r.client.HGet(ctx, r.key(redisKeyRecords), id).Bytes()
	if err != nil {
		return nil, errors.Wrapf(err, "hash %s points to a missing record", hash)
	}

	var rec SwapRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "failed to decode swap record")
	}

	return &rec, nil
}

func (r *redisLog) Paginate(ctx context.Context, offset int, limit int) ([]*SwapRecord, int, error) {
	offset, limit = clampPage(offset, limit)

	total, err := r.client.LLen(ctx, r.key(redisKeyOrder)).Result()
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to count swap records")
	}

	ids, err := r.client.LRange(ctx, r.key(redisKeyOrder), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list swap records")
	}
	if len(ids) == 0 {
		return []*SwapRecord{}, int(total), nil
	}

	values, err := r.client.HMGet(ctx, r.key(redisKeyRecords), ids...).Result()
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to load swap records")
	}

	out := make([]*SwapRecord, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			r.logger.Warn().Str("swap_id", ids[i]).Msg("Swap record listed but missing")
			continue
		}

		var rec SwapRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, 0, errors.Wrap(err, "failed to decode swap record")
		}
		out = append(out, &rec)
	}

	return out, int(total), nil
}

func (r *redisLog) Claim(ctx context.Context, hash string) (func(), error) {
	token := uuid.NewString()
	claimKey := r.key(redisKeyClaim + hash)

	res, err := claimScript.Run(ctx, r.client,
		[]string{r.key(redisKeyIndex), claimKey, r.key(redisKeyHeld)},
		hash, token, r.claimTTL.Milliseconds()).Int()
	if err != nil {
		return nil, errors.Wrap(err, "failed to claim hash")
	}

	switch res {
	case -1:
		return nil, errors.Wrapf(ErrDuplicate, "hash %s", hash)
	case 0:
		return nil, errors.Wrapf(ErrClaimed, "hash %s", hash)
	case -2: //nolint:mnd
		reason, err := r.client.HGet(ctx, r.key(redisKeyHeld), hash).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, errors.Wrap(err, "failed to read hold")
		}
		return nil, heldError(hash, reason)
	}

	return func() {
		// released even if the caller's context is already done
		if err := releaseScript.Run(context.WithoutCancel(ctx), r.client, []string{claimKey}, token).Err(); err != nil {
			r.logger.Warn().Err(err).Str("tx_hash", hash).Msg("Failed to release claim")
		}
	}, nil
}

func (r *redisLog) Hold(ctx context.Context, hash string, reason string) error {
	err := r.client.HSet(ctx, r.key(redisKeyHeld), hash, reason).Err()

	return errors.Wrap(err, "failed to write hold")
}

func (r *redisLog) Unhold(ctx context.Context, hash string) error {
	err := r.client.HDel(ctx, r.key(redisKeyHeld), hash).Err()

	return errors.Wrap(err, "failed to delete hold")
}

func (r *redisLog) Close() error {
	return errors.Wrap(r.client.Close(), "failed to close redis client")
}
