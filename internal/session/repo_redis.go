package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session in a Redis hash and enforces the terminal
// compare-and-set with Lua, so concurrent provider callbacks racing on the
// same call_id resolve to exactly one terminal write even across replicas
// of this process.
type RedisStore struct {
	rdb   *redis.Client
	clock func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, clock: time.Now}
}

const (
	redisKeyPrefix  = "reminder:call:"
	redisIndexKey   = "reminder:calls"
	redisDatePrefix = "reminder:calls:date:"
)

func callKey(callID string) string { return redisKeyPrefix + callID }

var createScript = redis.NewScript(`
-- KEYS[1] = call hash key
-- ARGV    = alternating field/value pairs
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

var markRingingScript = redis.NewScript(`
-- KEYS[1] = call hash key
local status = redis.call('HGET', KEYS[1], 'status')
if not status then return -1 end
if status == 'initiated' then
  redis.call('HSET', KEYS[1], 'status', 'ringing')
end
return 1
`)

var markPromptScript = redis.NewScript(`
-- KEYS[1] = call hash key
local status = redis.call('HGET', KEYS[1], 'status')
if not status then return -1 end
if status == 'taken' or status == 'missed' or status == 'no_answer' or status == 'failed' then
  return 0
end
redis.call('HINCRBY', KEYS[1], 'attempt_count', 1)
if status == 'initiated' or status == 'ringing' then
  redis.call('HSET', KEYS[1], 'status', 'in_progress')
end
return 1
`)

var finalizeScript = redis.NewScript(`
-- KEYS[1] = call hash key
-- ARGV[1] = terminal status
-- ARGV[2] = response_raw
-- ARGV[3] = finalized_at (RFC3339)
local status = redis.call('HGET', KEYS[1], 'status')
if not status then return -1 end
if status == 'taken' or status == 'missed' or status == 'no_answer' or status == 'failed' then
  return 0
end
redis.call('HSET', KEYS[1], 'status', ARGV[1], 'response_raw', ARGV[2], 'finalized_at', ARGV[3])
return 1
`)

func (r *RedisStore) Create(ctx context.Context, s CallSession) error {
	if s.Status == "" {
		s.Status = StatusInitiated
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.clock().UTC()
	}

	args := []any{
		"call_id", s.CallID,
		"to_phone", s.ToPhone,
		"patient_name", s.PatientName,
		"caregiver_name", s.CaregiverName,
		"medicine_name", s.MedicineName,
		"dosage", s.Dosage,
		"scheduled_time", s.ScheduledTime,
		"date_key", s.DateKey,
		"mode", string(s.Mode),
		"status", string(s.Status),
		"response_raw", s.ResponseRaw,
		"attempt_count", strconv.Itoa(s.AttemptCount),
		"created_at", s.CreatedAt.Format(time.RFC3339Nano),
	}

	res, err := createScript.Run(ctx, r.rdb, []string{callKey(s.CallID)}, args...).Int()
	if err != nil {
		return fmt.Errorf("session: redis create: %w", err)
	}
	if res == 0 {
		return ErrDuplicate
	}

	pipe := r.rdb.Pipeline()
	pipe.SAdd(ctx, redisIndexKey, s.CallID)
	if s.DateKey != "" {
		pipe.SAdd(ctx, redisDatePrefix+s.DateKey, s.CallID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: redis index: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, callID string) (CallSession, error) {
	fields, err := r.rdb.HGetAll(ctx, callKey(callID)).Result()
	if err != nil {
		return CallSession{}, fmt.Errorf("session: redis get: %w", err)
	}
	if len(fields) == 0 {
		return CallSession{}, ErrNotFound
	}
	return sessionFromHash(fields)
}

func (r *RedisStore) MarkRinging(ctx context.Context, callID string) error {
	res, err := markRingingScript.Run(ctx, r.rdb, []string{callKey(callID)}).Int()
	if err != nil {
		return fmt.Errorf("session: redis mark ringing: %w", err)
	}
	if res == -1 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) MarkPromptPlayed(ctx context.Context, callID string) (CallSession, error) {
	res, err := markPromptScript.Run(ctx, r.rdb, []string{callKey(callID)}).Int()
	if err != nil {
		return CallSession{}, fmt.Errorf("session: redis mark prompt: %w", err)
	}
	if res == -1 {
		return CallSession{}, ErrNotFound
	}
	return r.Get(ctx, callID)
}

func (r *RedisStore) Finalize(ctx context.Context, callID string, status Status, responseRaw string) (CallSession, bool, error) {
	now := r.clock().UTC().Format(time.RFC3339Nano)
	res, err := finalizeScript.Run(ctx, r.rdb, []string{callKey(callID)}, string(status), responseRaw, now).Int()
	if err != nil {
		return CallSession{}, false, fmt.Errorf("session: redis finalize: %w", err)
	}
	if res == -1 {
		return CallSession{}, false, ErrNotFound
	}
	s, err := r.Get(ctx, callID)
	if err != nil {
		return CallSession{}, false, err
	}
	return s, res == 1, nil
}

func (r *RedisStore) ListByDate(ctx context.Context, dateKey string) ([]CallSession, error) {
	ids, err := r.rdb.SMembers(ctx, redisDatePrefix+dateKey).Result()
	if err != nil {
		return nil, fmt.Errorf("session: redis list by date: %w", err)
	}
	return r.collect(ctx, ids, func(CallSession) bool { return true })
}

func (r *RedisStore) ListStale(ctx context.Context, cutoff time.Time) ([]CallSession, error) {
	ids, err := r.rdb.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("session: redis list stale: %w", err)
	}
	return r.collect(ctx, ids, func(s CallSession) bool {
		return !s.Status.IsTerminal() && s.CreatedAt.Before(cutoff)
	})
}

func (r *RedisStore) collect(ctx context.Context, ids []string, keep func(CallSession) bool) ([]CallSession, error) {
	var out []CallSession
	for _, id := range ids {
		s, err := r.Get(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if keep(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func sessionFromHash(fields map[string]string) (CallSession, error) {
	s := CallSession{
		CallID:        fields["call_id"],
		ToPhone:       fields["to_phone"],
		PatientName:   fields["patient_name"],
		CaregiverName: fields["caregiver_name"],
		MedicineName:  fields["medicine_name"],
		Dosage:        fields["dosage"],
		ScheduledTime: fields["scheduled_time"],
		DateKey:       fields["date_key"],
		Mode:          Mode(fields["mode"]),
		Status:        Status(fields["status"]),
		ResponseRaw:   fields["response_raw"],
	}
	if v := fields["attempt_count"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return CallSession{}, fmt.Errorf("session: bad attempt_count %q", v)
		}
		s.AttemptCount = n
	}
	if v := fields["created_at"]; v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return CallSession{}, fmt.Errorf("session: bad created_at %q", v)
		}
		s.CreatedAt = t
	}
	if v := fields["finalized_at"]; v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return CallSession{}, fmt.Errorf("session: bad finalized_at %q", v)
		}
		s.FinalizedAt = &t
	}
	return s, nil
}
