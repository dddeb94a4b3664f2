package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-pos/internal/sale"
)

// RedisStore keeps stock levels in a Redis hash keyed by item id so that
// several API instances share one inventory.
type RedisStore struct {
	Client *redis.Client
	Key    string
}

func (s RedisStore) key() string {
	if s.Key == "" {
		return "pos:inventory"
	}
	return s.Key
}

// Seed sets opening stock for items that are not tracked yet.
func (s RedisStore) Seed(ctx context.Context, opening map[int]int) error {
	if s.Client == nil {
		return errors.New("inventory: redis client not configured")
	}
	pipe := s.Client.TxPipeline()
	for id, qty := range opening {
		pipe.HSetNX(ctx, s.key(), strconv.Itoa(id), qty)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Stock implements Store.
func (s RedisStore) Stock(ctx context.Context, itemID int) (int, error) {
	if s.Client == nil {
		return 0, errors.New("inventory: redis client not configured")
	}
	qty, err := s.Client.HGet(ctx, s.key(), strconv.Itoa(itemID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrUnknownItem
		}
		return 0, fmt.Errorf("inventory: read stock: %w", err)
	}
	return qty, nil
}

// deductScript applies every line of a sale in one atomic step. Fields are
// checked before anything is written so a bad level leaves the hash untouched.
var deductScript = redis.NewScript(`
for i = 1, #ARGV, 2 do
  local current = redis.call("HGET", KEYS[1], ARGV[i])
  if current and not tonumber(current) then
    return redis.error_reply("stock for item " .. ARGV[i] .. " is not a number")
  end
end
local applied = 0
for i = 1, #ARGV, 2 do
  if redis.call("HEXISTS", KEYS[1], ARGV[i]) == 1 then
    redis.call("HINCRBY", KEYS[1], ARGV[i], ARGV[i + 1])
    applied = applied + 1
  end
end
return applied
`)

// Deduct implements Store. Lines for untracked items are skipped; either all
// tracked lines are deducted or none are.
func (s RedisStore) Deduct(ctx context.Context, snap sale.Snapshot) error {
	if s.Client == nil {
		return errors.New("inventory: redis client not configured")
	}
	if len(snap.Lines) == 0 {
		return nil
	}
	args := make([]any, 0, 2*len(snap.Lines))
	for _, line := range snap.Lines {
		args = append(args, strconv.Itoa(line.ItemID), -line.Quantity)
	}
	if err := deductScript.Run(ctx, s.Client, []string{s.key()}, args...).Err(); err != nil {
		return fmt.Errorf("inventory: deduct sale %s: %w", snap.ID, err)
	}
	return nil
}

// Levels implements Store.
func (s RedisStore) Levels(ctx context.Context) ([]Level, error) {
	if s.Client == nil {
		return nil, errors.New("inventory: redis client not configured")
	}
	raw, err := s.Client.HGetAll(ctx, s.key()).Result()
	if err != nil {
		return nil, fmt.Errorf("inventory: read levels: %w", err)
	}
	out := make([]Level, 0, len(raw))
	for field, value := range raw {
		id, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("inventory: stock for item %d: %w", id, err)
		}
		out = append(out, Level{ItemID: id, Quantity: qty})
	}
	sortLevels(out)
	return out, nil
}
