package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
	logx "github.com/shopbot/assistant/pkg/logger"
)

// LoadRedis reads the catalog hash stored at key: one field per product id,
// each value a product JSON object.
func LoadRedis(ctx context.Context, rdb redis.Cmdable, key string) ([]model.Product, error) {
	fields, err := rdb.HGetAll(ctx, key).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to read catalog hash from redis")
		return nil, errx.WrapRedis("hgetall", key, err)
	}
	if len(fields) == 0 {
		return nil, errx.WrapRedis("hgetall", key, redis.Nil)
	}
	return decodeHash(fields)
}

func decodeHash(fields map[string]string) ([]model.Product, error) {
	ids := make([]string, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	products := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		var p model.Product
		if err := json.Unmarshal([]byte(fields[id]), &p); err != nil {
			return nil, fmt.Errorf("unmarshal product %s: %w", id, err)
		}
		if p.ID == "" {
			p.ID = id
		}
		if p.ID != id {
			return nil, fmt.Errorf("product field %s holds id %s", id, p.ID)
		}
		products = append(products, p)
	}
	return products, nil
}
