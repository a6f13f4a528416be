package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
	logx "github.com/shopbot/assistant/pkg/logger"
	pkgredis "github.com/shopbot/assistant/pkg/redis"
)

//go:embed data/products.json
var embeddedProducts []byte

// Load builds the store from the source named in cfg. redisCfg is only used by the redis source.
func Load(ctx context.Context, cfg model.CatalogConfig, redisCfg pkgredis.Config) (*Store, error) {
	var (
		products []model.Product
		err      error
	)

	switch cfg.Source {
	case "", model.CatalogEmbedded:
		products, err = DecodeJSON(bytes.NewReader(embeddedProducts))
	case model.CatalogFile:
		products, err = LoadJSONFile(cfg.Path)
	case model.CatalogSQLite:
		products, err = LoadSQLite(ctx, cfg.Path)
	case model.CatalogRedis:
		if redisCfg.URL == "" {
			return nil, errx.Configuration(fmt.Errorf("REDIS_URL is required for the redis source"))
		}
		rdb, rerr := redisCfg.New(ctx)
		if rerr != nil {
			return nil, fmt.Errorf("connect to redis: %w", errx.WrapRedis("ping", "", rerr))
		}
		defer rdb.Close()
		products, err = LoadRedis(ctx, rdb, cfg.RedisKey)
	default:
		return nil, errx.Configuration(fmt.Errorf("unknown catalog source %q", cfg.Source))
	}
	if err != nil {
		return nil, fmt.Errorf("load %s catalog: %w", sourceName(cfg.Source), err)
	}

	store, err := New(products)
	if err != nil {
		return nil, err
	}
	logx.Info().Str("source", sourceName(cfg.Source)).Int("products", store.Len()).Msg("catalog loaded")
	return store, nil
}

// Default returns the compiled-in catalog.
func Default() (*Store, error) {
	products, err := DecodeJSON(bytes.NewReader(embeddedProducts))
	if err != nil {
		return nil, err
	}
	return New(products)
}

// LoadJSONFile reads a JSON array of products from path.
func LoadJSONFile(path string) ([]model.Product, error) {
	if path == "" {
		return nil, errx.Configuration(fmt.Errorf("CATALOG_PATH is required for the file source"))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeJSON(f)
}

// DecodeJSON decodes a JSON array of products. Unknown fields are rejected
// so typos in hand-edited catalogs surface at startup.
func DecodeJSON(r io.Reader) ([]model.Product, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var products []model.Product
	if err := dec.Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog json: %w", err)
	}
	return products, nil
}

func sourceName(s string) string {
	if s == "" {
		return model.CatalogEmbedded
	}
	return s
}
