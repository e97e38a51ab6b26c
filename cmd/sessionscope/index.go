package main

import (
	"path/filepath"

	"github.com/aretw0/sessionscope/internal/adapters/file"
	"github.com/aretw0/sessionscope/internal/config"
	"github.com/aretw0/sessionscope/pkg/adapters/memory"
	"github.com/aretw0/sessionscope/pkg/adapters/redis"
	"github.com/aretw0/sessionscope/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// backends holds the session index and, for redis, the distributed locker.
type backends struct {
	index  ports.SessionIndex
	locker ports.DistributedLocker
	close  func() error
}

func openBackends(cfg config.Config) backends {
	switch cfg.Store.Backend {
	case config.StoreFile:
		path := cfg.Store.Path
		if path == "" {
			path = filepath.Join(".sessionscope", "sessions")
		}
		return backends{index: file.New(path), close: func() error { return nil }}

	case config.StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		b := backends{
			index: redis.NewFromClient(client, redis.WithPrefix(cfg.Store.Redis.Prefix), redis.WithTTL(cfg.Session.TTL)),
			close: client.Close,
		}
		if cfg.Store.Redis.Lock {
			b.locker = redis.NewLocker(client, cfg.Store.Redis.Prefix)
		}
		return b

	default:
		return backends{index: memory.NewStore(), close: func() error { return nil }}
	}
}
