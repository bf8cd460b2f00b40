// Package redis persists flow snapshots. Every key is prefixed with the
// storage namespace so many flows can share one redis instance.
package redis

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Storage struct {
	Namespace string
	Client    *redis.Client
	Log       zerolog.Logger
}

type Options = redis.Options

func NewRedisStorage(options Options, namespace string) Storage {
	client := redis.NewClient(&options)
	return Storage{
		Namespace: namespace,
		Client:    client,
		Log:       zerolog.New(os.Stdout),
	}
}

func (r *Storage) Close() error {
	log.Info().Msg("Closing storage connection.")
	if err := r.Client.Close(); err != nil {
		return eris.Wrap(err, "")
	}
	log.Info().Msg("Successfully closed storage connection.")
	return nil
}

// Ping verifies the connection is usable.
func (r *Storage) Ping(ctx context.Context) error {
	return eris.Wrap(r.Client.Ping(ctx).Err(), "")
}

func (r *Storage) snapshotKey(flowName string) string {
	return fmt.Sprintf("%s:snapshot:%s", r.Namespace, flowName)
}

func (r *Storage) historyKey(flowName string) string {
	return fmt.Sprintf("%s:history:%s", r.Namespace, flowName)
}

func (r *Storage) indexKey() string {
	return fmt.Sprintf("%s:snapshots", r.Namespace)
}
