package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/ruleflow-dev/ruleflow/codec"
)

var ErrNoSnapshotFound = errors.New("no snapshot found")

// Snapshot is the persisted state of a flow: enough to re-interpret its
// source and fast-forward to the recorded step. The history list alongside
// it keeps one rendered row of spaces per step.
type Snapshot struct {
	Name   string   `json:"name"`
	Source string   `json:"source"`
	Step   uint64   `json:"step"`
	Spaces []string `json:"spaces"`
}

// SaveSnapshot stores the snapshot, registers its name in the namespace
// index, and stamps the namespace with the wire schema, atomically.
func (r *Storage) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	bz, err := codec.Encode(snap)
	if err != nil {
		return err
	}
	schema, err := snapshotSchema()
	if err != nil {
		return err
	}
	pipe := r.Client.TxPipeline()
	pipe.Set(ctx, r.snapshotKey(snap.Name), bz, 0)
	pipe.SAdd(ctx, r.indexKey(), snap.Name)
	pipe.Set(ctx, r.schemaKey(), schema, 0)
	_, err = pipe.Exec(ctx)
	return eris.Wrap(err, "failed to save snapshot")
}

// LoadSnapshot fetches the snapshot stored under the given flow name.
func (r *Storage) LoadSnapshot(ctx context.Context, flowName string) (Snapshot, error) {
	bz, err := r.Client.Get(ctx, r.snapshotKey(flowName)).Bytes()
	if eris.Is(err, redis.Nil) {
		return Snapshot{}, eris.Wrap(ErrNoSnapshotFound, flowName)
	} else if err != nil {
		return Snapshot{}, eris.Wrap(err, "")
	}
	return codec.Decode[Snapshot](bz)
}

// DeleteSnapshot removes the snapshot, its history, and its index entry.
func (r *Storage) DeleteSnapshot(ctx context.Context, flowName string) error {
	pipe := r.Client.TxPipeline()
	pipe.Del(ctx, r.snapshotKey(flowName))
	pipe.Del(ctx, r.historyKey(flowName))
	pipe.SRem(ctx, r.indexKey(), flowName)
	_, err := pipe.Exec(ctx)
	return eris.Wrap(err, "failed to delete snapshot")
}

// ListSnapshots returns the names of every snapshot in the namespace.
func (r *Storage) ListSnapshots(ctx context.Context) ([]string, error) {
	names, err := r.Client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return names, nil
}

// AppendHistory pushes one step's rendered spaces onto the flow's history.
func (r *Storage) AppendHistory(ctx context.Context, flowName string, spaces []string) error {
	bz, err := codec.Encode(spaces)
	if err != nil {
		return err
	}
	return eris.Wrap(r.Client.RPush(ctx, r.historyKey(flowName), bz).Err(), "")
}

// LoadHistory returns every recorded step of the flow, oldest first.
func (r *Storage) LoadHistory(ctx context.Context, flowName string) ([][]string, error) {
	rows, err := r.Client.LRange(ctx, r.historyKey(flowName), 0, -1).Result()
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		spaces, err := codec.Decode[[]string]([]byte(row))
		if err != nil {
			return nil, err
		}
		out = append(out, spaces)
	}
	return out, nil
}
