package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

// ErrSchemaMismatch is returned when the snapshots in storage were written
// with a different Snapshot wire format than this build uses.
var ErrSchemaMismatch = errors.New("stored snapshot schema does not match this build")

func snapshotSchema() ([]byte, error) {
	bz, err := jsonschema.Reflect(&Snapshot{}).MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "failed to serialize snapshot schema")
	}
	return bz, nil
}

func (r *Storage) schemaKey() string {
	return fmt.Sprintf("%s:schema:snapshot", r.Namespace)
}

// SaveSchema records the wire schema of Snapshot under the namespace so a
// later reader can detect format drift before trusting stored snapshots.
func (r *Storage) SaveSchema(ctx context.Context) error {
	bz, err := snapshotSchema()
	if err != nil {
		return err
	}
	return eris.Wrap(r.Client.Set(ctx, r.schemaKey(), bz, 0).Err(), "failed to save snapshot schema")
}

// ValidateSchema diffs the stored snapshot schema against this build's. No
// stored schema passes; the namespace simply has not been written yet.
func (r *Storage) ValidateSchema(ctx context.Context) error {
	stored, err := r.Client.Get(ctx, r.schemaKey()).Bytes()
	if eris.Is(err, redis.Nil) {
		return nil
	} else if err != nil {
		return eris.Wrap(err, "")
	}
	current, err := snapshotSchema()
	if err != nil {
		return err
	}
	patch, err := jsondiff.CompareJSON(stored, current)
	if err != nil {
		return eris.Wrap(err, "failed to compare snapshot schemas")
	}
	if patch.String() != "" {
		return eris.Wrap(ErrSchemaMismatch, patch.String())
	}
	return nil
}
