package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"fieldsync/internal/records/models"
	dErrors "fieldsync/pkg/domain-errors"
)

// numModuleShards spreads module locks over a fixed array so the locker needs
// no map or allocation per module.
const numModuleShards = 16

// defaultModuleTxTimeout bounds a read-modify-write when the caller set no deadline.
const defaultModuleTxTimeout = 5 * time.Second

// moduleTx serializes read-modify-write cycles per module. Different modules
// proceed in parallel unless they hash to the same shard.
type moduleTx struct {
	shards  [numModuleShards]sync.Mutex
	timeout time.Duration
}

// RunInModule runs fn while holding the module's lock.
func (t *moduleTx) RunInModule(ctx context.Context, m models.Module, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "module transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultModuleTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := shardFor(m)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// The wait for the lock may have outlived the deadline.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "module transaction aborted: context cancelled")
	}
	return fn(ctx)
}

func shardFor(m models.Module) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(m))
	return int(h.Sum32() % numModuleShards)
}
