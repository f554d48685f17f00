package brain

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/aegis-b3/internal/contracts"
)

func TestSnapshotMemo_SharesResults(t *testing.T) {
	adapter := exampleAdapter()
	memo := newSnapshotMemo(adapter)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := memo.GetSnapshot(context.Background(), "A")
			assert.NoError(t, err)
			assert.NotNil(t, snap)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, adapter.snapCalls["A"])
	assert.Equal(t, 1, memo.calls())
}

func TestSnapshotMemo_CachesErrors(t *testing.T) {
	adapter := exampleAdapter()
	memo := newSnapshotMemo(adapter)

	_, err := memo.GetSnapshot(context.Background(), "NOPE")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
	_, err = memo.GetSnapshot(context.Background(), "NOPE")
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	assert.Equal(t, 1, adapter.snapCalls["NOPE"])
}
