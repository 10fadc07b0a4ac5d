package quiver_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/quiver"
	"github.com/paveg/quiver/internal/testutil"
)

type countingResource struct {
	released int
}

func (r *countingResource) Release() {
	r.released++
}

func TestMemoryManager_TrackAndRelease(t *testing.T) {
	manager := quiver.NewMemoryManager(memory.NewGoAllocator())

	a, b := &countingResource{}, &countingResource{}
	manager.Track(a)
	manager.Track(b)
	manager.Track(nil)
	assert.Equal(t, 2, manager.Count())

	manager.ReleaseAll()
	assert.Equal(t, 0, manager.Count())
	assert.Equal(t, 1, a.released)
	assert.Equal(t, 1, b.released)

	manager.ReleaseAll()
	assert.Equal(t, 1, a.released)
}

func TestMemoryManager_ConcurrentTrack(t *testing.T) {
	manager := quiver.NewMemoryManager(memory.NewGoAllocator())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			manager.Track(&countingResource{})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, manager.Count())
	manager.ReleaseAll()
}

func TestMemoryManager_Append(t *testing.T) {
	increment := func(values ...int64) []byte {
		return testutil.NewFrame(nil).
			RangeIndex(0, int64(len(values)), 1, nil).
			Column("a", testutil.Int64s(nil, values...)).
			IPC(t)
	}

	var rows int
	err := quiver.WithMemoryManager(memory.NewGoAllocator(), func(manager *quiver.MemoryManager) error {
		current, err := quiver.New(increment(1, 2), nil, quiver.WithAllocator(manager.Allocator()))
		if err != nil {
			return err
		}
		manager.Track(current)

		for _, payload := range [][]byte{increment(3), increment(4, 5)} {
			current, err = manager.Append(current, payload)
			if err != nil {
				return err
			}
		}
		rows = current.Dimensions().DataRows
		assert.Equal(t, 5, manager.Count())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, rows)
}

func TestMemoryManager_AppendFailure(t *testing.T) {
	manager := quiver.NewMemoryManager(nil)
	defer manager.ReleaseAll()

	current, err := quiver.New(unicodePayload(t), nil)
	require.NoError(t, err)
	manager.Track(current)

	_, err = manager.Append(current, []byte("bad"))
	assert.ErrorIs(t, err, quiver.ErrInvalidPayload)
	assert.Equal(t, 1, manager.Count())
}

func TestWithQuiver(t *testing.T) {
	var columns [][]string
	err := quiver.WithQuiver(unicodePayload(t), func(q *quiver.Quiver) error {
		columns = q.Columns()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"c1", "c2"}}, columns)

	sentinel := errors.New("stop")
	err = quiver.WithQuiver(unicodePayload(t), func(*quiver.Quiver) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	err = quiver.WithQuiver([]byte("bad"), func(*quiver.Quiver) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.Error(t, err)
}
