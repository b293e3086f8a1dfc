package libfold_test

import (
	"sync"
	"testing"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/2x3systems/hyperfold/libfold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzedSet(t *testing.T) {
	set := libfold.NewAnalyzedSet(hyperfold.DefaultGrid)
	defer set.Close()

	assert.False(t, set.Contains(10))
	assert.Empty(t, set.Temps())

	assert.True(t, set.Add(10))
	assert.False(t, set.Add(10))
	assert.True(t, set.Add(-3))
	assert.True(t, set.Add(40))
	assert.False(t, set.Add(10.5), "off-grid temperatures are never members")

	assert.True(t, set.Contains(10))
	assert.False(t, set.Contains(11))
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []hyperfold.Temp{-3, 10, 40}, set.Temps())

	require.NoError(t, set.Close())
	assert.Equal(t, 0, set.Len())
	assert.False(t, set.Contains(10))
}

func TestAnalyzedSetConcurrentAdd(t *testing.T) {
	set := libfold.NewAnalyzedSet(hyperfold.Grid{Resolution: 0.5})
	defer set.Close()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		added int
	)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if set.Add(hyperfold.Temp(i) * 0.5) {
					mu.Lock()
					added++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, added)
	assert.Equal(t, 50, set.Len())
	temps := set.Temps()
	require.Len(t, temps, 50)
	assert.Equal(t, hyperfold.Temp(24.5), temps[49])
}
