package resource_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oswarriors/ossim/internal/resource"
)

func TestHandleNamesFollowPrefixConvention(t *testing.T) {
	pool := resource.NewPool("HDD", 3)
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		seen[pool.Acquire()] = true
	}
	assert.True(t, seen["HDD_0"])
	assert.True(t, seen["HDD_1"])
	assert.True(t, seen["HDD_2"])
}

func TestAcquireBlocksWhenExhausted(t *testing.T) {
	pool := resource.NewPool("KBRD", 1)
	h := pool.Acquire()
	require.Equal(t, 0, pool.Available())

	acquired := make(chan string, 1)
	go func() {
		acquired <- pool.Acquire()
	}()

	select {
	case <-acquired:
		t.Fatal("acquire should have blocked while the pool was exhausted")
	case <-time.After(20 * time.Millisecond):
	}

	pool.Release(h)
	select {
	case got := <-acquired:
		assert.Equal(t, h, got)
	case <-time.After(time.Second):
		t.Fatal("acquire never woke up after release")
	}
}

func TestPeakTracksMaxConcurrentHolders(t *testing.T) {
	pool := resource.NewPool("SCNR", 2)
	a := pool.Acquire()
	b := pool.Acquire()
	assert.Equal(t, 2, pool.Peak())
	pool.Release(a)
	pool.Release(b)
	assert.Equal(t, 2, pool.Peak())
}

func TestConcurrentAcquireNeverExceedsCapacity(t *testing.T) {
	pool := resource.NewPool("MNTR", 2)
	var wg sync.WaitGroup
	var mu sync.Mutex
	maxSeen := 0
	current := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := pool.Acquire()
			mu.Lock()
			current++
			if current > maxSeen {
				maxSeen = current
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			current--
			mu.Unlock()
			pool.Release(h)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, maxSeen, 2)
}
