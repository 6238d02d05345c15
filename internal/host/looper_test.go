package host

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooperRunsTasksInOrder(t *testing.T) {
	l := NewLooper(nil)
	l.Start()
	defer l.Quit()

	var (
		mu    sync.Mutex
		order []int
	)
	for i := 0; i < 10; i++ {
		i := i
		require.True(t, l.Post(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	require.NoError(t, l.RunSync(func() {}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestLooperSerializesConcurrentPosts(t *testing.T) {
	l := NewLooper(nil)
	l.Start()
	defer l.Quit()

	var (
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.RunSync(func() {
				active++
				if active > maxSeen {
					maxSeen = active
				}
				time.Sleep(100 * time.Microsecond)
				active--
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestLooperSurvivesPanickingTask(t *testing.T) {
	l := NewLooper(nil)
	l.Start()
	defer l.Quit()

	require.NoError(t, l.RunSync(func() { panic("boom") }))

	ran := false
	require.NoError(t, l.RunSync(func() { ran = true }))
	assert.True(t, ran)
}

func TestLooperQuit(t *testing.T) {
	l := NewLooper(nil)
	l.Start()
	l.Quit()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("looper did not stop")
	}

	assert.False(t, l.Post(func() {}))
	assert.ErrorIs(t, l.RunSync(func() {}), ErrLooperStopped)
}

func TestLooperQuitBeforeStart(t *testing.T) {
	l := NewLooper(nil)
	l.Quit()
	l.Quit()

	<-l.Done()
	assert.False(t, l.Post(func() {}))
}
