package bridge

import (
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLatestWins(t *testing.T) {
	r := NewRegistry()
	a := &Instance{id: "a", ns: "com.example.screen"}
	b := &Instance{id: "b", ns: "com.example.screen"}

	r.Register("com.example.screen", a)
	r.Register("com.example.screen", b)

	got, ok := r.Lookup("com.example.screen")
	require.True(t, ok)
	assert.Same(t, b, got)

	runtime.KeepAlive(a)
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	a := &Instance{id: "a"}
	r.Register("ns", a)

	r.Unregister("ns")
	_, ok := r.Lookup("ns")
	assert.False(t, ok)

	r.Register("ns", nil)
	_, ok = r.Lookup("ns")
	assert.False(t, ok)
}

func TestRegistryUnregisterInstanceKeepsReplacement(t *testing.T) {
	r := NewRegistry()
	old := &Instance{id: "old"}
	fresh := &Instance{id: "fresh"}

	r.Register("ns", old)
	r.Register("ns", fresh)

	assert.False(t, r.unregisterInstance("ns", old))
	got, ok := r.Lookup("ns")
	require.True(t, ok)
	assert.Same(t, fresh, got)

	assert.True(t, r.unregisterInstance("ns", fresh))
	_, ok = r.Lookup("ns")
	assert.False(t, ok)

	runtime.KeepAlive(old)
}

func TestRegistryDropsCollectedInstances(t *testing.T) {
	r := NewRegistry()
	func() {
		r.Register("gone", &Instance{id: "gone"})
	}()
	kept := &Instance{id: "kept"}
	r.Register("kept", kept)

	require.Eventually(t, func() bool {
		runtime.GC()
		_, ok := r.Lookup("gone")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, r.Len())
	got, ok := r.Lookup("kept")
	require.True(t, ok)
	assert.Same(t, kept, got)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	keep := make([]*Instance, 64)
	for i := range keep {
		keep[i] = &Instance{id: fmt.Sprint(i)}
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				ns := fmt.Sprintf("ns.%d", (w+i)%16)
				switch i % 4 {
				case 0:
					r.Register(ns, keep[(w*i)%len(keep)])
				case 1:
					r.Lookup(ns)
				case 2:
					r.Unregister(ns)
				default:
					r.Len()
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, r.Len(), 16)
	runtime.KeepAlive(keep)
}

func TestDefaultRegistryIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}
