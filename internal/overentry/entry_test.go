package overentry

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/kolkov/overthrower/internal/overplatform"
	"github.com/kolkov/overthrower/internal/overstate"
)

// fakeNative is a software stand-in for the native allocator: it hands out
// monotonically increasing fake addresses and tracks their sizes so tests
// never need real cgo heap memory to exercise the orchestration logic in
// entry.go.
type fakeNative struct {
	mu     sync.Mutex
	next   uintptr
	sizes  map[uintptr]uintptr
	freed  []uintptr
	denyAt map[uintptr]bool // addresses that should fail realloc, by old ptr
}

func newFakeNative() *fakeNative {
	return &fakeNative{next: 0x10000, sizes: make(map[uintptr]uintptr)}
}

func (f *fakeNative) real() overplatform.Real {
	return overplatform.Real{
		Malloc: func(size uintptr) uintptr {
			f.mu.Lock()
			defer f.mu.Unlock()
			p := f.next
			f.next += 0x100
			f.sizes[p] = size
			return p
		},
		Free: func(ptr uintptr) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.freed = append(f.freed, ptr)
			delete(f.sizes, ptr)
		},
		Realloc: func(ptr uintptr, size uintptr) uintptr {
			f.mu.Lock()
			defer f.mu.Unlock()
			p := f.next
			f.next += 0x100
			f.sizes[p] = size
			delete(f.sizes, ptr)
			return p
		},
	}
}

func resetAll(t *testing.T, real overplatform.Real) *bytes.Buffer {
	t.Helper()
	realOverride = &real
	var buf bytes.Buffer
	out = &buf
	active.Store(false)
	state.Store(nil)
	seqCounter.Store(0)
	overstate.ResetForTesting()
	// fakeNative's addresses are not real memory, so the copy step of a
	// relocating Realloc must not go through libc's memcpy.
	memcpyFn = func(dst, src, n uintptr) {}
	t.Cleanup(func() {
		realOverride = nil
		memcpyFn = overplatform.Memcpy
		out = defaultOut()
		overstate.ResetForTesting()
	})
	return &buf
}

func defaultOut() *os.File { return os.Stderr }

func fakeEnv(vars map[string]string) EnvLookup {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestMallocPassesThroughBeforeActivation(t *testing.T) {
	fn := newFakeNative()
	resetAll(t, fn.real())

	ptr, enomem := Malloc(64)
	if enomem || ptr == 0 {
		t.Fatalf("pre-activation Malloc should always succeed via the native allocator, got (%x, %v)", ptr, enomem)
	}
	if st := state.Load(); st != nil {
		t.Fatal("no runtime state should exist before Activate")
	}
}

// TestDoubleActivationScenario is spec.md §8 scenario 6.
func TestDoubleActivationScenario(t *testing.T) {
	fn := newFakeNative()
	resetAll(t, fn.real())

	env := fakeEnv(map[string]string{"OVERTHROWER_STRATEGY": "3"}) // none

	Activate(env)
	Activate(env)

	ptr, enomem := Malloc(128)
	if enomem || ptr == 0 {
		t.Fatalf("malloc under strategy none must succeed, got (%x, %v)", ptr, enomem)
	}
	Free(ptr)

	if leaked := Deactivate(); leaked != 0 {
		t.Fatalf("leaked = %d, want 0 after a matching free", leaked)
	}

	Activate(env)
	ptr, enomem = Malloc(128)
	if enomem || ptr == 0 {
		t.Fatalf("second activation cycle: malloc failed unexpectedly (%x, %v)", ptr, enomem)
	}
	if leaked := Deactivate(); leaked != 1 {
		t.Fatalf("leaked = %d, want 1 (buffer never freed)", leaked)
	}
}

// TestNoneStrategyLeakReport is spec.md §8 scenario 3.
func TestNoneStrategyLeakReport(t *testing.T) {
	fn := newFakeNative()
	buf := resetAll(t, fn.real())

	Activate(fakeEnv(map[string]string{"OVERTHROWER_STRATEGY": "3"}))

	ptr, enomem := Malloc(128)
	if enomem || ptr == 0 {
		t.Fatalf("malloc(128) under NONE must succeed, got (%x, %v)", ptr, enomem)
	}

	leaked := Deactivate()
	if leaked != 1 {
		t.Fatalf("leaked = %d, want 1", leaked)
	}
	if !strings.Contains(buf.String(), "overthrower got deactivation signal.") {
		t.Fatalf("missing deactivation banner: %q", buf.String())
	}

	Free(ptr) // must not panic even though the ledger has already been drained
}

func TestStepStrategyForcesFailureAfterDelay(t *testing.T) {
	fn := newFakeNative()
	resetAll(t, fn.real())

	Activate(fakeEnv(map[string]string{
		"OVERTHROWER_STRATEGY": "1", // step
		"OVERTHROWER_DELAY":    "2",
	}))

	for i := 0; i < 2; i++ {
		ptr, enomem := Malloc(8)
		if enomem || ptr == 0 {
			t.Fatalf("allocation %d before the delay should succeed", i)
		}
	}
	ptr, enomem := Malloc(8)
	if !enomem || ptr != 0 {
		t.Fatalf("allocation at/after the delay should be forced to fail, got (%x, %v)", ptr, enomem)
	}
}

func TestPauseSkipsStrategyAndSequence(t *testing.T) {
	fn := newFakeNative()
	resetAll(t, fn.real())

	Activate(fakeEnv(map[string]string{
		"OVERTHROWER_STRATEGY": "1", // step
		"OVERTHROWER_DELAY":    "0", // fail everything once active
	}))

	Pause(3)
	for i := 0; i < 3; i++ {
		ptr, enomem := Malloc(8)
		if enomem || ptr == 0 {
			t.Fatalf("paused allocation %d must pass through, got (%x, %v)", i, ptr, enomem)
		}
	}
	Resume()

	if got := seqCounter.Load(); got != 0 {
		t.Fatalf("paused allocations consumed sequence numbers: counter = %d, want 0", got)
	}
	if _, enomem := Malloc(8); !enomem {
		t.Fatal("after resume, strategy STEP with delay 0 should fail every allocation")
	}
}

func TestReallocRelocatesTrackedBlock(t *testing.T) {
	fn := newFakeNative()
	resetAll(t, fn.real())

	Activate(fakeEnv(map[string]string{"OVERTHROWER_STRATEGY": "3"}))

	ptr, _ := Malloc(16)
	newPtr, enomem := Realloc(ptr, 32)
	if enomem || newPtr == 0 {
		t.Fatalf("realloc should succeed under NONE, got (%x, %v)", newPtr, enomem)
	}
	if newPtr == ptr {
		t.Fatal("fake native allocator always relocates; expected a new address")
	}

	found := false
	for _, p := range fn.freed {
		if p == ptr {
			found = true
		}
	}
	if !found {
		t.Fatal("realloc must free the old tracked block")
	}
}

func TestReallocUntrackedDelegatesDirectly(t *testing.T) {
	fn := newFakeNative()
	resetAll(t, fn.real())
	Activate(fakeEnv(map[string]string{"OVERTHROWER_STRATEGY": "3"}))

	// A pointer never seen by Malloc (e.g. allocated before activation) is
	// not in the ledger and must be delegated straight to native realloc.
	untracked := uintptr(0xABCDEF)
	fn.mu.Lock()
	fn.sizes[untracked] = 4
	fn.mu.Unlock()

	newPtr, enomem := Realloc(untracked, 64)
	if enomem || newPtr == 0 {
		t.Fatalf("untracked realloc should delegate and succeed, got (%x, %v)", newPtr, enomem)
	}
}

func TestReallocZeroSizeFrees(t *testing.T) {
	fn := newFakeNative()
	resetAll(t, fn.real())
	Activate(fakeEnv(map[string]string{"OVERTHROWER_STRATEGY": "3"}))

	ptr, _ := Malloc(16)
	newPtr, enomem := Realloc(ptr, 0)
	if enomem || newPtr != 0 {
		t.Fatalf("realloc(p, 0) must behave like free and return null, got (%x, %v)", newPtr, enomem)
	}
}

func TestFreeNullIsNoop(t *testing.T) {
	fn := newFakeNative()
	resetAll(t, fn.real())
	Free(0)
	if len(fn.freed) != 0 {
		t.Fatal("Free(0) must never call the native allocator")
	}
}
