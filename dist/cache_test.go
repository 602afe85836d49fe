package dist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/multierr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestResolveLocalTree(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cpython-3.10")
	os.MkdirAll(root, 0o755)

	c := NewCache(t.TempDir())
	d, err := c.Resolve(context.Background(), Location{
		Name:    "cpython",
		Version: "3.10",
		Triple:  "x86_64-unknown-linux-gnu",
		Path:    root,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if d.Root() != root {
		t.Errorf("Root = %q, want %q", d.Root(), root)
	}
	if d.Name() != "cpython" || d.Version() != "3.10" {
		t.Errorf("identity = %s %s, want cpython 3.10", d.Name(), d.Version())
	}
}

func TestResolveMissingPath(t *testing.T) {
	c := NewCache(t.TempDir())
	_, err := c.Resolve(context.Background(), Location{
		Name: "cpython",
		Path: filepath.Join(t.TempDir(), "nope"),
	})
	if err == nil {
		t.Fatal("expected error for a missing path")
	}
}

func TestResolveRemoteNeedsLoader(t *testing.T) {
	c := NewCache(t.TempDir())
	_, err := c.Resolve(context.Background(), Location{
		Name: "cpython",
		URL:  "https://example.invalid/dist.tar.zst",
	})
	if err == nil || !strings.Contains(err.Error(), "loader") {
		t.Fatalf("expected loader error, got %v", err)
	}
}

func TestResolveMemoizesPerLocation(t *testing.T) {
	var loads atomic.Int32
	c := NewCache(t.TempDir(), WithLoader(func(ctx context.Context, loc Location, storageDir string) (*Distribution, error) {
		loads.Add(1)
		return NewDistribution(loc.Name, loc.Version, loc.Triple, filepath.Join(storageDir, loc.Name)), nil
	}))

	loc := Location{Name: "cpython", Version: "3.10", Triple: "x86_64-unknown-linux-gnu"}
	a, err := c.Resolve(context.Background(), loc)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	b, err := c.Resolve(context.Background(), loc)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if a != b {
		t.Error("resolves of one location should share one value")
	}
	if loads.Load() != 1 {
		t.Errorf("loader ran %d times, want 1", loads.Load())
	}

	other := Location{Name: "cpython", Version: "3.11", Triple: "x86_64-unknown-linux-gnu"}
	if _, err := c.Resolve(context.Background(), other); err != nil {
		t.Fatalf("resolve other version: %v", err)
	}
	if loads.Load() != 2 {
		t.Errorf("distinct versions should load separately, loader ran %d times", loads.Load())
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestResolveConcurrentSharesOneLoad(t *testing.T) {
	var loads atomic.Int32
	c := NewCache(t.TempDir(), WithLoader(func(ctx context.Context, loc Location, storageDir string) (*Distribution, error) {
		loads.Add(1)
		time.Sleep(10 * time.Millisecond) // widen the in-flight window
		return NewDistribution(loc.Name, loc.Version, loc.Triple, storageDir), nil
	}))

	loc := Location{Name: "cpython", Version: "3.10", Triple: "x86_64-unknown-linux-gnu"}
	const n = 8
	var (
		wg    sync.WaitGroup
		dists [n]*Distribution
		errs  [n]error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dists[i], errs[i] = c.Resolve(context.Background(), loc)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("resolve %d: %v", i, errs[i])
		}
		if dists[i] != dists[0] {
			t.Fatal("concurrent resolves should share one value")
		}
	}
	if loads.Load() != 1 {
		t.Errorf("loader ran %d times, want 1", loads.Load())
	}
}

func TestCloseIdempotentAndFailsResolve(t *testing.T) {
	c := NewCache(t.TempDir())

	if err := c.Close(); err != nil {
		t.Fatalf("close with nothing in flight: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	_, err := c.Resolve(context.Background(), Location{Name: "cpython", Path: t.TempDir()})
	if !errors.Is(err, ErrCacheClosed) {
		t.Errorf("resolve after close: got %v, want ErrCacheClosed", err)
	}
}

func TestCloseReportsInFlightLoads(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewCache(t.TempDir(), WithLoader(func(ctx context.Context, loc Location, storageDir string) (*Distribution, error) {
		close(started)
		<-release
		return NewDistribution(loc.Name, loc.Version, loc.Triple, storageDir), nil
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Resolve(context.Background(), Location{Name: "cpython", Version: "3.10", Triple: "x86_64-unknown-linux-gnu"})
	}()
	<-started

	err := c.Close()
	if err == nil {
		t.Fatal("close with a load in flight should report it")
	}
	if errs := multierr.Errors(err); len(errs) != 1 || !strings.Contains(errs[0].Error(), "still in flight") {
		t.Errorf("close error = %v", err)
	}

	close(release)
	<-done
}

func TestResolveFailureNotCached(t *testing.T) {
	var loads atomic.Int32
	c := NewCache(t.TempDir(), WithLoader(func(ctx context.Context, loc Location, storageDir string) (*Distribution, error) {
		if loads.Add(1) == 1 {
			return nil, errors.New("mirror down")
		}
		return NewDistribution(loc.Name, loc.Version, loc.Triple, storageDir), nil
	}))

	loc := Location{Name: "cpython", Version: "3.10", Triple: "x86_64-unknown-linux-gnu"}
	if _, err := c.Resolve(context.Background(), loc); err == nil {
		t.Fatal("first resolve should fail")
	}
	if _, err := c.Resolve(context.Background(), loc); err != nil {
		t.Fatalf("second resolve should retry the load: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
