package database

import (
	"aptitude_backend/internal/config"
	"aptitude_backend/internal/util"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type fakeConn struct {
	live      atomic.Bool
	verifyErr error
	verifies  atomic.Int32
	closed    atomic.Bool
}

func (c *fakeConn) Live() bool { return c.live.Load() }

func (c *fakeConn) Verify(ctx context.Context) error {
	c.verifies.Add(1)
	if c.verifyErr != nil {
		return c.verifyErr
	}
	c.live.Store(true)
	return nil
}

func (c *fakeConn) Database(string) *mongo.Database { return nil }

func (c *fakeConn) Close(context.Context) error {
	c.closed.Store(true)
	return nil
}

func liveConn() *fakeConn {
	c := &fakeConn{}
	c.live.Store(true)
	return c
}

func testConfig() config.MongoConfig {
	return config.MongoConfig{URI: "mongodb://fake", Database: "aptitude_test", ConnectTimeout: time.Second}
}

func TestEnsureReadyConcurrentCallersShareOneAttempt(t *testing.T) {
	var dials atomic.Int32
	m := newMongoManager(testConfig(), func(ctx context.Context, cfg config.MongoConfig) (conn, error) {
		dials.Add(1)
		time.Sleep(30 * time.Millisecond)
		return liveConn(), nil
	})

	const callers = 64
	start := make(chan struct{})
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- m.EnsureReady(context.Background())
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("expected every caller to observe success, got %v", err)
		}
	}
	if got := dials.Load(); got != 1 {
		t.Fatalf("expected exactly one connection attempt, got %d", got)
	}
}

func TestEnsureReadyLiveConnectionIsNoop(t *testing.T) {
	var dials atomic.Int32
	c := liveConn()
	m := newMongoManager(testConfig(), func(ctx context.Context, cfg config.MongoConfig) (conn, error) {
		dials.Add(1)
		return c, nil
	})

	for i := 0; i < 3; i++ {
		if err := m.EnsureReady(context.Background()); err != nil {
			t.Fatalf("EnsureReady: %v", err)
		}
	}
	if dials.Load() != 1 {
		t.Fatalf("expected one dial, got %d", dials.Load())
	}
	if c.verifies.Load() != 0 {
		t.Fatalf("live connection must not be re-verified, got %d round trips", c.verifies.Load())
	}
}

func TestEnsureReadySurfacesDialFailureWithoutRetry(t *testing.T) {
	var dials atomic.Int32
	boom := errors.New("server selection timeout")
	m := newMongoManager(testConfig(), func(ctx context.Context, cfg config.MongoConfig) (conn, error) {
		if dials.Add(1) == 1 {
			return nil, boom
		}
		return liveConn(), nil
	})

	err := m.EnsureReady(context.Background())
	if !errors.Is(err, util.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
	if dials.Load() != 1 {
		t.Fatalf("expected a single attempt on failure, got %d", dials.Load())
	}

	if err := m.EnsureReady(context.Background()); err != nil {
		t.Fatalf("next call should connect, got %v", err)
	}
	if dials.Load() != 2 {
		t.Fatalf("expected the caller-driven retry to dial again, got %d", dials.Load())
	}
}

func TestEnsureReadyTrustsDriverStateOverStaleHandle(t *testing.T) {
	c := liveConn()
	var dials atomic.Int32
	m := newMongoManager(testConfig(), func(ctx context.Context, cfg config.MongoConfig) (conn, error) {
		dials.Add(1)
		return c, nil
	})
	if err := m.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}

	// The driver reports the deployment gone, e.g. after the host was frozen.
	c.live.Store(false)
	c.verifyErr = errors.New("connection refused")
	if err := m.EnsureReady(context.Background()); !errors.Is(err, util.ErrConnection) {
		t.Fatalf("expected ErrConnection for unreachable deployment, got %v", err)
	}

	c.verifyErr = nil
	if err := m.EnsureReady(context.Background()); err != nil {
		t.Fatalf("expected recovery once reachable, got %v", err)
	}
	if dials.Load() != 1 {
		t.Fatalf("existing client should be reused, got %d dials", dials.Load())
	}
	if c.verifies.Load() != 2 {
		t.Fatalf("expected two verification round trips, got %d", c.verifies.Load())
	}
}

func TestEnsureReadyCallerCancellationDoesNotAbortAttempt(t *testing.T) {
	release := make(chan struct{})
	m := newMongoManager(testConfig(), func(ctx context.Context, cfg config.MongoConfig) (conn, error) {
		<-release
		return liveConn(), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.EnsureReady(ctx) }()
	cancel()

	if err := <-done; !errors.Is(err, util.ErrConnection) {
		t.Fatalf("expected cancelled caller to get ErrConnection, got %v", err)
	}

	close(release)
	if err := m.EnsureReady(context.Background()); err != nil {
		t.Fatalf("attempt should complete for later callers, got %v", err)
	}
}

func TestConnectHookRetriedUntilItSucceeds(t *testing.T) {
	m := newMongoManager(testConfig(), func(ctx context.Context, cfg config.MongoConfig) (conn, error) {
		return liveConn(), nil
	})
	var indexRuns, okRuns atomic.Int32
	m.OnConnect(func(ctx context.Context, db *mongo.Database) error {
		if indexRuns.Add(1) <= 2 {
			return errors.New("index build failed")
		}
		return nil
	})
	m.OnConnect(func(ctx context.Context, db *mongo.Database) error {
		okRuns.Add(1)
		return nil
	})

	for i := 0; i < 5; i++ {
		if err := m.EnsureReady(context.Background()); err != nil {
			t.Fatalf("hook failure must not fail the connection: %v", err)
		}
	}
	if got := indexRuns.Load(); got != 3 {
		t.Fatalf("expected failing hook to run until it succeeds (3 runs), got %d", got)
	}
	if got := okRuns.Load(); got != 1 {
		t.Fatalf("a successful hook must run once, got %d", got)
	}
}

func TestCloseDuringConnectDiscardsNewClient(t *testing.T) {
	c := liveConn()
	release := make(chan struct{})
	dialing := make(chan struct{})
	m := newMongoManager(testConfig(), func(ctx context.Context, cfg config.MongoConfig) (conn, error) {
		close(dialing)
		<-release
		return c, nil
	})

	done := make(chan error, 1)
	go func() { done <- m.EnsureReady(context.Background()) }()

	<-dialing
	if err := m.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, util.ErrConnection) {
		t.Fatalf("expected ErrConnection for a connect overtaken by Close, got %v", err)
	}
	if !c.closed.Load() {
		t.Fatalf("client dialed during Close must be disconnected")
	}
	if m.current() != nil {
		t.Fatalf("closed manager must not keep the late client")
	}
}

func TestCloseDropsConnection(t *testing.T) {
	c := liveConn()
	var dials atomic.Int32
	m := newMongoManager(testConfig(), func(ctx context.Context, cfg config.MongoConfig) (conn, error) {
		dials.Add(1)
		return c, nil
	})
	if err := m.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	if err := m.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !c.closed.Load() {
		t.Fatalf("expected underlying client to be closed")
	}
	if err := m.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady after close: %v", err)
	}
	if dials.Load() != 2 {
		t.Fatalf("expected reconnect after close, got %d dials", dials.Load())
	}
}

func TestDialMongoRequiresURI(t *testing.T) {
	if _, err := dialMongo(context.Background(), config.MongoConfig{}); err == nil {
		t.Fatalf("expected error for empty uri")
	}
}
