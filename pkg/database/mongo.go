package database

import (
	"aptitude_backend/internal/config"
	"aptitude_backend/internal/util"
	"aptitude_backend/pkg/logger"
	"aptitude_backend/pkg/monitoring"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/description"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultSocketTimeout  = 45 * time.Second
)

// conn is one physical client to the deployment.
type conn interface {
	// Live reports the driver's current view of the deployment. No network I/O.
	Live() bool
	// Verify confirms reachability with a round trip.
	Verify(ctx context.Context) error
	Database(name string) *mongo.Database
	Close(ctx context.Context) error
}

type dialFunc func(ctx context.Context, cfg config.MongoConfig) (conn, error)

// ConnectHook runs after a fresh connection is established. A hook that fails is
// run again by the next EnsureReady until it succeeds.
type ConnectHook func(ctx context.Context, db *mongo.Database) error

// MongoManager owns the single process-wide MongoDB client. It connects lazily,
// lets concurrent callers share one connection attempt and trusts the driver's
// topology monitor, not a local flag, for readiness.
type MongoManager struct {
	cfg  config.MongoConfig
	dial dialFunc

	mu      sync.RWMutex
	conn    conn
	gen     uint64 // bumped by Close; a dial from an older generation is discarded
	hooks   []ConnectHook
	pending []ConnectHook

	group singleflight.Group
}

func NewMongoManager(cfg config.MongoConfig) *MongoManager {
	return newMongoManager(cfg, dialMongo)
}

func newMongoManager(cfg config.MongoConfig, dial dialFunc) *MongoManager {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.SocketTimeout <= 0 {
		cfg.SocketTimeout = defaultSocketTimeout
	}
	return &MongoManager{cfg: cfg, dial: dial}
}

func (m *MongoManager) OnConnect(hook ConnectHook) {
	m.mu.Lock()
	m.hooks = append(m.hooks, hook)
	if m.conn != nil {
		m.pending = append(m.pending, hook)
	}
	m.mu.Unlock()
}

func (m *MongoManager) current() conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn
}

func (m *MongoManager) ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn != nil && m.conn.Live() && len(m.pending) == 0
}

// EnsureReady returns at once when the existing connection is live and every
// connect hook has succeeded. Otherwise it joins (or starts) the single in-flight
// connection attempt and waits for it, or for ctx, whichever ends first.
// Connection failures are returned, never retried here.
func (m *MongoManager) EnsureReady(ctx context.Context) error {
	if m.ready() {
		return nil
	}

	ch := m.group.DoChan("connect", func() (interface{}, error) {
		return nil, m.establish(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", util.ErrConnection, ctx.Err())
	}
}

func (m *MongoManager) establish(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, m.cfg.ConnectTimeout)
	defer cancel()

	if c := m.current(); c != nil {
		if !c.Live() {
			if err := c.Verify(ctx); err != nil {
				monitoring.DBConnectAttempts.WithLabelValues("unreachable").Inc()
				logger.Log.Warn("mongo deployment unreachable", zap.Error(err))
				return fmt.Errorf("%w: %v", util.ErrConnection, err)
			}
			monitoring.DBConnectAttempts.WithLabelValues("recovered").Inc()
		}
		m.runPending(parent, c)
		return nil
	}

	m.mu.RLock()
	gen := m.gen
	m.mu.RUnlock()

	c, err := m.dial(ctx, m.cfg)
	if err != nil {
		monitoring.DBConnectAttempts.WithLabelValues("failed").Inc()
		logger.Log.Error("mongo connection failed", zap.Error(err))
		return fmt.Errorf("%w: %v", util.ErrConnection, err)
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		closeCtx, closeCancel := context.WithTimeout(context.WithoutCancel(parent), m.cfg.ConnectTimeout)
		defer closeCancel()
		if err := c.Close(closeCtx); err != nil {
			logger.Log.Warn("failed to close mongo client dialed during shutdown", zap.Error(err))
		}
		return fmt.Errorf("%w: manager closed while connecting", util.ErrConnection)
	}
	m.conn = c
	m.pending = append([]ConnectHook(nil), m.hooks...)
	m.mu.Unlock()

	monitoring.DBConnectAttempts.WithLabelValues("connected").Inc()
	logger.Log.Info("connected to mongo", zap.String("database", m.cfg.Database))

	m.runPending(parent, c)
	return nil
}

// runPending runs the hooks that have not yet succeeded on c. Failed hooks stay
// pending so the next EnsureReady runs them again; the connection stays usable.
func (m *MongoManager) runPending(parent context.Context, c conn) {
	m.mu.Lock()
	hooks := m.pending
	m.pending = nil
	m.mu.Unlock()

	var failed []ConnectHook
	for _, hook := range hooks {
		ctx, cancel := context.WithTimeout(parent, m.cfg.ConnectTimeout)
		err := hook(ctx, c.Database(m.cfg.Database))
		cancel()
		if err != nil {
			logger.Log.Warn("mongo connect hook failed, retrying on next request", zap.Error(err))
			failed = append(failed, hook)
		}
	}
	if len(failed) == 0 {
		return
	}

	m.mu.Lock()
	if m.conn == c {
		m.pending = append(failed, m.pending...)
	}
	m.mu.Unlock()
}

// Database returns the configured database once the connection is ready.
func (m *MongoManager) Database(ctx context.Context) (*mongo.Database, error) {
	if err := m.EnsureReady(ctx); err != nil {
		return nil, err
	}
	c := m.current()
	if c == nil {
		return nil, fmt.Errorf("%w: connection closed", util.ErrConnection)
	}
	return c.Database(m.cfg.Database), nil
}

func (m *MongoManager) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := m.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// OperationContext applies mongo.operation_timeout when one is configured.
func (m *MongoManager) OperationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.cfg.OperationTimeout > 0 {
		return context.WithTimeout(ctx, m.cfg.OperationTimeout)
	}
	return ctx, func() {}
}

// Ping checks the deployment with a round trip; used by the health endpoint.
func (m *MongoManager) Ping(ctx context.Context) error {
	if err := m.EnsureReady(ctx); err != nil {
		return err
	}
	c := m.current()
	if c == nil {
		return fmt.Errorf("%w: connection closed", util.ErrConnection)
	}
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	defer cancel()
	if err := c.Verify(ctx); err != nil {
		return fmt.Errorf("%w: %v", util.ErrConnection, err)
	}
	return nil
}

func (m *MongoManager) Close(ctx context.Context) error {
	m.mu.Lock()
	c := m.conn
	m.conn = nil
	m.pending = nil
	m.gen++
	m.mu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close(ctx)
}

type mongoConn struct {
	client *mongo.Client
	up     atomic.Bool
}

func dialMongo(ctx context.Context, cfg config.MongoConfig) (conn, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is not configured")
	}

	mc := &mongoConn{}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetSocketTimeout(cfg.SocketTimeout).
		SetServerMonitor(&event.ServerMonitor{
			TopologyDescriptionChanged: mc.topologyChanged,
			TopologyClosed:             mc.topologyClosed,
		})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	mc.client = client
	mc.setUp(true)
	return mc, nil
}

func (c *mongoConn) topologyChanged(e *event.TopologyDescriptionChangedEvent) {
	c.setUp(hasKnownServer(e.NewDescription))
}

func (c *mongoConn) topologyClosed(*event.TopologyClosedEvent) {
	c.setUp(false)
}

func (c *mongoConn) setUp(up bool) {
	c.up.Store(up)
	if up {
		monitoring.DBConnectionUp.Set(1)
	} else {
		monitoring.DBConnectionUp.Set(0)
	}
}

func hasKnownServer(t description.Topology) bool {
	for _, s := range t.Servers {
		if s.Kind != description.Unknown {
			return true
		}
	}
	return false
}

func (c *mongoConn) Live() bool {
	return c.up.Load()
}

func (c *mongoConn) Verify(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return err
	}
	c.setUp(true)
	return nil
}

func (c *mongoConn) Database(name string) *mongo.Database {
	return c.client.Database(name)
}

func (c *mongoConn) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
