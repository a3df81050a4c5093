package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gitbbrid/yiiredis/lib/conn"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("router")

	errClosed = errors.New("router is closed")

	_ IRouter = (*ReplicaRouter)(nil)
)

// ReplicaRouter owns one primary and zero or more secondary connections.
// Connections are opened lazily on first use (or at construction with the
// autoConnect option) and live until Close.
//
// Thread-safety: a mutex serialises the connect sequence, so concurrent callers
// never open a topology twice. The slot list is read-only once connected and is
// read without locking.
type ReplicaRouter struct {
	primaryEndpoint    conn.EndpointConfig
	secondaryEndpoints []conn.EndpointConfig
	options            conn.Options // forwarded to every connection
	autoConnect        bool
	connector          conn.IConnector
	draw               func() int64

	mu             sync.Mutex // protects the connect sequence and the fields below
	state          atomic.Int32
	connectErr     error
	primary        conn.IStoreConnection
	slots          []conn.IStoreConnection
	slotCounters   []*metrics.Counter // replica selections, indexed like slots
	connectedCount int
}

// New creates a router for the topology. The primary host is required.
// Defaults are applied to every endpoint: port 6379 and the timeout option (2s if unset).
// With the autoConnect option the whole topology is connected before New returns.
func New(ctx context.Context, cfg Config) (*ReplicaRouter, error) {
	if cfg.Topology.Primary.Host == "" {
		return nil, conn.NewConfigurationError("primary server not found")
	}
	if cfg.Connector == nil {
		return nil, conn.NewConfigurationError("no connector configured")
	}

	reserved, forwarded, err := conn.ExtractReserved(cfg.Options)
	if err != nil {
		return nil, err
	}
	timeout := reserved.Timeout
	if timeout <= 0 {
		timeout = conn.DefaultTimeout
	}

	secondaries := make([]conn.EndpointConfig, 0, len(cfg.Topology.Secondaries))
	for i, s := range cfg.Topology.Secondaries {
		if s.Host == "" {
			return nil, conn.NewConfigurationError(fmt.Sprintf("secondary server %d has no host", i))
		}
		secondaries = append(secondaries, s.WithDefaults(timeout))
	}

	draw := cfg.Draw
	if draw == nil {
		draw = defaultDraw
	}

	r := &ReplicaRouter{
		primaryEndpoint:    cfg.Topology.Primary.WithDefaults(timeout),
		secondaryEndpoints: secondaries,
		options:            forwarded,
		autoConnect:        reserved.AutoConnect,
		connector:          cfg.Connector,
		draw:               draw,
	}

	Logger.Debugf("Created router:%s", cfg.String())

	if r.autoConnect {
		if err := r.Connect(ctx); err != nil {
			_ = r.Close()
			return nil, err
		}
	}

	return r, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see IRouter)
// --------------------------------------------------------------------------

func (r *ReplicaRouter) Connect(ctx context.Context) error {
	if r.State() == StateConnected {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.State() {
	case StateConnected:
		return nil
	case StateFailed:
		return r.connectErr
	}

	r.state.Store(int32(StateConnecting))
	if err := r.connectTopology(ctx); err != nil {
		r.connectErr = err
		r.state.Store(int32(StateFailed))
		connectErrorTotal.Inc()
		Logger.Errorf("Connect sequence failed after %d of %d connections: %v",
			r.connectedCount, 1+len(r.secondaryEndpoints), err)
		return err
	}
	r.state.Store(int32(StateConnected))
	connectOKTotal.Inc()

	Logger.Infof("Connected to primary %s and %d secondary slot(s) using %s",
		r.primaryEndpoint, len(r.slots), r.connector.GetName())
	return nil
}

func (r *ReplicaRouter) GetConnection(ctx context.Context, class ConnectionClass) (conn.IStoreConnection, error) {
	if r.State() != StateConnected {
		if err := r.Connect(ctx); err != nil {
			return nil, err
		}
	}

	switch class {
	case ClassPrimary:
		getPrimaryTotal.Inc()
		return r.primary, nil
	case ClassReplica:
		getReplicaTotal.Inc()
		idx := r.selectSlot()
		r.slotCounters[idx].Inc()
		return r.slots[idx], nil
	default:
		return nil, conn.NewConfigurationError(fmt.Sprintf("unknown connection class %s", class))
	}
}

func (r *ReplicaRouter) IsConnected() bool {
	return r.State() == StateConnected
}

// Close must not run concurrently with GetConnection: it is meant for teardown.
func (r *ReplicaRouter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connectErr = errClosed
	r.state.Store(int32(StateFailed))

	var errs []error
	seen := make(map[conn.IStoreConnection]struct{}, len(r.slots)+1)
	closeOnce := func(c conn.IStoreConnection) {
		if c == nil {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.Endpoint(), err))
		}
	}

	closeOnce(r.primary)
	for _, c := range r.slots {
		closeOnce(c)
	}

	r.primary = nil
	r.slots = nil
	r.slotCounters = nil
	r.connectedCount = 0

	return errors.Join(errs...)
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// State returns the current connect state.
func (r *ReplicaRouter) State() State {
	return State(r.state.Load())
}

// SecondaryCount returns the number of configured secondary endpoints.
func (r *ReplicaRouter) SecondaryCount() int {
	return len(r.secondaryEndpoints)
}

// ConnectedCount returns the number of physical connections opened so far.
func (r *ReplicaRouter) ConnectedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connectedCount
}

// Endpoints returns the primary and secondary endpoints with defaults applied.
func (r *ReplicaRouter) Endpoints() (primary conn.EndpointConfig, secondaries []conn.EndpointConfig) {
	secondaries = make([]conn.EndpointConfig, len(r.secondaryEndpoints))
	copy(secondaries, r.secondaryEndpoints)
	return r.primaryEndpoint, secondaries
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// connectTopology opens the primary and then every secondary in order.
// It stops at the first failure; connections opened so far are kept for Close.
// The caller must hold mu.
func (r *ReplicaRouter) connectTopology(ctx context.Context) error {
	primary, err := conn.Open(ctx, r.connector, r.primaryEndpoint, r.options)
	if err != nil {
		return err
	}
	r.primary = primary
	r.connectedCount = 1
	openedConnectionsTotal.Inc()

	// without secondaries the primary serves replica reads
	if len(r.secondaryEndpoints) == 0 {
		r.setSlots([]conn.IStoreConnection{primary})
		return nil
	}

	slots := make([]conn.IStoreConnection, 0, len(r.secondaryEndpoints))
	for _, endpoint := range r.secondaryEndpoints {
		c, err := conn.Open(ctx, r.connector, endpoint, r.options)
		if err != nil {
			r.setSlots(slots)
			return err
		}
		slots = append(slots, c)
		r.connectedCount++
		openedConnectionsTotal.Inc()
	}
	r.setSlots(slots)
	return nil
}

// setSlots installs the replica slots and their selection counters.
// The caller must hold mu.
func (r *ReplicaRouter) setSlots(slots []conn.IStoreConnection) {
	counters := make([]*metrics.Counter, len(slots))
	for i, c := range slots {
		counters[i] = replicaSelectedTotal(c.Endpoint().Address())
	}
	r.slots = slots
	r.slotCounters = counters
}

// selectSlot picks the secondary slot for a replica read
func (r *ReplicaRouter) selectSlot() int {
	n := len(r.slots)
	if n == 1 {
		// optimize for single slot
		return 0
	}
	return SelectReplicaSlot(r.draw(), n)
}
