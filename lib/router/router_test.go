package router

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gitbbrid/yiiredis/lib/conn"
	"github.com/gitbbrid/yiiredis/lib/conn/memconn"
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

var (
	primaryEndpoint = conn.EndpointConfig{Host: "10.0.0.1", Port: 6379}
	replicaHosts    = []string{"10.0.0.2", "10.0.0.3", "10.0.0.4"}
)

// newTestRouter creates a router over the in-memory connector with the given number of secondaries
func newTestRouter(t *testing.T, secondaries int, options conn.Options) (*ReplicaRouter, *memconn.Connector) {
	t.Helper()
	connector := memconn.NewConnector()

	topology := Topology{Primary: primaryEndpoint}
	for i := 0; i < secondaries; i++ {
		topology.Secondaries = append(topology.Secondaries, conn.EndpointConfig{Host: replicaHosts[i]})
	}

	r, err := New(context.Background(), Config{
		Topology:  topology,
		Options:   options,
		Connector: connector,
	})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, connector
}

func mustGet(t *testing.T, r *ReplicaRouter, class ConnectionClass) conn.IStoreConnection {
	t.Helper()
	c, err := r.GetConnection(context.Background(), class)
	if err != nil {
		t.Fatalf("GetConnection(%s) unexpected error: %v", class, err)
	}
	return c
}

// --------------------------------------------------------------------------
// Construction
// --------------------------------------------------------------------------

// TestNewRequiresPrimary tests that a missing primary host is a configuration error without connects
func TestNewRequiresPrimary(t *testing.T) {
	connector := memconn.NewConnector()
	tests := []struct {
		name     string
		topology Topology
	}{
		{name: "Missing primary", topology: Topology{}},
		{name: "Empty host with port", topology: Topology{Primary: conn.EndpointConfig{Port: 6379}}},
		{name: "Secondaries only", topology: Topology{Secondaries: []conn.EndpointConfig{{Host: "10.0.0.2"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(context.Background(), Config{
				Topology:  tt.topology,
				Options:   conn.Options{conn.OptAutoConnect: true},
				Connector: connector,
			})
			if !errors.Is(err, conn.ErrConfiguration) {
				t.Fatalf("New() error = %v, want configuration error", err)
			}
			if r != nil {
				t.Error("New() should not return a router on error")
			}
		})
	}

	if n := connector.Connects(); n != 0 {
		t.Errorf("no connection should be attempted, got %d", n)
	}
}

// TestNewInvalidConfig tests the other construction checks
func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "No connector",
			cfg:  Config{Topology: Topology{Primary: primaryEndpoint}},
		},
		{
			name: "Secondary without host",
			cfg: Config{
				Topology:  Topology{Primary: primaryEndpoint, Secondaries: []conn.EndpointConfig{{Port: 6380}}},
				Connector: memconn.NewConnector(),
			},
		},
		{
			name: "Timeout of wrong type",
			cfg: Config{
				Topology:  Topology{Primary: primaryEndpoint},
				Options:   conn.Options{conn.OptTimeout: "soon"},
				Connector: memconn.NewConnector(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(context.Background(), tt.cfg); !errors.Is(err, conn.ErrConfiguration) {
				t.Errorf("New() error = %v, want configuration error", err)
			}
		})
	}
}

// TestNewAppliesDefaults tests the default port and the timeout option
func TestNewAppliesDefaults(t *testing.T) {
	r, _ := newTestRouter(t, 1, conn.Options{conn.OptTimeout: 3})

	primary, secondaries := r.Endpoints()
	if primary.Port != 6379 || primary.Timeout != 3*time.Second {
		t.Errorf("primary = %+v, want port 6379 and timeout 3s", primary)
	}
	if secondaries[0].Port != 6379 || secondaries[0].Timeout != 3*time.Second {
		t.Errorf("secondary = %+v, want port 6379 and timeout 3s", secondaries[0])
	}
}

// TestNewIsLazy tests that construction without autoConnect opens nothing
func TestNewIsLazy(t *testing.T) {
	r, connector := newTestRouter(t, 3, nil)

	if r.IsConnected() {
		t.Error("router should not be connected after New")
	}
	if r.State() != StateUnconnected {
		t.Errorf("State() = %s, want unconnected", r.State())
	}
	if n := connector.Connects(); n != 0 {
		t.Errorf("Connects() = %d, want 0", n)
	}
	if r.SecondaryCount() != 3 {
		t.Errorf("SecondaryCount() = %d, want 3", r.SecondaryCount())
	}
}

// TestAutoConnect tests that autoConnect connects the whole topology in New
func TestAutoConnect(t *testing.T) {
	r, connector := newTestRouter(t, 2, conn.Options{conn.OptAutoConnect: true})

	if !r.IsConnected() {
		t.Fatal("router should be connected after New with autoConnect")
	}
	if n := connector.Connects(); n != 3 {
		t.Errorf("Connects() = %d, want 3", n)
	}
}

// TestAutoConnectFailure tests that New returns the connect error
func TestAutoConnectFailure(t *testing.T) {
	connector := memconn.NewConnector()
	connector.SetUnreachable(primaryEndpoint, true)

	r, err := New(context.Background(), Config{
		Topology:  Topology{Primary: primaryEndpoint},
		Options:   conn.Options{conn.OptAutoConnect: true},
		Connector: connector,
	})
	if !errors.Is(err, conn.ErrConnection) {
		t.Fatalf("New() error = %v, want connection error", err)
	}
	if r != nil {
		t.Error("New() should not return a router on error")
	}
}

// --------------------------------------------------------------------------
// Routing
// --------------------------------------------------------------------------

// TestReplicaWithoutSecondaries tests that replica reads use the primary handle
func TestReplicaWithoutSecondaries(t *testing.T) {
	r, connector := newTestRouter(t, 0, nil)

	primary := mustGet(t, r, ClassPrimary)
	for i := 0; i < 50; i++ {
		if replica := mustGet(t, r, ClassReplica); replica != primary {
			t.Fatalf("replica handle %v differs from primary %v", replica.Endpoint(), primary.Endpoint())
		}
	}
	if n := connector.Connects(); n != 1 {
		t.Errorf("Connects() = %d, want 1", n)
	}
}

// TestReplicaWithOneSecondary tests that the single secondary serves every replica read
func TestReplicaWithOneSecondary(t *testing.T) {
	r, _ := newTestRouter(t, 1, nil)

	primary := mustGet(t, r, ClassPrimary)
	first := mustGet(t, r, ClassReplica)
	if first == primary {
		t.Fatal("replica read should not be served by the primary")
	}
	if first.Endpoint().Host != "10.0.0.2" {
		t.Errorf("replica host = %s, want 10.0.0.2", first.Endpoint().Host)
	}
	for i := 0; i < 50; i++ {
		if c := mustGet(t, r, ClassReplica); c != first {
			t.Fatalf("call %d returned a different handle", i)
		}
	}
}

// TestExampleTopology tests the three replica scenario end to end
func TestExampleTopology(t *testing.T) {
	r, connector := newTestRouter(t, 3, conn.Options{conn.OptAutoConnect: false})

	primary := mustGet(t, r, ClassPrimary)
	if primary.Endpoint().Host != "10.0.0.1" {
		t.Errorf("primary host = %s, want 10.0.0.1", primary.Endpoint().Host)
	}
	if !r.IsConnected() {
		t.Error("router should be connected after the first GetConnection")
	}
	if n := connector.Connects(); n != 4 {
		t.Errorf("Connects() = %d, want 4", n)
	}
	if n := r.ConnectedCount(); n != 4 {
		t.Errorf("ConnectedCount() = %d, want 4", n)
	}

	seen := make(map[string]int)
	for i := 0; i < 300; i++ {
		c := mustGet(t, r, ClassReplica)
		if c == primary || c.Endpoint().Host == "10.0.0.1" {
			t.Fatal("replica read was routed to the primary")
		}
		seen[c.Endpoint().Host]++
	}
	for _, host := range replicaHosts {
		if seen[host] == 0 {
			t.Errorf("secondary %s was never selected", host)
		}
	}
	if n := connector.Connects(); n != 4 {
		t.Errorf("GetConnection opened new connections: Connects() = %d, want 4", n)
	}
}

// TestDrawOverride tests that a fixed draw makes the selection reproducible
func TestDrawOverride(t *testing.T) {
	r, err := New(context.Background(), Config{
		Topology: Topology{
			Primary: primaryEndpoint,
			Secondaries: []conn.EndpointConfig{
				{Host: replicaHosts[0]}, {Host: replicaHosts[1]}, {Host: replicaHosts[2]},
			},
		},
		Connector: memconn.NewConnector(),
		Draw:      func() int64 { return 42 },
	})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	defer r.Close()

	want := replicaHosts[SelectReplicaSlot(42, 3)]
	for i := 0; i < 10; i++ {
		if c := mustGet(t, r, ClassReplica); c.Endpoint().Host != want {
			t.Fatalf("replica host = %s, want %s", c.Endpoint().Host, want)
		}
	}
}

// TestReplicaSelectionCounters tests that each replica read counts for the selected endpoint
func TestReplicaSelectionCounters(t *testing.T) {
	r, err := New(context.Background(), Config{
		Topology: Topology{
			Primary:     primaryEndpoint,
			Secondaries: []conn.EndpointConfig{{Host: replicaHosts[0]}, {Host: replicaHosts[1]}},
		},
		Connector: memconn.NewConnector(),
		Draw:      func() int64 { return 42 },
	})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	defer r.Close()

	selected := conn.EndpointConfig{Host: replicaHosts[SelectReplicaSlot(42, 2)], Port: 6379}
	counter := replicaSelectedTotal(selected.Address())
	before := counter.Get()

	for i := 0; i < 5; i++ {
		mustGet(t, r, ClassReplica)
	}
	if got := counter.Get() - before; got != 5 {
		t.Errorf("selections counted for %s = %d, want 5", selected, got)
	}
	if len(r.slotCounters) != len(r.slots) {
		t.Errorf("%d counters for %d slots", len(r.slotCounters), len(r.slots))
	}
}

// TestUnknownClass tests that an invalid connection class is rejected
func TestUnknownClass(t *testing.T) {
	r, _ := newTestRouter(t, 0, nil)
	if _, err := r.GetConnection(context.Background(), ConnectionClass(7)); !errors.Is(err, conn.ErrConfiguration) {
		t.Errorf("GetConnection() error = %v, want configuration error", err)
	}
}

// TestOptionsForwarded tests that options reach every connection and reserved keys do not
func TestOptionsForwarded(t *testing.T) {
	r, _ := newTestRouter(t, 2, conn.Options{
		"clientName":        "app",
		conn.OptTimeout:     1,
		conn.OptAutoConnect: true,
	})

	type named interface{ ClientName() string }
	for _, class := range []ConnectionClass{ClassPrimary, ClassReplica} {
		c, ok := mustGet(t, r, class).(named)
		if !ok {
			t.Fatalf("%s connection does not expose its client name", class)
		}
		if c.ClientName() != "app" {
			t.Errorf("%s client name = %q, want app", class, c.ClientName())
		}
	}
}

// --------------------------------------------------------------------------
// Connect sequence
// --------------------------------------------------------------------------

// TestSingleConnectSequence tests that repeated calls connect exactly once
func TestSingleConnectSequence(t *testing.T) {
	r, connector := newTestRouter(t, 2, nil)

	for i := 0; i < 20; i++ {
		mustGet(t, r, ClassReplica)
		mustGet(t, r, ClassPrimary)
		if err := r.Connect(context.Background()); err != nil {
			t.Fatalf("Connect() unexpected error: %v", err)
		}
	}
	if n := connector.Connects(); n != 3 {
		t.Errorf("Connects() = %d, want 3", n)
	}
}

// TestConcurrentFirstUse tests that concurrent callers share one connect sequence
func TestConcurrentFirstUse(t *testing.T) {
	r, connector := newTestRouter(t, 3, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			class := ClassPrimary
			if i%2 == 0 {
				class = ClassReplica
			}
			if _, err := r.GetConnection(context.Background(), class); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("GetConnection() unexpected error: %v", err)
	}
	if n := connector.Connects(); n != 4 {
		t.Errorf("Connects() = %d, want 4", n)
	}
}

// TestPrimaryFailure tests that a failed primary stops the sequence
func TestPrimaryFailure(t *testing.T) {
	r, connector := newTestRouter(t, 3, nil)
	connector.SetUnreachable(primaryEndpoint.WithDefaults(0), true)

	_, err := r.GetConnection(context.Background(), ClassReplica)
	if !errors.Is(err, conn.ErrConnection) {
		t.Fatalf("GetConnection() error = %v, want connection error", err)
	}
	if r.IsConnected() {
		t.Error("router should not be connected")
	}
	if r.State() != StateFailed {
		t.Errorf("State() = %s, want failed", r.State())
	}
	if n := connector.Connects(); n != 1 {
		t.Errorf("secondaries should not be attempted: Connects() = %d, want 1", n)
	}

	// the failure is final, even if the endpoint comes back
	connector.SetUnreachable(primaryEndpoint.WithDefaults(0), false)
	if err2 := r.Connect(context.Background()); !errors.Is(err2, conn.ErrConnection) {
		t.Errorf("Connect() after failure = %v, want the original connection error", err2)
	}
	if n := connector.Connects(); n != 1 {
		t.Errorf("failed router should not reconnect: Connects() = %d, want 1", n)
	}
}

// TestSecondaryFailure tests that the first failing secondary stops the sequence
func TestSecondaryFailure(t *testing.T) {
	r, connector := newTestRouter(t, 3, nil)
	connector.SetUnreachable(conn.EndpointConfig{Host: "10.0.0.3", Port: 6379}, true)

	err := r.Connect(context.Background())
	if !errors.Is(err, conn.ErrConnection) {
		t.Fatalf("Connect() error = %v, want connection error", err)
	}

	var cerr *conn.Error
	if !errors.As(err, &cerr) || cerr.Endpoint != "10.0.0.3:6379" {
		t.Errorf("error should name 10.0.0.3:6379, got %v", err)
	}
	if n := connector.Connects(); n != 3 {
		t.Errorf("Connects() = %d, want 3 (primary, 10.0.0.2, 10.0.0.3)", n)
	}
	if n := r.ConnectedCount(); n != 2 {
		t.Errorf("ConnectedCount() = %d, want 2", n)
	}
	if r.IsConnected() {
		t.Error("router should not be connected")
	}
}

// --------------------------------------------------------------------------
// Close
// --------------------------------------------------------------------------

// TestClose tests that Close releases every handle and disables the router
func TestClose(t *testing.T) {
	r, _ := newTestRouter(t, 2, nil)
	ctx := context.Background()

	primary := mustGet(t, r, ClassPrimary)
	replica := mustGet(t, r, ClassReplica)

	if err := r.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}
	if r.IsConnected() {
		t.Error("router should not be connected after Close")
	}
	if _, err := primary.Do(ctx, "ping"); err == nil {
		t.Error("primary handle should be closed")
	}
	if _, err := replica.Do(ctx, "ping"); err == nil {
		t.Error("replica handle should be closed")
	}
	if _, err := r.GetConnection(ctx, ClassPrimary); !errors.Is(err, errClosed) {
		t.Errorf("GetConnection() after Close = %v, want %v", err, errClosed)
	}
}

// TestCloseUnconnected tests that closing an unused router is harmless
func TestCloseUnconnected(t *testing.T) {
	r, connector := newTestRouter(t, 1, nil)
	if err := r.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}
	if n := connector.Connects(); n != 0 {
		t.Errorf("Connects() = %d, want 0", n)
	}
}
