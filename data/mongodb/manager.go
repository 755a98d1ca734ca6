package mongodb

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/ncobase/keyset/config"
	"github.com/ncobase/keyset/log"
	"github.com/ncobase/keyset/paging"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNoMaster          = errors.New("master mongodb configuration is required")
	ErrInvalidStrategy   = errors.New("invalid load balancing strategy")
	ErrNoAvailableSlaves = errors.New("no available slaves")
)

// Manager holds the master connection used for writes and the slave
// connections reads are balanced across.
type Manager struct {
	master   *mongo.Client
	slaves   []*mongo.Client
	strategy LoadBalancer
	database string
	breaker  *gobreaker.CircuitBreaker
	mutex    sync.RWMutex
}

// NewManager connects to the configured master and slaves. Slaves that
// cannot be reached are skipped; without any, reads go to the master.
func NewManager(ctx context.Context, conf *config.MongoDB) (*Manager, error) {
	if conf == nil || conf.Master == nil || conf.Master.URI == "" {
		return nil, ErrNoMaster
	}

	strategy, err := newBalancer(conf.Strategy, conf.Slaves)
	if err != nil {
		return nil, err
	}

	master, err := newClient(ctx, conf.Master, conf)
	if err != nil {
		return nil, err
	}

	var slaves []*mongo.Client
	for i, slaveCfg := range conf.Slaves {
		slave, err := newClient(ctx, slaveCfg, conf)
		if err != nil {
			log.Warnf(ctx, "Failed to connect to slave MongoDB %d: %v", i, err)
			continue
		}
		slaves = append(slaves, slave)
	}

	if len(slaves) == 0 {
		slaves = append(slaves, master)
	}

	return &Manager{
		master:   master,
		slaves:   slaves,
		strategy: strategy,
		database: conf.Database,
		breaker:  NewBreaker("mongodb", conf.Breaker),
	}, nil
}

func newBalancer(strategy string, nodes []*config.MongoNode) (LoadBalancer, error) {
	switch strategy {
	case "round_robin", "":
		return NewRoundRobinBalancer(), nil
	case "random":
		return &RandomBalancer{}, nil
	case "weight":
		return NewWeightBalancer(nodes), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, strategy)
}

// NewBreaker returns a circuit breaker tripping after conf.MaxFailures
// consecutive failures, or nil when conf disables it.
func NewBreaker(name string, conf *config.Breaker) *gobreaker.CircuitBreaker {
	if !conf.Enabled() {
		return nil
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: conf.MaxRequests,
		Interval:    conf.Interval,
		Timeout:     conf.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= conf.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf(context.Background(), "Circuit breaker '%s' state changed from %v to %v", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, mongo.ErrNoDocuments)
		},
	})
}

// LoadBalancer picks the slave serving the next read.
type LoadBalancer interface {
	Next([]*mongo.Client) (*mongo.Client, error)
}

type RoundRobinBalancer struct {
	current *uint64
}

func NewRoundRobinBalancer() *RoundRobinBalancer {
	var counter uint64
	return &RoundRobinBalancer{
		current: &counter,
	}
}

func (rb *RoundRobinBalancer) Next(slaves []*mongo.Client) (*mongo.Client, error) {
	if len(slaves) == 0 {
		return nil, ErrNoAvailableSlaves
	}

	next := atomic.AddUint64(rb.current, 1) % uint64(len(slaves))
	return slaves[next], nil
}

type RandomBalancer struct{}

func (rb *RandomBalancer) Next(slaves []*mongo.Client) (*mongo.Client, error) {
	if len(slaves) == 0 {
		return nil, ErrNoAvailableSlaves
	}

	idx := rand.Intn(len(slaves))
	return slaves[idx], nil
}

type WeightBalancer struct {
	weights []int
	current *uint64
}

func NewWeightBalancer(nodes []*config.MongoNode) *WeightBalancer {
	weights := make([]int, len(nodes))
	for i, node := range nodes {
		weights[i] = node.Weight
		if weights[i] <= 0 {
			weights[i] = 1
		}
	}

	var counter uint64
	return &WeightBalancer{
		weights: weights,
		current: &counter,
	}
}

func (wb *WeightBalancer) Next(slaves []*mongo.Client) (*mongo.Client, error) {
	if len(slaves) == 0 {
		return nil, ErrNoAvailableSlaves
	}

	// Weights belong to the configured slaves; once unhealthy ones were
	// dropped they no longer line up, so fall back to rotation.
	if len(wb.weights) != len(slaves) {
		next := atomic.AddUint64(wb.current, 1) % uint64(len(slaves))
		return slaves[next], nil
	}

	totalWeight := 0
	for _, w := range wb.weights {
		totalWeight += w
	}

	next := atomic.AddUint64(wb.current, 1) % uint64(totalWeight)

	var accumulator int
	for i, w := range wb.weights {
		accumulator += w
		if uint64(accumulator) > next {
			return slaves[i], nil
		}
	}

	return slaves[0], nil
}

// Master returns the write connection.
func (m *Manager) Master() *mongo.Client {
	if m == nil {
		return nil
	}
	return m.master
}

// Slave returns a read connection, falling back to the master when no
// slave answers.
func (m *Manager) Slave(ctx context.Context) *mongo.Client {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if len(m.slaves) == 0 {
		return m.master
	}

	slave, err := m.strategy.Next(m.slaves)
	if err != nil {
		return m.master
	}

	if slave != m.master {
		if err := slave.Ping(ctx, nil); err != nil {
			return m.master
		}
	}

	return slave
}

// Database returns the configured database on the master, or on a slave
// for reads.
func (m *Manager) Database(ctx context.Context, readOnly bool) *mongo.Database {
	if readOnly {
		return m.Slave(ctx).Database(m.database)
	}
	return m.master.Database(m.database)
}

// Collection returns the named collection of the configured database.
func (m *Manager) Collection(ctx context.Context, name string, readOnly bool) *mongo.Collection {
	return m.Database(ctx, readOnly).Collection(name)
}

// Find starts a paginable query on the named collection of a read
// connection, guarded by the configured circuit breaker.
func (m *Manager) Find(ctx context.Context, name string, filter bson.M) *Query[Document] {
	return NewQuery[Document](m.Collection(ctx, name, true), filter, WithBreaker(m.breaker))
}

// Health pings every connection and drops the slaves that do not answer.
func (m *Manager) Health(ctx context.Context) error {
	if err := m.master.Ping(ctx, nil); err != nil {
		return fmt.Errorf("master mongodb health check failed: %w", err)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	var healthySlaves []*mongo.Client
	for _, slave := range m.slaves {
		if slave == m.master {
			continue
		}
		if err := slave.Ping(ctx, nil); err != nil {
			log.Warnf(ctx, "Slave mongodb health check failed: %v", err)
			continue
		}
		healthySlaves = append(healthySlaves, slave)
	}

	m.slaves = healthySlaves

	if len(m.slaves) == 0 {
		log.Debug(ctx, "No healthy slave mongodb available, using master for reads")
		m.slaves = append(m.slaves, m.master)
	}

	return nil
}

// Close disconnects every connection.
func (m *Manager) Close(ctx context.Context) error {
	var errs []error

	if err := m.master.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error closing master connection: %w", err))
	}

	for i, slave := range m.slaves {
		if slave != m.master {
			if err := slave.Disconnect(ctx); err != nil {
				errs = append(errs, fmt.Errorf("error closing slave %d connection: %w", i, err))
			}
		}
	}

	return errors.Join(errs...)
}

func newClient(ctx context.Context, node *config.MongoNode, conf *config.MongoDB) (*mongo.Client, error) {
	if node == nil || node.URI == "" {
		return nil, errors.New("mongodb configuration is nil or empty")
	}

	clientOptions := options.Client().ApplyURI(node.URI)
	if conf.Timeout > 0 {
		clientOptions.SetConnectTimeout(conf.Timeout).SetServerSelectionTimeout(conf.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("MongoDB connect error: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("MongoDB ping error: %w", err)
	}

	return client, nil
}

// Query starts a paginable query on the named collection.
func (m *Manager) Query(ctx context.Context, name string, filter bson.M) (paging.Query[bson.M], error) {
	return m.Find(ctx, name, filter), nil
}
