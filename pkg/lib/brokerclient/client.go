// Package brokerclient talks to the privilege broker over gRPC and exposes
// it to the application as a lib.PrivilegedExec.
package brokerclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"

	apiv1 "github.com/SanjoDeundiak/gestureback/api/v1"
	"github.com/SanjoDeundiak/gestureback/pkg/lib"
)

const (
	DefaultProbeTimeout = 2 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

type Options struct {
	// ProbeTimeout bounds each connectivity and permission check.
	ProbeTimeout time.Duration
	// PollInterval is how often OnConnected listeners re-probe the broker.
	PollInterval time.Duration
	Logger       *log.Logger
	DialOptions  []grpc.DialOption
}

// Client is safe for concurrent use.
type Client struct {
	conn   *grpc.ClientConn
	api    apiv1.BrokerServiceClient
	health healthpb.HealthClient
	opts   Options
	logger *log.Logger

	mu        sync.Mutex
	listeners map[int]func(requestCode int, granted bool)
	nextID    int

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ lib.PrivilegedExec = (*Client)(nil)

// New creates a client for address. The connection is established lazily;
// opts.DialOptions must supply transport credentials.
func New(address string, opts Options) (*Client, error) {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	conn, err := grpc.NewClient(address, opts.DialOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create broker client: %w", err)
	}
	return &Client{
		conn:      conn,
		api:       apiv1.NewBrokerServiceClient(conn),
		health:    healthpb.NewHealthClient(conn),
		opts:      opts,
		logger:    logger.WithPrefix("broker"),
		listeners: make(map[int]func(int, bool)),
		closed:    make(chan struct{}),
	}, nil
}

// Close stops background probes and pending permission requests and closes
// the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
		c.wg.Wait()
	})
	return err
}

// Ping returns the broker's self-description.
func (c *Client) Ping(ctx context.Context) (*apiv1.PingResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ProbeTimeout)
	defer cancel()
	return c.api.Ping(ctx, &emptypb.Empty{})
}

// Connected reports whether the broker answers its health check.
func (c *Client) Connected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ProbeTimeout)
	defer cancel()
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: apiv1.BrokerService_ServiceName})
	if err != nil {
		c.logger.Debug("broker health check failed", "class", lib.Classify(err), "err", err)
		return false
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
}

// PermissionGranted reports whether the broker currently grants this client.
func (c *Client) PermissionGranted(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ProbeTimeout)
	defer cancel()
	resp, err := c.api.CheckPermission(ctx, &emptypb.Empty{})
	if err != nil {
		c.logger.Debug("permission check failed", "class", lib.Classify(err), "err", err)
		return false
	}
	return resp.Granted
}

// RequestPermission asks the broker for permission in the background. The
// outcome, including failure to reach the broker as a denial, goes to the
// OnPermissionResult listeners.
func (c *Client) RequestPermission(requestCode int) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := c.closeContext()
		defer cancel()

		granted := false
		resp, err := c.api.RequestPermission(ctx, &apiv1.PermissionRequest{RequestCode: int32(requestCode)})
		if err != nil {
			c.logger.Warn("permission request failed", "class", lib.Classify(err), "err", err)
			if c.isClosed() {
				return
			}
		} else {
			granted = resp.Granted
		}
		c.notify(requestCode, granted)
	}()
}

// OnPermissionResult registers listener and returns a function that removes it.
// Listeners run on a background goroutine.
func (c *Client) OnPermissionResult(listener func(requestCode int, granted bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = listener
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) notify(requestCode int, granted bool) {
	c.mu.Lock()
	listeners := make([]func(int, bool), 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()
	for _, l := range listeners {
		l(requestCode, granted)
	}
}

// OnConnected calls listener once, on a background goroutine, as soon as the
// broker answers its health check. A reachable broker fires it right away.
func (c *Client) OnConnected(listener func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := c.closeContext()
		defer cancel()

		ticker := time.NewTicker(c.opts.PollInterval)
		defer ticker.Stop()
		for {
			if c.Connected(ctx) {
				listener()
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// closeContext returns a context that is cancelled by Close.
func (c *Client) closeContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-c.closed:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func (c *Client) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

var errClosed = errors.New("broker client closed")
