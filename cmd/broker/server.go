package main

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	apiv1 "github.com/SanjoDeundiak/gestureback/api/v1"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/permission"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/runner"
)

// BrokerServer spawns processes for clients holding a permission grant and
// limits every process operation to the identity that spawned it.
type BrokerServer struct {
	apiv1.UnimplementedBrokerServiceServer

	runner      *runner.Runner
	permissions *permission.Registry
	logger      *log.Logger

	mu     sync.RWMutex
	owners map[string]string
}

func NewBrokerServer(r *runner.Runner, permissions *permission.Registry, logger *log.Logger) *BrokerServer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &BrokerServer{
		runner:      r,
		permissions: permissions,
		logger:      logger.WithPrefix("server"),
		owners:      make(map[string]string),
	}
}

func (s *BrokerServer) setOwner(processIdentifier, identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[processIdentifier] = identity
}

func (s *BrokerServer) forget(processIdentifier string) {
	s.runner.Forget(processIdentifier)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owners, processIdentifier)
}
