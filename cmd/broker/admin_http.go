package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/permission"
)

// PermissionsView is the body of GET /permissions.
type PermissionsView struct {
	Decisions []permission.Decision       `json:"decisions"`
	Pending   []permission.PendingRequest `json:"pending"`
}

// DecisionView is the body returned after a decision.
type DecisionView struct {
	Identity string `json:"identity"`
	Granted  bool   `json:"granted"`
	Resolved int    `json:"resolved"`
}

// NewAdminRouter exposes the permission registry to the operator.
func NewAdminRouter(registry *permission.Registry, logger *log.Logger) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/permissions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, PermissionsView{
			Decisions: registry.Decisions(),
			Pending:   registry.Pending(),
		})
	}).Methods(http.MethodGet)

	decide := func(granted bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity := mux.Vars(r)["identity"]
			resolved := registry.Decide(identity, granted)
			logger.Info("operator decision", "identity", identity, "granted", granted, "resolved", resolved)
			writeJSON(w, http.StatusOK, DecisionView{Identity: identity, Granted: granted, Resolved: resolved})
		}
	}
	r.HandleFunc("/permissions/{identity}/grant", decide(true)).Methods(http.MethodPost)
	r.HandleFunc("/permissions/{identity}/deny", decide(false)).Methods(http.MethodPost)

	r.HandleFunc("/permissions/{identity}", func(w http.ResponseWriter, r *http.Request) {
		identity := mux.Vars(r)["identity"]
		if !registry.Revoke(identity) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no decision for " + identity})
			return
		}
		logger.Info("operator revoked decision", "identity", identity)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	return r
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// AdminServer serves the admin router on a unix socket only root can reach.
type AdminServer struct {
	lis net.Listener
	srv *http.Server
}

func NewAdminServer(socketPath string, handler http.Handler) (*AdminServer, error) {
	lis, err := listenUnix(socketPath)
	if err != nil {
		return nil, err
	}
	return &AdminServer{
		lis: lis,
		srv: &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second},
	}, nil
}

func (a *AdminServer) Serve() error {
	err := a.srv.Serve(a.lis)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *AdminServer) Close(ctx context.Context) error {
	return a.srv.Shutdown(ctx)
}

func listenUnix(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove stale socket: %w", err)
	}
	lis, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = lis.Close()
		return nil, fmt.Errorf("failed to restrict socket permissions: %w", err)
	}
	return lis, nil
}
