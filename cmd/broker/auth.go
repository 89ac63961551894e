package main

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type identityContextKey struct{}

func identityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(string)
	return identity, ok
}

// identityFromTLS returns the trust domain of the first SPIFFE URI SAN of the
// peer certificate, e.g. spiffe://gestureback -> "gestureback".
func identityFromTLS(ctx context.Context) (string, bool) {
	if identity, ok := identityFromContext(ctx); ok {
		return identity, true
	}

	p, ok := peer.FromContext(ctx)
	if !ok || p == nil {
		return "", false
	}
	ti, ok := p.AuthInfo.(credentials.TLSInfo)
	if !ok {
		return "", false
	}
	state := ti.State
	if len(state.PeerCertificates) == 0 || state.PeerCertificates[0] == nil {
		return "", false
	}

	for _, uri := range state.PeerCertificates[0].URIs {
		if uri != nil && uri.Scheme == "spiffe" && uri.Host != "" {
			return uri.Host, true
		}
	}
	return "", false
}

func withIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

var errNoIdentity = status.Error(codes.Unauthenticated, "client must have SPIFFE ID")

// identityUnary rejects callers without a SPIFFE ID and stores it in the context.
func identityUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	identity, ok := identityFromTLS(ctx)
	if !ok {
		return nil, errNoIdentity
	}
	return handler(withIdentity(ctx, identity), req)
}

type streamWithCtx struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *streamWithCtx) Context() context.Context { return s.ctx }

// identityStream is identityUnary for streaming calls.
func identityStream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	identity, ok := identityFromTLS(ss.Context())
	if !ok {
		return errNoIdentity
	}
	return handler(srv, &streamWithCtx{ServerStream: ss, ctx: withIdentity(ss.Context(), identity)})
}

// requirePermission returns the caller identity if it holds a grant.
func (s *BrokerServer) requirePermission(ctx context.Context) (string, error) {
	identity, ok := identityFromContext(ctx)
	if !ok {
		return "", errNoIdentity
	}
	if !s.permissions.Check(identity) {
		return "", status.Errorf(codes.PermissionDenied, "%s has no broker permission", identity)
	}
	return identity, nil
}

// checkOwnership allows only the identity that spawned a process to touch it.
func (s *BrokerServer) checkOwnership(ctx context.Context, processIdentifier string) error {
	identity, ok := identityFromContext(ctx)
	if !ok {
		return errNoIdentity
	}

	s.mu.RLock()
	owner, known := s.owners[processIdentifier]
	s.mu.RUnlock()

	if !known {
		return status.Errorf(codes.NotFound, "process not found: %s", processIdentifier)
	}
	if owner != identity {
		return status.Error(codes.PermissionDenied, "only the owner can access the process")
	}
	return nil
}
