package brokerclient

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/config"
)

func TestDialWithoutTLSIsNeverConnected(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().String()
	_ = lis.Close()

	client, err := Dial(config.Client{Address: addr, ProbeTimeout: 200 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("Dial without TLS material must not fail: %v", err)
	}
	defer client.Close()

	if client.Connected(context.Background()) {
		t.Fatalf("expected no broker")
	}
}

func TestDialRejectsBrokenTLS(t *testing.T) {
	_, err := Dial(config.Client{
		Address: "127.0.0.1:1",
		TLS:     config.TLS{Cert: "not a cert", Key: "not a key", CA: "not a ca"},
	}, nil)
	if err == nil {
		t.Fatalf("expected invalid TLS material to fail")
	}
}
