package brokerclient

import (
	"errors"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/config"
)

// Dial creates a client authenticated with the mTLS material in cfg. Without
// TLS material the client still works but the broker will refuse every call,
// so the application treats it as not running.
func Dial(cfg config.Client, logger *log.Logger) (*Client, error) {
	creds, err := transportCredentials(cfg.TLS)
	if errors.Is(err, config.ErrMissingTLS) {
		if logger != nil {
			logger.Warn("no broker TLS material configured; broker will be unreachable")
		}
		creds, err = insecure.NewCredentials(), nil
	}
	if err != nil {
		return nil, err
	}
	return New(cfg.Address, Options{
		ProbeTimeout: cfg.ProbeTimeout,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
		DialOptions:  []grpc.DialOption{grpc.WithTransportCredentials(creds)},
	})
}

func transportCredentials(t config.TLS) (credentials.TransportCredentials, error) {
	tlsConfig, err := t.ClientConfig()
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(tlsConfig), nil
}
