package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTLS is returned when a TLS config lacks cert, key or CA.
var ErrMissingTLS = errors.New("missing TLS material; require tls.cert, tls.key and tls.ca")

// TLS holds PEM material, each value inline or "@path".
type TLS struct {
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
	CA   string `mapstructure:"ca"`
}

func (t TLS) load() (tls.Certificate, *x509.CertPool, error) {
	if strings.TrimSpace(t.Cert) == "" || strings.TrimSpace(t.Key) == "" || strings.TrimSpace(t.CA) == "" {
		return tls.Certificate{}, nil, ErrMissingTLS
	}
	certPEM, err := ReadPEM(t.Cert)
	if err != nil {
		return tls.Certificate{}, nil, err
	}
	keyPEM, err := ReadPEM(t.Key)
	if err != nil {
		return tls.Certificate{}, nil, err
	}
	caPEM, err := ReadPEM(t.CA)
	if err != nil {
		return tls.Certificate{}, nil, err
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("failed to parse TLS key pair: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return tls.Certificate{}, nil, fmt.Errorf("failed to parse CA certificate")
	}
	return cert, pool, nil
}

// ClientConfig builds a TLS 1.3 client config presenting the client certificate.
func (t TLS) ClientConfig() (*tls.Config, error) {
	cert, pool, err := t.load()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// ServerConfig builds a TLS 1.3 server config that requires and verifies client certificates.
func (t TLS) ServerConfig() (*tls.Config, error) {
	cert, pool, err := t.load()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS13,
	}, nil
}
