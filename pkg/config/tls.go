package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/open-io/oio-sharding/pkg/oiolog"
)

// TLSConfig describes how to reach an oio-proxy served over HTTPS.
//
// Mode is one of:
//   - "disable": plain HTTP, no TLS configuration is built;
//   - "insecure": TLS without verification of the proxy certificate;
//   - "verify": TLS, the proxy certificate is verified against RootCertFile
//     (or the system pool) and the host name.
type TLSConfig struct {
	Mode         string `json:"mode" toml:"mode" yaml:"mode"`
	KeyFile      string `json:"key_file" toml:"key_file" yaml:"key_file"`
	CertFile     string `json:"cert_file" toml:"cert_file" yaml:"cert_file"`
	RootCertFile string `json:"root_cert_file" toml:"root_cert_file" yaml:"root_cert_file"`
}

// Init builds the client TLS configuration, nil when TLS is disabled.
func (c *TLSConfig) Init() (*tls.Config, error) {
	if c == nil || c.Mode == "" {
		c = &TLSConfig{Mode: "disable"}
	}

	if (c.CertFile != "" && c.KeyFile == "") || (c.CertFile == "" && c.KeyFile != "") {
		return nil, fmt.Errorf(`both "cert_file" and "key_file" are required`)
	}

	tlsConfig := &tls.Config{}

	switch c.Mode {
	case "disable":
		return nil, nil
	case "insecure":
		// codeql[go/disabled-certificate-verification]
		tlsConfig.InsecureSkipVerify = true
	case "verify":
	default:
		return nil, fmt.Errorf("tls mode %q is invalid", c.Mode)
	}

	if c.RootCertFile != "" {
		caCert, err := os.ReadFile(c.RootCertFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("unable to add CA to cert pool")
		}
		tlsConfig.RootCAs = pool
	}

	if c.CertFile != "" {
		oiolog.Zero.Debug().
			Str("cert_file", c.CertFile).
			Str("key_file", c.KeyFile).
			Msg("loading tls")
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("unable to load X509 key pair: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}
