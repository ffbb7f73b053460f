package kv

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEtcdConfig(t *testing.T) {
	cfg := DefaultEtcdConfig()

	assert.NotEmpty(t, cfg.Endpoints)
	assert.Positive(t, cfg.DialTimeout)
	assert.Positive(t, cfg.MaxCallSendMsgSize)
	assert.Positive(t, cfg.MaxCallRecvMsgSize)
	assert.NoError(t, cfg.Validate())
}

func TestEtcdConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *EtcdConfig)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*EtcdConfig) {}},
		{name: "empty endpoints", mutate: func(c *EtcdConfig) { c.Endpoints = nil }, wantErr: true},
		{name: "blank endpoint", mutate: func(c *EtcdConfig) { c.Endpoints = []string{" "} }, wantErr: true},
		{name: "zero dial timeout", mutate: func(c *EtcdConfig) { c.DialTimeout = 0 }, wantErr: true},
		{name: "negative dial timeout", mutate: func(c *EtcdConfig) { c.DialTimeout = -time.Second }, wantErr: true},
		{name: "partial tls", mutate: func(c *EtcdConfig) { c.CertFile = "cert.pem" }, wantErr: true},
		{
			name: "full tls",
			mutate: func(c *EtcdConfig) {
				c.CertFile, c.KeyFile, c.CAFile = "cert.pem", "key.pem", "ca.pem"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEtcdConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfig))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEtcdConfigToClientConfig(t *testing.T) {
	cfg := DefaultEtcdConfig()
	cfg.Username = "root"
	cfg.Password = "secret"

	clientCfg, err := cfg.ToClientConfig()
	require.NoError(t, err)

	assert.Equal(t, cfg.Endpoints, clientCfg.Endpoints)
	assert.Equal(t, cfg.DialTimeout, clientCfg.DialTimeout)
	assert.Equal(t, "root", clientCfg.Username)
	assert.Equal(t, "secret", clientCfg.Password)
	assert.Nil(t, clientCfg.TLS)
	assert.Len(t, clientCfg.DialOptions, 2)
	assert.True(t, clientCfg.RejectOldCluster)

	cfg.Password = ""
	clientCfg, err = cfg.ToClientConfig()
	require.NoError(t, err)
	assert.Empty(t, clientCfg.Username)
}

func TestEtcdConfigMissingTLSFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultEtcdConfig()
	cfg.CertFile = filepath.Join(dir, "cert.pem")
	cfg.KeyFile = filepath.Join(dir, "key.pem")
	cfg.CAFile = filepath.Join(dir, "ca.pem")

	_, err := cfg.ToClientConfig()
	assert.Error(t, err)
}

func TestNewEtcdStoreInvalidConfig(t *testing.T) {
	_, err := NewEtcdStore(EtcdConfig{})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
