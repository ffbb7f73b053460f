package kv

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// EtcdConfig etcd 驱动选项
type EtcdConfig struct {
	Endpoints          []string      `yaml:"endpoints"`
	DialTimeout        time.Duration `yaml:"dial_timeout"`
	Username           string        `yaml:"username"`
	Password           string        `yaml:"password"`
	CertFile           string        `yaml:"cert_file"`
	KeyFile            string        `yaml:"key_file"`
	CAFile             string        `yaml:"ca_file"`
	MaxCallSendMsgSize int           `yaml:"max_call_send_msg_size" validate:"gte=0"`
	MaxCallRecvMsgSize int           `yaml:"max_call_recv_msg_size" validate:"gte=0"`
	// Prefix 所有键的命名空间前缀
	Prefix string `yaml:"prefix"`
	// MaxRetries 读写失败后的重试次数，0 表示不重试
	MaxRetries    int           `yaml:"max_retries" validate:"gte=0"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	// RejectOldCluster 建连时校验集群版本，需要集群可达
	RejectOldCluster bool `yaml:"reject_old_cluster"`
}

// DefaultEtcdConfig 返回默认配置
func DefaultEtcdConfig() EtcdConfig {
	return EtcdConfig{
		Endpoints:          []string{"localhost:2379"},
		DialTimeout:        5 * time.Second,
		MaxCallSendMsgSize: 2 * 1024 * 1024, // 2MB
		MaxCallRecvMsgSize: 4 * 1024 * 1024, // 4MB
		MaxRetries:         3,
		RetryInterval:      100 * time.Millisecond,
		RejectOldCluster:   true,
	}
}

// Validate 验证配置
func (c EtcdConfig) Validate() error {
	if len(c.Endpoints) == 0 {
		return errors.Wrap(ErrInvalidConfig, "endpoints cannot be empty")
	}
	for _, ep := range c.Endpoints {
		if strings.TrimSpace(ep) == "" {
			return errors.Wrap(ErrInvalidConfig, "endpoint cannot be blank")
		}
	}
	if c.DialTimeout <= 0 {
		return errors.Wrap(ErrInvalidConfig, "dial timeout must be positive")
	}
	if c.CertFile != "" || c.KeyFile != "" || c.CAFile != "" {
		if c.CertFile == "" || c.KeyFile == "" || c.CAFile == "" {
			return errors.Wrap(ErrInvalidConfig, "all TLS files (cert, key, ca) must be provided")
		}
	}
	return nil
}

// ToClientConfig 转换为 etcd client 配置
func (c EtcdConfig) ToClientConfig() (*clientv3.Config, error) {
	config := &clientv3.Config{
		Endpoints:           c.Endpoints,
		DialTimeout:         c.DialTimeout,
		MaxCallSendMsgSize:  c.MaxCallSendMsgSize,
		MaxCallRecvMsgSize:  c.MaxCallRecvMsgSize,
		RejectOldCluster:    c.RejectOldCluster,
		PermitWithoutStream: true,
	}

	if c.Username != "" && c.Password != "" {
		config.Username = c.Username
		config.Password = c.Password
	}

	if c.CertFile != "" {
		tlsConfig, err := c.buildTLSConfig()
		if err != nil {
			return nil, err
		}
		config.TLS = tlsConfig
	}

	// 禁用 gRPC 默认服务配置解析，避免与 etcd 内部 resolver 冲突
	dialOpts := []grpc.DialOption{grpc.WithDisableServiceConfig()}
	if config.TLS == nil {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	config.DialOptions = dialOpts

	return config, nil
}

func (c EtcdConfig) buildTLSConfig() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "load client cert failed")
	}
	caData, err := os.ReadFile(c.CAFile)
	if err != nil {
		return nil, errors.Wrap(err, "read ca file failed")
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caData) {
		return nil, errors.New("failed to parse ca certificate")
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// EtcdStore 基于 etcd v3 的 Store 实现。
type EtcdStore struct {
	client *clientv3.Client
	config EtcdConfig

	mu     sync.RWMutex
	closed bool
}

// NewEtcdStore 连接 etcd。
//
// 未配置账号且关闭 RejectOldCluster 时建连是惰性的，不会等待集群可用；
// 否则会在 DialTimeout 内完成鉴权或版本校验。
func NewEtcdStore(cfg EtcdConfig) (*EtcdStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clientCfg, err := cfg.ToClientConfig()
	if err != nil {
		return nil, err
	}
	cli, err := clientv3.New(*clientCfg)
	if err != nil {
		return nil, errors.Wrap(err, "kv: connect etcd")
	}
	return &EtcdStore{client: cli, config: cfg}, nil
}

func (s *EtcdStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	var value string
	err := s.withRetry(ctx, func() error {
		resp, err := s.client.Get(ctx, s.config.Prefix+key)
		if err != nil {
			return err
		}
		if len(resp.Kvs) == 0 {
			return ErrKeyNotFound
		}
		_, value = s.fromKV(resp.Kvs[0])
		return nil
	})
	return value, err
}

func (s *EtcdStore) Put(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.withRetry(ctx, func() error {
		_, err := s.client.Put(ctx, s.config.Prefix+key, value)
		return err
	})
}

func (s *EtcdStore) Delete(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	var deleted bool
	err := s.withRetry(ctx, func() error {
		resp, err := s.client.Delete(ctx, s.config.Prefix+key)
		if err != nil {
			return err
		}
		deleted = resp.Deleted > 0
		return nil
	})
	return deleted, err
}

func (s *EtcdStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	out := make(map[string]string)
	err := s.withRetry(ctx, func() error {
		resp, err := s.client.Get(ctx, s.config.Prefix+prefix, clientv3.WithPrefix())
		if err != nil {
			return err
		}
		for _, kv := range resp.Kvs {
			k, v := s.fromKV(kv)
			out[k] = v
		}
		return nil
	})
	return out, err
}

// Close 关闭客户端
func (s *EtcdStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

func (s *EtcdStore) fromKV(kv *mvccpb.KeyValue) (string, string) {
	return strings.TrimPrefix(string(kv.Key), s.config.Prefix), string(kv.Value)
}

// withRetry 带重试执行；ErrKeyNotFound 与 ctx 取消不重试
func (s *EtcdStore) withRetry(ctx context.Context, fn func() error) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrStoreClosed
	}

	var lastErr error
	for i := 0; i <= s.config.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.config.RetryInterval):
			}
		}
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrKeyNotFound) || ctx.Err() != nil {
			return err
		}
		lastErr = err
	}
	return lastErr
}

var _ Store = (*EtcdStore)(nil)
