package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"portfoliobuilder/pkg/config"
)

// DirectoryConfig 公共目录缓存配置
type DirectoryConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// CacheTTL 0 表示使用默认值
func (c DirectoryConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// WizardConfig 向导会话配置
type WizardConfig struct {
	SessionTTLHours int `yaml:"session_ttl_hours"`
}

func (c WizardConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// IdempotencyConfig Idempotency-Key 的保留时间
type IdempotencyConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

func (c IdempotencyConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// OutboxConfig outbox 调度参数，0 表示使用 Dispatcher 默认值
type OutboxConfig struct {
	MaxRetries int `yaml:"max_retries"`
	BatchSize  int `yaml:"batch_size"`
	IntervalMs int `yaml:"interval_ms"`
}

func (c OutboxConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

type Config struct {
	Env         string              `yaml:"-"`
	DB          config.DBConfig     `yaml:"db"`
	MQ          config.MQConfig     `yaml:"mq"`
	Redis       config.RedisConfig  `yaml:"redis"`
	JWT         config.JWTConfig    `yaml:"jwt"`
	Server      config.ServerConfig `yaml:"server"`
	Auth        config.AuthConfig   `yaml:"auth"`
	OTel        config.OTelConfig   `yaml:"otel"`
	Directory   DirectoryConfig     `yaml:"directory"`
	Wizard      WizardConfig        `yaml:"wizard"`
	Idempotency IdempotencyConfig   `yaml:"idempotency"`
	Outbox      OutboxConfig        `yaml:"outbox"`
}

// Load 读取 <dir>/base.yaml + <CONFIG_ENV>.yaml + secrets.env，再用环境变量覆盖
func Load(dir string) (*Config, error) {
	env := config.GetConfigEnv()
	raw, err := config.LoadConfig(env, dir)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := config.Decode(raw, &cfg); err != nil {
		return nil, err
	}
	cfg.Env = env

	// 环境变量覆盖
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideAuthFromEnv(&cfg.Auth)
	config.OverrideOTelFromEnv(&cfg.OTel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查启动所必需的配置
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" || strings.Contains(c.JWT.Secret, "${") {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Auth.Strategy == "auto_approve" && c.Env == "production" {
		errs = append(errs, fmt.Errorf("auth.strategy %q is not allowed in production", c.Auth.Strategy))
	}
	if c.Outbox.MaxRetries < 0 || c.Outbox.BatchSize < 0 || c.Outbox.IntervalMs < 0 {
		errs = append(errs, errors.New("outbox settings must not be negative"))
	}
	if c.OTel.ServiceName == "" {
		c.OTel.ServiceName = "portfolio-builder"
	}
	return errors.Join(errs...)
}
