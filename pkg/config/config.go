package config

import (
	"fmt"
	"time"
)

// Chat definition chat_service YAML structure
type Chat struct {
	Port            string        `mapstructure:"port"`
	IP              string        `mapstructure:"ip"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`

	Relay      RelayConfig    `mapstructure:"relay"`
	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Redis      RedisConfig    `mapstructure:"redis"`
	MinIO      MinIOConfig    `mapstructure:"minio"`
}

// RelayConfig definition websocket relay tuning
type RelayConfig struct {
	SendBuffer      int           `mapstructure:"send_buffer"`
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	MaxMessageBytes int           `mapstructure:"max_message_bytes"`
}

// RedisConfig definition redis setting, Addr empty 時使用 sentinel
type RedisConfig struct {
	Addr    string `mapstructure:"addr"`
	RedisDB int    `mapstructure:"redis_db"`
}

// MinIOConfig definition avatar storage
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	PublicURL     string `mapstructure:"public_url"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	SSLMode       string `mapstructure:"sslmode"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// DSN postgres connection string
func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, sslMode)
}

// ApplyDefaults 補上未設定的值
func (c *Chat) ApplyDefaults() {
	if c.Port == "" {
		c.Port = "4000"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 60 * time.Minute
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Relay.SendBuffer <= 0 {
		c.Relay.SendBuffer = 64
	}
	if c.Relay.PingInterval <= 0 {
		c.Relay.PingInterval = 10 * time.Minute
	}
	if c.Relay.MaxMessageBytes <= 0 {
		c.Relay.MaxMessageBytes = 16384
	}
	if c.PostgreSQL.RetryCount <= 0 {
		c.PostgreSQL.RetryCount = 1
	}
	if c.MinIO.Bucket == "" {
		c.MinIO.Bucket = "avatars"
	}
	if c.MinIO.RetryCount <= 0 {
		c.MinIO.RetryCount = 1
	}
}
