package config

import (
	"os"
	"strings"
	"time"

	"VProject/tools/decode"
	"VProject/tools/ids"
	"VProject/tools/security"
)

// AppConfig is the whole gateway configuration. Values come from the
// environment (prefix VOXTA_); empty Redis/NATS addresses disable the
// presence mirror and the cross-node relay respectively.
type AppConfig struct {
	Addr   string `json:"addr"`    // HTTP listen address
	NodeID string `json:"node_id"` // gateway node id (snowflake node + relay origin)

	JWTSecret string `json:"jwt_secret"`
	JWTTTLMin int    `json:"jwt_ttl_min"` // minutes; 0 means the 2h default

	DatabaseURL string `json:"database_url"` // pgx pool DSN; empty => in-memory stores
	RedisAddr   string `json:"redis_addr"`
	RedisPass   string `json:"redis_pass"`
	RedisDB     int    `json:"redis_db"`
	NatsURL     string `json:"nats_url"`

	PresenceTTLSec int `json:"presence_ttl_sec"` // presence key TTL, default 120
	SendQueueSize  int `json:"send_queue_size"`  // per-connection outbound queue, default 256
	FanoutWorkers  int `json:"fanout_workers"`   // default 8
}

var Global AppConfig

// Load reads VOXTA_* environment variables into Global. Unset keys keep
// their defaults; numeric values arrive as strings and are decoded weakly.
func Load() error {
	env := map[string]any{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, "VOXTA_") {
			continue
		}
		env[strings.ToLower(strings.TrimPrefix(k, "VOXTA_"))] = v
	}

	cfg, err := decode.Map[AppConfig](env)
	if err != nil {
		return err
	}
	cfg.norm()
	Global = *cfg
	return nil
}

func (c *AppConfig) norm() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.NodeID == "" {
		c.NodeID = "gateway_01"
	}
	if c.JWTSecret == "" {
		c.JWTSecret = "dev-secret-do-not-ship"
	}
	if c.PresenceTTLSec <= 0 {
		c.PresenceTTLSec = 120
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
	if c.FanoutWorkers <= 0 {
		c.FanoutWorkers = 8
	}
}

// JWTOptions returns the validator options derived from config.
func (c *AppConfig) JWTOptions() security.Options {
	opts := security.DefaultOptions([]byte(c.JWTSecret))
	if c.JWTTTLMin > 0 {
		opts.TTL = time.Duration(c.JWTTTLMin) * time.Minute
	}
	return opts
}

// PresenceTTL is the online-key lifetime in the Redis mirror.
func (c *AppConfig) PresenceTTL() time.Duration {
	return time.Duration(c.PresenceTTLSec) * time.Second
}

// ConfigIds seeds the snowflake node id from the numeric suffix of NodeID.
func ConfigIds() {
	var n int64 = 1
	if i := strings.LastIndexByte(Global.NodeID, '_'); i >= 0 {
		if v, err := decode.Int64(Global.NodeID[i+1:]); err == nil {
			n = v
		}
	}
	ids.SetNodeID(n)
}
