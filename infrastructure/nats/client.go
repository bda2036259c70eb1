package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"nextup-api/pkg/logger"
)

// Client wraps NATS connection; JetStream ใช้แค่ KV ของ run state
type Client struct {
	conn *nats.Conn
	js   jetstream.JetStream

	runStateKV jetstream.KeyValue
}

// ClientConfig configuration สำหรับ NATS Client
type ClientConfig struct {
	URL         string        // nats://localhost:4222
	RunStateTTL time.Duration // อายุของ key ใน run state bucket
}

// NewClient สร้าง NATS Client
func NewClient(cfg ClientConfig) (*Client, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("nextup-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	client := &Client{conn: nc}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	client.js = js

	// server ที่ไม่ได้เปิด JetStream ยังใช้ pub/sub ได้
	if err := client.setupRunStateKV(context.Background(), cfg.RunStateTTL); err != nil {
		logger.Warn("Run state KV not available", "error", err)
	}

	logger.Info("NATS client initialized", "url", cfg.URL, "run_state_kv", client.runStateKV != nil)
	return client, nil
}

func (c *Client) setupRunStateKV(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	kv, err := c.js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      RunStateBucket,
		Description: "Prioritization run state per folder",
		History:     1,
		TTL:         ttl,
		Storage:     jetstream.MemoryStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update KV bucket: %w", err)
	}
	c.runStateKV = kv
	logger.Info("NATS KV bucket ready", "bucket", RunStateBucket)
	return nil
}

// Conn returns the underlying NATS connection
func (c *Client) Conn() *nats.Conn {
	return c.conn
}

// RunStateKV nil ถ้า JetStream ไม่พร้อม
func (c *Client) RunStateKV() jetstream.KeyValue {
	return c.runStateKV
}

// ═══════════════════════════════════════════════════════════════════════════════
// Lifecycle
// ═══════════════════════════════════════════════════════════════════════════════

// Close drain แล้วปิด connection
func (c *Client) Close() error {
	if c.conn != nil {
		if err := c.conn.Drain(); err != nil {
			c.conn.Close()
		}
		logger.Info("NATS connection closed")
	}
	return nil
}

// Ping ทดสอบ connection
func (c *Client) Ping() error {
	return c.conn.FlushTimeout(5 * time.Second)
}

// IsConnected ตรวจสอบว่าเชื่อมต่ออยู่หรือไม่
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}
