package feedback

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rushteam/gamerec/core"
)

// KafkaCollector Kafka 采集器（生产环境推荐）。
//
// 事件先进内存缓冲，达到批量大小或刷新间隔后批量发往 Kafka。
// 发送全程异步，推荐请求路径上没有任何网络等待。
type KafkaCollector struct {
	client        *kgo.Client
	topic         string
	batchSize     int
	flushInterval time.Duration
	log           zerolog.Logger

	mu        sync.Mutex
	buffer    []*Event
	lastFlush time.Time
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
	stopCh    chan struct{}
}

// KafkaCollectorConfig Kafka 采集器配置。
type KafkaCollectorConfig struct {
	Brokers []string // Kafka Broker 地址列表
	Topic   string   // Kafka Topic

	BatchSize     int           // 批量大小（建议 100-1000）
	FlushInterval time.Duration // 刷新间隔（建议 1-5 秒）

	ClientID     string // 客户端 ID
	RequiredAcks int16  // 需要的 ACK 数量（1=leader, -1=all）
	Compression  string // 压缩类型（gzip, snappy, lz4, zstd）
	Idempotent   bool   // 是否启用幂等性
	MaxRetries   int    // 最大重试次数
}

// NewKafkaCollector 创建 Kafka 采集器。
func NewKafkaCollector(config KafkaCollectorConfig, logger zerolog.Logger) (*KafkaCollector, error) {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 1 * time.Second
	}
	if config.ClientID == "" {
		config.ClientID = "gamerec-feedback-collector"
	}
	if config.RequiredAcks == 0 {
		config.RequiredAcks = 1
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(config.Brokers...),
		kgo.ClientID(config.ClientID),
	}

	var acks kgo.Acks
	switch config.RequiredAcks {
	case 0:
		acks = kgo.NoAck()
	case -1:
		acks = kgo.AllISRAcks()
	default:
		acks = kgo.LeaderAck()
	}
	opts = append(opts, kgo.RequiredAcks(acks))

	if config.MaxRetries > 0 {
		opts = append(opts, kgo.RecordRetries(config.MaxRetries))
	}
	if !config.Idempotent {
		opts = append(opts, kgo.DisableIdempotentWrite())
	}

	switch config.Compression {
	case "gzip":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.GzipCompression()))
	case "snappy":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.SnappyCompression()))
	case "lz4":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.Lz4Compression()))
	case "zstd":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.ZstdCompression()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	c := &KafkaCollector{
		client:        client,
		topic:         config.Topic,
		batchSize:     config.BatchSize,
		flushInterval: config.FlushInterval,
		log:           logger,
		buffer:        make([]*Event, 0, config.BatchSize),
		lastFlush:     time.Now(),
		stopCh:        make(chan struct{}),
	}

	c.wg.Add(1)
	go c.flushLoop()

	return c, nil
}

func (c *KafkaCollector) RecordImpression(_ context.Context, rctx *core.RecommendContext, items []*core.Item) error {
	if c.isClosed() {
		return nil
	}
	return c.bufferEvents(impressionEvents(rctx, items, time.Now().Unix()))
}

func (c *KafkaCollector) RecordClick(_ context.Context, rctx *core.RecommendContext, gameID string, position int) error {
	if c.isClosed() {
		return nil
	}
	return c.bufferEvents([]*Event{{
		UserID:    rctx.UserID,
		GameID:    gameID,
		Scene:     rctx.Scene,
		Type:      EventClick,
		Timestamp: time.Now().Unix(),
		Position:  position,
	}})
}

func (c *KafkaCollector) RecordAction(_ context.Context, rctx *core.RecommendContext, gameID string, typ EventType, extras map[string]any) error {
	if c.isClosed() {
		return nil
	}
	return c.bufferEvents([]*Event{{
		UserID:    rctx.UserID,
		GameID:    gameID,
		Scene:     rctx.Scene,
		Type:      typ,
		Timestamp: time.Now().Unix(),
		Extras:    extras,
	}})
}

// bufferEvents 非阻塞缓冲事件。
func (c *KafkaCollector) bufferEvents(events []*Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.buffer = append(c.buffer, events...)

	// 达到批量大小，触发发送
	if len(c.buffer) >= c.batchSize {
		go c.flush()
	}
	return nil
}

// flushLoop 定时刷新循环。
func (c *KafkaCollector) flushLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			shouldFlush := len(c.buffer) > 0 && time.Since(c.lastFlush) >= c.flushInterval
			c.mu.Unlock()

			if shouldFlush {
				c.flush()
			}
		case <-c.stopCh:
			return
		}
	}
}

// flush 刷新缓冲到 Kafka。
func (c *KafkaCollector) flush() {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	events := make([]*Event, len(c.buffer))
	copy(events, c.buffer)
	c.buffer = c.buffer[:0]
	c.lastFlush = time.Now()
	c.mu.Unlock()

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			c.log.Warn().Err(err).Msg("feedback event marshal failed")
			continue
		}

		// UserID 作为 Key，保证同一用户的事件有序
		record := &kgo.Record{
			Topic: c.topic,
			Key:   []byte(event.UserID),
			Value: data,
		}

		c.client.Produce(context.Background(), record, func(_ *kgo.Record, err error) {
			if err != nil {
				c.log.Warn().Err(err).Str("topic", c.topic).Msg("feedback event produce failed")
			}
		})
	}
}

func (c *KafkaCollector) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close 优雅关闭（等待缓冲数据发送完成）。
func (c *KafkaCollector) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		close(c.stopCh)
		c.flush()
		c.wg.Wait()
		c.client.Close()
	})
	return nil
}
