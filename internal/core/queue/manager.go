// Package queue runs deferred work on a bounded pool of background workers.
package queue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/metrics"
	"recipe-bot/internal/pkg/common"
)

var (
	// ErrQueueFull 隊列已滿
	ErrQueueFull = common.NewError("QUEUE_FULL", "Queue is full", http.StatusServiceUnavailable, nil)
	// ErrQueueClosed 隊列已關閉
	ErrQueueClosed = common.NewError("QUEUE_CLOSED", "Queue manager is closed", http.StatusServiceUnavailable, nil)
)

// Job 背景工作
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	FailedCount    int64 `json:"failed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 隊列管理器
type Manager struct {
	config    config.QueueConfig
	queue     chan Job
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	processed atomic.Int64
	failed    atomic.Int64
}

// NewManager 創建隊列管理器並啟動 worker
func NewManager(cfg config.QueueConfig) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1
	}

	m := &Manager{
		config: cfg,
		queue:  make(chan Job, cfg.MaxSize),
	}

	for i := 0; i < cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	common.LogInfo("Queue manager started",
		zap.Int("workers", cfg.Workers),
		zap.Int("max_queue_size", cfg.MaxSize),
	)
	return m
}

// Submit 將工作加入隊列，不會阻塞呼叫者
func (m *Manager) Submit(job Job) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrQueueClosed
	}

	select {
	case m.queue <- job:
		metrics.SetQueueDepth(len(m.queue))
		common.LogDebug("Job enqueued",
			zap.String("job", job.Name),
			zap.Int("queue_length", len(m.queue)),
		)
		return nil
	default:
		common.LogWarn("Queue is full, dropping job", zap.String("job", job.Name))
		return ErrQueueFull
	}
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()

	for job := range m.queue {
		metrics.SetQueueDepth(len(m.queue))
		m.execute(id, job)
	}
}

// execute 執行單一工作，worker 不因工作 panic 而結束
func (m *Manager) execute(id int, job Job) {
	ctx := context.Background()
	if m.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		return job.Run(ctx)
	}()

	m.processed.Add(1)
	if err != nil {
		m.failed.Add(1)
		common.LogError("Job failed",
			zap.String("job", job.Name),
			zap.Int("worker", id),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	common.LogDebug("Job finished",
		zap.String("job", job.Name),
		zap.Int("worker", id),
		zap.Duration("duration", time.Since(start)),
	)
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: m.processed.Load(),
		FailedCount:    m.failed.Load(),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
	}
}

// Close 停止接收新工作，等待已排入的工作完成或 ctx 到期
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		common.LogInfo("Queue manager closed", zap.Int64("processed", m.processed.Load()))
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("queue did not drain before deadline"), ctx.Err())
	}
}
