package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"recipe-bot/internal/pkg/common"
)

const reconcileJobName = "reconcile_pending_payments"

// Reconciler 定期向供應商確認 pending 付款
type Reconciler struct {
	scheduler gocron.Scheduler
	service   *Service
	interval  time.Duration
	timeout   time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

// NewReconciler 建立排程器
func NewReconciler(service *Service, interval time.Duration) (*Reconciler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	timeout := interval
	if timeout <= 0 || timeout > 2*time.Minute {
		timeout = 2 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		scheduler: s,
		service:   service,
		interval:  interval,
		timeout:   timeout,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start 註冊對帳工作並啟動排程
func (r *Reconciler) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("reconciler is already running")
	}
	if r.interval <= 0 {
		return fmt.Errorf("invalid reconcile interval %s", r.interval)
	}

	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.run),
		gocron.WithName(reconcileJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", reconcileJobName, err)
	}

	r.scheduler.Start()
	r.running = true
	common.LogInfo("Payment reconciler started", zap.Duration("interval", r.interval))
	return nil
}

// RunOnce 立即執行一次對帳
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.service.Reconcile(ctx)
}

func (r *Reconciler) run() {
	start := time.Now()
	changed, err := r.RunOnce(r.ctx)
	if err != nil {
		common.LogError("Payment reconciliation failed", zap.Error(err))
		return
	}
	common.LogDebug("Payment reconciliation finished",
		zap.Int("changed", changed),
		zap.Duration("duration", time.Since(start)),
	)
}

// Stop 取消執行中的對帳並關閉排程器
func (r *Reconciler) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancel()
	if err := r.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	r.running = false
	return nil
}
