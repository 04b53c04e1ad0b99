package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Config расписания в формате cron, пустая строка отключает задачу
type Config struct {
	DispatchSpec  string
	ReconcileSpec string
	// RunTimeout ограничение одного запуска задачи
	RunTimeout time.Duration
}

// Scheduler встроенный планировщик: рассылка уведомлений и сверка оплат по барбершопам
// Запуски одной задачи не перекрываются.
type Scheduler struct {
	cron       *cron.Cron
	dispatcher Dispatcher
	reconciler TenantReconciler
	shops      BarbershopLister
	runTimeout time.Duration
	logger     Logger
}

// New создает планировщик в зоне барбершопов
func New(
	cfg Config,
	loc *time.Location,
	dispatcher Dispatcher,
	reconciler TenantReconciler,
	shops BarbershopLister,
	logger Logger,
) (*Scheduler, error) {
	cronLog := cronLogger{log: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		dispatcher: dispatcher,
		reconciler: reconciler,
		shops:      shops,
		runTimeout: cfg.RunTimeout,
		logger:     logger,
	}
	if s.runTimeout <= 0 {
		s.runTimeout = 5 * time.Minute
	}

	if cfg.DispatchSpec != "" {
		if _, err := s.cron.AddFunc(cfg.DispatchSpec, s.dispatch); err != nil {
			return nil, fmt.Errorf("scheduler: dispatch spec %q: %w", cfg.DispatchSpec, err)
		}
	}
	if cfg.ReconcileSpec != "" {
		if _, err := s.cron.AddFunc(cfg.ReconcileSpec, s.reconcileTenants); err != nil {
			return nil, fmt.Errorf("scheduler: reconcile spec %q: %w", cfg.ReconcileSpec, err)
		}
	}

	return s, nil
}

// Start запускает планировщик в фоне
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler: started with %d jobs", len(s.cron.Entries()))
}

// Stop останавливает планировщик и ждёт завершения текущих запусков или отмены ctx
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler: stopped")
	case <-ctx.Done():
		s.logger.Warn("Scheduler: stop timed out, jobs still running")
	}
}

func (s *Scheduler) dispatch() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	summary, err := s.dispatcher.Run(ctx)
	if err != nil {
		s.logger.Error("Scheduler: dispatch run failed: %v", err)
		return
	}
	if summary.Scanned > 0 {
		s.logger.Info("Scheduler: dispatch run=%s scanned=%d sent=%d retried=%d failed=%d",
			summary.RunID, summary.Scanned, summary.Sent, summary.Retried, summary.Failed)
	}
}

func (s *Scheduler) reconcileTenants() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	s.ReconcileAll(ctx)
}

// ReconcileAll сверяет оплаты всех активных барбершопов по очереди
// Ошибка по одному барбершопу не останавливает остальные. Возвращает число обработанных.
func (s *Scheduler) ReconcileAll(ctx context.Context) int {
	ids, err := s.shops.ListActiveIDs(ctx)
	if err != nil {
		s.logger.Error("Scheduler: failed to list barbershops: %v", err)
		return 0
	}

	done := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			s.logger.Warn("Scheduler: reconcile sweep interrupted after %d of %d barbershops", done, len(ids))
			break
		}

		summary, err := s.reconciler.ReconcileForTenant(ctx, id)
		if err != nil {
			s.logger.Error("Scheduler: reconcile barbershop=%d failed: %v", id, err)
			continue
		}
		done++
		if summary.Scanned > 0 {
			s.logger.Info("Scheduler: reconcile barbershop=%d run=%s scanned=%d paid=%d failed=%d errors=%d",
				id, summary.RunID, summary.Scanned, summary.Paid, summary.Failed, len(summary.Errors))
		}
	}

	return done
}

// cronLogger переводит логгер cron на printf-стиль сервиса
type cronLogger struct {
	log Logger
}

// Info пробуждения cron не логируются
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("Scheduler: %s: %v %v", msg, err, keysAndValues)
}
