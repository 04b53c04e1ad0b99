package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	barbershopRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/barbershop"
	"github.com/m04kA/SMC-BarberBooking/internal/service/config/models"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// Service сервис настроек барбершопа: расписание и автоматические сообщения
type Service struct {
	barbershopRepo BarbershopRepository
	scheduler      NotificationScheduler
	txManager      TransactionManager
	zone           slottime.Zone
	now            func() time.Time
	logger         Logger
}

// NewService создает новый экземпляр сервиса настроек
func NewService(
	barbershopRepo BarbershopRepository,
	scheduler NotificationScheduler,
	txManager TransactionManager,
	zone slottime.Zone,
	logger Logger,
) *Service {
	return &Service{
		barbershopRepo: barbershopRepo,
		scheduler:      scheduler,
		txManager:      txManager,
		zone:           zone,
		now:            time.Now,
		logger:         logger,
	}
}

// Get настройки барбершопа
// Доступно только владельцу
func (s *Service) Get(ctx context.Context, barbershopID, userID int64) (*models.ConfigResponse, error) {
	s.logger.Info("Get: fetching config of barbershop=%d by user=%d", barbershopID, userID)

	shop, err := s.ownedBarbershop(ctx, "Get", barbershopID, userID)
	if err != nil {
		return nil, err
	}

	hours, err := s.barbershopRepo.GetWeeklyHours(ctx, barbershopID)
	if err != nil {
		s.logger.Error("Get: failed to get weekly hours of barbershop=%d: %v", barbershopID, err)
		return nil, fmt.Errorf("%w: failed to get weekly hours: %v", ErrInternal, err)
	}

	return models.FromDomainConfig(shop, hours, s.zone), nil
}

// UpdateMessaging меняет тариф и флаги сообщений
// При переходе на тариф без сообщений будущие отложенные уведомления отменяются
// в той же транзакции. Выключенные флаги отсекаются при отправке, задачи не трогаются.
func (s *Service) UpdateMessaging(ctx context.Context, barbershopID int64, req *models.UpdateMessagingRequest) (*models.UpdateMessagingResponse, error) {
	s.logger.Info("UpdateMessaging: barbershop=%d by user=%d", barbershopID, req.UserID)

	// 1. Проверяем права
	shop, err := s.ownedBarbershop(ctx, "UpdateMessaging", barbershopID, req.UserID)
	if err != nil {
		return nil, err
	}

	// 2. Применяем изменения к копии
	before := shop.Messaging
	after := before
	req.ApplyTo(&after)

	if !after.Plan.IsValid() {
		s.logger.Warn("UpdateMessaging: unknown plan %q", after.Plan)
		return nil, fmt.Errorf("%w: unknown plan %q", ErrInvalidInput, after.Plan)
	}

	downgrade := before.Plan.SupportsMessaging() && !after.Plan.SupportsMessaging()

	// 3. Сохраняем
	var canceled int64
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.barbershopRepo.UpdateMessaging(txCtx, barbershopID, after, s.now()); err != nil {
			if errors.Is(err, barbershopRepo.ErrBarbershopNotFound) {
				return ErrBarbershopNotFound
			}
			return fmt.Errorf("%w: UpdateMessaging - repository error: %v", ErrInternal, err)
		}

		if !downgrade {
			return nil
		}

		n, err := s.scheduler.CancelFutureTenantNotificationJobs(txCtx, barbershopID, domain.CancelReasonPlanDowngrade)
		if err != nil {
			return fmt.Errorf("%w: failed to cancel future notifications: %v", ErrInternal, err)
		}
		canceled = n
		return nil
	})
	if err != nil {
		s.logger.Error("UpdateMessaging: barbershop=%d: %v", barbershopID, err)
		return nil, err
	}

	if downgrade {
		s.logger.Info("UpdateMessaging: barbershop=%d downgraded %s -> %s, canceled %d future jobs",
			barbershopID, before.Plan, after.Plan, canceled)
	}

	return &models.UpdateMessagingResponse{
		Messaging:    models.FromDomainMessaging(after),
		CanceledJobs: canceled,
	}, nil
}

// UpdateWeeklyHours заменяет расписание целиком
// Уже созданные бронирования не пересматриваются
func (s *Service) UpdateWeeklyHours(ctx context.Context, barbershopID int64, req *models.UpdateWeeklyHoursRequest) (*models.ConfigResponse, error) {
	s.logger.Info("UpdateWeeklyHours: barbershop=%d by user=%d", barbershopID, req.UserID)

	hours, err := req.ToDomainHours()
	if err != nil {
		s.logger.Warn("UpdateWeeklyHours: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	shop, err := s.ownedBarbershop(ctx, "UpdateWeeklyHours", barbershopID, req.UserID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.barbershopRepo.ReplaceWeeklyHours(txCtx, barbershopID, hours)
	})
	if err != nil {
		s.logger.Error("UpdateWeeklyHours: repository error for barbershop=%d: %v", barbershopID, err)
		return nil, fmt.Errorf("%w: UpdateWeeklyHours - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateWeeklyHours: barbershop=%d schedule replaced", barbershopID)
	return models.FromDomainConfig(shop, hours, s.zone), nil
}

// ownedBarbershop барбершоп, если пользователь его владелец
func (s *Service) ownedBarbershop(ctx context.Context, op string, barbershopID, userID int64) (*domain.Barbershop, error) {
	shop, err := s.barbershopRepo.GetByID(ctx, barbershopID)
	if err != nil {
		if errors.Is(err, barbershopRepo.ErrBarbershopNotFound) {
			s.logger.Warn("%s: barbershop id=%d not found", op, barbershopID)
			return nil, ErrBarbershopNotFound
		}
		s.logger.Error("%s: failed to get barbershop id=%d: %v", op, barbershopID, err)
		return nil, fmt.Errorf("%w: failed to get barbershop: %v", ErrInternal, err)
	}

	if shop.OwnerID != userID {
		s.logger.Warn("%s: user=%d is not the owner of barbershop=%d", op, userID, barbershopID)
		return nil, ErrAccessDenied
	}

	return shop, nil
}
