package waitlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	barbershopRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/barbershop"
	waitlistRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/waitlist"
	"github.com/m04kA/SMC-BarberBooking/internal/service/waitlist/models"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// Service сервис листа ожидания
type Service struct {
	waitlistRepo   WaitlistRepository
	barbershopRepo BarbershopRepository
	zone           slottime.Zone
	maxAdvanceDays int
	timeProvider   TimeProvider
	logger         Logger
}

// NewService создает новый экземпляр сервиса листа ожидания
func NewService(
	waitlistRepo WaitlistRepository,
	barbershopRepo BarbershopRepository,
	zone slottime.Zone,
	maxAdvanceDays int,
	logger Logger,
) *Service {
	return &Service{
		waitlistRepo:   waitlistRepo,
		barbershopRepo: barbershopRepo,
		zone:           zone,
		maxAdvanceDays: maxAdvanceDays,
		timeProvider:   realTimeProvider{},
		logger:         logger,
	}
}

// Join записывает клиента в лист ожидания на день мастера
// На один ключ (барбершоп, мастер, услуга, день) у клиента может быть одна активная запись
func (s *Service) Join(ctx context.Context, req *models.JoinRequest) (*models.EntryResponse, error) {
	s.logger.Info("Join: user=%d, barbershop=%d, barber=%d, service=%d, date=%s",
		req.UserID, req.BarbershopID, req.BarberID, req.ServiceID, req.Date)

	// 1. Валидация входных данных
	if req.UserID <= 0 || req.BarbershopID <= 0 || req.BarberID <= 0 || req.ServiceID <= 0 {
		return nil, fmt.Errorf("%w: ids must be positive", ErrInvalidInput)
	}

	dayStart, err := s.zone.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	day := s.zone.DayKey(dayStart)
	today := s.zone.DayKey(s.timeProvider.Now())
	if day.Before(today) {
		return nil, fmt.Errorf("%w: date is in the past", ErrInvalidDate)
	}
	if s.maxAdvanceDays > 0 && day.After(today.AddDate(0, 0, s.maxAdvanceDays)) {
		return nil, fmt.Errorf("%w: date is more than %d days ahead", ErrInvalidDate, s.maxAdvanceDays)
	}

	// 2. Барбершоп, мастер и услуга
	if _, err := s.barbershopRepo.GetByID(ctx, req.BarbershopID); err != nil {
		if errors.Is(err, barbershopRepo.ErrBarbershopNotFound) {
			return nil, ErrBarbershopNotFound
		}
		s.logger.Error("Join: failed to get barbershop id=%d: %v", req.BarbershopID, err)
		return nil, fmt.Errorf("%w: failed to get barbershop: %v", ErrInternal, err)
	}

	belongs, err := s.barbershopRepo.BarberBelongsTo(ctx, req.BarberID, req.BarbershopID)
	if err != nil {
		s.logger.Error("Join: failed to check barber id=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: failed to check barber: %v", ErrInternal, err)
	}
	if !belongs {
		return nil, ErrBarberNotFound
	}

	service, err := s.barbershopRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, barbershopRepo.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		s.logger.Error("Join: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.BarbershopID != req.BarbershopID || !service.Active {
		return nil, ErrServiceNotFound
	}

	// 3. Запись
	entry, err := s.waitlistRepo.Create(ctx, &domain.WaitlistEntry{
		BarbershopID: req.BarbershopID,
		BarberID:     req.BarberID,
		ServiceID:    req.ServiceID,
		UserID:       req.UserID,
		DateDay:      day,
	})
	if err != nil {
		if errors.Is(err, waitlistRepo.ErrAlreadyOnWaitlist) {
			s.logger.Warn("Join: user=%d already waits for barber=%d on %s", req.UserID, req.BarberID, req.Date)
			return nil, ErrAlreadyOnWaitlist
		}
		s.logger.Error("Join: repository error: %v", err)
		return nil, fmt.Errorf("%w: Join - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Join: created waitlist entry id=%d", entry.ID)
	resp := models.FromDomainEntry(entry)
	return &resp, nil
}

// List записи пользователя, новые первыми
func (s *Service) List(ctx context.Context, requesterID, userID int64) (*models.EntryListResponse, error) {
	s.logger.Info("List: fetching waitlist of user=%d by user=%d", userID, requesterID)

	if requesterID != userID {
		return nil, ErrAccessDenied
	}

	entries, err := s.waitlistRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("List: repository error for user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainEntryList(entries), nil
}

// MarkSeen подтверждает, что клиент увидел выполненную запись
// Повторный вызов не меняет время первого просмотра
func (s *Service) MarkSeen(ctx context.Context, entryID, userID int64) error {
	s.logger.Info("MarkSeen: entry id=%d by user=%d", entryID, userID)

	if err := s.waitlistRepo.MarkSeen(ctx, entryID, userID, s.timeProvider.Now()); err != nil {
		if errors.Is(err, waitlistRepo.ErrEntryNotFound) {
			s.logger.Warn("MarkSeen: fulfilled entry id=%d of user=%d not found", entryID, userID)
			return ErrEntryNotFound
		}
		s.logger.Error("MarkSeen: repository error for entry id=%d: %v", entryID, err)
		return fmt.Errorf("%w: MarkSeen - repository error: %v", ErrInternal, err)
	}

	return nil
}
