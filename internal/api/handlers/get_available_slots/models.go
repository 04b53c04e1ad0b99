package get_available_slots

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	getAvailableSlots "github.com/m04kA/SMC-BarberBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string         `json:"date"`
	BarbershopID    int64          `json:"barbershopId"`
	BarberID        int64          `json:"barberId"`
	ServiceIDs      []int64        `json:"serviceIds"`
	DurationMinutes int            `json:"durationMinutes"`
	Slots           []SlotResponse `json:"slots"`
	WaitlistOpen    bool           `json:"waitlistOpen"`
}

// SlotResponse слот по местному времени и абсолютный момент
type SlotResponse struct {
	StartTime string `json:"startTime"` // "10:00"
	StartAt   string `json:"startAt"`   // "2025-10-15T10:00"
	Instant   string `json:"instant"`   // RFC 3339, UTC
}

// parseServiceIDs принимает serviceIds=1,2 и повторяющийся serviceIds=1&serviceIds=2
func parseServiceIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("serviceIds: %w", err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime: s.StartTime,
			StartAt:   s.StartAt,
			Instant:   s.Instant.UTC().Format(time.RFC3339),
		})
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date,
		BarbershopID:    resp.BarbershopID,
		BarberID:        resp.BarberID,
		ServiceIDs:      resp.ServiceIDs,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
		WaitlistOpen:    resp.WaitlistOpen,
	}
}
