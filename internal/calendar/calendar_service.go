package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	calendarerrors "attendance-dashboard/internal/calendar/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	holidayCacheKey = "calendar:holidays"
	holidayCacheTTL = 5 * time.Minute
)

//go:generate mockgen -source=calendar_service.go -destination=mock/calendar_service_mock.go -package=mock
type Service interface {
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	GetHolidays(ctx context.Context) ([]HolidayResponse, error)
	UpdateHoliday(ctx context.Context, id string, req UpdateHolidayRequest) (HolidayResponse, error)
	DeleteHoliday(ctx context.Context, id string) error
	CountBusinessDays(ctx context.Context, startDate, endDate string) (BusinessDaysResponse, error)

	// Calculator builds a working-day calculator over the current holiday
	// snapshot. The leave engine consumes this read-only.
	Calculator(ctx context.Context) (*Calculator, error)
}

type service struct {
	repo    Repository
	rdb     *redis.Client
	weekCfg WeekConfig
	logger  *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, weekCfg WeekConfig, logger ...*zap.Logger) Service {
	l := zap.L().Named("calendar.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("calendar.service")
	}
	return &service{repo: repo, rdb: rdb, weekCfg: weekCfg, logger: l}
}

func (s *service) CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return HolidayResponse{}, err
	}
	recurrence := req.Recurrence
	if recurrence == "" {
		recurrence = RecurrenceNone
	}
	if !ValidRecurrence(recurrence) {
		return HolidayResponse{}, calendarerrors.ErrInvalidRecurrence
	}

	h := &Holiday{
		ID:         uuid.New(),
		Name:       req.Name,
		Date:       date,
		Recurrence: recurrence,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		s.logger.Error("create holiday persist failed", zap.Error(err))
		return HolidayResponse{}, err
	}
	s.invalidateCache(ctx)
	s.logger.Info("holiday created",
		zap.String("holiday_id", h.ID.String()),
		zap.String("recurrence", h.Recurrence),
	)
	return mapToResponse(*h), nil
}

func (s *service) GetHolidays(ctx context.Context) ([]HolidayResponse, error) {
	holidays, err := s.loadHolidays(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]HolidayResponse, len(holidays))
	for i, h := range holidays {
		resp[i] = mapToResponse(h)
	}
	return resp, nil
}

func (s *service) UpdateHoliday(ctx context.Context, id string, req UpdateHolidayRequest) (HolidayResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return HolidayResponse{}, err
	}
	if !ValidRecurrence(req.Recurrence) {
		return HolidayResponse{}, calendarerrors.ErrInvalidRecurrence
	}

	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return HolidayResponse{}, calendarerrors.ErrHolidayNotFound
		}
		return HolidayResponse{}, err
	}

	h.Name = req.Name
	h.Date = date
	h.Recurrence = req.Recurrence

	if err := s.repo.Update(ctx, h); err != nil {
		s.logger.Error("update holiday persist failed", zap.String("holiday_id", id), zap.Error(err))
		return HolidayResponse{}, err
	}
	s.invalidateCache(ctx)
	return mapToResponse(*h), nil
}

func (s *service) DeleteHoliday(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *service) CountBusinessDays(ctx context.Context, startDate, endDate string) (BusinessDaysResponse, error) {
	start, err := parseDate(startDate)
	if err != nil {
		return BusinessDaysResponse{}, err
	}
	end, err := parseDate(endDate)
	if err != nil {
		return BusinessDaysResponse{}, err
	}

	calc, err := s.Calculator(ctx)
	if err != nil {
		return BusinessDaysResponse{}, err
	}
	days, err := calc.CountBusinessDays(start, end)
	if err != nil {
		return BusinessDaysResponse{}, err
	}
	return BusinessDaysResponse{
		StartDate:    startDate,
		EndDate:      endDate,
		BusinessDays: days,
	}, nil
}

func (s *service) Calculator(ctx context.Context) (*Calculator, error) {
	holidays, err := s.loadHolidays(ctx)
	if err != nil {
		return nil, err
	}
	return NewCalculator(s.weekCfg, holidays), nil
}

// loadHolidays reads the holiday list through the redis cache. Cache failures
// fall back to the database; the list is small and changes rarely.
func (s *service) loadHolidays(ctx context.Context) ([]Holiday, error) {
	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, holidayCacheKey).Result(); err == nil {
			var cached []Holiday
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	holidays, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(holidays); err == nil {
			if err := s.rdb.Set(ctx, holidayCacheKey, payload, holidayCacheTTL).Err(); err != nil {
				s.logger.Warn("holiday cache set failed", zap.Error(err))
			}
		}
	}
	return holidays, nil
}

func (s *service) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, holidayCacheKey).Err(); err != nil {
		s.logger.Warn("holiday cache invalidate failed", zap.Error(err))
	}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, calendarerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:         h.ID.String(),
		Name:       h.Name,
		Date:       h.Date.Format("2006-01-02"),
		Recurrence: h.Recurrence,
	}
}
