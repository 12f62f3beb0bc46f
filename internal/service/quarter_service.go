package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/scantrack/attendance-api/internal/clock"
	"github.com/scantrack/attendance-api/internal/dto"
	"github.com/scantrack/attendance-api/internal/repository"
)

// QuarterService exposes the active grading period and the one admin mutation
// the attendance core supports.
type QuarterService interface {
	Current(ctx context.Context) (dto.QuarterResponse, error)
	UpdateStartTime(ctx context.Context, req dto.UpdateStartTimeRequest) (dto.QuarterResponse, error)
}

type quarterService struct {
	quarters repository.QuarterRepository
	clock    *clock.SchoolClock
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewQuarterService constructs the service.
func NewQuarterService(quarters repository.QuarterRepository, schoolClock *clock.SchoolClock, validate *validator.Validate, logger zerolog.Logger) QuarterService {
	return &quarterService{
		quarters: quarters,
		clock:    schoolClock,
		validate: validate,
		logger:   logger.With().Str("component", "quarter_service").Logger(),
	}
}

func (s *quarterService) Current(ctx context.Context) (dto.QuarterResponse, error) {
	quarter, err := s.quarters.FindActive(ctx, s.clock.BusinessDate())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuarterResponse{}, ErrNoActiveQuarter
		}
		return dto.QuarterResponse{}, err
	}
	return dto.NewQuarterResponse(quarter), nil
}

// UpdateStartTime moves the active quarter's school start time. The new value
// applies to future scans only; recorded lateness is never recomputed.
func (s *quarterService) UpdateStartTime(ctx context.Context, req dto.UpdateStartTimeRequest) (dto.QuarterResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.QuarterResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	startTime, err := clock.ParseTimeOfDay(req.SchoolStartTime)
	if err != nil {
		return dto.QuarterResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	quarter, err := s.quarters.FindActive(ctx, s.clock.BusinessDate())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuarterResponse{}, ErrNoActiveQuarter
		}
		return dto.QuarterResponse{}, err
	}

	if err := s.quarters.UpdateStartTime(ctx, quarter.ID, startTime); err != nil {
		return dto.QuarterResponse{}, fmt.Errorf("update quarter start time: %w", err)
	}

	s.logger.Info().Uint("quarter_id", quarter.ID).
		Str("school_start_time", startTime.String()).Msg("quarter start time updated")

	quarter.SchoolStartTime = startTime
	return dto.NewQuarterResponse(quarter), nil
}
