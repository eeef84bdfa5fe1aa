package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/corefin/ledgercore/internal/platform/logging"
)

// PostingPolicy carries the configurable policy parameters shared across
// services. Passed in at construction time; there is no process-wide state.
type PostingPolicy struct {
	MaxBatchSize              int
	BackdateWarningDays       int
	MaxPostingRetries         int
	RetryInitialBackoff       time.Duration
	IncomeSummaryAccountCode  string
	ReconciliationCadenceDays int
	VarianceAlertPercent      float64
}

// DefaultPostingPolicy returns the policy used when no configuration is supplied.
func DefaultPostingPolicy() PostingPolicy {
	return PostingPolicy{
		MaxBatchSize:              100,
		BackdateWarningDays:       90,
		MaxPostingRetries:         3,
		RetryInitialBackoff:       50 * time.Millisecond,
		IncomeSummaryAccountCode:  "3900",
		ReconciliationCadenceDays: 30,
		VarianceAlertPercent:      10,
	}
}

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}
