// Package audit writes a JSON trail of every mutating action.
package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

type Service struct {
	log *zap.Logger
}

// New builds a trail writing to output (stdout, stderr or a file path).
func New(output string) (*Service, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.Sampling = nil

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit logger: %w", err)
	}
	return NewWithLogger(l.Named("audit")), nil
}

func NewWithLogger(l *zap.Logger) *Service {
	return &Service{log: l}
}

// Nop discards every entry.
func Nop() *Service {
	return &Service{log: zap.NewNop()}
}

// Log records that actor performed action on an entity.
func (s *Service) Log(ctx context.Context, actor model.Session, action, entityType, entityID string, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("action", action),
		zap.String("entity_type", entityType),
		zap.String("entity_id", entityID),
		zap.String("actor_id", actor.UserID),
		zap.Stringer("actor_role", actor.Role),
	}
	if rid, ok := ctx.Value(logger.RequestIDKey{}).(string); ok && rid != "" {
		base = append(base, zap.String("request_id", rid))
	}
	s.log.Info("audit", append(base, fields...)...)
}

func (s *Service) Sync() error {
	return s.log.Sync()
}
