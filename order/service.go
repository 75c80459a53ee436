package order

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Service resolves orders for a page load.
type Service struct {
	connector Connector
	logger    *zap.Logger
}

// NewService builds a Service on top of the given connector.
func NewService(connector Connector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		connector: connector,
		logger:    logger,
	}
}

// Lookup connects to the data source and resolves the order with the given number.
func (s *Service) Lookup(ctx context.Context, id string) (Order, error) {
	if IsBlankID(id) {
		return Order{}, ErrBlankID
	}
	start := time.Now()

	ws, err := s.connector.Connect(ctx)
	if err != nil {
		s.logger.Warn("order source connect failed", zap.Error(err))
		return Order{}, err
	}

	o, err := Lookup(ctx, ws, id)
	switch {
	case err == nil:
		s.logger.Info("order resolved",
			zap.String("pedido", id),
			zap.Duration("duration", time.Since(start)))
	case errors.Is(err, ErrNotFound):
		s.logger.Info("order not found", zap.String("pedido", id))
	default:
		s.logger.Warn("order lookup failed", zap.String("pedido", id), zap.Error(err))
	}
	return o, err
}
