package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"confirmflow/config"
	"confirmflow/credential"
	"confirmflow/db"
	"confirmflow/order"
)

// sheetsSource loads the service-account credential on every connect, so a
// missing or broken credential block is reported on the page instead of
// preventing startup.
type sheetsSource struct {
	account   credential.ServiceAccount
	sheetID   string
	worksheet string
	extra     []option.ClientOption
}

func (s *sheetsSource) Connect(ctx context.Context) (order.Worksheet, error) {
	if s.sheetID == "" {
		return nil, fmt.Errorf("%w: sheet id", credential.ErrConfigMissing)
	}
	cred, err := credential.Load(s.account)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithTokenSource(cred.TokenSource(ctx))}, s.extra...)
	return order.NewSheetsConnector(s.sheetID, s.worksheet, opts...).Connect(ctx)
}

// newConnector builds the order connector selected by the configuration. The
// returned close func releases source resources.
func newConnector(ctx context.Context, cfg *config.Config, logger *zap.Logger) (order.Connector, func(), error) {
	src := cfg.Source
	switch src.Kind {
	case config.SourceSheets:
		logger.Info("order source: google sheets",
			zap.String("worksheet", src.Worksheet))
		return &sheetsSource{
			account:   cfg.Credentials,
			sheetID:   src.SpreadsheetID,
			worksheet: src.Worksheet,
		}, func() {}, nil

	case config.SourceXLSX:
		logger.Info("order source: workbook",
			zap.String("path", src.XLSXPath),
			zap.String("worksheet", src.Worksheet))
		return order.NewXLSXConnector(src.XLSXPath, src.Worksheet), func() {}, nil

	case config.SourcePostgres:
		pool, err := db.NewPool(ctx, src.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap database pool: %w", err)
		}
		logger.Info("order source: postgres mirror", zap.String("table", src.Table))
		return order.NewPGConnector(pool, src.Table), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("invalid order source: %q", src.Kind)
	}
}
