package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/config"
	logpkg "github.com/kailas-cloud/mdsearch/internal/logger"
)

// newLogger builds the process logger and stores it in ctx.
func newLogger(ctx context.Context, cfg config.Config) (*zap.Logger, context.Context, error) {
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, ctx, fmt.Errorf("create logger: %w", err)
	}
	return logger, logpkg.ContextWithLogger(ctx, logger), nil
}
