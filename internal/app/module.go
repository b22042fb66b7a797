package app

import (
	"github.com/fatflowers/mealkit/internal/app/api/server"
	"github.com/fatflowers/mealkit/internal/app/service/demand"
	"github.com/fatflowers/mealkit/internal/app/service/diagnostics"
	"github.com/fatflowers/mealkit/internal/app/service/statemachine"
	"github.com/fatflowers/mealkit/internal/platform/db"
	"github.com/fatflowers/mealkit/internal/store"
	"github.com/fatflowers/mealkit/pkg/clock"
	"github.com/fatflowers/mealkit/pkg/config"
	"github.com/fatflowers/mealkit/pkg/logger"
	"time"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	clock.Module,
	store.Module,
	server.Module,
	statemachine.Module,
	demand.Module,
	diagnostics.Module,
)
