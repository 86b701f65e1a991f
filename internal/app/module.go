package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/Caddilac1/DataHub/internal/app/api/server"
	"github.com/Caddilac1/DataHub/internal/app/service/audit"
	"github.com/Caddilac1/DataHub/internal/app/service/catalog"
	"github.com/Caddilac1/DataHub/internal/app/service/order"
	"github.com/Caddilac1/DataHub/internal/app/service/reconcile"
	"github.com/Caddilac1/DataHub/internal/app/service/statistics"
	"github.com/Caddilac1/DataHub/internal/platform/datamart"
	"github.com/Caddilac1/DataHub/internal/platform/db"
	"github.com/Caddilac1/DataHub/internal/platform/paystack"
	"github.com/Caddilac1/DataHub/pkg/config"
	"github.com/Caddilac1/DataHub/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	paystack.Module,
	datamart.Module,
	server.Module,
	audit.Module,
	catalog.Module,
	order.Module,
	reconcile.Module,
	statistics.Module,
)
