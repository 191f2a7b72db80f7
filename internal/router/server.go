package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/asset-maintenance/internal/config"
	"github.com/iliyamo/asset-maintenance/internal/handler"
	"github.com/iliyamo/asset-maintenance/internal/middleware"
	"github.com/iliyamo/asset-maintenance/internal/repository"
	"github.com/iliyamo/asset-maintenance/internal/schedule"
)

// Deps are the collaborators New wires together.  Redis may be nil, in
// which case rate limiting is off.
type Deps struct {
	Cfg       config.Config
	RateLimit config.RateLimitConfig
	DB        *sql.DB
	Redis     *redis.Client
	Options   []schedule.Option
	Log       logrus.FieldLogger
}

// New builds the echo instance with every route of the API.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(d.Log))

	users := repository.NewUserRepo(d.DB)
	tokens := repository.NewTokenRepo(d.DB)
	assets := repository.NewAssetRepo(d.DB)
	types := repository.NewMaintenanceTypeRepo(d.DB)
	records := repository.NewRecordRepo(d.DB)
	schedules := repository.NewScheduleRepo(d.DB)

	opts := append([]schedule.Option{schedule.WithLogger(d.Log)}, d.Options...)
	svc := schedule.NewService(schedules, assets, types, records, opts...)

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, handler.NewAuthHandler(d.Cfg, users, tokens), d.Cfg.JWTSecret)
	RegisterMaintenance(e,
		handler.NewRegistryHandler(assets, types, records),
		handler.NewScheduleHandler(svc),
		d.Cfg.JWTSecret,
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
	)
	return e
}
