package server

import (
	"fmt"
	"net/http"
	"time"

	"thermacore/internal/config"
	"thermacore/internal/core/service"

	"github.com/asynkron/protoactor-go/actor"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

const ACTOR_REQUEST_TIMEOUT = 5 * time.Second

type Deps struct {
	RootContext *actor.RootContext
	MasterActor *actor.PID
	Settings    *service.SettingsStore
	Ledger      *service.NotificationLedger
	Units       *service.UnitDirectory
	Metrics     http.Handler
	Logger      *zap.Logger
}

type Server struct {
	port        uint
	httpLog     bool
	rootContext *actor.RootContext
	masterActor *actor.PID
	settings    *service.SettingsStore
	ledger      *service.NotificationLedger
	units       *service.UnitDirectory
	metrics     http.Handler
	logger      *zap.Logger
}

func New(cfg config.Config, deps Deps) *Server {
	return &Server{
		port:        cfg.Port,
		httpLog:     cfg.HttpLog,
		rootContext: deps.RootContext,
		masterActor: deps.MasterActor,
		settings:    deps.Settings,
		ledger:      deps.Ledger,
		units:       deps.Units,
		metrics:     deps.Metrics,
		logger:      deps.Logger.With(zap.String("component", "http")),
	}
}

func NewServer(cfg config.Config, deps Deps) *http.Server {
	s := New(cfg, deps)

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
