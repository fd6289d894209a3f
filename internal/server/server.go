package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/foodbridge/backend/config"
	"github.com/foodbridge/backend/internal/api"
	"github.com/foodbridge/backend/internal/middleware"
	"github.com/foodbridge/backend/internal/service"
)

// Server wires the HTTP surface together and owns graceful shutdown.
type Server struct {
	router   *gin.Engine
	http     *http.Server
	activity *service.ActivityService
	log      *logrus.Logger
}

func New(deps api.Deps) *Server {
	if config.GetEnvironment() == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	activity := api.SetupAPI(router, deps)

	return &Server{
		router:   router,
		activity: activity,
		log:      deps.Log,
		http: &http.Server{
			Addr:         deps.Config.ServerHost + ":" + deps.Config.ServerPort,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("starting HTTP server")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, drains in-flight requests and
// flushes the activity recorder.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.activity.Close()
	return err
}
