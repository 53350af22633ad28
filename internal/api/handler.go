package api

import (
	"time"

	"paper-core/internal/engine"
	"paper-core/internal/events"
	"paper-core/internal/monitor"
	"paper-core/pkg/cache"
	"paper-core/pkg/db"

	"github.com/gin-gonic/gin"
)

// Server wires HTTP endpoints around the engine and the event bus.
type Server struct {
	Router    *gin.Engine
	Bus       *events.Bus
	Engine    engine.Service
	Store     *db.Store
	Quotes    *cache.ShardedQuoteCache
	Metrics   *monitor.SystemMetrics
	JWTSecret string
	Meta      SystemMeta
}

// SystemMeta describes runtime status exposed to the UI.
type SystemMeta struct {
	UseMockQuotes bool
	TickInterval  time.Duration
	Version       string
}

func NewServer(bus *events.Bus, eng engine.Service, store *db.Store, quotes *cache.ShardedQuoteCache, metrics *monitor.SystemMetrics, meta SystemMeta, jwtSecret string) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger(metrics))
	r.Use(RateLimitMiddleware())
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(CORSMiddleware())

	s := &Server{
		Router:    r,
		Bus:       bus,
		Engine:    eng,
		Store:     store,
		Quotes:    quotes,
		Metrics:   metrics,
		JWTSecret: jwtSecret,
		Meta:      meta,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/ws", s.websocket)

	api := s.Router.Group("/api")
	{
		api.GET("/state", s.getState)
		api.GET("/quotes", s.getQuotes)
		api.GET("/metrics", s.getMetrics)

		// Auth endpoints (no auth required)
		auth := api.Group("/auth")
		{
			auth.POST("/register", s.registerUser)
			auth.POST("/login", s.loginUser)
		}

		// Control surface behind auth
		protected := api.Group("")
		protected.Use(AuthMiddleware(s.JWTSecret))
		{
			protected.POST("/pause", s.pauseTrading)
			protected.POST("/resume", s.resumeTrading)
			protected.POST("/reset", s.resetSession)
			protected.POST("/strategy/:name", s.toggleStrategy)
			protected.POST("/logs/clear", s.clearNotices)
		}
	}
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
