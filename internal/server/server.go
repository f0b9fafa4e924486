package server

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orgoj/fanlog/internal/config"
	"github.com/orgoj/fanlog/internal/iputil"
	"github.com/orgoj/fanlog/internal/logger"
	"github.com/orgoj/fanlog/internal/validation"
	"github.com/orgoj/fanlog/internal/version"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = time.Minute
	limiterMaxIdle         = 10 * time.Minute
)

// Dependencies holds the dependencies needed by the server.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger
}

// rateLimiterEntry is the per-client limiter with its last use.
type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Server is the admin HTTP API of a running Logger.
type Server struct {
	router *gin.Engine
	config *config.Config
	logger *logger.Logger

	trustedProxies []netip.Prefix
	limiters       sync.Map // client IP -> *rateLimiterEntry
	limiterMu      sync.Mutex
	rateLimit      rate.Limit
	burstLimit     int

	httpMu       sync.Mutex
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

// NewServer creates a new server instance with its dependencies.
func NewServer(deps Dependencies) *Server {
	if deps.Config == nil {
		panic("server: Config dependency cannot be nil")
	}
	if deps.Logger == nil {
		panic("server: Logger dependency cannot be nil")
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(deps.Logger))

	// validated with the rest of the configuration
	trusted, err := iputil.ParseCIDRs(deps.Config.Admin.TrustedProxies)
	if err != nil {
		deps.Logger.Warning("Ignoring admin.trusted_proxies: %v", err)
	}

	s := &Server{
		router:         router,
		config:         deps.Config,
		logger:         deps.Logger,
		trustedProxies: trusted,
		shutdownChan:   make(chan struct{}),
	}

	if deps.Config.Admin.RateLimit > 0 {
		// requests per minute to requests per second, bursts up to the per-minute limit
		s.rateLimit = rate.Limit(float64(deps.Config.Admin.RateLimit) / 60.0)
		s.burstLimit = deps.Config.Admin.RateLimit
		go s.cleanupRateLimiters()
	} else {
		s.rateLimit = rate.Inf
	}

	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	s.router.GET("/version", versionHandler)
	s.router.GET("/level", s.getLevel)
	s.router.GET("/destinations", s.listDestinations)

	mutating := s.router.Group("/")
	if s.rateLimit != rate.Inf {
		mutating.Use(s.rateLimitMiddleware())
	}
	mutating.PUT("level", s.putLevel)
	mutating.DELETE("destinations/:id", s.deleteDestination)
	mutating.POST("flush", s.flush)
}

func versionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":     version.Version,
		"build_date":  version.BuildDate,
		"commit_hash": version.CommitHash,
	})
}

func (s *Server) getLevel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"level": s.logger.OutputLevel().Describe()})
}

// levelRequest decodes the level name through Level's text unmarshalling.
type levelRequest struct {
	Level *logger.Level `json:"level" binding:"required"`
}

func (s *Server) putLevel(c *gin.Context) {
	var req levelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	level := *req.Level

	s.logger.SetOutputLevel(level)
	s.logger.Info("Output level changed to %s via admin API", level.Describe())
	c.JSON(http.StatusOK, gin.H{"level": level.Describe()})
}

// destinationInfo is the JSON view of a registered destination.
type destinationInfo struct {
	Identifier  string `json:"identifier"`
	Level       string `json:"level"`
	Description string `json:"description"`
}

func (s *Server) listDestinations(c *gin.Context) {
	destinations := s.logger.Destinations()
	out := make([]destinationInfo, 0, len(destinations))
	for _, d := range destinations {
		out = append(out, destinationInfo{
			Identifier:  d.Identifier(),
			Level:       d.OutputLevel().Describe(),
			Description: d.String(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"destinations": out})
}

func (s *Server) deleteDestination(c *gin.Context) {
	id := c.Param("id")
	if err := validation.IsValidIdentifier(id, validation.DefaultMaxIdentifierLength); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d := s.logger.Destination(id)
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Destination '%s' not found", id)})
		return
	}

	s.logger.RemoveDestination(d)
	if err := d.Close(); err != nil {
		s.logger.Warning("Error closing destination '%s': %v", id, err)
	}
	s.logger.Info("Destination '%s' removed via admin API", id)
	c.JSON(http.StatusOK, gin.H{"removed": id})
}

func (s *Server) flush(c *gin.Context) {
	s.logger.Flush()
	c.JSON(http.StatusOK, gin.H{"status": "flushed"})
}

// requestLogger reports each request at Debug level. Health checks are
// logged at Verbose to keep them out of normal output.
func requestLogger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := logger.DEBUG
		if strings.HasSuffix(c.FullPath(), "/health") {
			level = logger.VERBOSE
		}
		l.Logf(level, "%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// rateLimitMiddleware creates a Gin middleware for rate limiting based on IP.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := iputil.ClientIP(c.Request, s.trustedProxies)

		s.limiterMu.Lock()
		var entry *rateLimiterEntry
		if v, ok := s.limiters.Load(ip); ok {
			entry = v.(*rateLimiterEntry)
		} else {
			entry = &rateLimiterEntry{limiter: rate.NewLimiter(s.rateLimit, s.burstLimit)}
			s.limiters.Store(ip, entry)
		}
		entry.lastSeen = time.Now()
		s.limiterMu.Unlock()

		if !entry.limiter.Allow() {
			s.logger.Info("Rate limit exceeded for IP: %s", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}

// cleanupRateLimiters periodically drops limiters of idle clients until
// Shutdown is called.
func (s *Server) cleanupRateLimiters() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.removeIdleLimiters(time.Now().Add(-limiterMaxIdle))
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *Server) removeIdleLimiters(cutoff time.Time) {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	s.limiters.Range(func(key, value interface{}) bool {
		if value.(*rateLimiterEntry).lastSeen.Before(cutoff) {
			s.limiters.Delete(key)
		}
		return true
	})
}

// limiterIPs lists the clients that currently have a limiter.
func (s *Server) limiterIPs() []string {
	var ips []string
	s.limiters.Range(func(key, _ interface{}) bool {
		ips = append(ips, key.(string))
		return true
	})
	sort.Strings(ips)
	return ips
}

// Start serves the admin API until Shutdown is called. It returns
// http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Admin.Host, s.config.Admin.Port)

	s.httpMu.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.httpServer
	s.httpMu.Unlock()

	s.logger.Info("Starting admin API on %s", addr)
	return srv.ListenAndServe()
}

// Shutdown stops the cleanup goroutine and gracefully stops the HTTP server
// if it was started.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
	})

	s.httpMu.Lock()
	srv := s.httpServer
	s.httpMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
