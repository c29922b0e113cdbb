// Package server is the HTTP backend behind the submit form: it validates a
// scenario request, picks a prompt and asks the LLM for a reply.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/valpere/hrify/internal"
	"github.com/valpere/hrify/internal/generator"
	"github.com/valpere/hrify/internal/moderation"
	"github.com/valpere/hrify/internal/prompts"
	"github.com/valpere/hrify/internal/ratelimit"
)

// LanguageDetector reports "ru", "en", "es" or "unknown" for a text.
type LanguageDetector interface {
	DetectInput(text string) string
}

// Recorder persists processed requests.
type Recorder interface {
	SaveRequest(ctx context.Context, rec internal.ProcessRecord) (string, error)
}

// Config defines server dependencies.
type Config struct {
	AllowedOrigins []string
	Debug          bool

	Prompts    *prompts.Store
	Detector   LanguageDetector
	Generator  generator.Service
	Limiter    ratelimit.Limiter
	Moderation *moderation.Filter
	Recorder   Recorder

	Logger logrus.FieldLogger
}

// Server wires HTTP handlers with prompts, the generator and the audit log.
type Server struct {
	allowedOrigins []string
	debug          bool

	prompts    *prompts.Store
	detector   LanguageDetector
	generator  generator.Service
	limiter    ratelimit.Limiter
	moderation *moderation.Filter
	recorder   Recorder

	log logrus.FieldLogger
	now func() time.Time
}

// NewServer constructs the API server. Generator, Limiter, Moderation and
// Recorder are optional.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Prompts == nil {
		return nil, errors.New("prompts store required")
	}
	if cfg.Detector == nil {
		return nil, errors.New("language detector required")
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(ratelimit.DefaultConfig())
	}
	filter := cfg.Moderation
	if filter == nil {
		filter = moderation.Parse(moderation.DefaultBannedWords)
	}

	if err := cfg.Prompts.Load(true); err != nil {
		log.WithError(err).WithField("path", cfg.Prompts.Path()).Error("failed to load prompts")
	} else {
		log.WithField("path", cfg.Prompts.Path()).Info("loaded prompts")
	}

	return &Server{
		allowedOrigins: cfg.AllowedOrigins,
		debug:          cfg.Debug,
		prompts:        cfg.Prompts,
		detector:       cfg.Detector,
		generator:      cfg.Generator,
		limiter:        limiter,
		moderation:     filter,
		recorder:       cfg.Recorder,
		log:            log,
		now:            time.Now,
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() *gin.Engine {
	if s.debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	corsCfg := cors.DefaultConfig()
	if len(s.allowedOrigins) == 0 || (len(s.allowedOrigins) == 1 && s.allowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.handleHealth)
	r.POST("/process", s.handleProcess)

	debug := r.Group("/debug")
	{
		debug.GET("/env", s.handleDebugEnv)
		debug.GET("/prompts", s.handleDebugPrompts)
	}

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}).Debug("request")
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("hrify backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
