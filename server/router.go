package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/keyset/ctxutil"
	"github.com/ncobase/keyset/log"
	"github.com/sirupsen/logrus"
)

// TraceHeader carries the request trace id.
const TraceHeader = "X-Trace-Id"

// NewRouter creates the gin engine serving h.
func NewRouter(h *Handler, mode string) *gin.Engine {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(Trace())
	router.Use(Logger(h.logger))

	h.RegisterRoutes(router)
	return router
}

// Trace assigns every request a trace id, reusing the one of the incoming
// TraceHeader, and echoes it in the response.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if id := c.GetHeader(TraceHeader); id != "" {
			ctx = ctxutil.SetTraceID(ctx, id)
		}
		ctx, id := ctxutil.EnsureTraceID(ctx)

		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceHeader, id)
		c.Next()
	}
}

// Logger logs every request once it has been served.
func Logger(l *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		l.EntryWithFields(c.Request.Context(), logrus.Fields{
			"method":   method,
			"path":     path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		}).Info("HTTP request")
	}
}
