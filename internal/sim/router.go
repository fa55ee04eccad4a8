package sim

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the simulator's HTTP surface: the Table API subset,
// a health endpoint, and prometheus metrics.
func NewRouter(store *Store, log *logrus.Logger, cfg *Config, version string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.

	r.Use(requestLogger(log))
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       1 * time.Hour,
	}))
	r.Use(prometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	tables := NewTableHandler(store, log)
	r.GET("/api/now/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": version})
	})
	r.GET("/api/now/table/:table", tables.Query)
	r.POST("/api/now/table/:table", tables.Create)

	return r
}

// requestLogger logs one line per request with method, path, and status.
func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("request")
	}
}

// prometheusMiddleware records HTTP request duration and count.
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath() // route pattern, not actual path (avoids cardinality explosion)
		if path == "" {
			path = "unknown"
		}
		requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		requestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// respondError writes a Table API error envelope and aborts the request.
func respondError(c *gin.Context, status int, message, detail string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":  gin.H{"message": message, "detail": detail},
		"status": "failure",
	})
}
