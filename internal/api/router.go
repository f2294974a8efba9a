// Package api serves goal trees over HTTP at /progressBars. Each request is
// handled by a gateway.Local bound to the authenticated principal, so
// ownership and version checks live in one place.
package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/alexanderramin/goaltree/internal/contract"
	"github.com/alexanderramin/goaltree/internal/db"
	"github.com/alexanderramin/goaltree/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// ServiceName is reported on request spans.
const ServiceName = "goaltree"

// Deps are the collaborators the router needs. Only DB is required.
type Deps struct {
	DB       *sql.DB
	UoW      db.UnitOfWork
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	NewID    func() string
}

func (d *Deps) fill() {
	if d.UoW == nil {
		d.UoW = db.NewSQLiteUnitOfWork(d.DB)
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
}

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by contract types to
// gin's validator. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("gin validator engine is %T, not *validator.Validate", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("isodate", contract.ValidateISODate)
	})
	return err
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("api: DB is required")
	}
	if err := RegisterValidators(); err != nil {
		return nil, err
	}
	deps.fill()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(ServiceName))
	router.Use(RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		router.Use(RequestMetrics(deps.Metrics))
	}
	SetupRoutes(router, deps)
	return router, nil
}

// SetupRoutes registers the health, metrics and /progressBars routes.
func SetupRoutes(router *gin.Engine, deps Deps) {
	deps.fill()
	h := &handler{deps: deps}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	bars := router.Group("/progressBars")
	bars.Use(AuthMiddleware(deps.DB))
	{
		bars.GET("", h.list)
		bars.POST("", h.create)
		bars.PUT("/:id", h.update)
		bars.DELETE("/:id", h.remove)
	}
}
