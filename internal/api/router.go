// Package api assembles the HTTP surface over the simulation engine and the
// saved loan state.
package api

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"loan-overpay/internal/api/handlers"
	"loan-overpay/internal/api/middleware"
	"loan-overpay/internal/cache"
	"loan-overpay/internal/logging"
	"loan-overpay/internal/notify"
	"loan-overpay/internal/store"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// Deps is everything the router needs. Push and PushEnabled may be nil.
type Deps struct {
	Store       store.Store
	Memo        *cache.Memo
	Push        *notify.Dispatcher
	PushEnabled func(context.Context) bool
	Now         func() time.Time
	Logger      *log.Logger
	CORSOrigins []string
	// StaticDir, when it exists, is served as a single-page app for all
	// non-API paths.
	StaticDir string
}

func NewRouter(d Deps) *gin.Engine {
	logger := logging.OrDiscard(d.Logger)
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Memo == nil {
		d.Memo = cache.NewMemo(nil, logger)
	}

	router := gin.New()
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.ErrorHandler(logger))

	sim := handlers.NewSimulationHandler(d.Memo, d.Store, d.Now, logger)
	state := handlers.NewStateHandler(d.Store, logger)
	over := handlers.NewOverpaymentHandler(d.Store, d.Push, d.PushEnabled, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/simulate", sim.Simulate)
		v1.POST("/simulate/compare", sim.Compare)

		v1.GET("/simulation", sim.GetSimulation)
		v1.GET("/simulation/chart", sim.Chart)

		v1.GET("/state", state.GetState)
		v1.PUT("/state/loan", state.PutLoan)
		v1.PUT("/state/recurring", state.PutRecurring)
		v1.PUT("/state/sheet-url", state.PutSheetURL)

		v1.GET("/overpayments", over.List)
		v1.POST("/overpayments", over.Add)
		v1.GET("/overpayments/push-status", over.PushStatus)
		v1.DELETE("/overpayments/:id", over.Remove)
	}

	if d.StaticDir != "" {
		if _, err := os.Stat(d.StaticDir); err == nil {
			router.Static("/assets", d.StaticDir+"/assets")
			router.StaticFile("/favicon.ico", d.StaticDir+"/favicon.ico")
			router.NoRoute(func(c *gin.Context) {
				if strings.HasPrefix(c.Request.URL.Path, "/api") {
					c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
					return
				}
				c.File(d.StaticDir + "/index.html")
			})
			logger.Info("serving static files", "dir", d.StaticDir)
		} else {
			logger.Warn("static directory not found, skipping static file serving", "dir", d.StaticDir)
		}
	}

	return router
}
