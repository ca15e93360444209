package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/apexcadcam/apex-item/config"
	"github.com/apexcadcam/apex-item/middlewares"
	"github.com/apexcadcam/apex-item/models"
	"github.com/apexcadcam/apex-item/utils"
	"github.com/apexcadcam/apex-item/workflow"
)

const defaultPort = "8080"

func cardConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		force := c.Query("force") == "1" || c.Query("force") == "true"
		cardConfig, err := models.GetItemPriceCardConfig(c.Request.Context(), force)
		if err != nil {
			config.LogError(config.GetLogger(), "server.go", "cardConfigHandler", "GetItemPriceCardConfig", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build card config"})
			return
		}
		c.JSON(http.StatusOK, cardConfig)
	}
}

func clearCardConfigCacheHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := models.ClearItemPriceCardConfigCache(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear card config cache"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func refreshItemPriceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "item price id is required"})
			return
		}
		snapshot, err := workflow.RefreshItemPrice(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item price not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snapshot)
	}
}

// bindErrorResponse maps a binding failure onto the response body. Failed
// validation tags are listed per field; malformed JSON stays generic.
func bindErrorResponse(err error) gin.H {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)}
	}
	return gin.H{"error": "invalid request"}
}

func refreshItemPricesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Names any `json:"names"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, bindErrorResponse(err))
			return
		}
		updated := workflow.RefreshItemPrices(c.Request.Context(), req.Names)
		c.JSON(http.StatusOK, gin.H{"updated": updated})
	}
}

func refreshItemPricesByFilterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Filter models.ItemPriceFilter `json:"filter"`
			Limit  int                    `json:"limit"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, bindErrorResponse(err))
			return
		}
		updated, err := workflow.RefreshItemPricesByFilter(c.Request.Context(), req.Filter, req.Limit)
		if err != nil {
			config.LogError(config.GetLogger(), "server.go", "refreshItemPricesByFilterHandler", "RefreshItemPricesByFilter", req.Filter, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh by filter failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": updated})
	}
}

func purchaseDocumentEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			VoucherType string `json:"voucher_type" binding:"required"`
			DocumentNo  string `json:"document_no" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, bindErrorResponse(err))
			return
		}
		err := workflow.ProcessPurchaseDocumentEvent(c.Request.Context(), models.VoucherType(req.VoucherType), req.DocumentNo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func updateAllQtyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result := workflow.UpdateAllItemPriceQty(c.Request.Context())
		status := http.StatusOK
		if !result.Success {
			status = http.StatusConflict
		}
		c.JSON(status, result)
	}
}

func updateAllForeignPurchaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result := workflow.UpdateAllItemsForeignPurchaseInfo(c.Request.Context())
		status := http.StatusOK
		if !result.Success {
			status = http.StatusConflict
		}
		c.JSON(status, result)
	}
}

func ensureCardSettingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		setting, err := models.EnsureCardSetting(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not ensure card setting"})
			return
		}
		c.JSON(http.StatusOK, setting)
	}
}

func resetCardSettingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		setting, err := models.ResetCardSetting(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset card setting"})
			return
		}
		c.JSON(http.StatusOK, setting)
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until DB/Redis are ready, app endpoints return 503.
	r := gin.New()
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "x-api-key", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.SessionMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/item-price-card-config", cardConfigHandler())
		api.POST("/item-price-card-config/clear", clearCardConfigCacheHandler())
		api.POST("/item-prices/:id/refresh", refreshItemPriceHandler())
		api.POST("/item-prices/refresh", refreshItemPricesHandler())
		api.POST("/item-prices/refresh-by-filter", refreshItemPricesByFilterHandler())

		admin := api.Group("/admin", middlewares.AdminMiddleware())
		{
			admin.POST("/item-prices/update-all-qty", updateAllQtyHandler())
			admin.POST("/items/update-foreign-purchase", updateAllForeignPurchaseHandler())
			admin.POST("/card-setting/ensure", ensureCardSettingHandler())
			admin.POST("/card-setting/reset", resetCardSettingHandler())
		}
	}

	// Document lifecycle notifications from the host ERP.
	r.POST("/internal/events/purchase-document", purchaseDocumentEventHandler())

	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations as
	// a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	workflow.StartStockRefreshWorker(workerCtx)
	workflow.StartReconcileScheduler(workerCtx)

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop background workers first so they don't start new work while we're
	// draining.
	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger logs only requests that collected errors, tagged with
// the request's correlation id.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{"correlation_id": cid}).Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
