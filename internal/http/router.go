package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"car-price-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	predictionH *PredictionHandler,
	metadataH *MetadataHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	api := r.Group("/api")
	api.GET("", apiRoot)

	api.POST("/register", authH.Register)
	api.POST("/login", authH.Login)
	api.POST("/token/refresh", authH.Refresh)
	api.POST("/logout", JWTAuthMiddleware(jwtSvc), authH.Logout)
	api.GET("/users/me", JWTAuthMiddleware(jwtSvc), authH.Me)

	api.POST("/predict", JWTAuthMiddleware(jwtSvc), predictionH.Predict)
	api.POST("/predict/guest", predictionH.PredictGuest)
	api.GET("/predictions", JWTAuthMiddleware(jwtSvc), predictionH.History)

	api.GET("/dropdown_options", metadataH.DropdownOptions)
	api.GET("/brand_model_mapping", metadataH.BrandModelMapping)

	return r
}

// apiRoot maneja GET /api: índice de endpoints para el front-end.
func apiRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Used Cars Price Predictor API",
		"endpoints": gin.H{
			"register":            "/api/register",
			"login":               "/api/login",
			"token_refresh":       "/api/token/refresh",
			"logout":              "/api/logout",
			"predict":             "/api/predict",
			"predict_guest":       "/api/predict/guest",
			"prediction_history":  "/api/predictions",
			"dropdown_options":    "/api/dropdown_options",
			"brand_model_mapping": "/api/brand_model_mapping",
		},
	})
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
