package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter wires the identity card routes.
func NewRouter(idcardHandler *IDCardHandler, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "OCR ID Card Extraction",
			"engine":  idcardHandler.idcardService.Engine(),
		})
	})

	// Legacy single-endpoint route.
	router.POST("/extract", idcardHandler.ExtractIDCard)

	api := router.Group("/api/v1")
	{
		idcard := api.Group("/idcard")
		{
			idcard.POST("/extract", idcardHandler.ExtractIDCard)
			idcard.POST("/parse", idcardHandler.ParseText)
		}
	}

	return router
}
