package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"car-price-api/internal/service"
)

// MetadataHandler mantiene dependencias para los endpoints de metadatos.
type MetadataHandler struct {
	logger   *zap.Logger
	metadata *service.MetadataService
}

func NewMetadataHandler(logger *zap.Logger, metadata *service.MetadataService) *MetadataHandler {
	return &MetadataHandler{
		logger:   logger,
		metadata: metadata,
	}
}

// DropdownOptions maneja GET /api/dropdown_options.
func (h *MetadataHandler) DropdownOptions(c *gin.Context) {
	options, err := h.metadata.DropdownOptions(c.Request.Context())
	if err != nil {
		h.logger.Error("dropdown options failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an error occurred while retrieving filter options"})
		return
	}
	c.JSON(http.StatusOK, options)
}

// BrandModelMapping maneja GET /api/brand_model_mapping.
func (h *MetadataHandler) BrandModelMapping(c *gin.Context) {
	mapping, err := h.metadata.BrandModelMapping(c.Request.Context())
	if err != nil {
		h.logger.Error("brand-model mapping failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an error occurred while retrieving brand-model mapping"})
		return
	}
	c.JSON(http.StatusOK, mapping)
}
