package tables

import (
	"gridsync/core/grid"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new tables feature.
func NewFeature(workbook grid.Workbook, cfg Config, logger *zap.Logger) *Feature {
	svc := NewService(workbook, cfg, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "tables"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service.workbook != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service returns the feature's service.
func (f *Feature) Service() *Service {
	return f.service
}
