package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/recycle-disposals/internal/http/middleware"
	"github.com/nurpe/recycle-disposals/internal/model"
	"github.com/nurpe/recycle-disposals/internal/service"
)

type Services struct {
	Disposals *service.DisposalService
	Companies *service.CompanyService
	Catalog   *service.CatalogService
	Workers   *service.WorkerService
	Reports   *service.ReportService
}

type Handler struct {
	disposals *service.DisposalService
	companies *service.CompanyService
	catalog   *service.CatalogService
	workers   *service.WorkerService
	reports   *service.ReportService
	log       zerolog.Logger
}

func NewHandler(services Services, log zerolog.Logger) *Handler {
	return &Handler{
		disposals: services.Disposals,
		companies: services.Companies,
		catalog:   services.Catalog,
		workers:   services.Workers,
		reports:   services.Reports,
		log:       log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	disposals := protected.Group("/disposals")
	disposals.POST("", h.createDisposal)
	disposals.GET("", h.listDisposals)
	disposals.GET("/pending", h.listPendingDisposals)
	disposals.GET("/worker/:workerId", h.listWorkerDisposals)
	disposals.GET("/company/:companyId", h.listCompanyDisposals)
	disposals.GET("/:id", h.getDisposal)
	disposals.GET("/:id/calculate-stats", h.calculateStats)
	disposals.PUT("/:id/accept", h.acceptDisposal)
	disposals.PUT("/:id/reject", h.rejectDisposal)
	disposals.PUT("/:id/complete", h.completeDisposal)
	disposals.PUT("/:id/cancel", h.cancelDisposal)
	disposals.PUT("/:id/add-material", h.addMaterial)
	disposals.PUT("/:id/remove-material", h.removeMaterial)
	disposals.PUT("/:id/schedule", h.rescheduleDisposal)
	disposals.PUT("/:id/address", h.changeDisposalAddress)

	companies := protected.Group("/companies")
	companies.GET("", h.listCompanies)
	companies.GET("/:id", h.getCompany)
	companies.GET("/:id/achievements", h.companyAchievements)
	companies.GET("/:id/impact-report", h.exportImpactReport)
	companies.GET("/:id/certificate", h.exportCertificate)
	companies.PUT("/:id/add-disposal", h.applyDisposal)
	companies.PUT("/:id/name", h.setCompanyName)
	companies.PUT("/:id/contact-number", h.setCompanyContactNumber)
	companies.PUT("/:id/profile-image", h.setCompanyProfileImage)
	companies.PUT("/:id/add-address", h.addCompanyAddress)
	companies.PUT("/:id/remove-address", h.removeCompanyAddress)
	companies.PUT("/:id/pick-up-schedule", h.addPickUpSchedule)
	companies.PUT("/:id/pick-up-schedule/:scheduleId", h.updatePickUpSchedule)
	companies.DELETE("/:id/pick-up-schedule/:scheduleId", h.deletePickUpSchedule)
	companies.DELETE("/:id/pick-up-schedule", h.clearPickUpSchedules)

	protected.GET("/materials", h.listMaterials)
	protected.GET("/materials/search", h.searchMaterials)
	protected.GET("/materials/:id", h.getMaterial)
	protected.GET("/achievements", h.listAchievements)
	protected.GET("/achievements/:id", h.getAchievement)

	workers := protected.Group("/workers")
	workers.GET("", h.listWorkers)
	workers.GET("/:id", h.getWorker)
	workers.PUT("/:id/name", h.setWorkerName)
	workers.PUT("/:id/location", h.setWorkerLocation)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUpstream):
		h.log.Warn().Err(err).Str("route", c.FullPath()).Msg("upstream failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func principal(c *gin.Context) (model.Principal, bool) {
	p, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return p, ok
}

// pathID parses the named path parameter, answering 400 when it is not a uuid.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func sendFile(c *gin.Context, file *service.ReportFile) {
	c.Header("Content-Disposition", "attachment; filename=\""+file.FileName+"\"")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
