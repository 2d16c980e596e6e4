package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/model"
	"github.com/nurpe/recycle-disposals/internal/service"
)

type applyDisposalRequest struct {
	DisposalID string `json:"disposal_id" binding:"required"`
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

type contactNumberRequest struct {
	ContactNumber string `json:"contact_number" binding:"required"`
}

type profileImageRequest struct {
	ProfileImage string `json:"profile_image" binding:"required"`
}

type coordinatesRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type addressRequest struct {
	Name        string              `json:"name"`
	Street      string              `json:"street"`
	City        string              `json:"city"`
	State       string              `json:"state"`
	PostalCode  string              `json:"postal_code"`
	Country     string              `json:"country"`
	Coordinates *coordinatesRequest `json:"coordinates"`
}

type addAddressRequest struct {
	Address addressRequest `json:"address"`
}

type pickUpScheduleRequest struct {
	Day         string `json:"day"`
	Time        string `json:"time"`
	AddressName string `json:"address_name"`
}

type pickUpSchedulePatchRequest struct {
	Day         *string `json:"day"`
	Time        *string `json:"time"`
	AddressName *string `json:"address_name"`
}

func (r addressRequest) toModel() model.Address {
	addr := model.Address{
		Name:       r.Name,
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
	if r.Coordinates != nil {
		addr.Coordinates = &model.Coordinates{Lat: r.Coordinates.Lat, Lng: r.Coordinates.Lng}
	}
	return addr
}

func (h *Handler) listCompanies(c *gin.Context) {
	companies, err := h.companies.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (h *Handler) getCompany(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	company, err := h.companies.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *Handler) companyAchievements(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	achievements, err := h.companies.Achievements(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, achievements)
}

// companyHandler wraps a company mutation that needs the caller and the company id.
func (h *Handler) companyHandler(
	call func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Company, error),
) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		company, err := call(c, p, id)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, company)
	}
}

func (h *Handler) applyDisposal(c *gin.Context) {
	var req applyDisposalRequest
	if !bindJSON(c, &req) {
		return
	}
	disposalID, err := uuid.Parse(req.DisposalID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid disposal_id"})
		return
	}
	h.companyHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Company, error) {
		return h.companies.ApplyDisposal(c.Request.Context(), p, id, disposalID)
	})(c)
}

func (h *Handler) setCompanyName(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	h.companyHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Company, error) {
		return h.companies.SetName(c.Request.Context(), p, id, req.Name)
	})(c)
}

func (h *Handler) setCompanyContactNumber(c *gin.Context) {
	var req contactNumberRequest
	if !bindJSON(c, &req) {
		return
	}
	h.companyHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Company, error) {
		return h.companies.SetContactNumber(c.Request.Context(), p, id, req.ContactNumber)
	})(c)
}

func (h *Handler) setCompanyProfileImage(c *gin.Context) {
	var req profileImageRequest
	if !bindJSON(c, &req) {
		return
	}
	h.companyHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Company, error) {
		return h.companies.SetProfileImage(c.Request.Context(), p, id, req.ProfileImage)
	})(c)
}

func (h *Handler) addCompanyAddress(c *gin.Context) {
	var req addAddressRequest
	if !bindJSON(c, &req) {
		return
	}
	h.companyHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Company, error) {
		return h.companies.AddAddress(c.Request.Context(), p, id, req.Address.toModel())
	})(c)
}

func (h *Handler) removeCompanyAddress(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	h.companyHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Company, error) {
		return h.companies.RemoveAddress(c.Request.Context(), p, id, req.Name)
	})(c)
}

func (h *Handler) addPickUpSchedule(c *gin.Context) {
	var req pickUpScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	h.companyHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Company, error) {
		return h.companies.AddPickUpSchedule(c.Request.Context(), p, id, service.PickUpScheduleInput{
			Day:         req.Day,
			Time:        req.Time,
			AddressName: req.AddressName,
		})
	})(c)
}

func (h *Handler) updatePickUpSchedule(c *gin.Context) {
	var req pickUpSchedulePatchRequest
	if !bindJSON(c, &req) {
		return
	}
	scheduleID, ok := pathID(c, "scheduleId")
	if !ok {
		return
	}
	h.companyHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Company, error) {
		return h.companies.UpdatePickUpSchedule(c.Request.Context(), p, id, scheduleID, service.PickUpSchedulePatchInput{
			Day:         req.Day,
			Time:        req.Time,
			AddressName: req.AddressName,
		})
	})(c)
}

func (h *Handler) deletePickUpSchedule(c *gin.Context) {
	scheduleID, ok := pathID(c, "scheduleId")
	if !ok {
		return
	}
	h.companyHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Company, error) {
		return h.companies.DeletePickUpSchedule(c.Request.Context(), p, id, scheduleID)
	})(c)
}

func (h *Handler) clearPickUpSchedules(c *gin.Context) {
	h.companyHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Company, error) {
		return h.companies.ClearPickUpSchedules(c.Request.Context(), p, id)
	})(c)
}

func (h *Handler) exportImpactReport(c *gin.Context) {
	h.exportReport(c, h.reports.ImpactReport)
}

func (h *Handler) exportCertificate(c *gin.Context) {
	h.exportReport(c, h.reports.Certificate)
}

func (h *Handler) exportReport(
	c *gin.Context,
	render func(ctx context.Context, p model.Principal, companyID uuid.UUID) (*service.ReportFile, error),
) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	file, err := render(c.Request.Context(), p, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, file)
}
