package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/model"
	"github.com/nurpe/recycle-disposals/internal/service"
)

type materialLineRequest struct {
	Material string  `json:"material" binding:"required"`
	Quantity float64 `json:"quantity"`
}

type createDisposalRequest struct {
	Company      string                `json:"company" binding:"required"`
	DisposalDate string                `json:"disposal_date" binding:"required"`
	AddressName  string                `json:"address_name" binding:"required"`
	Materials    []materialLineRequest `json:"materials"`
}

type rejectDisposalRequest struct {
	RejectionMessage string `json:"rejection_message"`
}

type removeMaterialRequest struct {
	Material string `json:"material" binding:"required"`
}

type rescheduleRequest struct {
	DisposalDate string `json:"disposal_date" binding:"required"`
}

type changeAddressRequest struct {
	AddressName string `json:"address_name" binding:"required"`
}

func (h *Handler) createDisposal(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req createDisposalRequest
	if !bindJSON(c, &req) {
		return
	}

	companyID, err := uuid.Parse(req.Company)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company"})
		return
	}
	date, err := parseDate(req.DisposalDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid disposal_date"})
		return
	}

	lines := make([]service.MaterialLineInput, 0, len(req.Materials))
	for _, line := range req.Materials {
		materialID, err := uuid.Parse(line.Material)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material"})
			return
		}
		lines = append(lines, service.MaterialLineInput{MaterialID: materialID, Quantity: line.Quantity})
	}

	d, err := h.disposals.Create(c.Request.Context(), service.CreateDisposalInput{
		Principal:    p,
		CompanyID:    companyID,
		DisposalDate: date,
		AddressName:  req.AddressName,
		Materials:    lines,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) listDisposals(c *gin.Context) {
	disposals, err := h.disposals.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, disposals)
}

func (h *Handler) listPendingDisposals(c *gin.Context) {
	disposals, err := h.disposals.ListPending(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, disposals)
}

func (h *Handler) listWorkerDisposals(c *gin.Context) {
	workerID, ok := pathID(c, "workerId")
	if !ok {
		return
	}
	disposals, err := h.disposals.ListByWorker(c.Request.Context(), workerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, disposals)
}

func (h *Handler) listCompanyDisposals(c *gin.Context) {
	companyID, ok := pathID(c, "companyId")
	if !ok {
		return
	}
	disposals, err := h.disposals.ListByCompany(c.Request.Context(), companyID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, disposals)
}

func (h *Handler) getDisposal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.disposals.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) calculateStats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	totals, err := h.disposals.CalculateStats(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// transitionHandler wraps a lifecycle call that needs only the caller and the disposal id.
func (h *Handler) transitionHandler(
	call func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Disposal, error),
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
		d, err := call(c, p, id)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

func (h *Handler) acceptDisposal(c *gin.Context) {
	h.transitionHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Disposal, error) {
		return h.disposals.Accept(c.Request.Context(), p, id)
	})(c)
}

func (h *Handler) cancelDisposal(c *gin.Context) {
	h.transitionHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Disposal, error) {
		return h.disposals.Cancel(c.Request.Context(), p, id)
	})(c)
}

func (h *Handler) rejectDisposal(c *gin.Context) {
	var req rejectDisposalRequest
	if !bindJSON(c, &req) {
		return
	}
	h.transitionHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Disposal, error) {
		return h.disposals.Reject(c.Request.Context(), p, id, req.RejectionMessage)
	})(c)
}

func (h *Handler) completeDisposal(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.disposals.Complete(c.Request.Context(), p, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Disposal)
}

func (h *Handler) addMaterial(c *gin.Context) {
	var req materialLineRequest
	if !bindJSON(c, &req) {
		return
	}
	materialID, err := uuid.Parse(req.Material)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material"})
		return
	}
	h.transitionHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Disposal, error) {
		return h.disposals.AddMaterial(c.Request.Context(), p, id, service.MaterialLineInput{
			MaterialID: materialID,
			Quantity:   req.Quantity,
		})
	})(c)
}

func (h *Handler) removeMaterial(c *gin.Context) {
	var req removeMaterialRequest
	if !bindJSON(c, &req) {
		return
	}
	materialID, err := uuid.Parse(req.Material)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material"})
		return
	}
	h.transitionHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Disposal, error) {
		return h.disposals.RemoveMaterial(c.Request.Context(), p, id, materialID)
	})(c)
}

func (h *Handler) rescheduleDisposal(c *gin.Context) {
	var req rescheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	date, err := parseDate(req.DisposalDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid disposal_date"})
		return
	}
	h.transitionHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Disposal, error) {
		return h.disposals.Reschedule(c.Request.Context(), p, id, date)
	})(c)
}

func (h *Handler) changeDisposalAddress(c *gin.Context) {
	var req changeAddressRequest
	if !bindJSON(c, &req) {
		return
	}
	h.transitionHandler(func(c *gin.Context, p model.Principal, id uuid.UUID) (*model.Disposal, error) {
		return h.disposals.ChangeAddress(c.Request.Context(), p, id, req.AddressName)
	})(c)
}
