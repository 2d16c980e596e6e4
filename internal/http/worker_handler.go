package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/recycle-disposals/internal/model"
)

type workerLocationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (h *Handler) listWorkers(c *gin.Context) {
	workers, err := h.workers.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, workers)
}

func (h *Handler) getWorker(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	worker, err := h.workers.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, worker)
}

func (h *Handler) setWorkerName(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	worker, err := h.workers.SetName(c.Request.Context(), p, id, req.Name)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, worker)
}

func (h *Handler) setWorkerLocation(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req workerLocationRequest
	if !bindJSON(c, &req) {
		return
	}
	worker, err := h.workers.SetLocation(c.Request.Context(), p, id, model.Coordinates{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, worker)
}
