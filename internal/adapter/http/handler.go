// Package handler exposes the running search over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
	"github.com/bruteforce-framework/bruteforce/internal/port"
)

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Status   domain.SearchStatus `json:"status"`
	Running  bool                `json:"running"`
	Finished bool                `json:"finished"`
	Attempts uint64              `json:"attempts"`
	// Metrics is only set while workers are running.
	Metrics *domain.ResourceMetrics `json:"metrics,omitempty"`
}

type SearchHandler struct {
	search port.SearchService
}

func NewSearchHandler(search port.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

func (h *SearchHandler) GetStatus(c *gin.Context) {
	status := h.search.Status()
	resp := StatusResponse{
		Status:   status,
		Running:  status == domain.StatusRunning,
		Finished: status.Terminal(),
		Attempts: h.search.Attempts(),
	}
	if m, ok := h.search.Metrics(); ok {
		resp.Metrics = &m
	}
	c.JSON(http.StatusOK, resp)
}

// StopSearch cancels the running search. It answers 409 when nothing runs.
func (h *SearchHandler) StopSearch(c *gin.Context) {
	if h.search.Status() != domain.StatusRunning {
		c.JSON(http.StatusConflict, gin.H{"error": "no search is running"})
		return
	}
	h.search.Cancel()
	c.JSON(http.StatusAccepted, gin.H{"status": "stopping"})
}
