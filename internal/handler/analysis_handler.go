package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neuronalfit/assessment-backend/internal/response"
	"github.com/neuronalfit/assessment-backend/internal/service"
)

// AnalysisHandler serves reports, narrative analyses and progress views.
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// GetReport godoc
// GET /api/v1/sessions/:id/report
// Returns the analysis report of a session.
func (h *AnalysisHandler) GetReport(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	report, err := h.analysisService.Report(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}

// GetAnalysis godoc
// GET /api/v1/sessions/:id/analysis
// Returns the narrative analysis of a session.
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	analysis, err := h.analysisService.Analysis(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, analysis)
}

// GetProgress godoc
// GET /api/v1/students/:id/progress
// Returns the evolution of a student over their latest completed sessions.
func (h *AnalysisHandler) GetProgress(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	progress, err := h.analysisService.Progress(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, progress)
}
