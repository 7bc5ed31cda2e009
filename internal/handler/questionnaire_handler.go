package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neuronalfit/assessment-backend/internal/questionnaire"
	"github.com/neuronalfit/assessment-backend/internal/response"
	"github.com/neuronalfit/assessment-backend/internal/scoring"
)

// QuestionnaireHandler exposes the questionnaire catalog.
type QuestionnaireHandler struct {
	catalog *questionnaire.Catalog
}

// NewQuestionnaireHandler creates a new QuestionnaireHandler.
func NewQuestionnaireHandler(catalog *questionnaire.Catalog) *QuestionnaireHandler {
	return &QuestionnaireHandler{catalog: catalog}
}

// GetCatalog godoc
// GET /api/v1/questionnaire
// Returns every domain with its questions and the answer scale.
func (h *QuestionnaireHandler) GetCatalog(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"version":           h.catalog.Version,
		"frequency_options": h.catalog.FrequencyOptions,
		"domains":           h.catalog.Domains,
		"question_count":    h.catalog.QuestionCount(),
	})
}

// GetDomain godoc
// GET /api/v1/questionnaire/domains/:domain
func (h *QuestionnaireHandler) GetDomain(c *gin.Context) {
	id, ok := scoring.ResolveDomain(c.Param("domain"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	d, ok := h.catalog.Domain(id)
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"domain": d})
}
