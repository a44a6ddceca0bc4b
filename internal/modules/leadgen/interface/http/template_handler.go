package http

import (
	leadRequest "LeadForge/internal/modules/leadgen/application/dto/request"
	"LeadForge/internal/modules/leadgen/application/service"
	"LeadForge/pkg/back"
	"LeadForge/pkg/xerr"
	"LeadForge/pkg/zlog"

	"github.com/gin-gonic/gin"
)

// TemplateHandler exposes template search and index statistics.
type TemplateHandler struct {
	templateSvc *service.TemplateService
}

func NewTemplateHandler(templateSvc *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateSvc: templateSvc}
}

// Search handles a template similarity search.
//
// Route: POST /leadgen/templates/search
// Body: TemplateSearchRequest
// Respond: TemplateSearchRespond
func (h *TemplateHandler) Search(c *gin.Context) {
	var req leadRequest.TemplateSearchRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.templateSvc.Search(c.Request.Context(), req)
	back.Result(c, data, err)
}

// Create indexes a new template.
//
// Route: POST /leadgen/templates
// Body: TemplateCreateRequest
// Respond: TemplateCreateRespond
func (h *TemplateHandler) Create(c *gin.Context) {
	var req leadRequest.TemplateCreateRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.templateSvc.Create(c.Request.Context(), req)
	back.Result(c, data, err)
}

// Remove drops a template from the index.
//
// Route: DELETE /leadgen/templates/:id
func (h *TemplateHandler) Remove(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	err := h.templateSvc.Remove(c.Request.Context(), id)
	back.Result(c, nil, err)
}

// Stats reports vector index statistics.
//
// Route: GET /leadgen/templates/stats
func (h *TemplateHandler) Stats(c *gin.Context) {
	data, err := h.templateSvc.Stats(c.Request.Context())
	back.Result(c, data, err)
}
