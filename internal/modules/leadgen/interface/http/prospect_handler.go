package http

import (
	"strings"

	leadRequest "LeadForge/internal/modules/leadgen/application/dto/request"
	"LeadForge/internal/modules/leadgen/application/service"
	"LeadForge/pkg/back"
	"LeadForge/pkg/xerr"
	"LeadForge/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProspectHandler exposes the discovery + research flow.
type ProspectHandler struct {
	prospectSvc *service.ProspectService
}

func NewProspectHandler(prospectSvc *service.ProspectService) *ProspectHandler {
	return &ProspectHandler{prospectSvc: prospectSvc}
}

// Prospect handles a prospecting request.
//
// Route: POST /leadgen/prospects
// Body: ProspectRequest
// Respond: ProspectRespond
func (h *ProspectHandler) Prospect(c *gin.Context) {
	var req leadRequest.ProspectRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	if strings.TrimSpace(req.ICP) == "" {
		back.Error(c, xerr.BadRequest, "icp must not be empty")
		return
	}

	data, err := h.prospectSvc.Prospect(c.Request.Context(), req)
	if err != nil {
		zlog.Error("prospecting failed", zap.String("icp", req.ICP), zap.Error(err))
	}
	back.Result(c, data, err)
}
