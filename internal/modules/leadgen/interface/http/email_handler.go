package http

import (
	leadRequest "LeadForge/internal/modules/leadgen/application/dto/request"
	"LeadForge/internal/modules/leadgen/application/service"
	"LeadForge/pkg/back"
	"LeadForge/pkg/xerr"
	"LeadForge/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EmailHandler exposes personalized email generation.
type EmailHandler struct {
	emailSvc *service.EmailService
}

func NewEmailHandler(emailSvc *service.EmailService) *EmailHandler {
	return &EmailHandler{emailSvc: emailSvc}
}

// Generate handles one email generation request.
//
// Route: POST /leadgen/emails
// Body: EmailRequest
// Respond: EmailRespond
func (h *EmailHandler) Generate(c *gin.Context) {
	var req leadRequest.EmailRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.emailSvc.GenerateEmail(c.Request.Context(), req)
	if err != nil {
		zlog.Error("email generation failed",
			zap.String("company", req.LeadDossier.CompanyName),
			zap.Error(err))
	}
	back.Result(c, data, err)
}
