package request

import "LeadForge/internal/modules/leadgen/domain/entity"

type EmailRequest struct {
	LeadDossier      entity.Dossier       `json:"lead_dossier" binding:"required"`
	UserContext      entity.SenderContext `json:"user_context"`
	TemplateCategory string               `json:"template_category"`
	Config           GenerationConfig     `json:"config"`
}
