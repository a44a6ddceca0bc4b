package respond

import "LeadForge/internal/modules/leadgen/infrastructure/pipeline"

type EmailRespond struct {
	pipeline.EmailArtifact
}
