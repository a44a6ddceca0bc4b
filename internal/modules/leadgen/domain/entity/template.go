package entity

import "time"

// Template is a reusable outreach email skeleton with bracket-delimited
// placeholders. Templates are immutable reference data: created at seed time,
// read-only afterwards. Identity is the Id.
type Template struct {
	Id        string    `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	Subject   string    `gorm:"column:subject;type:varchar(512);not null" json:"subject"`
	Body      string    `gorm:"column:body;type:text;not null" json:"body"`
	Category  string    `gorm:"column:category;type:varchar(64);index:idx_email_template_category" json:"category"`
	Tone      string    `gorm:"column:tone;type:varchar(64)" json:"tone"`
	Variables []string  `gorm:"column:variables;type:json;serializer:json" json:"variables"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime" json:"-"`
}

func (Template) TableName() string { return "email_template" }

// TemplateMatch is an ephemeral retrieval result. Score is cosine similarity
// in [0,1]; BodyPreview is the truncated preview stored in the vector index,
// never the full body.
type TemplateMatch struct {
	Id          string  `json:"id"`
	Score       float32 `json:"score"`
	Subject     string  `json:"subject"`
	Category    string  `json:"category"`
	Tone        string  `json:"tone"`
	BodyPreview string  `json:"body_preview"`
}
