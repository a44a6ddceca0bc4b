package entity

// Dossier is the structured research output for one prospective company.
// Optional fields may be empty; downstream consumers substitute documented
// defaults instead of failing.
type Dossier struct {
	CompanyName      string   `json:"company_name"`
	CompanySummary   string   `json:"company_summary"`
	ValueProposition string   `json:"value_proposition"`
	TargetCustomers  []string `json:"target_customers"`
	Technologies     []string `json:"technologies"`
	PainPoints       []string `json:"pain_points"`
	RecentNews       []string `json:"recent_news"`
	SourceURL        string   `json:"source_url"`
}

// SenderContext carries the outreach sender's details used to fill templates.
type SenderContext struct {
	SenderName string `json:"sender_name"`
	Company    string `json:"company"`
	Solution   string `json:"solution"`
	Website    string `json:"website"`
}
