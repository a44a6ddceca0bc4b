package request

type TemplateSearchRequest struct {
	Query    string `json:"query" binding:"required"`
	TopK     int    `json:"top_k"`
	Category string `json:"category"`
}

// TemplateCreateRequest adds one template to the table and the index. Id is
// optional; a stable one is generated when absent.
type TemplateCreateRequest struct {
	Id        string   `json:"id"`
	Subject   string   `json:"subject" binding:"required"`
	Body      string   `json:"body" binding:"required"`
	Category  string   `json:"category"`
	Tone      string   `json:"tone"`
	Variables []string `json:"variables"`
}
