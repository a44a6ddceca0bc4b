package request

type ProspectRequest struct {
	ICP    string           `json:"icp" binding:"required"`
	Config GenerationConfig `json:"config"`
}
