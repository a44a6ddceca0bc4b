package request

// GenerationConfig is the per-request provider selection. A caller-supplied
// key binds the request to that credential; absence of a key falls back to
// the operator default with cheap-model pinning.
type GenerationConfig struct {
	PreferredProvider string `json:"preferred_provider"`
	OpenAIKey         string `json:"openai_key"`
	GeminiKey         string `json:"gemini_key"`
	HuggingFaceKey    string `json:"huggingface_key"`
	ArkKey            string `json:"ark_key"`
	OpenAIModel       string `json:"openai_model"`
}

// KeyForProvider picks the caller key matching the provider name. Keys for
// other providers are ignored on purpose: a request is bound to one provider.
func (c GenerationConfig) KeyForProvider(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIKey
	case "gemini":
		return c.GeminiKey
	case "huggingface":
		return c.HuggingFaceKey
	case "ark":
		return c.ArkKey
	default:
		return ""
	}
}

// ModelForProvider returns the explicitly requested model, which is only a
// caller choice for the premium provider.
func (c GenerationConfig) ModelForProvider(provider string) string {
	if provider == "openai" {
		return c.OpenAIModel
	}
	return ""
}
