package llm

import "fmt"

// Provider identifies a generation back-end. The set is closed: bindings are
// constructed through ParseProvider so a typo fails at construction instead of
// routing to an undefined branch.
type Provider string

const (
	// ProviderOpenAI is the premium provider: the universal fallback target
	// with the broadest feature support, including native JSON mode.
	ProviderOpenAI      Provider = "openai"
	ProviderGemini      Provider = "gemini"
	ProviderHuggingFace Provider = "huggingface"
	ProviderArk         Provider = "ark"

	// ProviderNone marks a terminal failure result.
	ProviderNone Provider = "none"
)

func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderOpenAI, ProviderGemini, ProviderHuggingFace, ProviderArk:
		return Provider(s), nil
	case "":
		return "", fmt.Errorf("generation provider not specified")
	default:
		return "", fmt.Errorf("unknown generation provider: %s", s)
	}
}

// supportsNativeJSONMode reports whether the provider accepts a strict
// machine-parseable response format. Providers without it get a prompt-level
// instruction instead; the service never synthesizes structure it cannot
// request.
func (p Provider) supportsNativeJSONMode() bool {
	return p == ProviderOpenAI
}
