package llm

import (
	"os"
	"strings"
)

// Default models per provider. CheapOpenAIModel is the variant the premium
// provider is pinned to whenever the shared default credential is in play.
const (
	CheapOpenAIModel        = "gpt-4o-mini"
	DefaultGeminiModel      = "gemini-2.0-flash"
	DefaultHuggingFaceModel = "meta-llama/Llama-3.2-3B-Instruct"
)

// envKeyNames are the environment fallbacks: a missing operator key in
// config is looked up here before the binding is declared credential-less.
var envKeyNames = map[Provider]string{
	ProviderOpenAI:      "OPENAI_API_KEY",
	ProviderGemini:      "GOOGLE_API_KEY",
	ProviderHuggingFace: "HUGGINGFACE_API_KEY",
	ProviderArk:         "ARK_API_KEY",
}

// Binding pins one GenerationService instance to a provider, model and
// credential for its whole lifetime. DefaultCredential is true when the key
// is the shared operator credential rather than a caller-supplied one.
type Binding struct {
	Provider          Provider
	Model             string
	APIKey            string
	DefaultCredential bool
}

// Defaults carries the operator-owned credentials and provider settings used
// when a request brings no key of its own.
type Defaults struct {
	APIKeys  map[Provider]string
	BaseURLs map[Provider]string
	ArkModel string
}

func (d Defaults) keyFor(p Provider) string {
	if k, ok := d.APIKeys[p]; ok && strings.TrimSpace(k) != "" {
		return strings.TrimSpace(k)
	}
	if name, ok := envKeyNames[p]; ok {
		return strings.TrimSpace(os.Getenv(name))
	}
	return ""
}

func (d Defaults) defaultModel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return CheapOpenAIModel
	case ProviderGemini:
		return DefaultGeminiModel
	case ProviderHuggingFace:
		return DefaultHuggingFaceModel
	case ProviderArk:
		return d.ArkModel
	default:
		return ""
	}
}

// ResolveBinding evaluates the model selection policy once, at construction.
// The premium provider on the default credential is always pinned to the
// cheapest model, regardless of what model was requested: the shared key must
// never be exposed to runaway cost.
func ResolveBinding(providerName, model, userKey string, d Defaults) (Binding, error) {
	provider, err := ParseProvider(providerName)
	if err != nil {
		return Binding{}, err
	}

	b := Binding{
		Provider: provider,
		Model:    strings.TrimSpace(model),
		APIKey:   strings.TrimSpace(userKey),
	}
	if b.APIKey == "" {
		b.APIKey = d.keyFor(provider)
		b.DefaultCredential = true
	}

	if provider == ProviderOpenAI && b.DefaultCredential {
		b.Model = CheapOpenAIModel
	} else if b.Model == "" {
		b.Model = d.defaultModel(provider)
	}

	return b, nil
}

// nextBinding is the retry policy table: (provider, credential class) ->
// (next binding) | terminate. It is a pure function so the fallback protocol
// is testable without any generation call.
//
//	(openai, user cred)    -> (openai, default cred, cheap model)
//	(other,  any cred)     -> (openai, default cred, cheap model)
//	(openai, default cred) -> terminate
func nextBinding(b Binding, d Defaults) (Binding, bool) {
	if b.Provider == ProviderOpenAI && b.DefaultCredential {
		return Binding{}, false
	}
	return Binding{
		Provider:          ProviderOpenAI,
		Model:             CheapOpenAIModel,
		APIKey:            d.keyFor(ProviderOpenAI),
		DefaultCredential: true,
	}, true
}
