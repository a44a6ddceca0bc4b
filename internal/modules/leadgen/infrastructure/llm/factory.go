package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	arkModel "github.com/cloudwego/eino-ext/components/model/ark"
	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	aclopenai "github.com/cloudwego/eino-ext/libs/acl/openai"
	"github.com/cloudwego/eino/components/model"
)

// Gemini and HuggingFace both expose OpenAI-compatible chat completion
// endpoints, so a single eino openai component covers three of the four
// providers with a BaseURL override.
const (
	geminiOpenAIBaseURL      = "https://generativelanguage.googleapis.com/v1beta/openai"
	huggingfaceOpenAIBaseURL = "https://router.huggingface.co/v1"
)

// ModelFactory builds a chat model for one binding. structured requests the
// provider's native JSON mode and is only honored where the provider has one.
type ModelFactory interface {
	ChatModel(ctx context.Context, b Binding, structured bool) (model.BaseChatModel, error)
}

type einoModelFactory struct {
	baseURLs  map[Provider]string
	arkRegion string
	timeout   time.Duration
}

// FactoryOptions tunes the production factory. BaseURLs override the built-in
// per-provider endpoints (e.g. an OpenAI-compatible proxy).
type FactoryOptions struct {
	BaseURLs  map[Provider]string
	ArkRegion string
	Timeout   time.Duration
}

func NewModelFactory(opts FactoryOptions) ModelFactory {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &einoModelFactory{
		baseURLs:  opts.BaseURLs,
		arkRegion: opts.ArkRegion,
		timeout:   timeout,
	}
}

func (f *einoModelFactory) baseURL(p Provider) string {
	if u, ok := f.baseURLs[p]; ok && strings.TrimSpace(u) != "" {
		return strings.TrimSpace(u)
	}
	switch p {
	case ProviderGemini:
		return geminiOpenAIBaseURL
	case ProviderHuggingFace:
		return huggingfaceOpenAIBaseURL
	default:
		return ""
	}
}

func (f *einoModelFactory) ChatModel(ctx context.Context, b Binding, structured bool) (model.BaseChatModel, error) {
	if strings.TrimSpace(b.APIKey) == "" {
		return nil, fmt.Errorf("%s chat model missing api key", b.Provider)
	}
	if strings.TrimSpace(b.Model) == "" {
		return nil, fmt.Errorf("%s chat model missing model name", b.Provider)
	}

	switch b.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderHuggingFace:
		cfg := &openaiModel.ChatModelConfig{
			APIKey:  b.APIKey,
			Model:   b.Model,
			BaseURL: f.baseURL(b.Provider),
			Timeout: f.timeout,
		}
		if structured && b.Provider.supportsNativeJSONMode() {
			cfg.ResponseFormat = &aclopenai.ChatCompletionResponseFormat{
				Type: aclopenai.ChatCompletionResponseFormatTypeJSONObject,
			}
		}
		return openaiModel.NewChatModel(ctx, cfg)

	case ProviderArk:
		timeout := f.timeout
		return arkModel.NewChatModel(ctx, &arkModel.ChatModelConfig{
			APIKey:  b.APIKey,
			Model:   b.Model,
			BaseURL: f.baseURL(ProviderArk),
			Region:  f.arkRegion,
			Timeout: &timeout,
		})

	default:
		return nil, fmt.Errorf("unknown chat model provider: %s", b.Provider)
	}
}
