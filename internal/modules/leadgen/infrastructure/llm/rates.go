package llm

// tokenRate is USD per one million tokens, split by token class. Providers
// that publish a single flat rate repeat it for both classes.
type tokenRate struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

var providerRates = map[Provider]tokenRate{
	ProviderOpenAI:      {InputPerMTok: 0.15, OutputPerMTok: 0.60}, // gpt-4o-mini
	ProviderGemini:      {InputPerMTok: 0.075, OutputPerMTok: 0.075},
	ProviderHuggingFace: {InputPerMTok: 0.001, OutputPerMTok: 0.001},
	ProviderArk:         {InputPerMTok: 0.11, OutputPerMTok: 0.28},
}

// computeCost prices one call. Unknown providers and negative token counts
// cost zero; the result is never negative.
func computeCost(p Provider, promptTokens, completionTokens int) float64 {
	rate, ok := providerRates[p]
	if !ok {
		return 0
	}
	if promptTokens < 0 {
		promptTokens = 0
	}
	if completionTokens < 0 {
		completionTokens = 0
	}
	return (float64(promptTokens)*rate.InputPerMTok + float64(completionTokens)*rate.OutputPerMTok) / 1_000_000
}
