package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LLMExtraction is the structured result of the cross-check call.
type LLMExtraction struct {
	EventType        string  `json:"event_type"`
	EventSubtype     string  `json:"event_subtype"`
	SportType        string  `json:"sport_type"`
	CompetitionLevel string  `json:"competition_level"`
	City             string  `json:"city"`
	Venue            string  `json:"venue"`
	EventDate        string  `json:"event_date"`
	Attendance       *int    `json:"attendance"`
	Confidence       float64 `json:"confidence"`
}

// LLMClient calls a local inference endpoint for a best-effort second
// opinion on classification. Every failure surfaces as an
// ExternalServiceError; callers treat it as a degraded stage, never a
// pipeline failure.
type LLMClient struct {
	endpoint string
	model    string
	client   *http.Client
}

func NewLLMClient(endpoint, model string, timeout time.Duration) *LLMClient {
	return &LLMClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

const crossCheckPrompt = `Analiza este artículo de noticias y responde SOLO con un objeto JSON.
Campos: event_type (sports_match, concert, festival, marathon, conference, exposition, food_event, cultural, nightlife u other), event_subtype, sport_type, competition_level, city, venue, event_date (formato ISO YYYY-MM-DDTHH:MM:SS o null), attendance (número entero o null), confidence (0.0-1.0).

Título: %s

Contenido: %s

JSON:`

// CrossCheck asks the model to re-classify the article. The response is
// parsed defensively: the first JSON object found in the raw output is
// used, and a missing or generic event type rejects the whole result.
func (c *LLMClient) CrossCheck(ctx context.Context, title, content string) (*LLMExtraction, error) {
	prompt := fmt.Sprintf(crossCheckPrompt, title, truncate(content, 2000))

	payload, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]interface{}{"temperature": 0.1},
	})
	if err != nil {
		return nil, &ExternalServiceError{Service: "llm", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, &ExternalServiceError{Service: "llm", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ExternalServiceError{Service: "llm", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ExternalServiceError{
			Service: "llm",
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExternalServiceError{Service: "llm", Err: err}
	}

	var gen generateResponse
	if err := json.Unmarshal(body, &gen); err != nil {
		return nil, &ExternalServiceError{Service: "llm", Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	extraction, err := parseExtraction(gen.Response)
	if err != nil {
		return nil, &ExternalServiceError{Service: "llm", Err: err}
	}

	return extraction, nil
}

// parseExtraction recovers a JSON object from free-form model output by
// slicing between the first '{' and the last '}'.
func parseExtraction(raw string) (*LLMExtraction, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var extraction LLMExtraction
	if err := json.Unmarshal([]byte(raw[start:end+1]), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}

	if extraction.EventType == "" || extraction.EventType == "other" {
		return nil, fmt.Errorf("model returned no usable event type")
	}

	return &extraction, nil
}
