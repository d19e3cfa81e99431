package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// maxPromptChars bounds the document text sent to the model.
	maxPromptChars = 3000

	systemPrompt = "You are a medical document analyzer. Extract MRN and DOB accurately."
)

// Fields is the verifier output. Either value may be empty when the document
// does not carry it or extraction was ambiguous.
type Fields struct {
	Mrn string `json:"mrn"`
	Dob string `json:"dob"`
}

func (f Fields) IsEmpty() bool {
	return f.Mrn == "" && f.Dob == ""
}

// FieldExtractor pulls MRN and DOB values out of document text.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, text string) (Fields, error)
}

type ExtractorConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
}

// OpenAIExtractor asks an Azure OpenAI deployment to read the fields out of
// the document text.
type OpenAIExtractor struct {
	client     *openai.Client
	deployment string
}

func NewOpenAIExtractor(config ExtractorConfig) *OpenAIExtractor {
	clientConfig := openai.DefaultAzureConfig(config.APIKey, config.Endpoint)
	return &OpenAIExtractor{
		client:     openai.NewClientWithConfig(clientConfig),
		deployment: config.Deployment,
	}
}

var _ FieldExtractor = (*OpenAIExtractor)(nil)

func (e *OpenAIExtractor) ExtractFields(ctx context.Context, text string) (Fields, error) {
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}

	prompt := fmt.Sprintf(`Extract the Medical Record Number (MRN) and Date of Birth (DOB) from the following medical document text.
Look for variations like "MRN:", "Medical Record Number:", "MR Number:", "DOB:", "Date of Birth:", "Birth Date:".

Return the result in JSON format:
{"mrn": "extracted_mrn_value", "dob": "extracted_dob_value"}

If not found, use empty strings.

Document text:
%s`, text)

	res, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.deployment,
		Temperature: 0.1,
		MaxTokens:   200,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return Fields{}, err
	}
	if len(res.Choices) == 0 {
		return Fields{}, fmt.Errorf("no response choices")
	}

	return ParseModelOutput(res.Choices[0].Message.Content), nil
}

// ParseModelOutput tolerates the usual model response quirks: code fences
// around the JSON, non-JSON prose with "mrn:"/"dob:" lines, and placeholder
// values standing in for "not found".
func ParseModelOutput(raw string) Fields {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var fields Fields
	if err := json.Unmarshal([]byte(cleaned), &fields); err == nil {
		fields.Mrn = sanitizeValue(fields.Mrn)
		fields.Dob = sanitizeValue(fields.Dob)
		return fields
	}

	return parseLines(cleaned)
}

func parseLines(text string) Fields {
	var fields Fields
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(key)
		value = sanitizeValue(value)
		switch {
		case strings.Contains(key, "mrn") || strings.Contains(key, "medical record"):
			if fields.Mrn == "" {
				fields.Mrn = value
			}
		case strings.Contains(key, "dob") || strings.Contains(key, "date of birth"):
			if fields.Dob == "" {
				fields.Dob = value
			}
		}
	}
	return fields
}

func sanitizeValue(value string) string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, `"'`)
	value = strings.TrimSuffix(value, ",")
	value = strings.Trim(value, `"'`)
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "null", "none", "n/a":
		return ""
	}
	return value
}
