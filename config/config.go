package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	GroupingStrategyAnchor     = "anchor"
	GroupingStrategyTransitive = "transitive"
)

type Config struct {
	// Patient directory store
	BaseURL  string `envconfig:"DEDUPE_BASE_URL" required:"true"`
	APIToken string `envconfig:"DEDUPE_API_TOKEN" required:"true"`

	// Document store
	DocumentAPIURL   string `envconfig:"DEDUPE_DOCUMENT_API_URL" default:"https://api.doctoralliance.com/document/getfile"`
	DocumentAPIToken string `envconfig:"DEDUPE_DOCUMENT_API_TOKEN"`

	// Azure OpenAI deployment used for document field extraction
	OpenAIEndpoint   string `envconfig:"DEDUPE_OPENAI_ENDPOINT"`
	OpenAIKey        string `envconfig:"DEDUPE_OPENAI_KEY"`
	OpenAIDeployment string `envconfig:"DEDUPE_OPENAI_DEPLOYMENT" default:"gpt-35-turbo"`

	// Processing
	NameSimilarityThreshold int           `envconfig:"DEDUPE_NAME_SIMILARITY_THRESHOLD" default:"85"`
	GroupingStrategy        string        `envconfig:"DEDUPE_GROUPING_STRATEGY" default:"anchor"`
	RequestTimeout          time.Duration `envconfig:"DEDUPE_REQUEST_TIMEOUT" default:"30s"`
	NotificationTimeout     time.Duration `envconfig:"DEDUPE_NOTIFICATION_TIMEOUT" default:"60s"`
	EnableRCMCalls          bool          `envconfig:"DEDUPE_ENABLE_RCM_CALLS" default:"true"`

	// Reporting
	OutputDir string `envconfig:"DEDUPE_OUTPUT_DIR" default:"output"`
}

func New() *Config {
	return &Config{}
}

func (c *Config) LoadFromEnv() error {
	return envconfig.Process("", c)
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("patient store base url is required")
	}
	if c.APIToken == "" {
		return errors.New("patient store api token is required")
	}
	if c.NameSimilarityThreshold < 0 || c.NameSimilarityThreshold > 100 {
		return errors.New("name similarity threshold must be between 0 and 100")
	}
	if c.GroupingStrategy != GroupingStrategyAnchor && c.GroupingStrategy != GroupingStrategyTransitive {
		return errors.New("grouping strategy must be one of: anchor, transitive")
	}
	return nil
}
