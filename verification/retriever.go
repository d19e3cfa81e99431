package verification

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/doctoralliance/patient-dedupe/patients"
)

var ErrNoDocumentSource = errors.New("document has neither a url nor a document id")

type RetrieverConfig struct {
	DocumentAPIURL string
	Token          string
	Timeout        time.Duration
}

// Retriever fetches raw document bytes. The document URL is tried first, the
// opaque document id lookup second; either path can fail independently.
type Retriever struct {
	httpClient *http.Client
	apiURL     string
	token      string
	logger     *zap.SugaredLogger
}

func NewRetriever(config RetrieverConfig, logger *zap.SugaredLogger) *Retriever {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Retriever{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     config.DocumentAPIURL,
		token:      config.Token,
		logger:     logger,
	}
}

func (r *Retriever) Fetch(ctx context.Context, document patients.Dependent) ([]byte, error) {
	if document.DocumentURL == "" && document.DocumentId == "" {
		return nil, ErrNoDocumentSource
	}

	if document.DocumentURL != "" {
		content, err := r.fetchByURL(ctx, document.DocumentURL)
		if err == nil {
			return content, nil
		}
		r.logger.Warnw("failed to fetch document by url, trying document id", "url", document.DocumentURL, "error", err)
	}

	if document.DocumentId != "" {
		return r.fetchByDocumentId(ctx, document.DocumentId)
	}
	return nil, fmt.Errorf("could not fetch document %s", document.Id)
}

func (r *Retriever) fetchByURL(ctx context.Context, documentURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, documentURL, nil)
	if err != nil {
		return nil, err
	}

	res, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected response status %v", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

// documentEnvelope is the document API response shape. The payload is a
// base64 encoded buffer.
type documentEnvelope struct {
	IsSuccess bool `json:"isSuccess"`
	Value     struct {
		DocumentBuffer string `json:"documentBuffer"`
	} `json:"value"`
}

func (r *Retriever) fetchByDocumentId(ctx context.Context, documentId string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s?docId.id=%s", r.apiURL, url.QueryEscape(documentId))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.token))

	res, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected response status %v", res.StatusCode)
	}

	var envelope documentEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	if !envelope.IsSuccess || envelope.Value.DocumentBuffer == "" {
		return nil, fmt.Errorf("document %s is not available", documentId)
	}
	return base64.StdEncoding.DecodeString(envelope.Value.DocumentBuffer)
}

