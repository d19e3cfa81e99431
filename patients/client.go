package patients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the remote patient directory over its REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *zap.SugaredLogger
}

func NewClient(config ClientConfig, logger *zap.SugaredLogger) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    config.BaseURL,
		token:      config.Token,
		logger:     logger,
	}
}

var _ Service = (*Client)(nil)

func (c *Client) ListByPGCompany(ctx context.Context, pgCompanyId string) ([]Patient, error) {
	url := fmt.Sprintf("%s/api/Patient/company/pg/%s", c.baseURL, pgCompanyId)

	var dtos []patientDto
	if err := c.getJSON(ctx, url, &dtos); err != nil {
		return nil, fmt.Errorf("error fetching patients for pg company %s: %w", pgCompanyId, err)
	}

	result := make([]Patient, 0, len(dtos))
	for _, dto := range dtos {
		result = append(result, dto.toPatient())
	}
	c.logger.Infow("fetched patients", "pgCompanyId", pgCompanyId, "count", len(result))
	return result, nil
}

func (c *Client) ListOrders(ctx context.Context, patientId string) ([]Dependent, error) {
	url := fmt.Sprintf("%s/api/Order/patient/%s", c.baseURL, patientId)
	return c.listDependents(ctx, url, "")
}

func (c *Client) ListNotes(ctx context.Context, patientId string) ([]Dependent, error) {
	url := fmt.Sprintf("%s/api/CCNotes/patient/%s", c.baseURL, patientId)
	return c.listDependents(ctx, url, KindNote)
}

func (c *Client) ReassignOrder(ctx context.Context, order Dependent, newOwnerId string) error {
	url := fmt.Sprintf("%s/api/Order/%s", c.baseURL, order.Id)
	return c.reassign(ctx, url, order, newOwnerId)
}

func (c *Client) ReassignNote(ctx context.Context, note Dependent, newOwnerId string) error {
	url := fmt.Sprintf("%s/api/CCNotes/%s", c.baseURL, note.Id)
	return c.reassign(ctx, url, note, newOwnerId)
}

func (c *Client) Delete(ctx context.Context, patientId string) error {
	url := fmt.Sprintf("%s/api/Patient/%s", c.baseURL, patientId)
	req, err := c.newRequest(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("error deleting patient %s: %w", patientId, err)
	}
	return nil
}

func (c *Client) listDependents(ctx context.Context, url, forcedKind string) ([]Dependent, error) {
	var bodies []map[string]any
	if err := c.getJSON(ctx, url, &bodies); err != nil {
		return nil, err
	}

	result := make([]Dependent, 0, len(bodies))
	for _, body := range bodies {
		dep := dependentFromBody(body)
		if forcedKind != "" {
			dep.Kind = forcedKind
		}
		result = append(result, dep)
	}
	return result, nil
}

func (c *Client) reassign(ctx context.Context, url string, dep Dependent, newOwnerId string) error {
	body := make(map[string]any, len(dep.Body)+1)
	for key, value := range dep.Body {
		body[key] = value
	}
	body["patientId"] = newOwnerId

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) getJSON(ctx context.Context, url string, target any) error {
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, target)
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, target any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("unexpected response status %v from %s", res.StatusCode, req.URL.Path)
	}
	if target == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(target)
}
