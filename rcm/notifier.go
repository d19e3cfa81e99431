// Package rcm notifies the revenue-cycle system after a merge changed the
// set of patients it knows about.
package rcm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrVerbsExhausted is returned when every candidate HTTP method was rejected.
// Callers treat it as non-fatal.
var ErrVerbsExhausted = errors.New("all http methods failed")

// Verb preference per target. The RCM endpoints are inconsistent about the
// methods they accept, so a 405 advances to the next verb.
var (
	removedPatientVerbs = []string{http.MethodDelete, http.MethodPost, http.MethodGet}
	keptPatientVerbs    = []string{http.MethodPost}
)

type Notifier interface {
	Notify(ctx context.Context, patientId string, removed bool) error
}

type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *zap.SugaredLogger
}

func NewClient(config ClientConfig, logger *zap.SugaredLogger) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    config.BaseURL,
		token:      config.Token,
		logger:     logger,
	}
}

var _ Notifier = (*Client)(nil)

func (c *Client) Notify(ctx context.Context, patientId string, removed bool) error {
	var url string
	var verbs []string
	if removed {
		url = fmt.Sprintf("%s/api/RCM/rcm/patient/%s", c.baseURL, patientId)
		verbs = removedPatientVerbs
	} else {
		url = fmt.Sprintf("%s/api/RCM/cron-new-patient/%s", c.baseURL, patientId)
		verbs = keptPatientVerbs
	}

	outcome := c.probe(ctx, url, verbs)
	if outcome.state == probeSucceeded {
		c.logger.Infow("rcm notification delivered", "patientId", patientId, "removed", removed, "method", outcome.verb)
		return nil
	}

	c.logger.Errorw("rcm notification failed", "patientId", patientId, "removed", removed)
	return fmt.Errorf("rcm notification for patient %s: %w", patientId, ErrVerbsExhausted)
}

type probeState int

const (
	probeTryNextVerb probeState = iota
	probeSucceeded
	probeExhausted
)

type probeOutcome struct {
	state probeState
	verb  string
}

// probe walks the verb preference list as a small state machine: a 405
// response advances to the next verb, any other non-error response succeeds,
// and running out of verbs exhausts the probe.
func (c *Client) probe(ctx context.Context, url string, verbs []string) probeOutcome {
	outcome := probeOutcome{state: probeTryNextVerb}
	for _, verb := range verbs {
		status, err := c.attempt(ctx, verb, url)
		switch {
		case err != nil:
			c.logger.Warnw("rcm call failed", "method", verb, "url", url, "error", err)
		case status == http.StatusMethodNotAllowed:
			continue
		case status < 400:
			return probeOutcome{state: probeSucceeded, verb: verb}
		default:
			c.logger.Warnw("rcm call rejected", "method", verb, "url", url, "status", status)
		}
	}
	outcome.state = probeExhausted
	return outcome
}

func (c *Client) attempt(ctx context.Context, verb, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, verb, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	return res.StatusCode, nil
}
