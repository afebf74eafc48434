package sparql

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
	"github.com/antonkh/ontology-assistant/internal/infrastructure/resilience"
)

// Client talks to a SPARQL 1.1 HTTP endpoint and decodes the standard
// JSON results format.
type Client struct {
	endpoint   string
	httpClient *http.Client
	executor   *resilience.Executor
}

func NewClient(endpoint string, executor *resilience.Executor) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		executor:   executor,
	}
}

// Select executes a SELECT query and returns its binding rows in order.
func (c *Client) Select(ctx context.Context, query string) ([]domain.BindingRow, error) {
	var rows []domain.BindingRow
	call := func(callCtx context.Context) error {
		var err error
		rows, err = c.doSelect(callCtx, query)
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "sparql.select", call, classifySPARQLError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrQueryFailed, "sparql select", err)
	}
	return rows, nil
}

func (c *Client) doSelect(ctx context.Context, query string) ([]domain.BindingRow, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create select request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sparql endpoint request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &HTTPStatusError{
			Operation:  "select",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return decodeSelectResults(resp.Body)
}
