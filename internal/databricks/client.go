// Package databricks is a minimal REST client for the three workspace
// surfaces the dashboard consumes: SQL statement execution against a
// warehouse, serving-endpoint invocation for the chat agent, and the SCIM
// identity lookup for the calling user. Each call is a single synchronous
// request with a success/failure contract; the client never retries.
package databricks

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"scctower/internal/domain"
)

// statementSlack is added on top of the warehouse wait window for the HTTP
// round trip itself, so the client never gives up before the warehouse does.
const statementSlack = 15 * time.Second

// Config holds the connection parameters for a workspace client.
type Config struct {
	Host        string // workspace base URL, no trailing slash
	Token       string // service principal PAT
	WarehouseID string

	// StatementWaitTimeout is how long the statement API holds the call
	// waiting for completion before reporting a non-terminal state.
	StatementWaitTimeout time.Duration
	// ChatConnectTimeout bounds connection establishment to serving
	// endpoints; ChatReadTimeout bounds the whole invocation, which is
	// generous because agent calls run for minutes.
	ChatConnectTimeout time.Duration
	ChatReadTimeout    time.Duration
}

// Client calls the Databricks workspace REST APIs. It holds two HTTP
// clients: a statement client bounded by the warehouse wait window, and a
// long-read serving client for agent invocations.
type Client struct {
	host        string
	token       string
	warehouseID string
	waitTimeout time.Duration

	statementClient *http.Client
	servingClient   *http.Client
	logger          *slog.Logger
}

var (
	_ domain.StatementExecutor = (*Client)(nil)
	_ domain.UserDirectory     = (*Client)(nil)
)

// NewClient creates a workspace client from the given config.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	waitTimeout := cfg.StatementWaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = 30 * time.Second
	}
	connectTimeout := cfg.ChatConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	readTimeout := cfg.ChatReadTimeout
	if readTimeout <= 0 {
		readTimeout = 5 * time.Minute
	}

	return &Client{
		host:        strings.TrimRight(cfg.Host, "/"),
		token:       cfg.Token,
		warehouseID: cfg.WarehouseID,
		waitTimeout: waitTimeout,
		statementClient: &http.Client{
			Timeout: waitTimeout + statementSlack,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		servingClient: &http.Client{
			Timeout: readTimeout,
			Transport: &http.Transport{
				DialContext:     (&net.Dialer{Timeout: connectTimeout}).DialContext,
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		logger: logger,
	}
}

// ExecuteStatement runs one SQL statement on the configured warehouse and
// materializes the result set. The statement API is called synchronously
// with the configured wait window; any state other than SUCCEEDED — a
// failure, or a statement still pending when the window closes — is an
// upstream error. A missing result payload is a valid zero-row result.
func (c *Client) ExecuteStatement(ctx context.Context, statement string) ([]domain.Row, error) {
	reqBody := map[string]string{
		"statement":    statement,
		"warehouse_id": c.warehouseID,
		"wait_timeout": fmt.Sprintf("%ds", int(c.waitTimeout.Seconds())),
	}

	var body struct {
		Status struct {
			State string `json:"state"`
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		} `json:"status"`
		Manifest struct {
			Schema struct {
				Columns []struct {
					Name string `json:"name"`
				} `json:"columns"`
			} `json:"schema"`
		} `json:"manifest"`
		Result struct {
			DataArray [][]any `json:"data_array"`
		} `json:"result"`
	}
	if err := c.postJSON(ctx, c.statementClient, c.host+"/api/2.0/sql/statements", c.token, reqBody, &body); err != nil {
		return nil, err
	}

	if body.Status.State != "SUCCEEDED" {
		msg := body.Status.Error.Message
		if msg == "" {
			msg = "unknown"
		}
		return nil, domain.ErrUpstream(0, "statement %s: %s", body.Status.State, msg)
	}

	if len(body.Result.DataArray) == 0 {
		return []domain.Row{}, nil
	}

	columns := make([]string, len(body.Manifest.Schema.Columns))
	for i, col := range body.Manifest.Schema.Columns {
		columns[i] = col.Name
	}
	rows := make([]domain.Row, 0, len(body.Result.DataArray))
	for _, values := range body.Result.DataArray {
		row := make(domain.Row, len(columns))
		for i, name := range columns {
			if i < len(values) {
				row[name] = values[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CurrentUser resolves the calling user's workspace identity using their
// forwarded access token, not the service principal's.
func (c *Client) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/2.0/preview/scim/v2/Me", nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("create scim request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.statementClient.Do(req)
	if err != nil {
		return domain.User{}, fmt.Errorf("scim me: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return domain.User{}, domain.ErrUpstream(resp.StatusCode, "scim me returned %d", resp.StatusCode)
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return domain.User{}, fmt.Errorf("decode scim response: %w", err)
	}
	return user, nil
}

// postJSON sends an authorized JSON POST and decodes a 200 response into
// out. Non-200 responses become upstream errors carrying the status code
// and a truncated body excerpt.
func (c *Client) postJSON(ctx context.Context, client *http.Client, url, token string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		excerpt := readExcerpt(resp.Body)
		c.logger.Error("workspace API error", "url", url, "status", resp.StatusCode, "body", excerpt)
		return domain.ErrUpstream(resp.StatusCode, "workspace API returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readExcerpt returns up to the first 200 bytes of the body for log lines.
func readExcerpt(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 200))
	return string(b)
}
