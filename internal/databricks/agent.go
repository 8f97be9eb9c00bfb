package databricks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"scctower/internal/domain"
)

// agentOutputItem is one entry in a serving endpoint's output sequence.
// Agents emit items of mixed kinds — reasoning, tool invocations,
// intermediate turns — and only message items carry user-facing text.
type agentOutputItem struct {
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// InvokeAgent performs one synchronous chat invocation against the named
// serving endpoint and returns the agent's final answer. The call is slow —
// minutes, not seconds — and runs on the long-read serving client.
//
// An empty answer with a nil error is a valid outcome: the agent finished
// without producing an assistant message with text.
func (c *Client) InvokeAgent(ctx context.Context, endpoint string, messages []domain.ChatMessage) (string, error) {
	payload, err := json.Marshal(map[string]any{"input": messages})
	if err != nil {
		return "", fmt.Errorf("encode agent request: %w", err)
	}

	url := fmt.Sprintf("%s/serving-endpoints/%s/invocations", c.host, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create agent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.servingClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("invoke agent: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		excerpt := readExcerpt(resp.Body)
		c.logger.Error("agent invocation failed", "endpoint", endpoint, "status", resp.StatusCode, "body", excerpt)
		return "", domain.ErrUpstream(resp.StatusCode, "agent returned %d", resp.StatusCode)
	}

	var body struct {
		Output []agentOutputItem `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode agent response: %w", err)
	}

	return finalAnswer(body.Output), nil
}

// finalAnswer scans the output sequence from the end for the last
// assistant message carrying non-empty text — the items after it are
// bookkeeping, the ones before it intermediate turns.
func finalAnswer(output []agentOutputItem) string {
	for i := len(output) - 1; i >= 0; i-- {
		item := output[i]
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" && strings.TrimSpace(content.Text) != "" {
				return content.Text
			}
		}
	}
	return ""
}

// AgentInvoker binds a Client to one serving endpoint, satisfying the task
// runner's invoker contract.
type AgentInvoker struct {
	Client   *Client
	Endpoint string
}

var _ domain.AgentInvoker = (*AgentInvoker)(nil)

// Invoke performs one invocation against the bound endpoint.
func (a *AgentInvoker) Invoke(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	return a.Client.InvokeAgent(ctx, a.Endpoint, messages)
}
