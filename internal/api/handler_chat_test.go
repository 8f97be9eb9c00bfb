package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scctower/internal/domain"
	"scctower/internal/service"
	"scctower/internal/task"
)

type stubInvoker struct {
	answer string
	err    error
}

func (s *stubInvoker) Invoke(context.Context, []domain.ChatMessage) (string, error) {
	return s.answer, s.err
}

func newChatServer(t *testing.T, invoker domain.AgentInvoker) *httptest.Server {
	t.Helper()
	svc, err := service.NewDashboardService(&stubRows{}, "cat.schema", time.Minute, nil)
	require.NoError(t, err)
	runner := task.NewRunner(task.NewRegistry(), invoker, time.Minute, nil)
	return newTestServer(t, NewHandler(svc, runner, &stubDirectory{}, "test", nil))
}

func postChat(t *testing.T, srv *httptest.Server, payload string) (*http.Response, chatTaskResponse) {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+"/api/chat/start", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	var body chatTaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func pollChatUntilTerminal(t *testing.T, srv *httptest.Server, taskID string) chatTaskResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := srv.Client().Get(srv.URL + "/api/chat/poll/" + taskID)
		require.NoError(t, err)

		var body chatTaskResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.NoError(t, resp.Body.Close())
		require.Equal(t, http.StatusOK, resp.StatusCode, "poll is always a 200")

		if domain.TaskStatus(body.Status).Terminal() {
			return body
		}
		if time.Now().After(deadline) {
			t.Fatalf("task %s still %s after deadline", taskID, body.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestChatStartReturnsPendingTask(t *testing.T) {
	srv := newChatServer(t, &stubInvoker{answer: "hello"})

	resp, body := postChat(t, srv, `{"messages":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body.TaskID)
	assert.Equal(t, "pending", body.Status)
	assert.Empty(t, body.Response)
}

func TestChatStartThenPollDeliversAnswer(t *testing.T) {
	srv := newChatServer(t, &stubInvoker{answer: "There are 42 units of SKU-1042 at the Toronto DC."})

	_, started := postChat(t, srv, `{"messages":[{"role":"user","content":"How many units of SKU-1042 are in Toronto?"}]}`)
	final := pollChatUntilTerminal(t, srv, started.TaskID)

	assert.Equal(t, "done", final.Status)
	assert.Contains(t, final.Response, "42 units")
}

func TestChatAgentFailureSurfacesInPoll(t *testing.T) {
	srv := newChatServer(t, &stubInvoker{err: domain.ErrUpstream(503, "agent returned 503")})

	_, started := postChat(t, srv, `{"messages":[{"role":"user","content":"hi"}]}`)
	final := pollChatUntilTerminal(t, srv, started.TaskID)

	assert.Equal(t, "error", final.Status)
	assert.Contains(t, final.Response, "503")
}

func TestChatStartRejectsMalformedBody(t *testing.T) {
	srv := newChatServer(t, &stubInvoker{})

	resp, err := srv.Client().Post(srv.URL+"/api/chat/start", "application/json", bytes.NewBufferString(`{"messages": not-json`))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "invalid request body", body["error"])
}

func TestChatStartRejectsEmptyMessages(t *testing.T) {
	srv := newChatServer(t, &stubInvoker{})

	resp, err := srv.Client().Post(srv.URL+"/api/chat/start", "application/json", bytes.NewBufferString(`{"messages":[]}`))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "message")
}

func TestChatPollUnknownTaskIsError(t *testing.T) {
	srv := newChatServer(t, &stubInvoker{})

	resp, err := srv.Client().Get(srv.URL + "/api/chat/poll/no-such-task")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body chatTaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "no-such-task", body.TaskID)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "Task not found", body.Response)
}

func TestChatRoutesUnavailableWithoutModel(t *testing.T) {
	svc, err := service.NewDashboardService(&stubRows{}, "cat.schema", time.Minute, nil)
	require.NoError(t, err)
	srv := newTestServer(t, NewHandler(svc, nil, &stubDirectory{}, "test", nil))

	resp, err := srv.Client().Post(srv.URL+"/api/chat/start", "application/json", bytes.NewBufferString(`{"messages":[{"role":"user","content":"hi"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	pollResp, err := srv.Client().Get(srv.URL + "/api/chat/poll/abc")
	require.NoError(t, err)
	defer pollResp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusServiceUnavailable, pollResp.StatusCode)
}
