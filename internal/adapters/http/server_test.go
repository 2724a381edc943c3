package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stateline "github.com/stateline-dev/stateline"
	httpAdapter "github.com/stateline-dev/stateline/internal/adapters/http"
	"github.com/stateline-dev/stateline/pkg/adapters/memory"
	"github.com/stateline-dev/stateline/pkg/domain"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := stateline.New(memory.NewStore())
	srv := httptest.NewServer(httpAdapter.NewHandler(svc, nil))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func ticketDefinition() domain.DefinitionInput {
	return domain.DefinitionInput{
		Name: "ticket",
		States: []domain.StateInput{
			{ID: "open", Name: "Open", IsInitial: true},
			{ID: "in_progress", Name: "In Progress"},
			{ID: "closed", Name: "Closed", IsFinal: true},
		},
		Actions: []domain.ActionInput{
			{ID: "start", FromStates: []string{"open"}, ToState: "in_progress"},
			{ID: "close", FromStates: []string{"open", "in_progress"}, ToState: "closed"},
		},
	}
}

func TestServer_DefinitionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// Create
	resp := postJSON(t, srv.URL+"/definitions", ticketDefinition())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	def := decode[domain.Definition](t, resp)
	assert.NotEmpty(t, def.ID)
	assert.False(t, def.CreatedAt.IsZero())

	// Get
	resp2, err := http.Get(srv.URL + "/definitions/" + def.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	got := decode[domain.Definition](t, resp2)
	assert.Equal(t, def.ID, got.ID)
	assert.Len(t, got.States, 3)

	// List
	resp3, err := http.Get(srv.URL + "/definitions")
	require.NoError(t, err)
	list := decode[[]domain.Definition](t, resp3)
	require.Len(t, list, 1)

	// Get missing -> 404 not_found
	resp4, err := http.Get(srv.URL + "/definitions/missing")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp4.StatusCode)
	errBody := decode[map[string]string](t, resp4)
	assert.Equal(t, "not_found", errBody["kind"])
}

func TestServer_CreateDefinition_Invalid(t *testing.T) {
	srv := newTestServer(t)

	input := ticketDefinition()
	input.Actions[0].ToState = "Z"

	resp := postJSON(t, srv.URL+"/definitions", input)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := decode[map[string]string](t, resp)
	assert.Equal(t, "validation", errBody["kind"])
	assert.Contains(t, errBody["error"], `"Z"`)
	assert.Contains(t, errBody["error"], `"start"`)
}

func TestServer_InstanceLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/definitions", ticketDefinition())
	def := decode[domain.Definition](t, resp)

	// Create instance
	resp = postJSON(t, srv.URL+"/instances", map[string]string{"definition_id": def.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	inst := decode[domain.Instance](t, resp)
	assert.Equal(t, "open", inst.CurrentState)
	assert.Empty(t, inst.History)

	// Execute start: open -> in_progress
	resp = postJSON(t, fmt.Sprintf("%s/instances/%s/actions/start", srv.URL, inst.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[domain.Instance](t, resp)
	assert.Equal(t, "in_progress", updated.CurrentState)
	require.Len(t, updated.History, 1)
	assert.Equal(t, "start", updated.History[0].ActionID)

	// Execute from wrong state: start no longer applies
	resp = postJSON(t, fmt.Sprintf("%s/instances/%s/actions/start", srv.URL, inst.ID), nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := decode[map[string]string](t, resp)
	assert.Equal(t, "validation", errBody["kind"])

	// Rejection left the stored instance unchanged.
	resp, err := http.Get(srv.URL + "/instances/" + inst.ID)
	require.NoError(t, err)
	stored := decode[domain.Instance](t, resp)
	assert.Equal(t, "in_progress", stored.CurrentState)
	assert.Len(t, stored.History, 1)

	// Execute close: in_progress -> closed (final)
	resp = postJSON(t, fmt.Sprintf("%s/instances/%s/actions/close", srv.URL, inst.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	closed := decode[domain.Instance](t, resp)
	assert.Equal(t, "closed", closed.CurrentState)
	assert.Len(t, closed.History, 2)

	// Final state rejects everything.
	resp = postJSON(t, fmt.Sprintf("%s/instances/%s/actions/close", srv.URL, inst.ID), nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_CreateInstance_UnknownDefinition(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/instances", map[string]string{"definition_id": "ghost"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := decode[map[string]string](t, resp)
	assert.Equal(t, "validation", errBody["kind"])
}

func TestServer_ExecuteAction_UnknownInstance(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/instances/ghost/actions/start", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ServesOpenAPI(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/openapi.yaml")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/yaml", resp.Header.Get("Content-Type"))
}
