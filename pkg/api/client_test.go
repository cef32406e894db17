package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mujhtech/b0-console/pkg/log"
	"github.com/mujhtech/b0-console/pkg/models"
	"github.com/mujhtech/b0-console/pkg/otelhelper"
)

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		BaseURL: serverURL,
		Token:   "test-token",
		Logger:  log.WithModule("test"),
	})
}

func TestGetProject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/p-1", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","data":{"id":"p-1","name":"shop api","slug":"shop-api","owner_id":"u-1","model":"gpt-4o"}}`))
	}))
	defer server.Close()

	project, err := newTestClient(server.URL).GetProject(context.Background(), "p-1")

	require.NoError(t, err)
	assert.Equal(t, "shop api", project.Name)
	assert.Equal(t, "shop-api", project.Slug)
}

func TestUnauthorizedRetriesExactlyOnce(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)

			return
		}

		_, _ = w.Write([]byte(`{"message":"ok","data":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListProjects(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestUnauthorizedGivesUpAfterRetry(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListProjects(context.Background())

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 2, calls)
}

func TestErrorBodyPassedThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"path already taken","field":"path"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetEndpoint(context.Background(), "e-1")

	var apiErr *APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "path already taken", apiErr.Message)
	assert.Equal(t, "path", apiErr.Body["field"])
}

func TestSchemaViolationIsLenient(t *testing.T) {
	// Missing required slug/owner_id: boundary logs a warning but the decoded
	// record is still returned.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok","data":{"id":"p-1","name":"shop api"}}`))
	}))
	defer server.Close()

	project, err := newTestClient(server.URL).GetProject(context.Background(), "p-1")

	require.NoError(t, err)
	assert.Equal(t, "p-1", project.ID)
	assert.Empty(t, project.Slug)
}

func TestSaveWorkflowsBody(t *testing.T) {
	var got map[string][]models.WorkflowStep

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/endpoints/e-1/workflows", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer server.Close()

	steps := []models.WorkflowStep{
		{ActionID: "a-1", Type: models.StepTypeVariable, Name: "user", Value: "body.user"},
		{ActionID: "a-2", Type: models.StepTypeResponse, Status: "200"},
	}

	err := newTestClient(server.URL).SaveWorkflows(context.Background(), "e-1", steps)

	require.NoError(t, err)
	require.Len(t, got["workflows"], 2)
	assert.Equal(t, models.StepTypeVariable, got["workflows"][0].Type)
}

func TestProjectActionRejectsUnknownAction(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:0").ProjectAction(context.Background(), "p-1", "destroy")

	require.Error(t, err)
}

func TestListEndpointsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "proj-9", r.URL.Query().Get("project_id"))

		_, _ = w.Write([]byte(`{"message":"ok","data":[{"id":"e-1","project_id":"proj-9","method":"GET","path":"/users","workflows":[{"type":"response","status":"200"}]}]}`))
	}))
	defer server.Close()

	endpoints, err := newTestClient(server.URL).ListEndpoints(context.Background(), "proj-9")

	require.NoError(t, err)
	require.Len(t, endpoints, 1)
	assert.Equal(t, "/users", endpoints[0].Path)
	require.Len(t, endpoints[0].Workflows, 1)
	assert.Equal(t, models.StepTypeResponse, endpoints[0].Workflows[0].Type)
}

func TestDeleteProjectRequiresName(t *testing.T) {
	err := newTestClient("http://127.0.0.1:0").DeleteProject(context.Background(), "p-1", "")

	require.Error(t, err)
}

func TestStreamURLs(t *testing.T) {
	client := newTestClient("https://api.b0.dev")

	assert.Equal(t, "https://api.b0.dev/projects/p-1/sse", client.TaskStreamURL("p-1"))
	assert.Equal(t, "https://api.b0.dev/projects/p-1/log", client.LogStreamURL("p-1"))
}

func TestNotFoundDetection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"endpoint not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetEndpoint(context.Background(), "e-missing")

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
}

func TestRequestSpansCarryResourceIDs(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok","data":{"id":"e-1","project_id":"p-1","name":"users","method":"GET","path":"/users"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetEndpoint(context.Background(), "e-1")
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	attrs := make(map[attribute.Key]string)
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}

	assert.Equal(t, "e-1", attrs[attribute.Key(otelhelper.EndpointIDKey)])
}
