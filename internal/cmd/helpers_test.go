// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"finetune.quickstart/internal/config"
	"github.com/stretchr/testify/require"
)

// fakeOpenAI answers "METHOD /path" routes with canned JSON and 404s everything else
type fakeOpenAI struct {
	t        *testing.T
	routes   map[string]string
	mu       sync.Mutex
	requests []string
	bodies   [][]byte
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	require.NoError(f.t, err)

	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.requests = append(f.requests, key)
	f.bodies = append(f.bodies, body)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	response, ok := f.routes[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"No such resource","type":"invalid_request_error","code":"not_found"}}`))
		return
	}
	_, _ = w.Write([]byte(response))
}

func (f *fakeOpenAI) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeOpenAI) lastBody() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.bodies)
	return f.bodies[len(f.bodies)-1]
}

// newFakeOpenAI starts the fake service and points the environment at it, with the
// ledger in a temporary directory
func newFakeOpenAI(t *testing.T, routes map[string]string) *fakeOpenAI {
	t.Helper()
	fake := &fakeOpenAI{t: t, routes: routes}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	t.Setenv(config.EnvProvider, string(config.ProviderOpenAI))
	t.Setenv(config.EnvOpenAIAPIKey, "sk-test")
	t.Setenv(config.EnvOpenAIBaseURL, server.URL+"/v1/")
	t.Setenv(config.EnvStateDir, t.TempDir())
	return fake
}

// executeCommand runs the root command and returns what it wrote to stdout
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { appConfig = nil })

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
