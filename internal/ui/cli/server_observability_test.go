package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	coreapp "rbgraph/internal/core/app"
	"rbgraph/internal/core/config"
)

func TestObservabilityHandler(t *testing.T) {
	cfg := config.Default()
	paths, err := config.ResolvePaths(cfg, t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	application, err := coreapp.New(cfg, paths)
	if err != nil {
		t.Fatal(err)
	}
	defer application.Close(context.Background())

	srv := httptest.NewServer(NewObservabilityServer("", coreapp.NewHealthService(application)).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `"parser":"ok"`) {
		t.Fatalf("unexpected health body %s", body)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "rbgraph_") {
		t.Fatal("expected rbgraph metrics in exposition")
	}
}

func TestObservabilityServer_StartStop(t *testing.T) {
	cfg := config.Default()
	paths, err := config.ResolvePaths(cfg, t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	application, err := coreapp.New(cfg, paths)
	if err != nil {
		t.Fatal(err)
	}
	defer application.Close(context.Background())

	server := NewObservabilityServer("127.0.0.1:0", coreapp.NewHealthService(application))
	if err := server.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := server.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}
