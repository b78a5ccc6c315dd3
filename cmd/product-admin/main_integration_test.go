//go:build integration

package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/product-admin/internal/config"
)

func setupTestRedis(t *testing.T) (string, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisC.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	return endpoint, func() { redisC.Terminate(ctx) }
}

func TestNewClient_WithRedis(t *testing.T) {
	addr, cleanup := setupTestRedis(t)
	defer cleanup()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.RedisURL = "redis://" + addr

	productsClient, redisClient, err := newClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newClient() error = %v", err)
	}
	defer productsClient.Close()
	defer redisClient.Close()

	if redisClient == nil {
		t.Fatal("expected a Redis client when REDIS_URL is set")
	}
}

func TestNewClient_RedisUnreachable(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.RedisURL = "127.0.0.1:1"

	if _, _, err := newClient(context.Background(), cfg); err == nil {
		t.Error("expected error for unreachable Redis")
	}
}

func TestReadyEndpoint(t *testing.T) {
	addr, cleanup := setupTestRedis(t)
	defer cleanup()

	redisClient := redis.NewClient(&redis.Options{Addr: addr})
	s := &server{redis: redisClient, logger: zerolog.Nop()}

	t.Run("ready", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ready", nil)
		w := httptest.NewRecorder()

		s.readyHandler(w, req)

		resp := w.Result()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}

		if string(body) != "READY" {
			t.Errorf("Expected body 'READY', got %s", string(body))
		}
	})

	t.Run("not_ready_redis_down", func(t *testing.T) {
		// Close Redis to simulate failure
		redisClient.Close()

		req := httptest.NewRequest("GET", "/ready", nil)
		w := httptest.NewRecorder()

		s.readyHandler(w, req)

		resp := w.Result()

		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", resp.StatusCode)
		}
	})
}
