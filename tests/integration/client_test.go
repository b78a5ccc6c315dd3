//go:build integration

package integration

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/product-admin/internal/testutil"
	"github.com/Sternrassler/product-admin/pkg/client"
	"github.com/Sternrassler/product-admin/pkg/ratelimit"
	"github.com/Sternrassler/product-admin/pkg/view"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// newClient creates a gated products client against the mock API.
func newClient(t *testing.T, redisClient *redis.Client, mock *testutil.MockAPI) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig(mock.URL(), "TestApp/1.0.0")
	cfg.Redis = redisClient
	cfg.InitialBackoff = time.Millisecond
	cfg.BreakerName = t.Name()

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// TestFullListFlow tests quota gate → products API → quota update → view.
func TestFullListFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(testutil.WithQuota(testutil.NewListResponse(testutil.SampleProducts(25)), 50, 60))

	c := newClient(t, redisClient, mock)
	ctx := context.Background()

	v := view.New()
	if err := v.Load(ctx, c); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if v.State() != view.Loaded {
		t.Fatalf("State = %v, want loaded", v.State())
	}
	if v.TotalPages() != 3 {
		t.Errorf("TotalPages = %d, want 3", v.TotalPages())
	}

	// Quota headers must land in Redis
	remaining, err := redisClient.Get(ctx, ratelimit.RedisKeyRemaining).Result()
	if err != nil {
		t.Fatalf("Failed to read quota state: %v", err)
	}
	if remaining != "50" {
		t.Errorf("remaining = %s, want 50", remaining)
	}

	// Page changes are local; no further upstream requests
	v.ChangePage(3)
	rows := v.Rows()
	if len(rows) != 5 {
		t.Errorf("rows on last page = %d, want 5", len(rows))
	}
	if rows[0].Product.Name != "Product 21" {
		t.Errorf("first row = %s, want Product 21", rows[0].Product.Name)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("API requests = %d, want 1", mock.RequestCount())
	}
}

// TestPagination tests windowing over real fetches for several list sizes.
func TestPagination(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	tests := []struct {
		name      string
		count     int
		page      int
		wantPages int
		wantPage  int
		wantRows  int
		wantEmpty bool
	}{
		{name: "empty", count: 0, page: 1, wantPages: 0, wantPage: 1, wantRows: 0, wantEmpty: true},
		{name: "single page", count: 7, page: 1, wantPages: 1, wantPage: 1, wantRows: 7},
		{name: "twelve second page", count: 12, page: 2, wantPages: 2, wantPage: 2, wantRows: 2},
		{name: "clamped past end", count: 25, page: 9, wantPages: 3, wantPage: 3, wantRows: 5},
		{name: "clamped below start", count: 25, page: 0, wantPages: 3, wantPage: 1, wantRows: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockAPI()
			defer mock.Close()
			mock.SetProducts(testutil.SampleProducts(tt.count))

			v := view.New()
			if err := v.Load(context.Background(), newClient(t, redisClient, mock)); err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			if got := v.ChangePage(tt.page); got != tt.wantPage {
				t.Errorf("ChangePage(%d) = %d, want %d", tt.page, got, tt.wantPage)
			}
			if v.TotalPages() != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", v.TotalPages(), tt.wantPages)
			}
			if len(v.Rows()) != tt.wantRows {
				t.Errorf("rows = %d, want %d", len(v.Rows()), tt.wantRows)
			}
			if v.Empty() != tt.wantEmpty {
				t.Errorf("Empty = %v, want %v", v.Empty(), tt.wantEmpty)
			}
		})
	}
}

// TestQuotaExhaustedFailsView tests that a blocked fetch surfaces as a failed load.
func TestQuotaExhaustedFailsView(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	reset := time.Now().Add(time.Minute).Unix()
	redisClient.Set(ctx, ratelimit.RedisKeyRemaining, "0", 0)
	redisClient.Set(ctx, ratelimit.RedisKeyResetTimestamp, strconv.FormatInt(reset, 10), 0)

	mock := testutil.NewMockAPI()
	defer mock.Close()

	v := view.New()
	err := v.Load(ctx, newClient(t, redisClient, mock))
	if !errors.Is(err, client.ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}

	if v.State() != view.Failed {
		t.Errorf("State = %v, want failed", v.State())
	}
	if v.Empty() {
		t.Error("a failed load must not report an empty list")
	}
	if mock.RequestCount() != 0 {
		t.Errorf("API requests = %d, want 0", mock.RequestCount())
	}
}

// TestRetryAfterFailure tests the failed → retry → loaded path.
func TestRetryAfterFailure(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(testutil.NewNotFoundResponse())

	c := newClient(t, redisClient, mock)
	ctx := context.Background()

	v := view.New()
	if err := v.Load(ctx, c); err == nil {
		t.Fatal("expected first load to fail")
	}
	mountID := v.MountID()

	mock.SetProducts(testutil.SampleProducts(3))

	ticket, err := v.Retry()
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if ticket.MountID != mountID {
		t.Errorf("retry mount = %s, want %s", ticket.MountID, mountID)
	}
	if !v.Resolve(view.Fetch(ctx, c, ticket)) {
		t.Fatal("retry result was discarded")
	}

	if v.State() != view.Loaded {
		t.Errorf("State = %v, want loaded", v.State())
	}
	if len(v.Products()) != 3 {
		t.Errorf("products = %d, want 3", len(v.Products()))
	}
	// 404 is not retried
	if mock.RequestCount() != 2 {
		t.Errorf("API requests = %d, want 2", mock.RequestCount())
	}
}

// TestRetry5xxErrors tests that transient failures are retried within one load.
func TestRetry5xxErrors(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetProducts(testutil.SampleProducts(12))
	mock.Enqueue(testutil.NewServerErrorResponse(), testutil.NewServerErrorResponse())

	v := view.New()
	if err := v.Load(context.Background(), newClient(t, redisClient, mock)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(v.Products()) != 12 {
		t.Errorf("products = %d, want 12", len(v.Products()))
	}
	if mock.RequestCount() != 3 {
		t.Errorf("API requests = %d, want 3", mock.RequestCount())
	}
}

// TestStaleResultAfterRemount tests that a slow earlier fetch cannot overwrite a newer mount.
func TestStaleResultAfterRemount(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetProducts(testutil.SampleProducts(4))

	c := newClient(t, redisClient, mock)
	ctx := context.Background()

	v := view.New()
	first := v.Mount()
	second := v.Mount()

	if !v.Resolve(view.Fetch(ctx, c, second)) {
		t.Fatal("current result was discarded")
	}

	mock.SetProducts(testutil.SampleProducts(20))
	if v.Resolve(view.Fetch(ctx, c, first)) {
		t.Error("stale result was applied")
	}
	if len(v.Products()) != 4 {
		t.Errorf("products = %d, want 4 from the current mount", len(v.Products()))
	}
}
