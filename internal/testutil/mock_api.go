// Package testutil provides test doubles for the products API.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/Sternrassler/product-admin/pkg/product"
	"github.com/shopspring/decimal"
)

// ProductsPath is the listing path served by MockAPI.
const ProductsPath = "/api/products"

// MockResponse defines the behavior for one mocked response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock products API for testing.
// Responses queued with Enqueue are served first, in order; after that the
// response set with SetResponse is served on every request.
type MockAPI struct {
	server *httptest.Server
	mu     sync.Mutex

	fallback MockResponse
	queue    []MockResponse

	requestCount      int
	lastRequestHeader http.Header
}

// NewMockAPI creates a mock API serving an empty product list.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		fallback: NewListResponse(nil),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ProductsPath {
			http.NotFound(w, r)
			return
		}

		mock.mu.Lock()
		mock.requestCount++
		mock.lastRequestHeader = r.Header.Clone()
		resp := mock.fallback
		if len(mock.queue) > 0 {
			resp = mock.queue[0]
			mock.queue = mock.queue[1:]
		}
		mock.mu.Unlock()

		writeResponse(w, r, resp)
	}))

	return mock
}

func writeResponse(w http.ResponseWriter, r *http.Request, resp MockResponse) {
	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// URL returns the mock server base URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// SetResponse sets the response served when the queue is empty.
func (m *MockAPI) SetResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = resp
}

// SetProducts serves the given products on every request.
func (m *MockAPI) SetProducts(products []product.Product) {
	m.SetResponse(NewListResponse(products))
}

// Enqueue adds one-shot responses served before the fallback.
func (m *MockAPI) Enqueue(resps ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resps...)
}

// Reset clears tracking counters and queued responses.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastRequestHeader = nil
	m.queue = nil
}

// RequestCount returns the number of listing requests served.
func (m *MockAPI) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) LastRequestHeader() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequestHeader
}

// NewListResponse creates a 200 OK response carrying the products as JSON.
func NewListResponse(products []product.Product) MockResponse {
	if products == nil {
		products = []product.Product{}
	}
	body, err := json.Marshal(products)
	if err != nil {
		panic(fmt.Sprintf("marshal mock products: %v", err))
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": "Not found"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewTooManyRequestsResponse creates a 429 response with an exhausted quota.
func NewTooManyRequestsResponse(resetSeconds int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     fmt.Sprintf("%d", resetSeconds),
			"Content-Type":          "application/json; charset=utf-8",
		},
	}
}

// NewMalformedResponse creates a 200 OK response whose body is not a list.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html><body>maintenance</body></html>`,
		Headers: map[string]string{
			"Content-Type": "text/html",
		},
	}
}

// WithQuota returns resp with rate limit headers added.
func WithQuota(resp MockResponse, remaining, resetSeconds int) MockResponse {
	headers := make(map[string]string, len(resp.Headers)+2)
	for k, v := range resp.Headers {
		headers[k] = v
	}
	headers["X-RateLimit-Remaining"] = fmt.Sprintf("%d", remaining)
	headers["X-RateLimit-Reset"] = fmt.Sprintf("%d", resetSeconds)
	resp.Headers = headers
	return resp
}

// SampleProducts builds n distinct products named "Product 1".."Product n".
func SampleProducts(n int) []product.Product {
	colors := [][]string{{"#ff0000"}, {"#00ff00", "#0000ff"}, {}}
	categories := []string{"office", "kitchen", "bedroom", "living room"}

	products := make([]product.Product, n)
	for i := range products {
		products[i] = product.Product{
			ID:       fmt.Sprintf("p%03d", i+1),
			Name:     fmt.Sprintf("Product %d", i+1),
			Company:  fmt.Sprintf("Company %d", i%3+1),
			Price:    decimal.NewFromInt(int64(999 + i*1000)),
			Colors:   colors[i%len(colors)],
			Category: categories[i%len(categories)],
			Featured: i%2 == 0,
			Shipping: i%3 == 0,
			Stock:    i * 2,
			Image:    fmt.Sprintf("https://images.example.com/p%03d.jpg", i+1),
		}
	}
	return products
}
