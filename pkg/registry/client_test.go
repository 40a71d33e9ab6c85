package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderSchema = `{"type":"record","name":"OrderCreated","namespace":"com.example.orders","fields":[{"name":"order_id","type":"string"}]}`

func newRegistry(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/subjects/orders.created-value/versions/latest/schema", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(orderSchema))
	})
	mux.HandleFunc("/subjects/secured-value/versions/latest/schema", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "svc" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`"string"`))
	})
	mux.HandleFunc("/subjects/broken-value/versions/latest/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error_code":42201,"message":"Invalid schema"}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error_code":40401,"message":"Subject not found."}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	_, err = NewClient(Config{URL: "not a url"})
	assert.Error(t, err)

	c, err := NewClient(Config{URL: "http://localhost:18081/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:18081", c.URL())
}

func TestClient_LatestSchema(t *testing.T) {
	var hits int32
	srv := newRegistry(t, &hits)
	c, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	raw, err := c.LatestSchema(context.Background(), "orders.created-value")
	require.NoError(t, err)
	assert.JSONEq(t, orderSchema, string(raw))

	_, err = c.LatestSchema(context.Background(), "orders.created-value")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second lookup is served from cache")
}

func TestClient_Errors(t *testing.T) {
	var hits int32
	srv := newRegistry(t, &hits)
	c, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = c.LatestSchema(context.Background(), "payments-value")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.LatestSchema(context.Background(), "broken-value")
	assert.ErrorContains(t, err, "Invalid schema")

	_, err = c.LatestSchema(context.Background(), "secured-value")
	assert.ErrorContains(t, err, "401")

	_, err = c.LatestSchema(context.Background(), "")
	assert.Error(t, err)
}

func TestClient_BasicAuth(t *testing.T) {
	var hits int32
	srv := newRegistry(t, &hits)
	c, err := NewClient(Config{URL: srv.URL, Username: "svc", Password: "secret"})
	require.NoError(t, err)

	raw, err := c.LatestSchema(context.Background(), "secured-value")
	require.NoError(t, err)
	assert.Equal(t, `"string"`, string(raw))
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = c.LatestSchema(context.Background(), "orders.created-value")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSchemaURL(t *testing.T) {
	assert.Equal(t,
		"http://redpanda:8081/subjects/orders.created-value/versions/latest/schema",
		SchemaURL("http://redpanda:8081/", "orders.created-value"))

	c, err := NewClient(Config{URL: "http://redpanda:8081"})
	require.NoError(t, err)
	assert.Equal(t, SchemaURL("http://redpanda:8081", "orders.created-value"), c.SchemaURL("orders.created-value"))
}
