package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/georocket/georocket-go/store"
	"github.com/stretchr/testify/assert"
)

// memStore is a minimal in-memory store.Store used only to exercise the
// server's lifecycle and routing; it is not a test of store semantics.
type memStore struct {
	chunks map[string]string
	seq    int
}

func newMemStore() *memStore { return &memStore{chunks: map[string]string{}} }

func (m *memStore) Add(ctx context.Context, chunk string) (string, error) {
	m.seq++
	name := fmt.Sprintf("chunk-%d", m.seq)
	m.chunks[name] = chunk
	return name, nil
}

func (m *memStore) Get(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	chunk, ok := m.chunks[name]
	if !ok {
		return nil, 0, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader([]byte(chunk))), int64(len(chunk)), nil
}

func (m *memStore) Close() error { return nil }

func prepare() (*gin.Engine, Option) {
	gin.SetMode(gin.ReleaseMode)
	router := Router(newMemStore())
	return router, Option{Port: 0, Host: "127.0.0.1", Timeout: 500 * time.Millisecond}
}

func TestStart(t *testing.T) {
	router, option := prepare()
	server := New(router, option)
	var err error
	go func() { err = server.Start() }()
	defer server.Stop()

	<-server.Event()
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, server.Ready())
}

func TestStop(t *testing.T) {
	router, option := prepare()
	server := New(router, option)
	var err error
	go func() { err = server.Start() }()

	<-server.Event()
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, server.Ready())

	err = server.Stop()
	if err != nil {
		t.Fatal(err)
	}

	<-server.Event()
	assert.False(t, server.Ready())
}

func TestRestart(t *testing.T) {
	router, option := prepare()
	server := New(router, option)
	var err error
	go func() { err = server.Start() }()
	defer server.Stop()

	<-server.Event()
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, server.Ready())

	err = server.Restart()
	if err != nil {
		t.Fatal(err)
	}

	<-server.Event()
	assert.True(t, server.Ready())
}

func TestIngestAndRetrieveRoundTrip(t *testing.T) {
	router, option := prepare()
	server := New(router, option)
	var err error
	go func() { err = server.Start() }()
	defer server.Stop()

	<-server.Event()
	if err != nil {
		t.Fatal(err)
	}

	port, perr := server.Port()
	if perr != nil {
		t.Fatal(perr)
	}
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	resp, perr := http.Post(base+"/chunks", "application/xml", bytes.NewReader([]byte(`<r><a>x</a></r>`)))
	if perr != nil {
		t.Fatal(perr)
	}
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp2, gerr := http.Get(base + "/chunks/chunk-1")
	if gerr != nil {
		t.Fatal(gerr)
	}
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	body, rerr := io.ReadAll(resp2.Body)
	if rerr != nil {
		t.Fatal(rerr)
	}
	assert.Contains(t, string(body), "<a>x</a>")
}

func TestIngestMalformedReturnsBadRequest(t *testing.T) {
	router, option := prepare()
	server := New(router, option)
	var err error
	go func() { err = server.Start() }()
	defer server.Stop()

	<-server.Event()
	if err != nil {
		t.Fatal(err)
	}

	port, perr := server.Port()
	if perr != nil {
		t.Fatal(perr)
	}
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	resp, perr := http.Post(base+"/chunks", "application/xml", bytes.NewReader([]byte(`<r><a></b></r>`)))
	if perr != nil {
		t.Fatal(perr)
	}
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRetrieveUnknownChunkReturnsNotFound(t *testing.T) {
	router, option := prepare()
	server := New(router, option)
	var err error
	go func() { err = server.Start() }()
	defer server.Stop()

	<-server.Event()
	if err != nil {
		t.Fatal(err)
	}

	port, perr := server.Port()
	if perr != nil {
		t.Fatal(perr)
	}

	resp, gerr := http.Get(fmt.Sprintf("http://127.0.0.1:%d/chunks/missing", port))
	if gerr != nil {
		t.Fatal(gerr)
	}
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
