package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenlehua/tara-sub000/internal/pipeline"
)

func TestParserClientParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req parseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Files, 1)

		_ = json.NewEncoder(w).Encode(pipeline.ParsedContent{
			Files: []pipeline.ParsedFile{{
				Name:     req.Files[0].Name,
				Kind:     "pdf",
				Sections: []string{"architecture", "interfaces"},
				Tables:   2,
			}},
		})
	}))
	defer srv.Close()

	c := NewParserClient(srv.URL)
	content, err := c.Parse(context.Background(), []pipeline.UploadedFile{
		{Name: "gateway_spec.pdf", Size: 2048},
	})
	require.NoError(t, err)
	require.Len(t, content.Files, 1)
	assert.Equal(t, "gateway_spec.pdf", content.Files[0].Name)
	assert.Equal(t, 2, content.Files[0].Tables)
}

func TestParserClientBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewParserClient(srv.URL)
	_, err := c.Parse(context.Background(), nil)
	assert.Error(t, err)
}

func TestParserClientContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewParserClient(srv.URL)
	_, err := c.Parse(ctx, nil)
	assert.Error(t, err)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`[{"a":1}]`, `[{"a":1}]`},
		{"```json\n[1,2]\n```", "[1,2]"},
		{"```\n[]\n```", "[]"},
		{"  [1]  ", "[1]"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, stripFences(tc.in))
	}
}
