package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/keyset/config"
	"github.com/ncobase/keyset/data/memory"
	"github.com/ncobase/keyset/ecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type page struct {
	Items    []map[string]any `json:"items"`
	Metadata struct {
		HasNext bool    `json:"has_next"`
		Next    *string `json:"next"`
	} `json:"metadata"`
}

type failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := memory.NewCollection("posts")
	for i := 0; i < 25; i++ {
		posts.Insert(bson.M{
			"_id":       int32(i),
			"createdAt": primitive.NewDateTimeFromTime(base.Add(time.Duration(i/2) * time.Minute)),
			"status":    "published",
		})
	}

	h := NewHandler(memory.NewStore(posts), &config.Paging{SortKey: "_id", DefaultLimit: 10, MaxLimit: 20}, nil)
	return NewRouter(h, gin.TestMode)
}

func get(t *testing.T, r http.Handler, target string, out any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func TestListPagesThroughCollection(t *testing.T) {
	r := newTestRouter(t)

	var (
		ids   []float64
		sizes []int
		next  string
	)
	for i := 0; i < 5; i++ {
		q := url.Values{"sort": {"-createdAt,-_id"}, "limit": {"10"}}
		if next != "" {
			q.Set("next", next)
		}

		var p page
		rec := get(t, r, "/collections/posts?"+q.Encode(), &p)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		sizes = append(sizes, len(p.Items))
		for _, item := range p.Items {
			ids = append(ids, item["_id"].(float64))
		}
		if !p.Metadata.HasNext {
			assert.Nil(t, p.Metadata.Next)
			break
		}
		require.NotNil(t, p.Metadata.Next)
		next = *p.Metadata.Next
	}

	assert.Equal(t, []int{10, 10, 5}, sizes)
	require.Len(t, ids, 25)
	for i := range ids {
		assert.Equal(t, float64(24-i), ids[i])
	}
}

func TestListDefaultsAndCap(t *testing.T) {
	r := newTestRouter(t)

	var p page
	rec := get(t, r, "/collections/posts", &p)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, p.Items, 10)
	assert.Equal(t, float64(24), p.Items[0]["_id"])

	rec = get(t, r, "/collections/posts?limit=100", &p)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, p.Items, 20)
}

func TestListFilter(t *testing.T) {
	r := newTestRouter(t)

	var p page
	q := url.Values{"filter": {`{"_id": {"$lt": 3}}`}}
	rec := get(t, r, "/collections/posts?"+q.Encode(), &p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, p.Items, 3)
	assert.False(t, p.Metadata.HasNext)
}

func TestListErrors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		target string
		status int
		code   int
	}{
		{"malformed token", "/collections/posts?next=garbage", http.StatusBadRequest, ecode.DecodeErr},
		{"fields not a sort suffix", "/collections/posts?sort=-createdAt,-_id&fields=status", http.StatusBadRequest, ecode.PaginationFieldsErr},
		{"unknown collection", "/collections/missing", http.StatusNotFound, ecode.NotFound},
		{"invalid limit", "/collections/posts?limit=ten", http.StatusBadRequest, ecode.RequestErr},
		{"invalid sort", "/collections/posts?sort=a:2", http.StatusBadRequest, ecode.RequestErr},
		{"invalid filter", "/collections/posts?filter=%7B", http.StatusBadRequest, ecode.RequestErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f failure
			rec := get(t, r, tt.target, &f)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, f.Code)
			assert.NotEmpty(t, f.Message)
		})
	}
}

func TestTokenFromOtherCollection(t *testing.T) {
	r := newTestRouter(t)

	var p page
	get(t, r, "/collections/posts?limit=1", &p)
	require.NotNil(t, p.Metadata.Next)

	other := memory.NewCollection("comments", bson.M{"_id": int32(1)})
	h := NewHandler(memory.NewStore(other), nil, nil)
	r2 := NewRouter(h, gin.TestMode)

	var f failure
	rec := get(t, r2, "/collections/comments?next="+url.QueryEscape(*p.Metadata.Next), &f)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ecode.IdentityMismatch, f.Code)
}

func TestHealthAndTrace(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(TraceHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(TraceHeader, "trace-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get(TraceHeader))
}

func TestSplitFields(t *testing.T) {
	assert.Nil(t, splitFields(""))
	assert.Equal(t, []string{"createdAt", "_id"}, splitFields(" createdAt, ,_id "))
}
