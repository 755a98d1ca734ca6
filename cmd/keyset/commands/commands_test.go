package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ncobase/keyset/ecode"
	"github.com/ncobase/keyset/token"
	"github.com/ncobase/keyset/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writePosts(t *testing.T, n int) string {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, `{"_id": %d, "title": "post %d"}`+"\n", i, i)
	}
	file := filepath.Join(t.TempDir(), "posts.jsonl")
	require.NoError(t, os.WriteFile(file, []byte(sb.String()), 0o644))
	return file
}

type pageOutput struct {
	Items    []map[string]any `json:"items"`
	Metadata struct {
		HasNext bool    `json:"has_next"`
		Next    *string `json:"next"`
	} `json:"metadata"`
}

func TestPageCommand(t *testing.T) {
	file := writePosts(t, 5)

	out, err := run(t, "page", "--memory", file, "--collection", "posts", "--sort", "_id", "--limit", "2")
	require.NoError(t, err)

	var first pageOutput
	require.NoError(t, json.Unmarshal([]byte(out), &first), out)
	require.Len(t, first.Items, 2)
	assert.Equal(t, float64(0), first.Items[0]["_id"])
	require.True(t, first.Metadata.HasNext)
	require.NotNil(t, first.Metadata.Next)

	out, err = run(t, "page", "--memory", file, "--collection", "posts", "--limit", "2", "--next", *first.Metadata.Next)
	require.NoError(t, err)

	var second pageOutput
	require.NoError(t, json.Unmarshal([]byte(out), &second), out)
	require.Len(t, second.Items, 2)
	assert.Equal(t, float64(2), second.Items[0]["_id"])
}

func TestPageCommandFilter(t *testing.T) {
	file := writePosts(t, 5)

	out, err := run(t, "page", "--memory", file, "--collection", "posts", "--filter", `{"_id": {"$in": [1, 3]}}`)
	require.NoError(t, err)

	var page pageOutput
	require.NoError(t, json.Unmarshal([]byte(out), &page), out)
	assert.Len(t, page.Items, 2)
	assert.False(t, page.Metadata.HasNext)
	assert.Nil(t, page.Metadata.Next)
}

func TestPageCommandErrors(t *testing.T) {
	file := writePosts(t, 1)

	_, err := run(t, "page", "--memory", file)
	assert.Error(t, err, "collection is required")

	_, err = run(t, "page", "--memory", file, "--collection", "missing")
	assert.Equal(t, ecode.NotFound, ecode.CodeOf(err))

	_, err = run(t, "page", "--memory", file, "--collection", "posts", "--next", "garbage")
	assert.True(t, ecode.IsDecode(err))

	_, err = run(t, "page", "--memory", file, "--collection", "posts", "--sort", "-_id", "--fields", "title")
	assert.True(t, ecode.IsPaginationFields(err))
}

func TestDecodeCommand(t *testing.T) {
	tok := token.New("posts")
	tok.SortDirection = types.SortBy("_id", types.Descending)
	tok.SortValues = bson.M{"_id": int32(7)}
	s, err := token.Encode(tok)
	require.NoError(t, err)

	out, err := run(t, "decode", s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded), out)
	assert.Equal(t, float64(token.Version), decoded["schema_version"])
	assert.Equal(t, float64(token.Checksum("posts")), decoded["source_checksum"])
	assert.Equal(t, map[string]any{"_id": float64(7)}, decoded["sort_values"])

	_, err = run(t, "decode", "garbage")
	assert.True(t, ecode.IsDecode(err))
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: ")

	out, err = run(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"goVersion"`)
}
