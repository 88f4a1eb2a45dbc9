package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prolianceltd/taskflow-cli/internal/client/models"
	"github.com/prolianceltd/taskflow-cli/internal/logging"
)

func newKnowledgeServer(t *testing.T, response string) (*KnowledgeClient, *struct {
	Method string
	Path   string
	Query  url.Values
}) {
	t.Helper()
	captured := &struct {
		Method string
		Path   string
		Query  url.Values
	}{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.Query = r.URL.Query()
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	ch := NewChannel(srv.URL, 0, &fakeTokens{}, logging.NopLogger{},
		WithPublicPathBypass(KnowledgePathPrefix+"/"))
	return NewKnowledgeClient(ch), captured
}

func TestKnowledgeClient_ArticlesMergesDefaultPageSize(t *testing.T) {
	client, captured := newKnowledgeServer(t, `{"count":0,"results":[]}`)

	_, err := client.Articles(context.Background(), map[string]string{
		"page":     "2",
		"search":   "deploy",
		"ordering": "title",
		"category": "",
	})
	require.NoError(t, err)

	assert.Equal(t, "/knowledge/articles/", captured.Path)
	assert.Equal(t, "12", captured.Query.Get("page_size"))
	assert.Equal(t, "2", captured.Query.Get("page"))
	assert.Equal(t, "deploy", captured.Query.Get("search"))
	assert.Equal(t, "title", captured.Query.Get("ordering"))
	assert.False(t, captured.Query.Has("category"), "empty filter values are dropped")
}

func TestKnowledgeClient_ArticlesPageSizeOverride(t *testing.T) {
	client, captured := newKnowledgeServer(t, `[]`)

	_, err := client.Articles(context.Background(), map[string]string{"page_size": "50"})
	require.NoError(t, err)
	assert.Equal(t, "50", captured.Query.Get("page_size"))
}

func TestKnowledgeClient_ResourcePaths(t *testing.T) {
	client, captured := newKnowledgeServer(t, `{}`)
	ctx := context.Background()

	require.NoError(t, client.IncrementView(ctx, 9))
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/knowledge/articles/9/increment_view/", captured.Path)

	_, err := client.UpdateCategory(ctx, 3, models.Category{Name: "Ops"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, captured.Method)
	assert.Equal(t, "/knowledge/categories/3/", captured.Path)

	require.NoError(t, client.DeleteTag(ctx, 4))
	assert.Equal(t, http.MethodDelete, captured.Method)
	assert.Equal(t, "/knowledge/tags/4/", captured.Path)
}

func TestKnowledgeClient_MyArticlesAndFeatured(t *testing.T) {
	client, captured := newKnowledgeServer(t,
		`[{"id":1,"title":"A","tags":[],"status":"published","view_count":5}]`)
	ctx := context.Background()

	page, err := client.MyArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/knowledge/articles/my_articles/", captured.Path)
	assert.Equal(t, 1, page.Count)

	featured, err := client.FeaturedArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/knowledge/articles/featured/", captured.Path)
	require.Len(t, featured, 1)
	assert.Equal(t, int64(5), featured[0].ViewCount)
}
