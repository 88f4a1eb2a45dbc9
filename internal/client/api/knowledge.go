package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/prolianceltd/taskflow-cli/internal/client/models"
)

// DefaultPageSize is the page size merged into article list requests when the
// caller's filter does not override it.
const DefaultPageSize = 12

// KnowledgePathPrefix roots every content-service resource. Requests under it
// stay readable without a session, so the gateway's 401 rule must not clear
// the token for these paths.
const KnowledgePathPrefix = "/knowledge"

// KnowledgeClient is the stateless call surface of the remote knowledge-base
// content service: one method per resource action, no caching beyond what the
// view controller keeps for the page it displays.
type KnowledgeClient struct {
	ch *Channel
}

func NewKnowledgeClient(ch *Channel) *KnowledgeClient {
	return &KnowledgeClient{ch: ch}
}

func kbPath(format string, args ...any) string {
	return KnowledgePathPrefix + fmt.Sprintf(format, args...)
}

// Categories

func (c *KnowledgeClient) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := c.ch.Get(ctx, kbPath("/categories/"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *KnowledgeClient) CreateCategory(ctx context.Context, category models.Category) (*models.Category, error) {
	var out models.Category
	if err := c.ch.Post(ctx, kbPath("/categories/"), category, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *KnowledgeClient) UpdateCategory(ctx context.Context, id int64, category models.Category) (*models.Category, error) {
	var out models.Category
	if err := c.ch.Put(ctx, kbPath("/categories/%d/", id), category, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *KnowledgeClient) DeleteCategory(ctx context.Context, id int64) error {
	return c.ch.Delete(ctx, kbPath("/categories/%d/", id))
}

// Tags

func (c *KnowledgeClient) Tags(ctx context.Context) ([]models.Tag, error) {
	var out []models.Tag
	if err := c.ch.Get(ctx, kbPath("/tags/"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *KnowledgeClient) CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	var out models.Tag
	if err := c.ch.Post(ctx, kbPath("/tags/"), tag, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *KnowledgeClient) UpdateTag(ctx context.Context, id int64, tag models.Tag) (*models.Tag, error) {
	var out models.Tag
	if err := c.ch.Put(ctx, kbPath("/tags/%d/", id), tag, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *KnowledgeClient) DeleteTag(ctx context.Context, id int64) error {
	return c.ch.Delete(ctx, kbPath("/tags/%d/", id))
}

// Articles

// Articles lists articles. The open-ended filter map is merged over the
// default page size; empty values are dropped so the query stays minimal.
func (c *KnowledgeClient) Articles(ctx context.Context, filter map[string]string) (*models.ArticlePage, error) {
	query := url.Values{}
	query.Set("page_size", strconv.Itoa(DefaultPageSize))
	for key, value := range filter {
		if value == "" {
			query.Del(key)
			continue
		}
		query.Set(key, value)
	}

	var out models.ArticlePage
	if err := c.ch.Get(ctx, kbPath("/articles/"), query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyArticles lists the current identity's own articles, drafts included.
func (c *KnowledgeClient) MyArticles(ctx context.Context) (*models.ArticlePage, error) {
	var out models.ArticlePage
	if err := c.ch.Get(ctx, kbPath("/articles/my_articles/"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *KnowledgeClient) FeaturedArticles(ctx context.Context) ([]models.Article, error) {
	var out []models.Article
	if err := c.ch.Get(ctx, kbPath("/articles/featured/"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *KnowledgeClient) Article(ctx context.Context, id int64) (*models.Article, error) {
	var out models.Article
	if err := c.ch.Get(ctx, kbPath("/articles/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *KnowledgeClient) CreateArticle(ctx context.Context, article models.Article) (*models.Article, error) {
	var out models.Article
	if err := c.ch.Post(ctx, kbPath("/articles/"), article, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *KnowledgeClient) UpdateArticle(ctx context.Context, id int64, article models.Article) (*models.Article, error) {
	var out models.Article
	if err := c.ch.Put(ctx, kbPath("/articles/%d/", id), article, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *KnowledgeClient) DeleteArticle(ctx context.Context, id int64) error {
	return c.ch.Delete(ctx, kbPath("/articles/%d/", id))
}

// IncrementView records one view of an article. The server returns the new
// count but callers deliberately ignore it; the controller bumps its local
// copy by exactly one instead.
func (c *KnowledgeClient) IncrementView(ctx context.Context, id int64) error {
	return c.ch.Post(ctx, kbPath("/articles/%d/increment_view/", id), nil, nil)
}
