package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prolianceltd/taskflow-cli/internal/client/models"
	"github.com/prolianceltd/taskflow-cli/internal/client/services"
	"github.com/prolianceltd/taskflow-cli/internal/logging"
)

type fakeContentAPI struct {
	categories []models.Category
	tags       []models.Tag
	featured   []models.Article
	page       *models.ArticlePage
	myPage     *models.ArticlePage
	article    *models.Article

	articlesErr error

	lastFilter    map[string]string
	created       *models.Article
	updatedID     int64
	deletedID     int64
	createdTag    *models.Tag
	deletedTagID  int64
	incrementedID int64
}

func (f *fakeContentAPI) Categories(context.Context) ([]models.Category, error) {
	return f.categories, nil
}
func (f *fakeContentAPI) CreateCategory(_ context.Context, c models.Category) (*models.Category, error) {
	return &c, nil
}
func (f *fakeContentAPI) UpdateCategory(_ context.Context, id int64, c models.Category) (*models.Category, error) {
	return &c, nil
}
func (f *fakeContentAPI) DeleteCategory(context.Context, int64) error { return nil }

func (f *fakeContentAPI) Tags(context.Context) ([]models.Tag, error) { return f.tags, nil }
func (f *fakeContentAPI) CreateTag(_ context.Context, tag models.Tag) (*models.Tag, error) {
	f.createdTag = &tag
	return &tag, nil
}
func (f *fakeContentAPI) DeleteTag(_ context.Context, id int64) error {
	f.deletedTagID = id
	return nil
}

func (f *fakeContentAPI) Articles(_ context.Context, filter map[string]string) (*models.ArticlePage, error) {
	f.lastFilter = filter
	return f.page, f.articlesErr
}
func (f *fakeContentAPI) MyArticles(context.Context) (*models.ArticlePage, error) {
	if f.myPage == nil {
		return &models.ArticlePage{}, nil
	}
	return f.myPage, nil
}
func (f *fakeContentAPI) FeaturedArticles(context.Context) ([]models.Article, error) {
	return f.featured, nil
}
func (f *fakeContentAPI) Article(_ context.Context, id int64) (*models.Article, error) {
	return f.article, nil
}
func (f *fakeContentAPI) CreateArticle(_ context.Context, a models.Article) (*models.Article, error) {
	f.created = &a
	return &a, nil
}
func (f *fakeContentAPI) UpdateArticle(_ context.Context, id int64, a models.Article) (*models.Article, error) {
	f.updatedID = id
	return &a, nil
}
func (f *fakeContentAPI) DeleteArticle(_ context.Context, id int64) error {
	f.deletedID = id
	return nil
}
func (f *fakeContentAPI) IncrementView(_ context.Context, id int64) error {
	f.incrementedID = id
	return nil
}

type staticIdentity struct {
	identity models.Identity
	ok       bool
}

func (s staticIdentity) Identity() (models.Identity, bool) { return s.identity, s.ok }

func newKBApp(t *testing.T, content *fakeContentAPI, identity staticIdentity, lines ...string) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	app := &App{
		kb:     services.NewKnowledgeService(content, identity, logging.NopLogger{}),
		reader: bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n")),
		out:    &out,
	}
	return app, &out
}

func pageOf(count int, articles ...models.Article) *models.ArticlePage {
	return &models.ArticlePage{Count: count, Results: articles}
}

func TestList_PrintsArticlesAndPagination(t *testing.T) {
	content := &fakeContentAPI{page: pageOf(25,
		models.Article{ID: 1, Title: "Deploy guide", CategoryName: "Ops", ViewCount: 40},
		models.Article{ID: 2, Title: "Style guide", CategoryName: "Docs", ViewCount: 7},
	)}
	app, out := newKBApp(t, content, staticIdentity{})

	require.NoError(t, app.List(context.Background()))

	require.Contains(t, out.String(), "Deploy guide")
	require.Contains(t, out.String(), "Page 1 of 3 (25 articles, sorted by newest)")
}

func TestSearch_SetsTermAndReloads(t *testing.T) {
	content := &fakeContentAPI{page: pageOf(0)}
	app, _ := newKBApp(t, content, staticIdentity{})

	require.NoError(t, app.Search(context.Background(), "deploy"))

	require.Equal(t, "deploy", content.lastFilter["search"])
	require.Equal(t, "1", content.lastFilter["page"])
}

func TestSort_InvalidKeyRejected(t *testing.T) {
	content := &fakeContentAPI{page: pageOf(0)}
	app, out := newKBApp(t, content, staticIdentity{})

	require.Error(t, app.Sort(context.Background(), "sideways"))

	require.Nil(t, content.lastFilter)
	require.Contains(t, out.String(), "newest, title, mostViewed")
}

func TestPage_NonNumericRejected(t *testing.T) {
	content := &fakeContentAPI{page: pageOf(0)}
	app, _ := newKBApp(t, content, staticIdentity{})

	require.Error(t, app.Page(context.Background(), "two"))
	require.Nil(t, content.lastFilter)
}

func TestOpen_PrintsArticleAndRecordsView(t *testing.T) {
	content := &fakeContentAPI{page: pageOf(1,
		models.Article{ID: 9, Title: "Runbook", Content: "Step one.", ViewCount: 4},
	)}
	app, out := newKBApp(t, content, staticIdentity{})
	require.NoError(t, app.List(context.Background()))

	require.NoError(t, app.Open(context.Background(), "9"))

	require.Equal(t, int64(9), content.incrementedID)
	require.Contains(t, out.String(), "# Runbook")
	require.Contains(t, out.String(), "Views: 5")
	require.Contains(t, out.String(), "Step one.")
}

func TestManage_PrintsStats(t *testing.T) {
	content := &fakeContentAPI{
		myPage: pageOf(2,
			models.Article{ID: 1, Title: "A", Status: models.StatusPublished, ViewCount: 10},
			models.Article{ID: 2, Title: "B", Status: models.StatusDraft, ViewCount: 2},
		),
		categories: []models.Category{{ID: 1, Name: "Ops"}},
		tags:       []models.Tag{{ID: 1, Name: "go"}, {ID: 2, Name: "infra"}},
	}
	app, out := newKBApp(t, content, staticIdentity{identity: models.Identity{ID: 5}, ok: true})

	require.NoError(t, app.Manage(context.Background()))

	require.Contains(t, out.String(), "Articles: 2 (1 published, 1 drafts), 12 total views")
	require.Contains(t, out.String(), "Categories: 1, tags: 2")
}

func TestNewTag_Normalized(t *testing.T) {
	content := &fakeContentAPI{}
	app, out := newKBApp(t, content, staticIdentity{}, "  Backend ")

	require.NoError(t, app.NewTag(context.Background()))

	require.Equal(t, "backend", content.createdTag.Name)
	require.Contains(t, out.String(), "Tag created")
}

func TestDeleteArticle_RequiresConfirmation(t *testing.T) {
	content := &fakeContentAPI{}
	app, out := newKBApp(t, content, staticIdentity{}, "n")

	require.NoError(t, app.DeleteArticle(context.Background(), "4"))

	require.Zero(t, content.deletedID)
	require.Contains(t, out.String(), "Cancelled")
}

func TestDeleteArticle_Confirmed(t *testing.T) {
	content := &fakeContentAPI{}
	app, out := newKBApp(t, content, staticIdentity{}, "y")

	require.NoError(t, app.DeleteArticle(context.Background(), "4"))

	require.Equal(t, int64(4), content.deletedID)
	require.Contains(t, out.String(), "Article deleted")
}

func TestNewArticle_CollectsFields(t *testing.T) {
	content := &fakeContentAPI{}
	app, out := newKBApp(t, content, staticIdentity{identity: models.Identity{ID: 5, FirstName: "Jane"}, ok: true},
		"Deploy guide",   // title
		"Step one.",      // content
		"",               // end of multiline
		"How we deploy",  // excerpt
		"3",              // category id
		"Go, Infra",      // tags
		"published",      // status
	)

	require.NoError(t, app.NewArticle(context.Background()))

	require.NotNil(t, content.created)
	require.Equal(t, "Deploy guide", content.created.Title)
	require.Equal(t, "Step one.", content.created.Content)
	require.Equal(t, int64(3), content.created.Category)
	require.Equal(t, []string{"go", "infra"}, content.created.Tags)
	require.Equal(t, models.StatusPublished, content.created.Status)
	require.Equal(t, int64(5), content.created.AuthorID)
	require.NotNil(t, content.created.PublishedAt)
	require.Contains(t, out.String(), "Article created")
}
