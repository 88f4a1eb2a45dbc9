package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prolianceltd/taskflow-cli/internal/client/api"
	"github.com/prolianceltd/taskflow-cli/internal/client/models"
	"github.com/prolianceltd/taskflow-cli/internal/logging"
)

// timeNow is a test seam for publish-date stamping.
var timeNow = time.Now

// ContentAPI is the slice of the content service the view controller needs.
// api.KnowledgeClient satisfies it; tests can provide a fake.
type ContentAPI interface {
	Categories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, category models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	Tags(ctx context.Context) ([]models.Tag, error)
	CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error)
	DeleteTag(ctx context.Context, id int64) error

	Articles(ctx context.Context, filter map[string]string) (*models.ArticlePage, error)
	MyArticles(ctx context.Context) (*models.ArticlePage, error)
	FeaturedArticles(ctx context.Context) ([]models.Article, error)
	Article(ctx context.Context, id int64) (*models.Article, error)
	CreateArticle(ctx context.Context, article models.Article) (*models.Article, error)
	UpdateArticle(ctx context.Context, id int64, article models.Article) (*models.Article, error)
	DeleteArticle(ctx context.Context, id int64) error
	IncrementView(ctx context.Context, id int64) error
}

// identitySource supplies the author identity for the Manage mode.
// session.Store satisfies it.
type identitySource interface {
	Identity() (models.Identity, bool)
}

// SortKey selects the remote ordering of the browse list.
type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortTitle      SortKey = "title"
	SortMostViewed SortKey = "mostViewed"
)

// Ordering maps the sort key to the content service's ordering parameter.
func (k SortKey) Ordering() string {
	switch k {
	case SortTitle:
		return "title"
	case SortMostViewed:
		return "-view_count"
	default:
		return "-published_at"
	}
}

// BrowseState is the filter/sort/pagination state of the public article
// listing plus the data loaded for it.
type BrowseState struct {
	SearchTerm     string
	CategoryFilter string // category id, "" for all
	SelectedTags   []string
	Sort           SortKey
	Page           int
	PageSize       int

	TotalItems int
	TotalPages int

	Articles   []models.Article
	Categories []models.Category
	Tags       []models.Tag
	Featured   []models.Article
	Selected   *models.Article
}

// Stats are the Manage-mode aggregates, recomputed from the full loaded set
// on every reload rather than maintained incrementally.
type Stats struct {
	TotalArticles     int
	PublishedArticles int
	DraftArticles     int
	TotalViews        int64
	TotalCategories   int
	TotalTags         int
}

// ManageState is the management screen's data set: the current identity's own
// articles plus all categories and tags.
type ManageState struct {
	Articles   []models.Article
	Categories []models.Category
	Tags       []models.Tag
	Stats      Stats
}

// KnowledgeService orchestrates search/filter/sort/pagination over articles
// and drives the management CRUD flows. Overlapping list loads are guarded
// with a request generation counter: a response whose generation is not the
// latest issued for the controller is discarded.
type KnowledgeService struct {
	api      ContentAPI
	identity identitySource
	log      logging.Logger

	mu     sync.Mutex
	browse BrowseState
	manage ManageState
	gen    uint64 // browse-list request generation
}

func NewKnowledgeService(apiClient ContentAPI, identity identitySource, log logging.Logger) *KnowledgeService {
	return &KnowledgeService{
		api:      apiClient,
		identity: identity,
		log:      log,
		browse: BrowseState{
			Sort:     SortNewest,
			Page:     1,
			PageSize: api.DefaultPageSize,
		},
	}
}

// Browse returns a snapshot of the browse state.
func (s *KnowledgeService) Browse() BrowseState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browse
}

// Manage returns a snapshot of the management state.
func (s *KnowledgeService) Manage() ManageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manage
}

// LoadInitial fetches categories, tags, and featured articles concurrently.
// Partial failures keep whatever did load; each failure is logged.
func (s *KnowledgeService) LoadInitial(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		categories, err := s.api.Categories(ctx)
		if err != nil {
			s.log.Error(ctx, "loading categories failed", "error", err)
			return
		}
		s.mu.Lock()
		s.browse.Categories = categories
		s.mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		tags, err := s.api.Tags(ctx)
		if err != nil {
			s.log.Error(ctx, "loading tags failed", "error", err)
			return
		}
		s.mu.Lock()
		s.browse.Tags = tags
		s.mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		featured, err := s.api.FeaturedArticles(ctx)
		if err != nil {
			s.log.Error(ctx, "loading featured articles failed", "error", err)
			return
		}
		s.mu.Lock()
		s.browse.Featured = featured
		s.mu.Unlock()
	}()

	wg.Wait()
}

// Filter mutators. Every filter change resets pagination to page 1; moving
// between pages does not.

func (s *KnowledgeService) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.browse.SearchTerm = term
	s.browse.Page = 1
}

func (s *KnowledgeService) SetCategory(categoryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.browse.CategoryFilter = categoryID
	s.browse.Page = 1
}

// ToggleTag adds the tag to the selected set, or removes it when already
// selected.
func (s *KnowledgeService) ToggleTag(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tag := range s.browse.SelectedTags {
		if tag == name {
			s.browse.SelectedTags = append(s.browse.SelectedTags[:i], s.browse.SelectedTags[i+1:]...)
			s.browse.Page = 1
			return
		}
	}
	s.browse.SelectedTags = append(s.browse.SelectedTags, name)
	sort.Strings(s.browse.SelectedTags)
	s.browse.Page = 1
}

func (s *KnowledgeService) SetSort(key SortKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.browse.Sort = key
	s.browse.Page = 1
}

func (s *KnowledgeService) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	s.browse.Page = page
}

// ClearFilters resets search, category, and tag selection.
func (s *KnowledgeService) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.browse.SearchTerm = ""
	s.browse.CategoryFilter = ""
	s.browse.SelectedTags = nil
	s.browse.Page = 1
}

// LoadArticles reloads the filtered/sorted/paginated browse list. A response
// that resolves after a newer load was issued is discarded, so the most
// recently requested state always wins.
func (s *KnowledgeService) LoadArticles(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	filter := map[string]string{
		"page":     strconv.Itoa(s.browse.Page),
		"search":   s.browse.SearchTerm,
		"category": s.browse.CategoryFilter,
		"tags":     strings.Join(s.browse.SelectedTags, ","),
		"ordering": s.browse.Sort.Ordering(),
	}
	pageSize := s.browse.PageSize
	s.mu.Unlock()

	page, err := s.api.Articles(ctx, filter)
	if err != nil {
		s.log.Error(ctx, "loading articles failed", "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.log.Debug(ctx, "discarding stale article response", "generation", gen, "latest", s.gen)
		return nil
	}
	s.browse.Articles = page.Results
	s.browse.TotalItems = page.Count
	s.browse.TotalPages = (page.Count + pageSize - 1) / pageSize
	if s.browse.TotalPages < 1 {
		s.browse.TotalPages = 1
	}
	return nil
}

// OpenArticle selects an article from the loaded page and records a view.
// The local count is bumped by exactly one immediately, independent of the
// server round trip; a failed increment leaves the bump in place (accepted
// drift, reconciled on the next list reload).
func (s *KnowledgeService) OpenArticle(ctx context.Context, id int64) (*models.Article, error) {
	s.mu.Lock()
	var selected *models.Article
	for i := range s.browse.Articles {
		if s.browse.Articles[i].ID == id {
			s.browse.Articles[i].ViewCount++
			copied := s.browse.Articles[i]
			selected = &copied
			break
		}
	}
	s.browse.Selected = selected
	s.mu.Unlock()

	if selected == nil {
		article, err := s.api.Article(ctx, id)
		if err != nil {
			return nil, err
		}
		article.ViewCount++
		s.mu.Lock()
		s.browse.Selected = article
		s.mu.Unlock()
		selected = article
	}

	if err := s.api.IncrementView(ctx, id); err != nil {
		s.log.Warn(ctx, "increment view failed", "article_id", id, "error", err)
	}
	return selected, nil
}

// LoadManage loads the management data set: the current identity's own
// articles (empty when unauthenticated), all categories, all tags, and the
// aggregate stats derived from them.
func (s *KnowledgeService) LoadManage(ctx context.Context) error {
	var articles []models.Article
	if _, ok := s.identity.Identity(); ok {
		page, err := s.api.MyArticles(ctx)
		if err != nil {
			s.log.Error(ctx, "loading own articles failed", "error", err)
			return err
		}
		articles = page.Results
	}

	categories, err := s.api.Categories(ctx)
	if err != nil {
		s.log.Error(ctx, "loading categories failed", "error", err)
		return err
	}
	tags, err := s.api.Tags(ctx)
	if err != nil {
		s.log.Error(ctx, "loading tags failed", "error", err)
		return err
	}

	stats := Stats{
		TotalArticles:   len(articles),
		TotalCategories: len(categories),
		TotalTags:       len(tags),
	}
	for _, a := range articles {
		switch a.Status {
		case models.StatusPublished:
			stats.PublishedArticles++
		case models.StatusDraft:
			stats.DraftArticles++
		}
		stats.TotalViews += a.ViewCount
	}

	s.mu.Lock()
	s.manage = ManageState{Articles: articles, Categories: categories, Tags: tags, Stats: stats}
	s.mu.Unlock()
	return nil
}

// CreateArticle merges the author identity into the payload, stamps a publish
// date when publishing without one, submits, and reloads the management set.
func (s *KnowledgeService) CreateArticle(ctx context.Context, article models.Article) error {
	if identity, ok := s.identity.Identity(); ok {
		article.AuthorID = identity.ID
		article.AuthorFirstName = identity.FirstName
		article.AuthorLastName = identity.LastName
		article.AuthorEmail = identity.Email
	}
	stampPublishDate(&article)

	if _, err := s.api.CreateArticle(ctx, article); err != nil {
		s.log.Error(ctx, "creating article failed", "title", article.Title, "error", err)
		return err
	}
	return s.LoadManage(ctx)
}

// UpdateArticle submits changed fields and reloads the management set.
func (s *KnowledgeService) UpdateArticle(ctx context.Context, id int64, article models.Article) error {
	stampPublishDate(&article)

	if _, err := s.api.UpdateArticle(ctx, id, article); err != nil {
		s.log.Error(ctx, "updating article failed", "article_id", id, "error", err)
		return err
	}
	return s.LoadManage(ctx)
}

// DeleteArticle issues the remote delete. Interactive confirmation is the
// shell's responsibility; it must happen before this call.
func (s *KnowledgeService) DeleteArticle(ctx context.Context, id int64) error {
	if err := s.api.DeleteArticle(ctx, id); err != nil {
		s.log.Error(ctx, "deleting article failed", "article_id", id, "error", err)
		return err
	}
	return s.LoadManage(ctx)
}

func (s *KnowledgeService) CreateCategory(ctx context.Context, name, description string) error {
	if _, err := s.api.CreateCategory(ctx, models.Category{Name: name, Description: description}); err != nil {
		s.log.Error(ctx, "creating category failed", "name", name, "error", err)
		return err
	}
	return s.LoadManage(ctx)
}

func (s *KnowledgeService) UpdateCategory(ctx context.Context, id int64, name, description string) error {
	if _, err := s.api.UpdateCategory(ctx, id, models.Category{Name: name, Description: description}); err != nil {
		s.log.Error(ctx, "updating category failed", "category_id", id, "error", err)
		return err
	}
	return s.LoadManage(ctx)
}

func (s *KnowledgeService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.api.DeleteCategory(ctx, id); err != nil {
		s.log.Error(ctx, "deleting category failed", "category_id", id, "error", err)
		return err
	}
	return s.LoadManage(ctx)
}

// CreateTag normalizes the name to lower case before submission.
func (s *KnowledgeService) CreateTag(ctx context.Context, name string) error {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return fmt.Errorf("tag name is required")
	}
	if _, err := s.api.CreateTag(ctx, models.Tag{Name: normalized}); err != nil {
		s.log.Error(ctx, "creating tag failed", "name", normalized, "error", err)
		return err
	}
	return s.LoadManage(ctx)
}

func (s *KnowledgeService) DeleteTag(ctx context.Context, id int64) error {
	if err := s.api.DeleteTag(ctx, id); err != nil {
		s.log.Error(ctx, "deleting tag failed", "tag_id", id, "error", err)
		return err
	}
	return s.LoadManage(ctx)
}

// stampPublishDate sets the publish time when an article moves to published
// without an explicit date.
func stampPublishDate(article *models.Article) {
	if article.Status == models.StatusPublished && article.PublishedAt == nil {
		now := timeNow()
		article.PublishedAt = &now
	}
}
