package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/prolianceltd/taskflow-cli/internal/client/api"
	"github.com/prolianceltd/taskflow-cli/internal/client/models"
	"github.com/prolianceltd/taskflow-cli/internal/client/services"
)

// List reloads and prints the current article page with the active filters.
func (a *App) List(ctx context.Context) error {
	if err := a.kb.LoadArticles(ctx); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", serverOr(err))
		return err
	}
	a.printBrowse()
	return nil
}

// Search sets the search term and reloads. An empty term clears the search.
func (a *App) Search(ctx context.Context, term string) error {
	a.kb.SetSearch(term)
	return a.List(ctx)
}

// Category filters by category id. An empty id shows all categories.
func (a *App) Category(ctx context.Context, id string) error {
	if id != "" {
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			fmt.Fprintln(a.out, "Category must be a numeric id (see the list footer)")
			return err
		}
	}
	a.kb.SetCategory(id)
	return a.List(ctx)
}

// Tag toggles a tag in the selected set.
func (a *App) Tag(ctx context.Context, name string) error {
	a.kb.ToggleTag(strings.ToLower(name))
	return a.List(ctx)
}

// Sort selects the list ordering: newest, title, or mostViewed.
func (a *App) Sort(ctx context.Context, key string) error {
	switch services.SortKey(key) {
	case services.SortNewest, services.SortTitle, services.SortMostViewed:
		a.kb.SetSort(services.SortKey(key))
	default:
		fmt.Fprintln(a.out, "Sort key must be one of: newest, title, mostViewed")
		return fmt.Errorf("unknown sort key %q", key)
	}
	return a.List(ctx)
}

// Page moves to the given page without touching the filters.
func (a *App) Page(ctx context.Context, number string) error {
	n, err := strconv.Atoi(number)
	if err != nil {
		fmt.Fprintln(a.out, "Page must be a number")
		return err
	}
	a.kb.SetPage(n)
	return a.List(ctx)
}

// NextPage advances one page, stopping at the last known page.
func (a *App) NextPage(ctx context.Context) error {
	browse := a.kb.Browse()
	if browse.TotalPages > 0 && browse.Page >= browse.TotalPages {
		fmt.Fprintln(a.out, "Already on the last page")
		return nil
	}
	a.kb.SetPage(browse.Page + 1)
	return a.List(ctx)
}

// PrevPage goes back one page, stopping at page 1.
func (a *App) PrevPage(ctx context.Context) error {
	browse := a.kb.Browse()
	if browse.Page <= 1 {
		fmt.Fprintln(a.out, "Already on the first page")
		return nil
	}
	a.kb.SetPage(browse.Page - 1)
	return a.List(ctx)
}

// Open selects an article, records a view, and prints the full content.
func (a *App) Open(ctx context.Context, id string) error {
	articleID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Article id must be a number")
		return err
	}

	article, err := a.kb.OpenArticle(ctx, articleID)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", serverOr(err))
		return err
	}
	a.printArticle(article)
	return nil
}

// ClearFilters drops search, category, and tag selection and reloads.
func (a *App) ClearFilters(ctx context.Context) error {
	a.kb.ClearFilters()
	return a.List(ctx)
}

// Featured prints the featured articles loaded at startup.
func (a *App) Featured(ctx context.Context) error {
	browse := a.kb.Browse()
	if len(browse.Featured) == 0 {
		fmt.Fprintln(a.out, "No featured articles")
		return nil
	}
	for _, article := range browse.Featured {
		fmt.Fprintf(a.out, "%4d  %-50s %s\n", article.ID, article.Title, article.CategoryName)
	}
	return nil
}

func (a *App) printBrowse() {
	browse := a.kb.Browse()

	var active []string
	if browse.SearchTerm != "" {
		active = append(active, "search="+browse.SearchTerm)
	}
	if browse.CategoryFilter != "" {
		active = append(active, "category="+browse.CategoryFilter)
	}
	if len(browse.SelectedTags) > 0 {
		active = append(active, "tags="+strings.Join(browse.SelectedTags, ","))
	}
	if len(active) > 0 {
		fmt.Fprintf(a.out, "Filters: %s\n", strings.Join(active, " "))
	}

	if len(browse.Articles) == 0 {
		fmt.Fprintln(a.out, "No articles found")
	}
	for _, article := range browse.Articles {
		fmt.Fprintf(a.out, "%4d  %-50s %-20s %6d views\n",
			article.ID, article.Title, article.CategoryName, article.ViewCount)
	}
	fmt.Fprintf(a.out, "Page %d of %d (%d articles, sorted by %s)\n",
		browse.Page, browse.TotalPages, browse.TotalItems, browse.Sort)

	if len(browse.Categories) > 0 {
		var cats []string
		for _, c := range browse.Categories {
			cats = append(cats, fmt.Sprintf("%d=%s", c.ID, c.Name))
		}
		fmt.Fprintf(a.out, "Categories: %s\n", strings.Join(cats, " "))
	}
}

func (a *App) printArticle(article *models.Article) {
	fmt.Fprintf(a.out, "# %s\n", article.Title)
	if article.CategoryName != "" {
		fmt.Fprintf(a.out, "Category: %s\n", article.CategoryName)
	}
	if len(article.Tags) > 0 {
		fmt.Fprintf(a.out, "Tags: %s\n", strings.Join(article.Tags, ", "))
	}
	author := strings.TrimSpace(article.AuthorFirstName + " " + article.AuthorLastName)
	if author != "" {
		fmt.Fprintf(a.out, "Author: %s\n", author)
	}
	if article.PublishedAt != nil {
		fmt.Fprintf(a.out, "Published: %s\n", article.PublishedAt.Format("2006-01-02"))
	}
	fmt.Fprintf(a.out, "Views: %d\n\n", article.ViewCount)
	fmt.Fprintln(a.out, article.Content)
}

// serverOr prefers the server-provided message when one exists.
func serverOr(err error) string {
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	return err.Error()
}
