package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/prolianceltd/taskflow-cli/internal/client/models"
)

// Manage loads and prints the management screen: own articles, categories,
// tags, and the aggregate stats.
func (a *App) Manage(ctx context.Context) error {
	if err := a.kb.LoadManage(ctx); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", serverOr(err))
		return err
	}
	a.printManage()
	return nil
}

// NewArticle collects article fields interactively and submits them.
func (a *App) NewArticle(ctx context.Context) error {
	article, err := a.inputArticle(models.Article{Status: models.StatusDraft})
	if err != nil {
		return err
	}

	if err := a.kb.CreateArticle(ctx, *article); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", serverOr(err))
		return err
	}
	fmt.Fprintln(a.out, "Article created")
	return nil
}

// EditArticle fetches the article, prompts for new values with the current
// ones as defaults, and submits the result.
func (a *App) EditArticle(ctx context.Context, id string) error {
	articleID, err := parseID(a, id, "Article")
	if err != nil {
		return err
	}

	current := a.findOwnArticle(articleID)
	if current == nil {
		fmt.Fprintln(a.out, "Not one of your articles (run 'manage' first)")
		return fmt.Errorf("article %d not loaded", articleID)
	}

	article, err := a.inputArticle(*current)
	if err != nil {
		return err
	}

	if err := a.kb.UpdateArticle(ctx, articleID, *article); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", serverOr(err))
		return err
	}
	fmt.Fprintln(a.out, "Article updated")
	return nil
}

// DeleteArticle asks for confirmation and issues the remote delete.
func (a *App) DeleteArticle(ctx context.Context, id string) error {
	articleID, err := parseID(a, id, "Article")
	if err != nil {
		return err
	}

	if !GetConfirmation(a.reader, fmt.Sprintf("Delete article %d? This cannot be undone.", articleID), a.out) {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.kb.DeleteArticle(ctx, articleID); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", serverOr(err))
		return err
	}
	fmt.Fprintln(a.out, "Article deleted")
	return nil
}

// NewCategory prompts for a name and description and creates the category.
func (a *App) NewCategory(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Category name", a.out)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}

	if err := a.kb.CreateCategory(ctx, name, description); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", serverOr(err))
		return err
	}
	fmt.Fprintln(a.out, "Category created")
	return nil
}

// EditCategory prompts for a new name and description for an existing category.
func (a *App) EditCategory(ctx context.Context, id string) error {
	categoryID, err := parseID(a, id, "Category")
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "New name", a.out)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "New description (optional)", a.out)
	if err != nil {
		return err
	}

	if err := a.kb.UpdateCategory(ctx, categoryID, name, description); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", serverOr(err))
		return err
	}
	fmt.Fprintln(a.out, "Category updated")
	return nil
}

// DeleteCategory asks for confirmation and issues the remote delete.
func (a *App) DeleteCategory(ctx context.Context, id string) error {
	categoryID, err := parseID(a, id, "Category")
	if err != nil {
		return err
	}

	if !GetConfirmation(a.reader, fmt.Sprintf("Delete category %d?", categoryID), a.out) {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.kb.DeleteCategory(ctx, categoryID); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", serverOr(err))
		return err
	}
	fmt.Fprintln(a.out, "Category deleted")
	return nil
}

// NewTag prompts for a tag name. The name is lowercased before submission.
func (a *App) NewTag(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Tag name", a.out)
	if err != nil {
		return err
	}

	if err := a.kb.CreateTag(ctx, name); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", serverOr(err))
		return err
	}
	fmt.Fprintln(a.out, "Tag created")
	return nil
}

// DeleteTag asks for confirmation and issues the remote delete.
func (a *App) DeleteTag(ctx context.Context, id string) error {
	tagID, err := parseID(a, id, "Tag")
	if err != nil {
		return err
	}

	if !GetConfirmation(a.reader, fmt.Sprintf("Delete tag %d?", tagID), a.out) {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.kb.DeleteTag(ctx, tagID); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", serverOr(err))
		return err
	}
	fmt.Fprintln(a.out, "Tag deleted")
	return nil
}

// inputArticle prompts for article fields. Fields left empty keep the value
// from 'current', so the same flow serves both create and edit.
func (a *App) inputArticle(current models.Article) (*models.Article, error) {
	title, err := getSimpleText(a.reader, labeled("Title", current.Title), a.out)
	if err != nil {
		return nil, err
	}
	if title != "" {
		current.Title = title
	}

	content, err := GetMultiline(a.reader, "Content", a.out)
	if err != nil {
		return nil, err
	}
	if content != "" {
		current.Content = content
	}

	excerpt, err := getSimpleText(a.reader, labeled("Excerpt", current.Excerpt), a.out)
	if err != nil {
		return nil, err
	}
	if excerpt != "" {
		current.Excerpt = excerpt
	}

	category, err := getSimpleText(a.reader, labeled("Category id", strconv.FormatInt(current.Category, 10)), a.out)
	if err != nil {
		return nil, err
	}
	if category != "" {
		id, err := strconv.ParseInt(category, 10, 64)
		if err != nil {
			fmt.Fprintln(a.out, "Category must be a numeric id")
			return nil, err
		}
		current.Category = id
	}

	tags, err := getSimpleText(a.reader, labeled("Tags (comma-separated)", strings.Join(current.Tags, ",")), a.out)
	if err != nil {
		return nil, err
	}
	if tags != "" {
		var parsed []string
		for _, t := range strings.Split(tags, ",") {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				parsed = append(parsed, t)
			}
		}
		current.Tags = parsed
	}

	status, err := getSimpleText(a.reader, labeled("Status (draft/published/archived)", string(current.Status)), a.out)
	if err != nil {
		return nil, err
	}
	if status != "" {
		switch models.ArticleStatus(status) {
		case models.StatusDraft, models.StatusPublished, models.StatusArchived:
			current.Status = models.ArticleStatus(status)
		default:
			fmt.Fprintln(a.out, "Status must be draft, published, or archived")
			return nil, fmt.Errorf("unknown status %q", status)
		}
	}

	return &current, nil
}

func (a *App) findOwnArticle(id int64) *models.Article {
	manage := a.kb.Manage()
	for i := range manage.Articles {
		if manage.Articles[i].ID == id {
			return &manage.Articles[i]
		}
	}
	return nil
}

func (a *App) printManage() {
	manage := a.kb.Manage()

	s := manage.Stats
	fmt.Fprintf(a.out, "Articles: %d (%d published, %d drafts), %d total views\n",
		s.TotalArticles, s.PublishedArticles, s.DraftArticles, s.TotalViews)
	fmt.Fprintf(a.out, "Categories: %d, tags: %d\n", s.TotalCategories, s.TotalTags)

	for _, article := range manage.Articles {
		fmt.Fprintf(a.out, "%4d  %-50s %-10s %6d views\n",
			article.ID, article.Title, article.Status, article.ViewCount)
	}
	if len(manage.Categories) > 0 {
		var cats []string
		for _, c := range manage.Categories {
			cats = append(cats, fmt.Sprintf("%d=%s", c.ID, c.Name))
		}
		fmt.Fprintf(a.out, "Categories: %s\n", strings.Join(cats, " "))
	}
	if len(manage.Tags) > 0 {
		var tags []string
		for _, t := range manage.Tags {
			tags = append(tags, fmt.Sprintf("%d=%s", t.ID, t.Name))
		}
		fmt.Fprintf(a.out, "Tags: %s\n", strings.Join(tags, " "))
	}
}

// labeled shows the current value in the prompt when there is one, signalling
// that an empty answer keeps it.
func labeled(prompt, current string) string {
	if current == "" || current == "0" {
		return prompt
	}
	return fmt.Sprintf("%s [%s]", prompt, current)
}

func parseID(a *App, raw, kind string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Fprintf(a.out, "%s id must be a number\n", kind)
		return 0, err
	}
	return id, nil
}
