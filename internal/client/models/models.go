// Package models defines the domain entities exchanged with the remote
// TaskFlow services: the identity service (login, OTP, users) and the
// knowledge-base content service (articles, categories, tags).
package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Identity is the decoded user identity attached to a session. Claims decoded
// from the token are advisory only; the remote service is the authority for
// access decisions.
type Identity struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	UserType  string `json:"user_type,omitempty"`
}

// DisplayName returns "First Last", falling back to username, then email.
func (i Identity) DisplayName() string {
	switch {
	case i.FirstName != "" || i.LastName != "":
		if i.FirstName == "" {
			return i.LastName
		}
		if i.LastName == "" {
			return i.FirstName
		}
		return i.FirstName + " " + i.LastName
	case i.Username != "":
		return i.Username
	default:
		return i.Email
	}
}

// LoginResult is the identity-service response to POST /token/ and
// POST /verify-otp/. The service returns one of two shapes: a token grant
// (Access + User) or an OTP challenge (RequiresOTP + UserID + Email +
// OTPMethod); both decode into this struct.
type LoginResult struct {
	Access  string    `json:"access"`
	Refresh string    `json:"refresh"`
	User    *Identity `json:"user"`

	TenantID             string `json:"tenant_id"`
	TenantName           string `json:"tenant_name"`
	TenantPrimaryColor   string `json:"tenant_primary_color"`
	TenantSecondaryColor string `json:"tenant_secondary_color"`

	RequiresOTP bool   `json:"requires_otp"`
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	OTPMethod   string `json:"otp_method"`
}

// ArticleStatus is the publication state of an article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
	StatusArchived  ArticleStatus = "archived"
)

// Article is a knowledge-base article. The content service owns the record;
// the client holds a read/write copy for the currently loaded page.
type Article struct {
	ID            int64         `json:"id,omitempty"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	Excerpt       string        `json:"excerpt,omitempty"`
	Category      int64         `json:"category,omitempty"`
	CategoryName  string        `json:"category_name,omitempty"`
	Tags          []string      `json:"tags"`
	Status        ArticleStatus `json:"status"`
	ViewCount     int64         `json:"view_count,omitempty"`
	FeaturedImage string        `json:"featured_image,omitempty"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`

	AuthorID        int64  `json:"author_id,omitempty"`
	AuthorFirstName string `json:"author_first_name,omitempty"`
	AuthorLastName  string `json:"author_last_name,omitempty"`
	AuthorEmail     string `json:"author_email,omitempty"`
}

// Category groups articles one-to-many.
type Category struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Tag labels articles many-to-many by name. Names are stored lower-cased.
type Tag struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// ArticlePage is a paginated article listing. The content service answers
// either with a pagination envelope {count,next,previous,results} or with a
// bare array; both decode into this struct.
type ArticlePage struct {
	Count    int       `json:"count"`
	Next     string    `json:"next"`
	Previous string    `json:"previous"`
	Results  []Article `json:"results"`
}

func (p *ArticlePage) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Article
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		p.Results = items
		p.Count = len(items)
		return nil
	}

	type page ArticlePage // avoid recursing into this method
	var decoded page
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = ArticlePage(decoded)
	if p.Count == 0 {
		p.Count = len(p.Results)
	}
	return nil
}
