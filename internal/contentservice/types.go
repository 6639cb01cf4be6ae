package contentservice

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fitnova/clubapi/internal/common"
)

// RichText is a rendered HTML fragment from the content API. It is treated
// as opaque HTML to be transformed, never parsed into a DOM tree.
type RichText struct {
	Rendered string `json:"rendered"`
}

type Media struct {
	SourceURL    string        `json:"source_url"`
	MediaDetails *MediaDetails `json:"media_details,omitempty"`
}

type MediaDetails struct {
	Sizes map[string]MediaSize `json:"sizes,omitempty"`
}

type MediaSize struct {
	SourceURL string `json:"source_url"`
}

type EmbeddedAuthor struct {
	Name string `json:"name"`
}

type Term struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Embedded carries the linked entities the API inlines when _embed is
// requested.
type Embedded struct {
	FeaturedMedia []Media          `json:"wp:featuredmedia,omitempty"`
	Author        []EmbeddedAuthor `json:"author,omitempty"`
	Terms         [][]Term         `json:"wp:term,omitempty"`
}

type Post struct {
	ID            int       `json:"id"`
	Slug          string    `json:"slug"`
	Date          string    `json:"date"`
	Modified      string    `json:"modified"`
	Title         RichText  `json:"title"`
	Content       RichText  `json:"content"`
	Excerpt       RichText  `json:"excerpt"`
	Author        int       `json:"author"`
	FeaturedMedia int       `json:"featured_media"`
	Categories    []int     `json:"categories"`
	Embedded      *Embedded `json:"_embedded,omitempty"`

	// decorated fields
	AuthorName       string   `json:"author_name,omitempty"`
	FeaturedImageURL string   `json:"featured_image_url,omitempty"`
	CategoryNames    []string `json:"category_names,omitempty"`
}

// Course carries a free-form acf field bag. The bag is inherently
// open-ended per content kind, so it stays a generic tree rather than a
// fully typed struct.
type Course struct {
	ID            int            `json:"id"`
	Slug          string         `json:"slug"`
	Title         RichText       `json:"title"`
	Content       RichText       `json:"content"`
	Excerpt       RichText       `json:"excerpt"`
	FeaturedMedia int            `json:"featured_media"`
	Embedded      *Embedded      `json:"_embedded,omitempty"`
	Acf           map[string]any `json:"acf"`

	FeaturedImageURL string   `json:"featured_image_url,omitempty"`
	TrainerData      *Trainer `json:"trainer_data,omitempty"`
}

type Trainer struct {
	ID            int            `json:"id"`
	Slug          string         `json:"slug"`
	Title         RichText       `json:"title"`
	Content       RichText       `json:"content"`
	FeaturedMedia int            `json:"featured_media"`
	Embedded      *Embedded      `json:"_embedded,omitempty"`
	Acf           map[string]any `json:"acf"`

	FeaturedImageURL string `json:"featured_image_url,omitempty"`
}

type GalleryImage struct {
	ID            int            `json:"id"`
	Slug          string         `json:"slug"`
	Title         RichText       `json:"title"`
	Content       RichText       `json:"content"`
	FeaturedMedia int            `json:"featured_media"`
	Embedded      *Embedded      `json:"_embedded,omitempty"`
	Acf           map[string]any `json:"acf"`

	FeaturedImageURL string `json:"featured_image_url,omitempty"`
}

type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

type PostList struct {
	Posts      []Post `json:"posts"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
}

// PostFilter narrows a post listing. Zero values mean no filtering.
type PostFilter struct {
	Categories string
	Tags       string
	Search     string
}

// TrainerRef identifies the trainer linked to a course. The upstream field
// is either a bare numeric id or an embedded object carrying an ID field;
// the shape is resolved once here instead of being re-checked at each use
// site.
type TrainerRef struct {
	ID int
}

func trainerRefFrom(v any) (TrainerRef, bool) {
	switch ref := v.(type) {
	case float64:
		if ref > 0 {
			return TrainerRef{ID: int(ref)}, true
		}
	case map[string]any:
		if id, ok := ref["ID"].(float64); ok && id > 0 {
			return TrainerRef{ID: int(id)}, true
		}
	}
	return TrainerRef{}, false
}

// ContentService is the remote-content access layer: it fetches typed
// content from the upstream API through a TTL cache with stale fallback,
// and decorates every item before it reaches a caller.
type ContentService struct {
	client    *http.Client
	cache     *common.Cache
	logger    *slog.Logger
	rw        *Rewriter
	tf        *Transformer
	apiBase   string
	username  string
	password  string
	ttl       time.Duration
	userAgent string
}
