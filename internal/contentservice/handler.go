package contentservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fitnova/clubapi/internal/common"
)

// NewContentService wires the access layer to the upstream content API.
// apiURL is the API base (e.g. https://cms.example.com/wp-json); credentials
// and the cache TTL come from configuration, never from literals.
func NewContentService(apiURL, username, password string, ttl time.Duration, cache *common.Cache, logger *slog.Logger) (*ContentService, error) {
	rw, err := NewRewriter(apiURL)
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &ContentService{
		client:    &http.Client{},
		cache:     cache,
		logger:    logger,
		rw:        rw,
		tf:        NewTransformer(rw),
		apiBase:   strings.TrimSuffix(apiURL, "/") + "/wp/v2",
		username:  username,
		password:  password,
		ttl:       ttl,
		userAgent: "clubapi media proxy (+https://github.com/fitnova/clubapi)",
	}, nil
}

func (s *ContentService) Rewriter() *Rewriter {
	return s.rw
}

func (s *ContentService) Transformer() *Transformer {
	return s.tf
}

// GetAllPosts lists blog posts with pagination and optional filters. A
// degraded upstream yields an empty list, never an error; the page must
// always have something to render.
func (s *ContentService) GetAllPosts(ctx context.Context, perPage, page int, filter PostFilter) *PostList {
	if perPage < 1 {
		perPage = 10
	}
	if page < 1 {
		page = 1
	}

	u := fmt.Sprintf("%s/posts?per_page=%d&page=%d&_embed", s.apiBase, perPage, page)
	var suffix strings.Builder
	if filter.Categories != "" {
		u += "&categories=" + url.QueryEscape(filter.Categories)
		suffix.WriteString("cat=" + filter.Categories + ";")
	}
	if filter.Tags != "" {
		u += "&tags=" + url.QueryEscape(filter.Tags)
		suffix.WriteString("tag=" + filter.Tags + ";")
	}
	if filter.Search != "" {
		u += "&search=" + url.QueryEscape(filter.Search)
		suffix.WriteString("q=" + filter.Search + ";")
	}

	res, err := s.fetchCached(ctx, u, common.CacheKeyPosts(perPage, page, suffix.String()), false)
	if err != nil {
		s.logger.Error("could not fetch posts", slog.String("error", err.Error()))
		return &PostList{Posts: []Post{}}
	}

	var raw []Post
	if err := json.Unmarshal(res.body, &raw); err != nil {
		s.logger.Error("could not decode posts", slog.String("error", err.Error()))
		return &PostList{Posts: []Post{}}
	}

	posts := make([]Post, 0, len(raw))
	for _, p := range raw {
		posts = append(posts, s.decoratePost(p))
	}

	total := res.total
	if total == 0 {
		total = len(posts)
	}
	totalPages := res.totalPages
	if totalPages == 0 {
		totalPages = (total + perPage - 1) / perPage
	}

	return &PostList{Posts: posts, Total: total, TotalPages: totalPages}
}

// GetPostBySlug returns the post addressed by slug, or nil when it does not
// exist or the upstream is unreachable.
func (s *ContentService) GetPostBySlug(ctx context.Context, slug string) *Post {
	u := fmt.Sprintf("%s/posts?slug=%s&_embed", s.apiBase, url.QueryEscape(slug))

	res, err := s.fetchCached(ctx, u, common.CacheKeyPost(slug), false)
	if err != nil {
		s.logger.Error("could not fetch post", slog.String("slug", slug), slog.String("error", err.Error()))
		return nil
	}

	var raw []Post
	if err := json.Unmarshal(res.body, &raw); err != nil {
		s.logger.Error("could not decode post", slog.String("slug", slug), slog.String("error", err.Error()))
		return nil
	}

	if len(raw) == 0 {
		return nil
	}
	if len(raw) > 1 {
		s.logger.Warn("multiple posts share a slug", slog.String("slug", slug), slog.Int("count", len(raw)))
	}

	post := s.decoratePost(raw[0])
	return &post
}

// GetAllCourses lists courses, each with its linked trainer resolved when
// one is referenced.
func (s *ContentService) GetAllCourses(ctx context.Context, perPage, page int, category string) []Course {
	if perPage < 1 {
		perPage = 100
	}
	if page < 1 {
		page = 1
	}

	u := fmt.Sprintf("%s/courses?per_page=%d&page=%d&_embed", s.apiBase, perPage, page)
	if category != "" {
		u += "&category=" + url.QueryEscape(category)
	}

	res, err := s.fetchCached(ctx, u, common.CacheKeyCourses(perPage, page, category), false)
	if err != nil {
		s.logger.Error("could not fetch courses", slog.String("error", err.Error()))
		return []Course{}
	}

	var raw []Course
	if err := json.Unmarshal(res.body, &raw); err != nil {
		s.logger.Error("could not decode courses", slog.String("error", err.Error()))
		return []Course{}
	}

	courses := make([]Course, 0, len(raw))
	for _, c := range raw {
		courses = append(courses, s.decorateCourse(ctx, c))
	}

	return courses
}

// GetCourseBySlug returns the course addressed by slug with its trainer
// resolved, or nil on a miss or failure.
func (s *ContentService) GetCourseBySlug(ctx context.Context, slug string) *Course {
	u := fmt.Sprintf("%s/courses?slug=%s&_embed", s.apiBase, url.QueryEscape(slug))

	res, err := s.fetchCached(ctx, u, common.CacheKeyCourse(slug), false)
	if err != nil {
		s.logger.Error("could not fetch course", slog.String("slug", slug), slog.String("error", err.Error()))
		return nil
	}

	var raw []Course
	if err := json.Unmarshal(res.body, &raw); err != nil {
		s.logger.Error("could not decode course", slog.String("slug", slug), slog.String("error", err.Error()))
		return nil
	}

	if len(raw) == 0 {
		return nil
	}
	if len(raw) > 1 {
		s.logger.Warn("multiple courses share a slug", slog.String("slug", slug), slog.Int("count", len(raw)))
	}

	course := s.decorateCourse(ctx, raw[0])
	return &course
}

func (s *ContentService) GetAllTrainers(ctx context.Context) []Trainer {
	u := fmt.Sprintf("%s/trainers?per_page=100&_embed", s.apiBase)

	res, err := s.fetchCached(ctx, u, common.CacheKeyTrainers(), false)
	if err != nil {
		s.logger.Error("could not fetch trainers", slog.String("error", err.Error()))
		return []Trainer{}
	}

	var raw []Trainer
	if err := json.Unmarshal(res.body, &raw); err != nil {
		s.logger.Error("could not decode trainers", slog.String("error", err.Error()))
		return []Trainer{}
	}

	trainers := make([]Trainer, 0, len(raw))
	for _, tr := range raw {
		trainers = append(trainers, s.decorateTrainer(tr))
	}

	return trainers
}

func (s *ContentService) GetTrainerBySlug(ctx context.Context, slug string) *Trainer {
	u := fmt.Sprintf("%s/trainers?slug=%s&_embed", s.apiBase, url.QueryEscape(slug))

	res, err := s.fetchCached(ctx, u, common.CacheKeyTrainer(slug), false)
	if err != nil {
		s.logger.Error("could not fetch trainer", slog.String("slug", slug), slog.String("error", err.Error()))
		return nil
	}

	var raw []Trainer
	if err := json.Unmarshal(res.body, &raw); err != nil {
		s.logger.Error("could not decode trainer", slog.String("slug", slug), slog.String("error", err.Error()))
		return nil
	}

	if len(raw) == 0 {
		return nil
	}
	if len(raw) > 1 {
		s.logger.Warn("multiple trainers share a slug", slog.String("slug", slug), slog.Int("count", len(raw)))
	}

	trainer := s.decorateTrainer(raw[0])
	return &trainer
}

// GetTrainerByID resolves a single trainer through the same cached client
// used for every other fetch, so trainer lookups for courses benefit from
// the same caching and stale fallback.
func (s *ContentService) GetTrainerByID(ctx context.Context, id int) *Trainer {
	u := fmt.Sprintf("%s/trainers/%d?_embed", s.apiBase, id)

	res, err := s.fetchCached(ctx, u, common.CacheKeyTrainerByID(id), false)
	if err != nil {
		s.logger.Error("could not fetch trainer", slog.Int("id", id), slog.String("error", err.Error()))
		return nil
	}

	var raw Trainer
	if err := json.Unmarshal(res.body, &raw); err != nil {
		s.logger.Error("could not decode trainer", slog.Int("id", id), slog.String("error", err.Error()))
		return nil
	}

	trainer := s.decorateTrainer(raw)
	return &trainer
}

func (s *ContentService) GetAllGalleryImages(ctx context.Context, perPage, page int, category string) []GalleryImage {
	if perPage < 1 {
		perPage = 12
	}
	if page < 1 {
		page = 1
	}

	u := fmt.Sprintf("%s/gallery?per_page=%d&page=%d&_embed", s.apiBase, perPage, page)
	if category != "" {
		u += "&category=" + url.QueryEscape(category)
	}

	res, err := s.fetchCached(ctx, u, common.CacheKeyGallery(perPage, page, category), false)
	if err != nil {
		s.logger.Error("could not fetch gallery images", slog.String("error", err.Error()))
		return []GalleryImage{}
	}

	var raw []GalleryImage
	if err := json.Unmarshal(res.body, &raw); err != nil {
		s.logger.Error("could not decode gallery images", slog.String("error", err.Error()))
		return []GalleryImage{}
	}

	images := make([]GalleryImage, 0, len(raw))
	for _, img := range raw {
		images = append(images, s.decorateGalleryImage(img))
	}

	return images
}

func (s *ContentService) GetGalleryImageBySlug(ctx context.Context, slug string) *GalleryImage {
	u := fmt.Sprintf("%s/gallery?slug=%s&_embed", s.apiBase, url.QueryEscape(slug))

	res, err := s.fetchCached(ctx, u, "gallery:slug:"+slug, false)
	if err != nil {
		s.logger.Error("could not fetch gallery image", slog.String("slug", slug), slog.String("error", err.Error()))
		return nil
	}

	var raw []GalleryImage
	if err := json.Unmarshal(res.body, &raw); err != nil {
		s.logger.Error("could not decode gallery image", slog.String("slug", slug), slog.String("error", err.Error()))
		return nil
	}

	if len(raw) == 0 {
		return nil
	}

	img := s.decorateGalleryImage(raw[0])
	return &img
}

func (s *ContentService) GetCategories(ctx context.Context) []Category {
	u := fmt.Sprintf("%s/categories?per_page=100", s.apiBase)

	res, err := s.fetchCached(ctx, u, common.CacheKeyCategories(), false)
	if err != nil {
		s.logger.Error("could not fetch categories", slog.String("error", err.Error()))
		return []Category{}
	}

	var categories []Category
	if err := json.Unmarshal(res.body, &categories); err != nil {
		s.logger.Error("could not decode categories", slog.String("error", err.Error()))
		return []Category{}
	}

	return categories
}

// Invalidate drops cached entries for the site section addressed by path.
// It backs the revalidation hook; the next accessor call refetches.
func (s *ContentService) Invalidate(path string) {
	segment := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}

	switch segment {
	case "blog":
		s.cache.DeletePrefix("posts:")
		s.cache.DeletePrefix("categories:")
	case "corsi", "courses":
		s.cache.DeletePrefix("courses:")
	case "trainers":
		s.cache.DeletePrefix("trainers:")
	case "gallery", "club":
		s.cache.DeletePrefix("gallery:")
	default:
		s.cache.Flush()
	}
}

func (s *ContentService) decoratePost(p Post) Post {
	if p.Embedded != nil {
		if len(p.Embedded.Author) > 0 {
			p.AuthorName = p.Embedded.Author[0].Name
		}
		if len(p.Embedded.FeaturedMedia) > 0 {
			p.FeaturedImageURL = p.Embedded.FeaturedMedia[0].SourceURL
		}
		if len(p.Embedded.Terms) > 0 {
			names := make([]string, 0, len(p.Embedded.Terms[0]))
			for _, term := range p.Embedded.Terms[0] {
				names = append(names, term.Name)
			}
			p.CategoryNames = names
		}
	}

	if p.FeaturedImageURL != "" {
		p.FeaturedImageURL = s.rw.ToProxied(p.FeaturedImageURL)
	}
	p.Embedded = s.rewriteEmbedded(p.Embedded)

	p.Title.Rendered = s.tf.TransformHTML(p.Title.Rendered)
	p.Content.Rendered = s.tf.TransformHTML(p.Content.Rendered)
	p.Excerpt.Rendered = s.tf.TransformHTML(p.Excerpt.Rendered)

	return p
}

func (s *ContentService) decorateCourse(ctx context.Context, c Course) Course {
	if c.Embedded != nil && len(c.Embedded.FeaturedMedia) > 0 {
		c.FeaturedImageURL = s.rw.ToProxied(c.Embedded.FeaturedMedia[0].SourceURL)
	}
	c.Embedded = s.rewriteEmbedded(c.Embedded)

	c.Title.Rendered = s.tf.TransformHTML(c.Title.Rendered)
	c.Content.Rendered = s.tf.TransformHTML(c.Content.Rendered)
	c.Excerpt.Rendered = s.tf.TransformHTML(c.Excerpt.Rendered)
	c.Acf = s.tf.TransformFieldMap(c.Acf)

	// Trainer resolution failure must not fail the course; it is returned
	// without trainer data.
	if ref, ok := trainerRefFrom(c.Acf["trainer"]); ok {
		if trainer := s.GetTrainerByID(ctx, ref.ID); trainer != nil {
			c.TrainerData = trainer
		} else {
			s.logger.Warn("could not resolve course trainer", slog.Int("course_id", c.ID), slog.Int("trainer_id", ref.ID))
		}
	}

	return c
}

func (s *ContentService) decorateTrainer(tr Trainer) Trainer {
	if tr.Embedded != nil && len(tr.Embedded.FeaturedMedia) > 0 {
		tr.FeaturedImageURL = s.rw.ToProxied(tr.Embedded.FeaturedMedia[0].SourceURL)
	}
	tr.Embedded = s.rewriteEmbedded(tr.Embedded)

	tr.Title.Rendered = s.tf.TransformHTML(tr.Title.Rendered)
	tr.Content.Rendered = s.tf.TransformHTML(tr.Content.Rendered)
	tr.Acf = s.tf.TransformFieldMap(tr.Acf)

	return tr
}

func (s *ContentService) decorateGalleryImage(img GalleryImage) GalleryImage {
	if img.Embedded != nil && len(img.Embedded.FeaturedMedia) > 0 {
		img.FeaturedImageURL = s.rw.ToProxied(img.Embedded.FeaturedMedia[0].SourceURL)
	}
	img.Embedded = s.rewriteEmbedded(img.Embedded)

	img.Title.Rendered = s.tf.TransformHTML(img.Title.Rendered)
	img.Content.Rendered = s.tf.TransformHTML(img.Content.Rendered)
	img.Acf = s.tf.TransformFieldMap(img.Acf)

	return img
}

// rewriteEmbedded proxies every media URL inside the embedded block,
// including per-size variants, so no raw origin URL survives decoration.
func (s *ContentService) rewriteEmbedded(e *Embedded) *Embedded {
	if e == nil {
		return nil
	}

	for i := range e.FeaturedMedia {
		e.FeaturedMedia[i].SourceURL = s.rw.ToProxied(e.FeaturedMedia[i].SourceURL)
		if e.FeaturedMedia[i].MediaDetails == nil {
			continue
		}
		for name, size := range e.FeaturedMedia[i].MediaDetails.Sizes {
			size.SourceURL = s.rw.ToProxied(size.SourceURL)
			e.FeaturedMedia[i].MediaDetails.Sizes[name] = size
		}
	}

	return e
}
