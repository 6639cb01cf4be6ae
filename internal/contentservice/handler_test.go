package contentservice

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newContentFixture serves a small seeded content API: three posts sharing
// one featured image, two courses whose trainer field uses the two upstream
// shapes, one trainer, one gallery image and two categories. Every slug
// query it does not know returns an empty list.
func newContentFixture(t *testing.T) (*httptest.Server, *ContentService) {
	t.Helper()

	var upstream *httptest.Server
	upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := upstream.URL
		img := origin + "/wp-content/uploads/a.jpg"

		w.Header().Set("Content-Type", "application/json")

		slug := r.URL.Query().Get("slug")

		switch r.URL.Path {
		case "/wp-json/wp/v2/posts":
			if slug != "" && slug != "apertura-estiva" {
				fmt.Fprint(w, `[]`)
				return
			}
			w.Header().Set("X-WP-Total", "3")
			w.Header().Set("X-WP-TotalPages", "1")
			post := func(id int, slug string) string {
				return fmt.Sprintf(`{
					"id": %d, "slug": %q, "date": "2025-06-02T09:00:00",
					"title": {"rendered": "Post %d"},
					"content": {"rendered": "<p><img src=\"%s\"></p>"},
					"excerpt": {"rendered": "<p>Excerpt</p>"},
					"author": 1, "featured_media": 10, "categories": [2],
					"_embedded": {
						"author": [{"name": "Giulia"}],
						"wp:featuredmedia": [{"source_url": %q}],
						"wp:term": [[{"id": 2, "name": "Novità", "slug": "novita"}]]
					}
				}`, id, slug, id, img, img)
			}
			fmt.Fprintf(w, `[%s,%s,%s]`, post(1, "apertura-estiva"), post(2, "secondo"), post(3, "terzo"))

		case "/wp-json/wp/v2/courses":
			switch slug {
			case "", "functional-training":
				fmt.Fprintf(w, `[{
					"id": 21, "slug": "functional-training",
					"title": {"rendered": "Functional Training"},
					"content": {"rendered": "<p>Allenamento</p>"},
					"excerpt": {"rendered": ""},
					"featured_media": 11,
					"_embedded": {"wp:featuredmedia": [{"source_url": %q}]},
					"acf": {"level": "Intermedio", "duration": "60 min", "trainer": 7}
				}]`, img)
			case "pilates-reformer":
				fmt.Fprintf(w, `[{
					"id": 22, "slug": "pilates-reformer",
					"title": {"rendered": "Pilates Reformer"},
					"content": {"rendered": ""},
					"excerpt": {"rendered": ""},
					"featured_media": 0,
					"acf": {"trainer": {"ID": 7, "post_title": "Marco", "post_name": "marco"}}
				}]`)
			case "corso-senza-trainer":
				fmt.Fprint(w, `[{
					"id": 23, "slug": "corso-senza-trainer",
					"title": {"rendered": "Stretching"},
					"content": {"rendered": ""},
					"excerpt": {"rendered": ""},
					"featured_media": 0,
					"acf": {"trainer": "not-a-reference"}
				}]`)
			default:
				fmt.Fprint(w, `[]`)
			}

		case "/wp-json/wp/v2/trainers":
			if slug != "" && slug != "marco" {
				fmt.Fprint(w, `[]`)
				return
			}
			fmt.Fprintf(w, `[{
				"id": 7, "slug": "marco",
				"title": {"rendered": "Marco"},
				"content": {"rendered": "<p>Trainer</p>"},
				"featured_media": 12,
				"_embedded": {"wp:featuredmedia": [{"source_url": %q}]},
				"acf": {"role": "Personal Trainer", "schedule_monday": "9:00 - 18:00", "instagram_url": "https://instagram.com/marco"}
			}]`, img)

		case "/wp-json/wp/v2/trainers/7":
			fmt.Fprintf(w, `{
				"id": 7, "slug": "marco",
				"title": {"rendered": "Marco"},
				"content": {"rendered": "<p>Trainer</p>"},
				"featured_media": 12,
				"_embedded": {"wp:featuredmedia": [{"source_url": %q}]},
				"acf": {"role": "Personal Trainer"}
			}`, img)

		case "/wp-json/wp/v2/gallery":
			if slug != "" && slug != "sala-pesi" {
				fmt.Fprint(w, `[]`)
				return
			}
			fmt.Fprintf(w, `[{
				"id": 31, "slug": "sala-pesi",
				"title": {"rendered": "Sala pesi"},
				"content": {"rendered": ""},
				"featured_media": 13,
				"_embedded": {"wp:featuredmedia": [{"source_url": %q}]},
				"acf": {"category": "struttura"}
			}]`, img)

		case "/wp-json/wp/v2/categories":
			fmt.Fprint(w, `[{"id": 2, "name": "Novità", "slug": "novita", "count": 3}, {"id": 3, "name": "Eventi", "slug": "eventi", "count": 1}]`)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(upstream.Close)

	return upstream, newTestService(t, upstream.URL, time.Minute)
}

func TestGetAllPosts(t *testing.T) {
	upstream, s := newContentFixture(t)

	list := s.GetAllPosts(context.Background(), 10, 1, PostFilter{})
	assert.Len(t, list.Posts, 3)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 1, list.TotalPages)

	wantImage := ProxyPath + "?url=" + url.QueryEscape(upstream.URL+"/wp-content/uploads/a.jpg")
	for _, p := range list.Posts {
		assert.Equal(t, wantImage, p.FeaturedImageURL)
		assert.Equal(t, "Giulia", p.AuthorName)
		assert.Equal(t, []string{"Novità"}, p.CategoryNames)
		// embedded media and rendered content must not leak raw origin urls
		assert.NotContains(t, p.Content.Rendered, upstream.URL)
		assert.Equal(t, wantImage, p.Embedded.FeaturedMedia[0].SourceURL)
	}
}

func TestGetPostBySlug(t *testing.T) {
	_, s := newContentFixture(t)

	post := s.GetPostBySlug(context.Background(), "apertura-estiva")
	assert.NotNil(t, post)
	assert.Equal(t, "apertura-estiva", post.Slug)

	assert.Nil(t, s.GetPostBySlug(context.Background(), "does-not-exist"))
}

func TestGetCourseBySlug_TrainerResolution(t *testing.T) {
	_, s := newContentFixture(t)

	// numeric trainer reference
	course := s.GetCourseBySlug(context.Background(), "functional-training")
	assert.NotNil(t, course)
	assert.NotNil(t, course.TrainerData)
	assert.Equal(t, "Marco", course.TrainerData.Title.Rendered)
	assert.Equal(t, 7, course.TrainerData.ID)
	assert.NotEmpty(t, course.TrainerData.FeaturedImageURL)
	assert.NotContains(t, course.TrainerData.FeaturedImageURL, "source_url")

	// embedded-object trainer reference resolves to the same trainer
	other := s.GetCourseBySlug(context.Background(), "pilates-reformer")
	assert.NotNil(t, other)
	assert.NotNil(t, other.TrainerData)
	assert.Equal(t, course.TrainerData.ID, other.TrainerData.ID)
	assert.Equal(t, course.TrainerData.Title.Rendered, other.TrainerData.Title.Rendered)
}

func TestGetCourseBySlug_UnresolvableTrainer(t *testing.T) {
	_, s := newContentFixture(t)

	course := s.GetCourseBySlug(context.Background(), "corso-senza-trainer")
	assert.NotNil(t, course, "an unresolvable trainer reference must not fail the course")
	assert.Nil(t, course.TrainerData)
}

func TestGetAllCourses(t *testing.T) {
	upstream, s := newContentFixture(t)

	courses := s.GetAllCourses(context.Background(), 100, 1, "")
	assert.Len(t, courses, 1)
	assert.Equal(t, "Intermedio", courses[0].Acf["level"])
	assert.NotContains(t, courses[0].FeaturedImageURL, upstream.URL+"/wp-content")
	assert.NotNil(t, courses[0].TrainerData)
}

func TestGetTrainers(t *testing.T) {
	_, s := newContentFixture(t)

	trainers := s.GetAllTrainers(context.Background())
	assert.Len(t, trainers, 1)
	assert.Equal(t, "Marco", trainers[0].Title.Rendered)

	trainer := s.GetTrainerBySlug(context.Background(), "marco")
	assert.NotNil(t, trainer)
	assert.Equal(t, "Personal Trainer", trainer.Acf["role"])

	assert.Nil(t, s.GetTrainerBySlug(context.Background(), "does-not-exist"))
}

func TestGetGallery(t *testing.T) {
	_, s := newContentFixture(t)

	images := s.GetAllGalleryImages(context.Background(), 12, 1, "")
	assert.Len(t, images, 1)
	assert.Equal(t, "struttura", images[0].Acf["category"])
	assert.NotEmpty(t, images[0].FeaturedImageURL)

	assert.Nil(t, s.GetGalleryImageBySlug(context.Background(), "does-not-exist"))
}

func TestGetCategories(t *testing.T) {
	_, s := newContentFixture(t)

	categories := s.GetCategories(context.Background())
	assert.Len(t, categories, 2)
	assert.Equal(t, "Novità", categories[0].Name)
}

func TestAccessorsDegradeGracefully(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	s := newTestService(t, upstream.URL, time.Minute)
	ctx := context.Background()

	assert.Empty(t, s.GetAllPosts(ctx, 10, 1, PostFilter{}).Posts)
	assert.Empty(t, s.GetAllCourses(ctx, 100, 1, ""))
	assert.Empty(t, s.GetAllTrainers(ctx))
	assert.Empty(t, s.GetAllGalleryImages(ctx, 12, 1, ""))
	assert.Empty(t, s.GetCategories(ctx))

	assert.Nil(t, s.GetPostBySlug(ctx, "x"))
	assert.Nil(t, s.GetCourseBySlug(ctx, "x"))
	assert.Nil(t, s.GetTrainerBySlug(ctx, "x"))
	assert.Nil(t, s.GetGalleryImageBySlug(ctx, "x"))
}

func TestInvalidate(t *testing.T) {
	_, s := newContentFixture(t)
	ctx := context.Background()

	s.GetAllPosts(ctx, 10, 1, PostFilter{})
	s.GetAllTrainers(ctx)

	s.Invalidate("/blog")

	_, ok := s.cache.Get("trainers:all")
	assert.True(t, ok, "invalidating /blog must not drop trainer entries")

	s.Invalidate("/")
	_, ok = s.cache.Get("trainers:all")
	assert.False(t, ok)
}
