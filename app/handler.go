package main

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/fitnova/clubapi/internal/bookingservice"
	"github.com/fitnova/clubapi/internal/common"
	"github.com/fitnova/clubapi/internal/contentservice"
)

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	perPage, page, err := app.readPageParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	filter := contentservice.PostFilter{
		Categories: query.Get("categories"),
		Tags:       query.Get("tags"),
		Search:     query.Get("search"),
	}

	var pp, p int
	if perPage != nil {
		pp = *perPage
	}
	if page != nil {
		p = *page
	}

	list := app.contentService.GetAllPosts(r.Context(), pp, p, filter)

	headers := http.Header{}
	headers.Set("X-Total-Count", strconv.Itoa(list.Total))
	headers.Set("X-Total-Pages", strconv.Itoa(list.TotalPages))

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": list.Posts}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) showPostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post := app.contentService.GetPostBySlug(r.Context(), slug)
	if post == nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listCoursesHandler(w http.ResponseWriter, r *http.Request) {
	perPage, page, err := app.readPageParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var pp, p int
	if perPage != nil {
		pp = *perPage
	}
	if page != nil {
		p = *page
	}

	courses := app.contentService.GetAllCourses(r.Context(), pp, p, r.URL.Query().Get("category"))

	err = app.writeJSON(w, http.StatusOK, envelope{"courses": courses}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) showCourseHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	course := app.contentService.GetCourseBySlug(r.Context(), slug)
	if course == nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"course": course}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listTrainersHandler(w http.ResponseWriter, r *http.Request) {
	trainers := app.contentService.GetAllTrainers(r.Context())

	err := app.writeJSON(w, http.StatusOK, envelope{"trainers": trainers}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) showTrainerHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	trainer := app.contentService.GetTrainerBySlug(r.Context(), slug)
	if trainer == nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"trainer": trainer}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listGalleryHandler(w http.ResponseWriter, r *http.Request) {
	perPage, page, err := app.readPageParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var pp, p int
	if perPage != nil {
		pp = *perPage
	}
	if page != nil {
		p = *page
	}

	images := app.contentService.GetAllGalleryImages(r.Context(), pp, p, r.URL.Query().Get("category"))

	err = app.writeJSON(w, http.StatusOK, envelope{"gallery": images}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories := app.contentService.GetCategories(r.Context())

	err := app.writeJSON(w, http.StatusOK, envelope{"categories": categories}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) mediaProxyHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		app.badRequestErrorResponse(w, r, errors.New("missing url parameter"))
		return
	}

	rw := app.contentService.Rewriter()

	// refuse to proxy our own proxy output
	if rw.IsProxied(raw) {
		app.badRequestErrorResponse(w, r, errors.New("refusing to proxy a proxied url"))
		return
	}

	upstream, err := rw.ResolveUpstream(raw)
	if err != nil || !rw.OnOrigin(upstream) {
		http.Redirect(w, r, contentservice.PlaceholderImage, http.StatusFound)
		return
	}

	body, contentType, err := app.contentService.FetchAsset(r.Context(), upstream.String())
	if err != nil {
		app.logError(r, err)
		http.Redirect(w, r, contentservice.PlaceholderImage, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write(body)
}

func (app *application) mediaDebugHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		app.badRequestErrorResponse(w, r, errors.New("missing url parameter"))
		return
	}

	rw := app.contentService.Rewriter()

	upstream, err := rw.ResolveUpstream(raw)
	if err != nil || !rw.OnOrigin(upstream) {
		app.badRequestErrorResponse(w, r, errors.New("url is not on the content origin"))
		return
	}

	info, err := app.contentService.DebugAsset(r.Context(), upstream.String())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"asset": info}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type revalidateRequest struct {
	Secret string `json:"secret"`
	Path   string `json:"path"`
}

func (app *application) revalidateHandler(w http.ResponseWriter, r *http.Request) {
	var input revalidateRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	if app.config.RevalidateSecret == "" || subtle.ConstantTimeCompare([]byte(input.Secret), []byte(app.config.RevalidateSecret)) != 1 {
		app.invalidSecretErrorResponse(w, r)
		return
	}

	app.contentService.Invalidate(input.Path)

	err = app.writeJSON(w, http.StatusOK, envelope{"revalidated": true, "path": input.Path}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type createBookingRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ServiceType string `json:"service_type"`
	Trainer     string `json:"trainer"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Notes       string `json:"notes"`
}

func (app *application) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	var input createBookingRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	booking := &bookingservice.Booking{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Phone:       input.Phone,
		ServiceType: input.ServiceType,
		Trainer:     input.Trainer,
		Date:        input.Date,
		Time:        input.Time,
		Notes:       input.Notes,
	}

	err = app.bookingService.CreateBooking(r.Context(), booking)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusAccepted, envelope{"message": "booking request received"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
