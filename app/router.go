package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// content service
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug", app.showPostHandler)
	router.HandlerFunc(http.MethodGet, "/v1/courses", app.listCoursesHandler)
	router.HandlerFunc(http.MethodGet, "/v1/courses/:slug", app.showCourseHandler)
	router.HandlerFunc(http.MethodGet, "/v1/trainers", app.listTrainersHandler)
	router.HandlerFunc(http.MethodGet, "/v1/trainers/:slug", app.showTrainerHandler)
	router.HandlerFunc(http.MethodGet, "/v1/gallery", app.listGalleryHandler)
	router.HandlerFunc(http.MethodGet, "/v1/categories", app.listCategoriesHandler)

	// media proxy
	router.HandlerFunc(http.MethodGet, "/v1/media/proxy", app.mediaProxyHandler)
	router.HandlerFunc(http.MethodGet, "/v1/media/debug", app.mediaDebugHandler)

	// cache invalidation
	router.HandlerFunc(http.MethodPost, "/v1/revalidate", app.revalidateHandler)

	// booking service
	router.HandlerFunc(http.MethodPost, "/v1/bookings", app.createBookingHandler)

	return app.recoverPanic(app.rateLimit(app.enableCORS(app.logRequest(router))))
}
