package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	APIPathPrefix = "/api/v1"
)

var (
	paramTypePats = map[string]string{
		"uuid": "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}",
	}
)

// p is a quick parameter in a URI, made very small to ease readability in route
// listings.
func p(nameType string) string {
	var name string
	var pat string

	parts := strings.SplitN(nameType, ":", 2)
	name = parts[0]
	if len(parts) == 2 {
		// we have a type, if it's a name in the paramTypePats map use that else
		// treat it as a normal pattern
		pat = parts[1]

		if translatedPat, ok := paramTypePats[parts[1]]; ok {
			pat = translatedPat
		}
	}

	if pat == "" {
		return "{" + name + "}"
	}
	return "{" + name + ":" + pat + "}"
}

func newRouter(gs *GrottoServer) chi.Router {
	r := chi.NewRouter()

	r.Mount(APIPathPrefix, newAPIRouter(gs))

	return r
}

func newAPIRouter(gs *GrottoServer) chi.Router {
	r := chi.NewRouter()

	r.Mount("/games", newGamesRouter(gs))
	r.Mount("/instances", newInstancesRouter(gs))
	r.Mount("/info", newInfoRouter(gs))
	r.HandleFunc("/info/", RedirectNoTrailingSlash)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonNotFound().writeResponse(w, r)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonMethodNotAllowed(r).writeResponse(w, r)
	})

	return r
}

func newGamesRouter(gs *GrottoServer) chi.Router {
	r := chi.NewRouter()

	r.Get("/", Endpoint(gs.epGetAllGames))
	r.Post("/", Endpoint(gs.epCreateGame))

	r.Route("/"+p("id:uuid"), func(r chi.Router) {
		r.Get("/", Endpoint(gs.epGetGame))
		r.Delete("/", Endpoint(gs.epDeleteGame))
		r.Get("/instances", Endpoint(gs.epGetGameInstances))
	})
	r.HandleFunc("/"+p("id:uuid")+"/", RedirectNoTrailingSlash)

	return r
}

func newInstancesRouter(gs *GrottoServer) chi.Router {
	r := chi.NewRouter()

	r.Get("/", Endpoint(gs.epGetAllInstances))
	r.Post("/", Endpoint(gs.epCreateInstance))

	r.Route("/"+p("id:uuid"), func(r chi.Router) {
		r.Get("/", Endpoint(gs.epGetInstance))
		r.Delete("/", Endpoint(gs.epDeleteInstance))
		r.Post("/moves", Endpoint(gs.epSubmitMove))
		r.Get("/commands", Endpoint(gs.epGetCommands))
	})
	r.HandleFunc("/"+p("id:uuid")+"/", RedirectNoTrailingSlash)

	return r
}

func newInfoRouter(gs *GrottoServer) chi.Router {
	r := chi.NewRouter()

	r.Get("/", Endpoint(gs.epGetInfo))

	return r
}

// Endpoint adapts an endpoint function into an http.HandlerFunc, writing its
// result and converting panics into HTTP-500s.
func Endpoint(ep func(req *http.Request) EndpointResult) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)
		ep(req).writeResponse(w, req)
	}
}

// RedirectNoTrailingSlash is an http.HandlerFunc that redirects to the same URL as the
// request but with no trailing slash.
func RedirectNoTrailingSlash(w http.ResponseWriter, req *http.Request) {
	redirPath := strings.TrimRight(req.URL.Path, "/")
	redirection(redirPath).writeResponse(w, req)
}

func panicTo500(w http.ResponseWriter, req *http.Request) (panicRecovered bool) {
	if panicErr := recover(); panicErr != nil {
		textErr(
			http.StatusInternalServerError,
			"An internal server error occurred",
			fmt.Sprintf("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack())),
		).writeResponse(w, req)
		return true
	}
	return false
}
