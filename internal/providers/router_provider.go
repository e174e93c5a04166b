package providers

import (
	"net/http"
	"strings"
	"varietyd/internal/structures"
)

// UnmatchedRoute labels requests that no registered route accepts.
const UnmatchedRoute = "unmatched"

// RouteMiddleware wraps the handler mounted at route.
type RouteMiddleware func(route string, next http.Handler) http.Handler

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	GetRoutes() []structures.Route
	Handler(wrap RouteMiddleware) http.Handler
}

type RouterProvider struct {
	routes []structures.Route
}

// Get registers a read-only route. HEAD is served by the same handler.
func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{
		Url:     url,
		Handler: methodHandler(handler, http.MethodGet, http.MethodHead),
	})
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

// Handler mounts every route on a new mux, each wrapped under its own path.
// Anything else gets a 404 wrapped under UnmatchedRoute.
func (rp *RouterProvider) Handler(wrap RouteMiddleware) http.Handler {
	mux := http.NewServeMux()
	catchAll := false
	for _, route := range rp.routes {
		mux.Handle(route.Url, wrap(route.Url, route.Handler))
		catchAll = catchAll || route.Url == "/"
	}
	if !catchAll {
		mux.Handle("/", wrap(UnmatchedRoute, http.NotFoundHandler()))
	}
	return mux
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{}
}

func methodHandler(handler http.Handler, methods ...string) http.Handler {
	allow := strings.Join(methods, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, m := range methods {
			if r.Method == m {
				handler.ServeHTTP(w, r)
				return
			}
		}
		w.Header().Set("Allow", allow)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})
}
