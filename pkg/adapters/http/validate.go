package http

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
)

// validate checks each request against the OpenAPI operation of its route.
// It runs as an inline middleware, after chi has resolved the pattern, so
// the pattern doubles as the OpenAPI path key.
func (s *Server) validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		pattern := rctx.RoutePattern()

		item := s.spec.Paths.Find(pattern)
		if item == nil {
			next.ServeHTTP(w, r)
			return
		}
		op := item.GetOperation(r.Method)
		if op == nil {
			next.ServeHTTP(w, r)
			return
		}

		params := make(map[string]string, len(rctx.URLParams.Keys))
		for i, key := range rctx.URLParams.Keys {
			params[key] = rctx.URLParams.Values[i]
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route: &routers.Route{
				Spec:      s.spec,
				Path:      pattern,
				PathItem:  item,
				Method:    r.Method,
				Operation: op,
			},
			Options: &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			s.logger.WarnContext(r.Context(), "Request rejected by schema", "path", pattern, "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}
