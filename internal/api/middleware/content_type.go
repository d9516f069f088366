package middleware

import "net/http"

// ContentType sets a JSON content type on API responses. Handlers that
// stream other content override it before writing.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
