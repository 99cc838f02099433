package rest

import "net/http"

// NewRouter mounts the link endpoint, health probes and metrics. authenticate
// wraps only the link endpoint so probes stay reachable; it may be nil.
func NewRouter(link http.Handler, health *HealthHandler, metrics http.Handler, authenticate func(http.Handler) http.Handler) *http.ServeMux {
	if authenticate != nil {
		link = authenticate(link)
	}

	mux := http.NewServeMux()
	// Registered without a method so non-POST requests get the JSON 405.
	mux.Handle(LinkPath, link)
	health.RegisterRoutes(mux)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	return mux
}
