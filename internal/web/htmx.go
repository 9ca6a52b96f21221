package web

import "net/http"

// Headers exchanged with the client-side partial refresh machinery. An
// inbound HX-Request marks a fragment request; the outbound headers steer
// the client after the response is swapped in.
const (
	htmxRequestHeader          = "HX-Request"
	htmxRedirectHeader         = "HX-Redirect"
	htmxRefreshHeader          = "HX-Refresh"
	htmxTriggerAfterSwapHeader = "HX-Trigger-After-Swap"
)

// isHTMX reports whether the request came from the partial refresh
// machinery rather than a full navigation.
func isHTMX(r *http.Request) bool {
	return r.Header.Get(htmxRequestHeader) == "true"
}

// hxRedirect tells the client to navigate without a full page load.
func hxRedirect(w http.ResponseWriter, url string) {
	w.Header().Set(htmxRedirectHeader, url)
	w.WriteHeader(http.StatusOK)
}

// hxRefresh tells the client to reload its current view.
func hxRefresh(w http.ResponseWriter) {
	w.Header().Set(htmxRefreshHeader, "true")
	w.WriteHeader(http.StatusOK)
}

// hxTriggerAfterSwap fires a named client-side event once the response has
// been swapped in. Must be called before the body is written.
func hxTriggerAfterSwap(w http.ResponseWriter, event string) {
	w.Header().Set(htmxTriggerAfterSwapHeader, event)
}

// redirect sends the client to url in whichever way fits the request mode:
// a redirect header for fragment requests, an ordinary 303 otherwise.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		hxRedirect(w, url)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
