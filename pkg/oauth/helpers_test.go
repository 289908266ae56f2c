package oauth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
)

// rewriteTransport serves requests for hosts containing one of hosts from handler.
type rewriteTransport struct {
	handler http.Handler
	hosts   []string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for _, h := range t.hosts {
		if strings.Contains(req.URL.Host, h) {
			rec := httptest.NewRecorder()
			t.handler.ServeHTTP(rec, req)
			return rec.Result(), nil
		}
	}
	return http.DefaultTransport.RoundTrip(req)
}

func fakeClient(handler http.Handler, hosts ...string) *http.Client {
	return &http.Client{Transport: &rewriteTransport{handler: handler, hosts: hosts}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
