package apiclient_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openkcm/taskmanager-client/pkg/apiclient"
	"github.com/openkcm/taskmanager-client/pkg/session"
	tokenstoremock "github.com/openkcm/taskmanager-client/pkg/tokenstore/mock"
)

const (
	apiPrefix   = "/api/"
	refreshPath = "/api/token/refresh/"

	unauthorizedBody = `{"detail":"Given token not valid for any token type","code":"token_not_valid"}`
)

type recordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	ContentType   string
	Body          string
}

// fakeAPI imitates the task management backend. Requests other than login,
// registration and refresh must carry the currently valid access token.
type fakeAPI struct {
	mu sync.Mutex

	// validAccess is the access token accepted by the API. Empty means no
	// token is accepted until a refresh happened.
	validAccess string
	// refreshToken is the refresh token accepted by the refresh endpoint.
	refreshToken string
	// issuedAccess is handed out by the refresh endpoint.
	issuedAccess string
	// rotatedRefresh is returned next to issuedAccess when set.
	rotatedRefresh string
	// refreshStatus makes the refresh endpoint fail with that status.
	refreshStatus int
	// refreshBody replaces the refresh endpoint's success body.
	refreshBody string
	// beforeRefresh runs before the refresh endpoint answers.
	beforeRefresh func()
	// onUnauthorized runs after a request was rejected for its token.
	onUnauthorized func(r *http.Request)

	refreshCalls int
	requests     []recordedRequest
	handlers     map[string]http.HandlerFunc

	server *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{
		refreshToken: "refresh-1",
		issuedAccess: "new123",
		handlers:     make(map[string]http.HandlerFunc),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeAPI) baseURL() string {
	return f.server.URL + apiPrefix
}

// handle registers a handler for "METHOD path", path relative to the API root.
func (f *fakeAPI) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+apiPrefix+path] = h
}

func (f *fakeAPI) handleJSON(method, path string, status int, body string) {
	f.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

func (f *fakeAPI) setValidAccess(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validAccess = token
}

func (f *fakeAPI) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

// requestsTo returns the recorded requests for the path relative to the API
// root, in arrival order.
func (f *fakeAPI) requestsTo(path string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []recordedRequest
	for _, r := range f.requests {
		if r.Path == apiPrefix+path {
			out = append(out, r)
		}
	}

	return out
}

func (f *fakeAPI) serveHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(data))
	body := string(data)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-Id"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	f.mu.Unlock()

	if r.URL.Path == refreshPath {
		f.serveRefresh(w, r, body)
		return
	}

	f.mu.Lock()
	h, ok := f.handlers[r.Method+" "+r.URL.Path]
	valid := f.validAccess
	onUnauthorized := f.onUnauthorized
	f.mu.Unlock()

	public := r.URL.Path == apiPrefix+"login/" || r.URL.Path == apiPrefix+"register/"
	if !public && (valid == "" || r.Header.Get("Authorization") != "Bearer "+valid) {
		writeJSON(w, http.StatusUnauthorized, unauthorizedBody)
		if onUnauthorized != nil {
			onUnauthorized(r)
		}
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, `{"detail":"Not found."}`)
		return
	}

	h(w, r)
}

func (f *fakeAPI) serveRefresh(w http.ResponseWriter, r *http.Request, body string) {
	f.mu.Lock()
	f.refreshCalls++
	before := f.beforeRefresh
	f.mu.Unlock()

	if before != nil {
		before()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, `{"detail":"Method not allowed."}`)
		return
	}
	if f.refreshStatus != 0 {
		writeJSON(w, f.refreshStatus, `{"detail":"Token is invalid or expired","code":"token_not_valid"}`)
		return
	}

	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal([]byte(body), &req); err != nil || req.Refresh != f.refreshToken {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Token is invalid or expired","code":"token_not_valid"}`)
		return
	}

	if f.refreshBody != "" {
		writeJSON(w, http.StatusOK, f.refreshBody)
		return
	}

	f.validAccess = f.issuedAccess
	resp := map[string]string{"access": f.issuedAccess}
	if f.rotatedRefresh != "" {
		resp["refresh"] = f.rotatedRefresh
		f.refreshToken = f.rotatedRefresh
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestClient(t *testing.T, api *fakeAPI, store *tokenstoremock.Store, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()

	c, err := apiclient.New(api.baseURL(), session.New(store), opts...)
	require.NoError(t, err)

	return c
}
