package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/pkg/editor"
	"github.com/goliatone/go-formpreview/pkg/source"
	"github.com/goliatone/go-formpreview/pkg/surface"
)

func templatesFS() fstest.MapFS {
	return fstest.MapFS{
		"invite.json": &fstest.MapFile{Data: []byte(`{
  "html": "<h1>{{ name }}</h1><p>{{ venue }}</p><script>alert(1)</script>",
  "fields": [
    {"name": "name", "type": "text", "label": "Name", "required": true},
    {"name": "venue", "type": "select", "options": [{"label": "Park", "value": "park"}, {"label": "Hall", "value": "hall"}]},
    {"name": "date", "type": "datetime", "label": "Date"}
  ]
}`)},
	}
}

func newTestServer(t *testing.T, client source.Client) (*Server, *httptest.Server) {
	t.Helper()
	if client == nil {
		client = source.NewFSClient(templatesFS(), ".")
	}
	srv, err := New(client,
		WithTemplateID("invite"),
		WithFetchTimeout(time.Second),
		WithSessionOptions(
			editor.WithSamples(nil),
			editor.WithHostID("pv"),
			editor.WithSurfaceMode(surface.ModeScoped),
		),
	)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func postForm(t *testing.T, target string, values url.Values, accept string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("post %s: %v", target, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func openSession(t *testing.T, ts *httptest.Server) createResponse {
	t.Helper()
	resp := postForm(t, ts.URL+"/sessions", url.Values{"template": {"invite"}}, "application/json")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session status = %d: %s", resp.StatusCode, readBody(t, resp))
	}
	return decode[createResponse](t, resp)
}

func TestIndex_RendersLoadingState(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get index: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{`data-editor-state="loading"`, `data-template="invite"`, "Loading...", `/assets/formpreview.js`, `data-sessions="/sessions"`, "<title>" + defaultTitle + "</title>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("index missing %q:\n%s", want, body)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	created := openSession(t, ts)
	if created.ID == "" {
		t.Fatalf("missing session id")
	}
	if !strings.Contains(created.Editor, placeholderHost) {
		t.Fatalf("editor missing placeholder host:\n%s", created.Editor)
	}
	if !strings.Contains(created.Editor, `action="/sessions/`+created.ID+`/submit"`) {
		t.Fatalf("editor missing submit action:\n%s", created.Editor)
	}
	if !created.Preview.Mount || !strings.Contains(created.Preview.HTML, `id="pv"`) {
		t.Fatalf("expected mount frame, got %+v", created.Preview)
	}
	if srv.Sessions() != 1 {
		t.Fatalf("sessions = %d, want 1", srv.Sessions())
	}

	base := ts.URL + "/sessions/" + created.ID

	resp := postForm(t, base+"/fields/name", url.Values{"value": {"Ana"}}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("field status = %d: %s", resp.StatusCode, readBody(t, resp))
	}
	edit := decode[fieldResponse](t, resp)
	if edit.Preview.Mount || !strings.Contains(edit.Preview.HTML, "<h1>Ana</h1>") {
		t.Fatalf("unexpected preview frame %+v", edit.Preview)
	}
	if strings.Contains(edit.Preview.HTML, "<script") {
		t.Fatalf("script leaked into preview: %s", edit.Preview.HTML)
	}
	if edit.Field != "" {
		t.Fatalf("text edits must not return field markup")
	}

	resp = postForm(t, base+"/fields/venue", url.Values{"value": {"hall"}}, "")
	edit = decode[fieldResponse](t, resp)
	if !strings.Contains(edit.Preview.HTML, "<p>hall</p>") {
		t.Fatalf("venue not rendered: %+v", edit.Preview)
	}

	resp = postForm(t, base+"/submit", nil, "application/json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d: %s", resp.StatusCode, readBody(t, resp))
	}
	submitted := decode[submitResponse](t, resp)
	if !submitted.OK {
		t.Fatalf("submit failed: %+v", submitted)
	}
	if diff := cmp.Diff(map[string]any{"name": "Ana", "venue": "hall"}, submitted.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	resp, err := http.Get(base + "/preview")
	if err != nil {
		t.Fatalf("get preview: %v", err)
	}
	frame := decode[surface.Frame](t, resp)
	if !frame.Mount || !strings.Contains(frame.HTML, `data-preview-scope="pv"`) || !strings.Contains(frame.HTML, "<h1>Ana</h1>") {
		t.Fatalf("unexpected preview mount %+v", frame)
	}

	resp, err = http.Get(base)
	if err != nil {
		t.Fatalf("get session page: %v", err)
	}
	page := readBody(t, resp)
	if !strings.Contains(page, `class="fp-editor"`) || !strings.Contains(page, "<h1>Ana</h1>") {
		t.Fatalf("unexpected session page:\n%s", page)
	}

	req, _ := http.NewRequest(http.MethodDelete, base, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/preview")
	if err != nil {
		t.Fatalf("get preview: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("closed session status = %d, want 404", resp.StatusCode)
	}
}

func TestSubmit_ReportsFieldErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)
	created := openSession(t, ts)

	resp := postForm(t, ts.URL+"/sessions/"+created.ID+"/submit", nil, "application/json")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	out := decode[submitResponse](t, resp)
	if out.OK {
		t.Fatalf("expected failed submit")
	}
	if diff := cmp.Diff([]string{"Name is required"}, out.Errors["name"]); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.Form, `data-invalid="true"`) {
		t.Fatalf("form markup missing invalid marker:\n%s", out.Form)
	}
}

func TestFieldEdits(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	created := openSession(t, ts)
	base := ts.URL + "/sessions/" + created.ID

	cases := []struct {
		name   string
		field  string
		values url.Values
		status int
	}{
		{name: "unknown field", field: "nope", values: url.Values{"value": {"x"}}, status: http.StatusNotFound},
		{name: "unknown option", field: "venue", values: url.Values{"value": {"beach"}}, status: http.StatusUnprocessableEntity},
		{name: "time before date", field: "date", values: url.Values{"time": {"18:30"}}, status: http.StatusUnprocessableEntity},
		{name: "bad date", field: "date", values: url.Values{"date": {"June"}}, status: http.StatusUnprocessableEntity},
		{name: "date", field: "date", values: url.Values{"date": {"2025-06-15"}}, status: http.StatusOK},
		{name: "time", field: "date", values: url.Values{"time": {"18:30"}}, status: http.StatusOK},
		{name: "bad time", field: "date", values: url.Values{"time": {"25:00"}}, status: http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postForm(t, base+"/fields/"+tc.field, tc.values, "")
			body := readBody(t, resp)
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tc.status, body)
			}
			if tc.name == "date" && !strings.Contains(body, `type=\"time\"`) {
				t.Fatalf("picked date should return the time control: %s", body)
			}
		})
	}

	session, err := srv.sessions.Get(created.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	got, _ := session.Store.Get("date")
	want := time.Date(2025, time.June, 15, 18, 30, 0, 0, time.UTC)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("date mismatch (-want +got):\n%s", diff)
	}

	resp := postForm(t, base+"/fields/date", url.Values{"date": {""}}, "")
	resp.Body.Close()
	if v, ok := session.Store.Get("date"); ok && v != nil {
		t.Fatalf("cleared date still stored: %v", v)
	}
}

func TestCreateSession_Failures(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := postForm(t, ts.URL+"/sessions", url.Values{"template": {"missing"}}, "application/json")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if out := decode[errorResponse](t, resp); !strings.Contains(out.Error, "not found") {
		t.Fatalf("unexpected error payload %+v", out)
	}

	resp = postForm(t, ts.URL+"/sessions", url.Values{"template": {"missing"}}, "")
	page := readBody(t, resp)
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(page, `data-editor-state="error"`) || !strings.Contains(page, "Error: ") {
		t.Fatalf("unexpected error page (%d):\n%s", resp.StatusCode, page)
	}

	resp = postForm(t, ts.URL+"/sessions", url.Values{"template": {"invite"}}, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || !strings.HasPrefix(resp.Header.Get("Location"), "/sessions/") {
		t.Fatalf("expected redirect to the session page, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestCreateSession_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	client, err := source.NewHTTPClient(upstream.URL)
	if err != nil {
		t.Fatalf("http client: %v", err)
	}
	_, ts := newTestServer(t, client)

	resp := postForm(t, ts.URL+"/sessions", url.Values{"template": {"invite"}}, "application/json")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestTemplatesAndAssets(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/templates/invite")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	tpl := decode[map[string]any](t, resp)
	if !strings.Contains(tpl["html"].(string), "{{ name }}") {
		t.Fatalf("unexpected template %v", tpl)
	}

	resp, err = http.Get(ts.URL + "/templates")
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	list := decode[map[string][]string](t, resp)
	if diff := cmp.Diff([]string{"invite"}, list["templates"]); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	resp, err = http.Get(ts.URL + "/templates/missing")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/assets/formpreview.js")
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || !strings.Contains(body, "applyFrame") {
		t.Fatalf("unexpected asset response %d", resp.StatusCode)
	}
}

func TestApplyErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)
	created := openSession(t, ts)

	body := strings.NewReader(`{"errors": {"/body/name": ["Name is taken"], "detail": ["Upstream rejected the booking"]}}`)
	resp, err := http.Post(ts.URL+"/sessions/"+created.ID+"/errors", "application/json", body)
	if err != nil {
		t.Fatalf("post errors: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, readBody(t, resp))
	}
	out := decode[submitResponse](t, resp)
	if diff := cmp.Diff(map[string][]string{"name": {"Name is taken"}}, out.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.Form, "Upstream rejected the booking") || !strings.Contains(out.Form, "Name is taken") {
		t.Fatalf("form markup missing messages:\n%s", out.Form)
	}

	resp, err = http.Post(ts.URL+"/sessions/"+created.ID+"/errors", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post errors: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func putTemplate(t *testing.T, target, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, target, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put template: %v", err)
	}
	return resp
}

func TestSetTemplate(t *testing.T) {
	_, ts := newTestServer(t, nil)
	created := openSession(t, ts)
	base := ts.URL + "/sessions/" + created.ID

	resp := postForm(t, base+"/fields/name", url.Values{"value": {"Ana"}}, "")
	resp.Body.Close()

	sameFields := `{"html": "<h2>Hi {{ name }}</h2>", "fields": [
    {"name": "name", "type": "text", "label": "Name", "required": true},
    {"name": "venue", "type": "select", "options": [{"label": "Park", "value": "park"}, {"label": "Hall", "value": "hall"}]},
    {"name": "date", "type": "datetime", "label": "Date"}
  ]}`
	resp = putTemplate(t, base+"/template", sameFields)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, readBody(t, resp))
	}
	out := decode[templateResponse](t, resp)
	if out.Preview.Mount || !strings.Contains(out.Preview.HTML, "<h2>Hi Ana</h2>") {
		t.Fatalf("unexpected preview %+v", out.Preview)
	}

	resp = putTemplate(t, base+"/template", `{"html": "<p>{{ title }}</p>", "fields": [{"name": "title", "type": "text", "label": "Title"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, readBody(t, resp))
	}
	out = decode[templateResponse](t, resp)
	if !strings.Contains(out.Form, "Title") || strings.Contains(out.Form, "Park") {
		t.Fatalf("form should follow the new fields:\n%s", out.Form)
	}

	resp = putTemplate(t, base+"/template", `{"html": "{% if %}", "fields": [{"name": "title", "type": "text", "label": "Title"}]}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	out = decode[templateResponse](t, resp)
	if out.Error == "" || out.Preview.HTML != "" {
		t.Fatalf("expected template error and empty preview, got %+v", out)
	}

	resp = putTemplate(t, base+"/template", "{")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	resp = putTemplate(t, ts.URL+"/sessions/missing/template", sameFields)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
