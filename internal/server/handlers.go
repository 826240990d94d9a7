package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-formpreview/internal/ctxlog"
	"github.com/goliatone/go-formpreview/pkg/editor"
	"github.com/goliatone/go-formpreview/pkg/form"
	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/render"
	"github.com/goliatone/go-formpreview/pkg/source"
	"github.com/goliatone/go-formpreview/pkg/store"
	"github.com/goliatone/go-formpreview/pkg/surface"
	"github.com/goliatone/go-formpreview/pkg/validation"
	"github.com/goliatone/go-formpreview/pkg/widgets"
)

// Page states rendered by the editor page.
const (
	stateLoading = "loading"
	stateError   = "error"
	stateReady   = "ready"
)

// placeholderHost is replaced by the mount frame once the page script
// receives it.
const maxJSONPayload = 1 << 20

const placeholderHost = `<div ` + surface.HostAttr + `></div>`

type createResponse struct {
	ID      string        `json:"id"`
	Editor  string        `json:"editor"`
	Preview surface.Frame `json:"preview"`
}

type fieldResponse struct {
	Preview surface.Frame       `json:"preview"`
	Field   string              `json:"field,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type submitResponse struct {
	OK         bool                `json:"ok"`
	Errors     map[string][]string `json:"errors,omitempty"`
	FormErrors []string            `json:"form_errors,omitempty"`
	Values     map[string]any      `json:"values,omitempty"`
	Form       string              `json:"form"`
	Preview    surface.Frame       `json:"preview"`
}

type templateResponse struct {
	Form    string        `json:"form"`
	Preview surface.Frame `json:"preview"`
	Error   string        `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("template"))
	if id == "" {
		id = s.templateID
	}
	s.writePage(w, r, http.StatusOK, map[string]any{
		"state":       stateLoading,
		"template_id": id,
	})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	lister, ok := s.client.(interface{ List() ([]string, error) })
	if !ok {
		s.writeError(w, r, http.StatusNotImplemented, errors.New("template source cannot list templates"))
		return
	}
	ids, err := lister.List()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string][]string{"templates": ids})
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.fetchContext(r.Context())
	defer cancel()

	tpl, err := s.client.Fetch(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, tpl)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid form payload: %w", err))
		return
	}
	id := strings.TrimSpace(r.FormValue("template"))
	if id == "" {
		id = s.templateID
	}

	ctx, cancel := s.fetchContext(r.Context())
	defer cancel()

	loader := source.NewLoader(s.client, source.WithLoaderLogger(logger))
	tpl, err := loader.Load(ctx, id)
	if err != nil {
		snap := loader.Snapshot()
		logger.Warn("template load failed", "template", id, "state", snap.State, "error", err)
		status := statusFor(err)
		if wantsJSON(r) {
			s.writeError(w, r, status, err)
			return
		}
		s.writePage(w, r, status, map[string]any{
			"state":       stateError,
			"template_id": id,
			"error":       err.Error(),
		})
		return
	}

	session, err := s.sessions.Open(tpl)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	logger.Info("session opened", "session", session.ID, "template", tpl.ID)

	if !wantsJSON(r) {
		http.Redirect(w, r, "/sessions/"+url.PathEscape(session.ID), http.StatusSeeOther)
		return
	}
	markup, err := s.editorMarkup(r.Context(), session, placeholderHost)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, createResponse{
		ID:      session.ID,
		Editor:  markup,
		Preview: session.Mount(),
	})
}

func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	markup, err := s.editorMarkup(r.Context(), session, session.Mount().HTML)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writePage(w, r, http.StatusOK, map[string]any{
		"state":       stateReady,
		"template_id": session.Template().ID,
		"editor":      markup,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(r.PathValue("id")); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	ctxlog.FromContext(r.Context()).Info("session closed", "session", r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid form payload: %w", err))
		return
	}

	name := r.PathValue("name")
	state, found := session.Form.Field(name)
	if !found {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("%w: %s", form.ErrUnknownField, name))
		return
	}
	if err := applyEdit(session.Form, state, r.PostForm); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	resp := fieldResponse{
		Preview: session.Frame(),
		Errors:  session.Form.Errors(),
	}
	// Date controls change shape once a date is picked; text controls keep
	// focus and are never replaced.
	if state.Widget == widgets.WidgetDate || state.Widget == widgets.WidgetDatetime {
		state, _ = session.Form.Field(name)
		markup, err := s.forms.RenderField(state, s.renderOptions(session))
		if err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		resp.Field = markup
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	outcome := session.Submit()
	markup, err := s.forms.Render(r.Context(), session.Form, s.renderOptions(session))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	status := http.StatusOK
	if !outcome.OK {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, r, status, submitResponse{
		OK:         outcome.OK,
		Errors:     outcome.Errors,
		FormErrors: outcome.FormErrors,
		Values:     outcome.Values,
		Form:       string(markup),
		Preview:    session.Frame(),
	})
}

// handleErrors accepts {"errors": {path: [messages]}} from a downstream
// system and shows the messages on the form.
func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var payload struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONPayload)).Decode(&payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid error payload: %w", err))
		return
	}
	mapping := session.ApplyErrors(payload.Errors)
	markup, err := s.forms.Render(r.Context(), session.Form, s.renderOptions(session))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, submitResponse{
		Errors:     mapping.Fields,
		FormErrors: mapping.Form,
		Form:       string(markup),
		Preview:    session.Frame(),
	})
}

// handleSetTemplate swaps the session template. Changed field definitions
// reset the form; a template that fails to compile is kept and reported
// with 422 while the preview renders empty.
func (s *Server) handleSetTemplate(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var tpl model.Template
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONPayload)).Decode(&tpl); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid template payload: %w", err))
		return
	}
	tpl.ID = session.Template().ID

	status := http.StatusOK
	resp := templateResponse{}
	frame, err := session.SetTemplate(tpl)
	if err != nil {
		ctxlog.FromContext(r.Context()).Warn("template rejected", "session", session.ID, "error", err)
		status = http.StatusUnprocessableEntity
		resp.Error = err.Error()
	}
	markup, err := s.forms.Render(r.Context(), session.Form, s.renderOptions(session))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	resp.Form = string(markup)
	resp.Preview = frame
	s.writeJSON(w, r, status, resp)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, r, http.StatusOK, session.Mount())
}

// applyEdit routes one posted edit to the controller operation matching the
// field's widget. Date widgets post "date" and "time"; every other widget
// posts "value".
func applyEdit(ctrl *form.Controller, state form.FieldState, values url.Values) error {
	name := state.Field.Name
	switch state.Widget {
	case widgets.WidgetSelect:
		value := values.Get("value")
		if value == "" {
			return ctrl.Clear(name)
		}
		return ctrl.Select(name, value)
	case widgets.WidgetDate, widgets.WidgetDatetime:
		raw, hasDate := values["date"]
		if !hasDate {
			raw, hasDate = values["value"]
		}
		if hasDate {
			day := strings.TrimSpace(first(raw))
			if day == "" {
				return ctrl.Clear(name)
			}
			parsed, ok := validation.ParseDate(day)
			if !ok {
				return fmt.Errorf("%w: %q", errInvalidDate, day)
			}
			if err := ctrl.PickDate(name, parsed); err != nil {
				return err
			}
		}
		if hhmm, ok := values["time"]; ok && state.Widget == widgets.WidgetDatetime {
			return ctrl.SetTime(name, first(hhmm))
		}
		return nil
	default:
		return ctrl.Input(name, values.Get("value"))
	}
}

var errInvalidDate = errors.New("server: invalid date")

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	session, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return nil, false
	}
	return session, true
}

func (s *Server) renderOptions(session *editor.Session) render.RenderOptions {
	base := "/sessions/" + url.PathEscape(session.ID)
	return render.RenderOptions{
		Action:      base + "/submit",
		FieldAction: base + "/fields",
		SessionID:   session.ID,
	}
}

func (s *Server) editorMarkup(ctx context.Context, session *editor.Session, previewHost string) (string, error) {
	formMarkup, err := s.forms.Render(ctx, session.Form, s.renderOptions(session))
	if err != nil {
		return "", fmt.Errorf("server: render form: %w", err)
	}
	out, err := s.pages.RenderTemplate("templates/editor.tmpl", map[string]any{
		"session": session.ID,
		"form":    string(formMarkup),
		"preview": previewHost,
	})
	if err != nil {
		return "", fmt.Errorf("server: render editor: %w", err)
	}
	return out, nil
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	out, err := s.pages.RenderTemplate("templates/page.tmpl", data)
	if err != nil {
		ctxlog.FromContext(r.Context()).Error("render page", "error", err)
		http.Error(w, "render page failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(out)); err != nil {
		ctxlog.FromContext(r.Context()).Warn("write response", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		ctxlog.FromContext(r.Context()).Warn("write json response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logger := ctxlog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Debug("request rejected", "status", status, "error", err)
	}
	s.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func (s *Server) fetchContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.timeout)
}

// statusFor maps package errors onto HTTP status codes.
func statusFor(err error) int {
	var statusErr *source.StatusError
	switch {
	case errors.Is(err, source.ErrNotFound),
		errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, form.ErrUnknownField):
		return http.StatusNotFound
	case errors.As(err, &statusErr):
		return http.StatusBadGateway
	case errors.Is(err, source.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, form.ErrUnknownOption),
		errors.Is(err, form.ErrInvalidTime),
		errors.Is(err, form.ErrNoDateSelected),
		errors.Is(err, form.ErrWidgetMismatch),
		errors.Is(err, errInvalidDate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
