package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/kapu/higapro-site/internal/contact"
	"github.com/kapu/higapro-site/internal/view"
	"go.uber.org/zap"
)

type notificationJSON struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	AutoClose int64  `json:"autoClose"`
}

type submissionJSON struct {
	Outcome       string              `json:"outcome"`
	FieldErrors   contact.FieldErrors `json:"fieldErrors,omitempty"`
	Notifications []notificationJSON  `json:"notifications"`
}

// handleContact runs the submission state machine. Script-driven submits get the
// result as JSON; plain form posts get the home page re-rendered at #contact.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	form := contact.Form{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Subject: r.PostForm.Get("subject"),
		Message: r.PostForm.Get("message"),
	}

	var shown []contact.Notification
	notifier := contact.NotifierFunc(func(n contact.Notification) {
		shown = append(shown, n)
	})
	result := s.submitter.Submit(r.Context(), form, notifier)

	if wantsJSON(r) {
		resp := submissionJSON{
			Outcome:       result.Outcome.String(),
			FieldErrors:   result.FieldErrors,
			Notifications: make([]notificationJSON, 0, len(shown)),
		}
		for _, n := range shown {
			resp.Notifications = append(resp.Notifications, notificationJSON{
				ID:        n.ID,
				Kind:      string(n.Kind),
				Message:   n.Message,
				AutoClose: n.AutoClose.Milliseconds(),
			})
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	data := view.ContactData{Errors: result.FieldErrors}
	if result.Outcome != contact.StateSucceeded {
		data.Form = form
	}
	s.renderHome(w, r, data, result.Notification)
}

// handleEmail is the mail relay endpoint: it sends the posted fields and answers
// 200 {} or 500 {"error": "..."}.
func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := s.mailRelay.Relay(r.Context(), form); err != nil {
		s.logger.Error("Mail relay failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func decodeForm(r *http.Request) (contact.Form, error) {
	var form contact.Form
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&form)
		return form, err
	}

	if err := r.ParseForm(); err != nil {
		return form, err
	}
	form.Name = r.PostForm.Get("name")
	form.Email = r.PostForm.Get("email")
	form.Subject = r.PostForm.Get("subject")
	form.Message = r.PostForm.Get("message")
	return form, nil
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
