// Package http serves the dashboard pages, the HTMX partials they reload
// and a small JSON API over the same dashboard state.
package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HX-Trigger event names the pages listen for.
const (
	EventTransactionSaved   = "transaction:saved"
	EventTransactionDeleted = "transaction:deleted"
	EventProductSaved       = "product:saved"
	EventProductDeleted     = "product:deleted"
	EventProfileUpdated     = "profile:updated"
	EventDashboardRefreshed = "dashboard:refreshed"
	EventFormReset          = "form:reset"
	EventNotification       = "show-notification"
)

// NotificationType selects the toast style in app.js.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Toast durations in milliseconds. Errors stay up longer.
const (
	successToastMs = 3000
	errorToastMs   = 5000
)

// HTMXResponseBuilder collects HX-Trigger events and headers for one
// response. The zero status is sent as 200.
type HTMXResponseBuilder struct {
	status   int
	triggers map[string]any
	headers  http.Header
	body     []byte
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers: map[string]any{},
		headers:  http.Header{},
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.status = code
	return b
}

// Trigger sets one HX-Trigger event. A later call with the same name wins.
func (b *HTMXResponseBuilder) Trigger(name string, detail any) *HTMXResponseBuilder {
	b.triggers[name] = detail
	return b
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers.Set(name, value)
	return b
}

func (b *HTMXResponseBuilder) TriggerTransactionSaved(id string, update bool) *HTMXResponseBuilder {
	return b.Trigger(EventTransactionSaved, map[string]any{"id": id, "update": update})
}

func (b *HTMXResponseBuilder) TriggerTransactionDeleted(id string) *HTMXResponseBuilder {
	return b.Trigger(EventTransactionDeleted, map[string]string{"id": id})
}

func (b *HTMXResponseBuilder) TriggerProductSaved(id int64) *HTMXResponseBuilder {
	return b.Trigger(EventProductSaved, map[string]int64{"id": id})
}

func (b *HTMXResponseBuilder) TriggerProductDeleted(id int64) *HTMXResponseBuilder {
	return b.Trigger(EventProductDeleted, map[string]int64{"id": id})
}

func (b *HTMXResponseBuilder) TriggerProfileUpdated() *HTMXResponseBuilder {
	return b.Trigger(EventProfileUpdated, struct{}{})
}

// TriggerDashboardRefreshed tells every table partial to reload.
func (b *HTMXResponseBuilder) TriggerDashboardRefreshed() *HTMXResponseBuilder {
	return b.Trigger(EventDashboardRefreshed, struct{}{})
}

func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(EventFormReset, struct{}{})
}

func (b *HTMXResponseBuilder) notify(kind NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger(EventNotification, map[string]any{
		"type":     string(kind),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.notify(NotificationSuccess, message, successToastMs)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.notify(NotificationError, message, errorToastMs)
}

// Write sends headers, the HX-Trigger JSON, the status and the body, in
// that order.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, values := range b.headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	if len(b.triggers) > 0 {
		if raw, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(raw))
		}
	}

	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// errorFragment answers with an escaped HTML error block.
func errorFragment(status int, message string) *HTMXResponseBuilder {
	b := NewHTMXResponse().Status(status).Header("Content-Type", "text/html; charset=utf-8")
	b.body = []byte(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
	return b
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return errorFragment(http.StatusBadRequest, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return errorFragment(http.StatusNotFound, message)
}

// FormFailure answers a failed form post: the notification carries the
// message and the empty body leaves the form untouched.
func FormFailure(status int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(status).
		TriggerErrorNotification(message)
}
