package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeTriggers(t *testing.T, rr *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	raw := rr.Header().Get("HX-Trigger")
	if raw == "" {
		t.Fatal("HX-Trigger header not set")
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v (%s)", err, raw)
	}
	return out
}

func TestHTMXResponse_DefaultsTo200WithoutTrigger(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().Write(rr)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if h := rr.Header().Get("HX-Trigger"); h != "" {
		t.Errorf("HX-Trigger = %q, want unset", h)
	}
}

func TestHTMXResponse_SaleSavedEvents(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerTransactionSaved("tx-1", true).
		TriggerFormReset().
		TriggerDashboardRefreshed().
		TriggerSuccessNotification("Sale saved").
		Write(rr)

	got := decodeTriggers(t, rr)
	for _, ev := range []string{EventTransactionSaved, EventFormReset, EventDashboardRefreshed, EventNotification} {
		if _, ok := got[ev]; !ok {
			t.Errorf("missing event %q in %v", ev, got)
		}
	}
	if string(got[EventTransactionSaved]) != `{"id":"tx-1","update":true}` {
		t.Errorf("%s = %s", EventTransactionSaved, got[EventTransactionSaved])
	}

	var note struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Duration int    `json:"duration"`
	}
	if err := json.Unmarshal(got[EventNotification], &note); err != nil {
		t.Fatal(err)
	}
	if note.Type != "success" || note.Message != "Sale saved" || note.Duration != successToastMs {
		t.Errorf("notification = %+v", note)
	}
}

func TestHTMXResponse_EntityEvents(t *testing.T) {
	tests := []struct {
		name  string
		build func(*HTMXResponseBuilder) *HTMXResponseBuilder
		event string
		want  string
	}{
		{"sale deleted", func(b *HTMXResponseBuilder) *HTMXResponseBuilder { return b.TriggerTransactionDeleted("tx-9") }, EventTransactionDeleted, `{"id":"tx-9"}`},
		{"product saved", func(b *HTMXResponseBuilder) *HTMXResponseBuilder { return b.TriggerProductSaved(7) }, EventProductSaved, `{"id":7}`},
		{"product deleted", func(b *HTMXResponseBuilder) *HTMXResponseBuilder { return b.TriggerProductDeleted(8) }, EventProductDeleted, `{"id":8}`},
		{"profile updated", func(b *HTMXResponseBuilder) *HTMXResponseBuilder { return b.TriggerProfileUpdated() }, EventProfileUpdated, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.build(NewHTMXResponse()).Write(rr)
			if got := string(decodeTriggers(t, rr)[tt.event]); got != tt.want {
				t.Errorf("%s = %s, want %s", tt.event, got, tt.want)
			}
		})
	}
}

func TestHTMXResponse_HeaderAndStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().
		Header("HX-Refresh", "true").
		Status(http.StatusAccepted).
		Write(rr)

	if rr.Header().Get("HX-Refresh") != "true" {
		t.Error("HX-Refresh not set")
	}
	if rr.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rr.Code)
	}
}

func TestFormFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	FormFailure(http.StatusBadGateway, "Could not save sale").Write(rr)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("body = %q, want empty so the form is kept", rr.Body.String())
	}
	note := string(decodeTriggers(t, rr)[EventNotification])
	if !strings.Contains(note, `"type":"error"`) || !strings.Contains(note, "Could not save sale") {
		t.Errorf("notification = %s", note)
	}
}

func TestErrorFragments(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{"bad request", BadRequestError("invalid request body"), http.StatusBadRequest, `<div class="error">invalid request body</div>`},
		{"not found", NotFoundError("product not found"), http.StatusNotFound, `<div class="error">product not found</div>`},
		{"escapes markup", BadRequestError("<script>x</script>"), http.StatusBadRequest, `<div class="error">&lt;script&gt;x&lt;/script&gt;</div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.builder.Write(rr)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if rr.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.wantBody)
			}
			if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}
