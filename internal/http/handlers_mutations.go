package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"baketrack/internal/core"
	"baketrack/internal/log"
	"baketrack/internal/preferences"
)

var validationErrors = []error{
	core.ErrEmptyDate, core.ErrInvalidDate, core.ErrEmptyProduct, core.ErrInvalidQty,
	core.ErrInvalidAmount, core.ErrInvalidStock, core.ErrEmptyName, core.ErrInvalidEmail,
	core.ErrFieldTooLong, ErrUnknownProduct,
}

// statusFor maps a write error to a response status: 422 for invalid input,
// 404 for unknown ids and 502 for everything the backend reported.
func statusFor(err error) int {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	if errors.Is(err, core.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// failForm answers a failed mutation. Invalid input reports the validation
// message, backend failures the localized fallback.
func (s *Server) failForm(w http.ResponseWriter, r *http.Request, err error, fallback, op string) {
	status := statusFor(err)
	message := fallback
	if status != http.StatusBadGateway {
		message = err.Error()
	} else {
		s.appMetrics.backendFailures.Add(1)
	}
	log.FromContext(r.Context()).WarnContext(r.Context(), "Mutation failed",
		log.FieldOperation, op,
		log.FieldStatusCode, status,
		log.FieldError, err)

	if !isHTMX(r) {
		http.Error(w, message, status)
		return
	}
	FormFailure(status, message).Write(w)
}

// succeed answers a successful mutation: HTMX gets triggers, plain form
// posts are redirected back to the page they came from.
func succeed(w http.ResponseWriter, r *http.Request, back string, b *HTMXResponseBuilder) {
	if !isHTMX(r) {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	b.Write(w)
}

func (s *Server) handleSaveTransaction(w http.ResponseWriter, r *http.Request) {
	prefs := preferences.FromRequest(r)
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	// The catalog is only needed when no price was posted.
	var catalog []core.Product
	if body.Get("price") == "" {
		if dash, err := s.dash.Snapshot(r.Context()); err == nil {
			catalog = dash.Products
		}
	}

	tx, isUpdate, err := ParseTransaction(body, s.now().Format(core.DateLayout), catalog)
	if err != nil {
		s.failForm(w, r, err, prefs.T("input.error_save"), log.OpValidate)
		return
	}

	id, err := s.dash.SubmitTransaction(r.Context(), tx, isUpdate)
	if err != nil {
		s.failForm(w, r, err, prefs.T("input.error_save"), log.OpCreate)
		return
	}
	s.appMetrics.transactionsSaved.Add(1)

	succeed(w, r, "/input", NewHTMXResponse().
		TriggerTransactionSaved(id, isUpdate).
		TriggerFormReset().
		TriggerDashboardRefreshed().
		TriggerSuccessNotification(prefs.T("input.saved")))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	prefs := preferences.FromRequest(r)
	id := sanitizeInput(chi.URLParam(r, "id"))
	if id == "" {
		NotFoundError("transaction not found").Write(w)
		return
	}

	if err := s.dash.DeleteTransaction(r.Context(), id); err != nil {
		s.failForm(w, r, err, prefs.T("delete.error"), log.OpDelete)
		return
	}
	s.appMetrics.transactionsDeleted.Add(1)

	succeed(w, r, "/input", NewHTMXResponse().
		TriggerTransactionDeleted(id).
		TriggerDashboardRefreshed().
		TriggerSuccessNotification(prefs.T("delete.done")))
}

func (s *Server) handleSaveProduct(w http.ResponseWriter, r *http.Request) {
	prefs := preferences.FromRequest(r)
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	p, isUpdate, err := ParseProduct(body)
	if err != nil {
		s.failForm(w, r, err, prefs.T("product.error_save"), log.OpValidate)
		return
	}
	id, err := s.dash.SubmitProduct(r.Context(), p, isUpdate)
	if err != nil {
		s.failForm(w, r, err, prefs.T("product.error_save"), log.OpUpdate)
		return
	}

	succeed(w, r, "/products", NewHTMXResponse().
		TriggerProductSaved(id).
		TriggerFormReset().
		TriggerDashboardRefreshed().
		TriggerSuccessNotification(prefs.T("product.saved")))
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	prefs := preferences.FromRequest(r)
	id, ok := productIDParam(r)
	if !ok {
		NotFoundError("product not found").Write(w)
		return
	}
	if err := s.dash.DeleteProduct(r.Context(), id); err != nil {
		s.failForm(w, r, err, prefs.T("product.error_delete"), log.OpDelete)
		return
	}

	succeed(w, r, "/products", NewHTMXResponse().
		TriggerProductDeleted(id).
		TriggerDashboardRefreshed().
		TriggerSuccessNotification(prefs.T("product.deleted")))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	prefs := preferences.FromRequest(r)
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	p, err := ParseProfile(body)
	if err != nil {
		s.failForm(w, r, err, prefs.T("settings.error_update"), log.OpValidate)
		return
	}
	if err := s.dash.UpdateProfile(r.Context(), p); err != nil {
		s.failForm(w, r, err, prefs.T("settings.error_update"), log.OpUpdate)
		return
	}

	succeed(w, r, "/settings", NewHTMXResponse().
		TriggerProfileUpdated().
		TriggerSuccessNotification(prefs.T("settings.saved")))
}

// handleUpdatePreferences stores the display settings in cookies. The page
// is reloaded so every label and amount is re-rendered.
func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	prefs, err := preferences.Parse(body.Get("language"), body.Get("currency"), body.Get("rate"))
	if err != nil {
		current := preferences.FromRequest(r)
		log.FromContext(r.Context()).WarnContext(r.Context(), "Invalid preferences", log.FieldError, err)
		if !isHTMX(r) {
			http.Error(w, current.T("settings.prefs_invalid"), http.StatusUnprocessableEntity)
			return
		}
		FormFailure(http.StatusUnprocessableEntity, current.T("settings.prefs_invalid")).Write(w)
		return
	}
	prefs.Write(w)

	succeed(w, r, "/settings", NewHTMXResponse().
		Header("HX-Refresh", "true").
		TriggerSuccessNotification(prefs.T("settings.prefs_saved")))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	prefs := preferences.FromRequest(r)
	if _, err := s.dash.Refresh(r.Context()); err != nil {
		s.failForm(w, r, err, prefs.T("refresh.error"), log.OpRefresh)
		return
	}
	succeed(w, r, "/report", NewHTMXResponse().
		TriggerDashboardRefreshed().
		TriggerSuccessNotification(prefs.T("refresh.done")))
}
