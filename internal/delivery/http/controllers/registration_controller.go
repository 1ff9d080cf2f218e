package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"
)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
	BaseURL string
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService, baseURL string) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// writeRegistrationError maps registration sentinel errors before falling back
// to the shared mapping.
func (c *RegistrationController) writeRegistrationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrAlreadyRegistered):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrVerificationPending):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		writeServiceError(c.Logger, w, r, err)
	}
}

// RegistrationSuccessResponse is the success envelope for registration endpoints.
type RegistrationSuccessResponse struct {
	Data  *domain.RegistrationResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// Register godoc
// @Summary Register the authenticated user for an event
// @Description Registers the authenticated user. The registration is verified immediately; approval depends on the event's approval setting.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	result, err := c.Service.Register(r.Context(), eventID, userID)
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// AnonymousRegistrationRequest is the request body for anonymous registration and subscription.
type AnonymousRegistrationRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate implements helpers.Validator.
func (r *AnonymousRegistrationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

// RegisterAnonymous godoc
// @Summary Register for an event without an account
// @Description Starts an anonymous registration. If the event defines custom questions, nothing is written and the response carries needs_custom_questions=true; re-submit through the answers endpoint. Otherwise a verification email is sent and redirect_to points at the verification-pending page.
// @Tags registrations
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.AnonymousRegistrationRequest true "Registrant identity"
// @Success 200 {object} controllers.RegistrationSuccessResponse "needs_custom_questions=true, nothing written"
// @Success 201 {object} controllers.RegistrationSuccessResponse "verification email sent"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered or verification pending)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/anonymous-registrations [post]
func (c *RegistrationController) RegisterAnonymous(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var req AnonymousRegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.RegisterAnonymous(r.Context(), eventID, domain.AnonymousRegistrant{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	if result.NeedsCustomQuestions {
		helpers.WriteJSONSuccess(w, http.StatusOK, result)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// AnonymousAnswersRequest is the request body for the custom-questions registration step.
type AnonymousAnswersRequest struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone"`
	Answers json.RawMessage `json:"answers"`
}

// Validate implements helpers.Validator.
func (r *AnonymousAnswersRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

// RegisterAnonymousWithAnswers godoc
// @Summary Complete an anonymous registration with custom question answers
// @Description Creates the anonymous registration including phone and answers to the event's custom questions, then sends the verification email.
// @Tags registrations
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.AnonymousAnswersRequest true "Registrant identity plus answers"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/anonymous-registrations/answers [post]
func (c *RegistrationController) RegisterAnonymousWithAnswers(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var req AnonymousAnswersRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.RegisterAnonymousWithAnswers(r.Context(), eventID, domain.AnonymousRegistrant{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}, req.Answers)
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// Subscribe godoc
// @Summary Subscribe the authenticated user to an external event
// @Description Records interest in an externally-registered event. No verification step; the subscription is active immediately.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/subscriptions [post]
func (c *RegistrationController) Subscribe(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	result, err := c.Service.Subscribe(r.Context(), eventID, userID)
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// SubscribeAnonymous godoc
// @Summary Subscribe to an external event without an account
// @Tags registrations
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.AnonymousRegistrationRequest true "Subscriber identity"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/anonymous-subscriptions [post]
func (c *RegistrationController) SubscribeAnonymous(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var req AnonymousRegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.SubscribeAnonymous(r.Context(), eventID, domain.AnonymousRegistrant{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// Unregister godoc
// @Summary Cancel the authenticated user's registration
// @Description Hard-deletes the registration for the event.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [delete]
func (c *RegistrationController) Unregister(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Unregister(r.Context(), eventID, userID); err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"unregistered": true})
}

// UnsubscribeRequest is the request body for DELETE /events/{eventID}/anonymous-subscriptions.
type UnsubscribeRequest struct {
	Email string `json:"email"`
}

// Validate implements helpers.Validator.
func (r *UnsubscribeRequest) Validate() []string {
	if strings.TrimSpace(r.Email) == "" {
		return []string{"email is required"}
	}
	return nil
}

// UnsubscribeAnonymous godoc
// @Summary Remove an anonymous subscription
// @Tags registrations
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UnsubscribeRequest true "Subscriber email"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/anonymous-subscriptions [delete]
func (c *RegistrationController) UnsubscribeAnonymous(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var req UnsubscribeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := c.Service.UnsubscribeAnonymous(r.Context(), eventID, req.Email); err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"unsubscribed": true})
}

// VerifyEmail godoc
// @Summary Verify an anonymous registration
// @Description Confirms the registration via the emailed token and redirects the browser to the confirmation page.
// @Tags registrations
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param token query string true "Verification token"
// @Success 302 {string} string "Redirect to the confirmation page"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid or expired token)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/verify [get]
func (c *RegistrationController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing token")
		return
	}

	if _, err := c.Service.VerifyEmail(r.Context(), eventID, token); err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.writeRegistrationError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("%s/events/%s/verified", c.BaseURL, eventID), http.StatusFound)
}

// SetApprovalRequest is the request body for PATCH /events/{eventID}/registrations/{registrationID}/approval.
type SetApprovalRequest struct {
	Status string `json:"status"`
}

// Validate implements helpers.Validator.
func (r *SetApprovalRequest) Validate() []string {
	switch r.Status {
	case domain.ApprovalPending, domain.ApprovalApproved, domain.ApprovalRejected:
		return nil
	}
	return []string{"status must be pending, approved, or rejected"}
}

// SetApprovalSuccessResponse is the success envelope for the approval endpoint.
type SetApprovalSuccessResponse struct {
	Data  *domain.EventRegistration `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// SetApproval godoc
// @Summary Set a registration's approval status
// @Description Sets the approval status. Caller must be owner or admin of the host community. Idempotent; every call emails the registrant the new status.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param registrationID path string true "Registration ID (UUID)"
// @Param body body controllers.SetApprovalRequest true "New approval status"
// @Success 200 {object} controllers.SetApprovalSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations/{registrationID}/approval [patch]
func (c *RegistrationController) SetApproval(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	registrationID := r.PathValue("registrationID")
	if !uuidRegex.MatchString(eventID) || !uuidRegex.MatchString(registrationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid path parameters")
		return
	}
	var req SetApprovalRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	reg, err := c.Service.SetApprovalStatus(r.Context(), eventID, registrationID, req.Status, callerID)
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// ListRegistrationsResponseData is the data payload for the registrations list.
type ListRegistrationsResponseData struct {
	Registrations []*domain.EventRegistration `json:"registrations"`
	Pagination    helpers.PaginationMeta      `json:"pagination"`
}

// ListRegistrationsSuccessResponse is the success envelope for GET /events/{eventID}/registrations.
type ListRegistrationsSuccessResponse struct {
	Data  *ListRegistrationsResponseData `json:"data"`
	Error *helpers.APIError              `json:"error"`
}

// ListRegistrations godoc
// @Summary List an event's registrations
// @Description Returns the paginated registration list. Caller must be owner or admin of the host community.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListRegistrationsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [get]
func (c *RegistrationController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	params := helpers.ParsePagination(r)
	regs, total, err := c.Service.ListRegistrations(r.Context(), eventID, callerID, params)
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &ListRegistrationsResponseData{
		Registrations: regs,
		Pagination:    helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
