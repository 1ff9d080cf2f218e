package controllers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/domain"
)

type NotificationController struct {
	Logger  *slog.Logger
	Service domain.NotificationService
	Secret  string
}

func NewNotificationController(logger *slog.Logger, svc domain.NotificationService, secret string) *NotificationController {
	return &NotificationController{Logger: logger, Service: svc, Secret: secret}
}

// ProcessNotificationRequest is the request body for POST /internal/notifications.
type ProcessNotificationRequest struct {
	Type            string `json:"type"`
	EventID         string `json:"event_id"`
	CollaborationID string `json:"collaboration_id"`
	RegistrationID  string `json:"registration_id"`
}

// Validate implements helpers.Validator.
func (r *ProcessNotificationRequest) Validate() []string {
	switch r.Type {
	case domain.NotifyCollabAcceptedNewEvent, domain.NotifyCollabAcceptedExistingEvent:
		if !uuidRegex.MatchString(r.CollaborationID) {
			return []string{"collaboration_id must be a valid UUID"}
		}
	case domain.NotifyRegistration:
		if !uuidRegex.MatchString(r.RegistrationID) {
			return []string{"registration_id must be a valid UUID"}
		}
	default:
		return []string{"unknown notification type"}
	}
	return nil
}

// ProcessNotificationSuccessResponse is the success envelope for POST /internal/notifications.
type ProcessNotificationSuccessResponse struct {
	Data  *domain.NotificationResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// Process godoc
// @Summary Process a member notification fan-out job
// @Description Internal endpoint called asynchronously by the app itself. The type field selects the fan-out: collaboration acceptance announcements to community members, or a new-registration notice to organizers. Authenticated by the X-Internal-Secret header.
// @Tags internal
// @Accept json
// @Produce json
// @Param X-Internal-Secret header string true "Shared secret"
// @Param body body controllers.ProcessNotificationRequest true "Notification job"
// @Success 200 {object} controllers.ProcessNotificationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /internal/notifications [post]
func (c *NotificationController) Process(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Internal-Secret")
	if c.Secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(c.Secret)) != 1 {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid secret")
		return
	}

	var req ProcessNotificationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.Process(r.Context(), &domain.NotificationJob{
		Type:            req.Type,
		EventID:         req.EventID,
		CollaborationID: req.CollaborationID,
		RegistrationID:  req.RegistrationID,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
