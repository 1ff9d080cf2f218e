package controllers

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/domain"
)

type ReminderController struct {
	Logger  *slog.Logger
	Service domain.ReminderService
	Secret  string
}

func NewReminderController(logger *slog.Logger, svc domain.ReminderService, secret string) *ReminderController {
	return &ReminderController{Logger: logger, Service: svc, Secret: secret}
}

// ProcessRemindersRequest is the request body for POST /internal/reminders.
type ProcessRemindersRequest struct {
	ReminderTime string `json:"reminderTime"`
	Secret       string `json:"secret"`
}

// ProcessRemindersResponseData is the data payload of a reminder run.
type ProcessRemindersResponseData struct {
	Success       bool                     `json:"success"`
	RemindersSent int                      `json:"reminders_sent"`
	Failures      []domain.ReminderFailure `json:"failures,omitempty"`
}

// ProcessRemindersSuccessResponse is the success envelope for POST /internal/reminders.
type ProcessRemindersSuccessResponse struct {
	Data  *ProcessRemindersResponseData `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

// ProcessReminders godoc
// @Summary Run the reminder scheduler for one lead-time bucket
// @Description Called by the external cron. Sends the bucket's reminder email to every approved, verified, going registrant of published events starting inside the bucket's window, at most once per registrant and bucket. Authenticated by the shared secret in the body.
// @Tags internal
// @Accept json
// @Produce json
// @Param body body controllers.ProcessRemindersRequest true "Bucket name and shared secret"
// @Success 200 {object} controllers.ProcessRemindersSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown bucket)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (bad secret)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /internal/reminders [post]
func (c *ReminderController) ProcessReminders(w http.ResponseWriter, r *http.Request) {
	var req ProcessRemindersRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	// Secret check before bucket validation so probing with a bad secret
	// learns nothing about valid bucket names.
	if c.Secret == "" || subtle.ConstantTimeCompare([]byte(req.Secret), []byte(c.Secret)) != 1 {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid secret")
		return
	}

	if !domain.ValidReminderBucket(req.ReminderTime) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown reminder bucket")
		return
	}

	result, err := c.Service.ProcessReminders(r.Context(), req.ReminderTime)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownReminderBucket) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, &ProcessRemindersResponseData{
		Success:       true,
		RemindersSent: result.Sent,
		Failures:      result.Failures,
	})
}
