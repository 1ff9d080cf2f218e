package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"
)

type CollaborationController struct {
	Logger  *slog.Logger
	Service domain.CollaborationService
}

func NewCollaborationController(logger *slog.Logger, svc domain.CollaborationService) *CollaborationController {
	return &CollaborationController{Logger: logger, Service: svc}
}

func (c *CollaborationController) writeCollabError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrCollaborationExists):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrCollaborationResolved):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrSelfInvitation):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		writeServiceError(c.Logger, w, r, err)
	}
}

// InviteRequest is the request body for POST /events/{eventID}/collaborations.
type InviteRequest struct {
	CommunityID string `json:"community_id"`
}

// Validate implements helpers.Validator.
func (r *InviteRequest) Validate() []string {
	if !uuidRegex.MatchString(r.CommunityID) {
		return []string{"community_id must be a valid UUID"}
	}
	return nil
}

// CollaborationSuccessResponse is the success envelope for collaboration endpoints.
type CollaborationSuccessResponse struct {
	Data  *domain.EventCollaboration `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// Invite godoc
// @Summary Invite a community to co-host an event
// @Description Creates a pending co-host collaboration and emails the invited community's creator. Caller must be owner or admin of the host community, or the event creator.
// @Tags collaborations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.InviteRequest true "Invited community"
// @Success 201 {object} controllers.CollaborationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (self-invitation)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (collaboration exists)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/collaborations [post]
func (c *CollaborationController) Invite(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var req InviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	collab, err := c.Service.Invite(r.Context(), eventID, req.CommunityID, callerID)
	if err != nil {
		c.writeCollabError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, collab)
}

// Accept godoc
// @Summary Accept a co-hosting invitation
// @Description Resolves a pending collaboration as accepted and triggers the member announcement fan-out. Caller must be owner or admin of the invited community.
// @Tags collaborations
// @Produce json
// @Security BearerAuth
// @Param collaborationID path string true "Collaboration ID (UUID)"
// @Success 200 {object} controllers.CollaborationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already resolved)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /collaborations/{collaborationID}/accept [post]
func (c *CollaborationController) Accept(w http.ResponseWriter, r *http.Request) {
	collaborationID := r.PathValue("collaborationID")
	if !uuidRegex.MatchString(collaborationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid collaborationID")
		return
	}

	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	collab, err := c.Service.Accept(r.Context(), collaborationID, callerID)
	if err != nil {
		c.writeCollabError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, collab)
}

// Reject godoc
// @Summary Reject a co-hosting invitation
// @Description Resolves a pending collaboration as rejected. Caller must be owner or admin of the invited community.
// @Tags collaborations
// @Produce json
// @Security BearerAuth
// @Param collaborationID path string true "Collaboration ID (UUID)"
// @Success 200 {object} controllers.CollaborationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already resolved)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /collaborations/{collaborationID}/reject [post]
func (c *CollaborationController) Reject(w http.ResponseWriter, r *http.Request) {
	collaborationID := r.PathValue("collaborationID")
	if !uuidRegex.MatchString(collaborationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid collaborationID")
		return
	}

	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	collab, err := c.Service.Reject(r.Context(), collaborationID, callerID)
	if err != nil {
		c.writeCollabError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, collab)
}

// Remove godoc
// @Summary Remove a co-host collaboration
// @Description Hard-deletes a co-host collaboration. The host row cannot be removed. Caller must be owner or admin of the host community.
// @Tags collaborations
// @Produce json
// @Security BearerAuth
// @Param collaborationID path string true "Collaboration ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (host row)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /collaborations/{collaborationID} [delete]
func (c *CollaborationController) Remove(w http.ResponseWriter, r *http.Request) {
	collaborationID := r.PathValue("collaborationID")
	if !uuidRegex.MatchString(collaborationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid collaborationID")
		return
	}

	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Remove(r.Context(), collaborationID, callerID); err != nil {
		c.writeCollabError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"removed": true})
}

// ListSuccessResponse is the success envelope for GET /events/{eventID}/collaborations.
type ListSuccessResponse struct {
	Data  []*domain.EventCollaboration `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// List godoc
// @Summary List an event's collaborations
// @Tags collaborations
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/collaborations [get]
func (c *CollaborationController) List(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	collabs, err := c.Service.List(r.Context(), eventID)
	if err != nil {
		c.writeCollabError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, collabs)
}
