package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type CommunityController struct {
	Logger  *slog.Logger
	Service domain.CommunityService
}

func NewCommunityController(logger *slog.Logger, svc domain.CommunityService) *CommunityController {
	return &CommunityController{Logger: logger, Service: svc}
}

// writeServiceError maps common domain sentinel errors to API responses.
// Unrecognized errors are logged and reported as 500.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// CreateCommunityRequest is the request body for POST /communities.
type CreateCommunityRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Validate implements helpers.Validator.
func (r *CreateCommunityRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(r.Slug) == "" {
		errs = append(errs, "slug is required")
	}
	return errs
}

// CreateCommunitySuccessResponse is the success response envelope for POST /communities (201).
type CreateCommunitySuccessResponse struct {
	Data  *domain.Community `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateCommunity godoc
// @Summary Create a community
// @Description Creates a community and adds the authenticated user as its owner.
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateCommunityRequest true "Community payload"
// @Success 201 {object} controllers.CreateCommunitySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (slug taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /communities [post]
func (c *CommunityController) CreateCommunity(w http.ResponseWriter, r *http.Request) {
	var req CreateCommunityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	community, err := c.Service.CreateCommunity(r.Context(), req.Name, req.Slug, req.Description, userID)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateSlug) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "community slug already in use")
			return
		}
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, community)
}

// GetCommunitySuccessResponse is the success response envelope for GET /communities/{idOrSlug} (200).
type GetCommunitySuccessResponse struct {
	Data  *domain.Community `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetCommunity godoc
// @Summary Get a community by ID or slug
// @Tags communities
// @Produce json
// @Param idOrSlug path string true "Community ID (UUID) or slug"
// @Success 200 {object} controllers.GetCommunitySuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /communities/{idOrSlug} [get]
func (c *CommunityController) GetCommunity(w http.ResponseWriter, r *http.Request) {
	idOrSlug := r.PathValue("idOrSlug")
	if idOrSlug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing community identifier")
		return
	}

	community, err := c.Service.GetCommunity(r.Context(), idOrSlug)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, community)
}

// ListMyCommunitiesSuccessResponse is the success response envelope for GET /communities (200).
type ListMyCommunitiesSuccessResponse struct {
	Data  []*domain.Community `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListMyCommunities godoc
// @Summary List communities the authenticated user belongs to
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMyCommunitiesSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /communities [get]
func (c *CommunityController) ListMyCommunities(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	communities, err := c.Service.ListMyCommunities(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, communities)
}

// AddMemberRequest is the request body for POST /communities/{communityID}/members.
type AddMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Validate implements helpers.Validator.
func (r *AddMemberRequest) Validate() []string {
	var errs []string
	if !uuidRegex.MatchString(r.UserID) {
		errs = append(errs, "user_id must be a valid UUID")
	}
	if r.Role != domain.RoleAdmin && r.Role != domain.RoleMember {
		errs = append(errs, "role must be admin or member")
	}
	return errs
}

// AddMember godoc
// @Summary Add a member to a community
// @Description Adds a user with the given role. Caller must be owner or admin.
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param communityID path string true "Community ID (UUID)"
// @Param body body controllers.AddMemberRequest true "Member payload"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already a member)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /communities/{communityID}/members [post]
func (c *CommunityController) AddMember(w http.ResponseWriter, r *http.Request) {
	communityID := r.PathValue("communityID")
	if !uuidRegex.MatchString(communityID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid communityID")
		return
	}
	var req AddMemberRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.AddMember(r.Context(), communityID, req.UserID, req.Role, callerID); err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "already a community member")
			return
		}
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, map[string]bool{"added": true})
}

// ListMembersSuccessResponse is the success response envelope for GET /communities/{communityID}/members (200).
type ListMembersSuccessResponse struct {
	Data  []*domain.CommunityMember `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// ListMembers godoc
// @Summary List community members
// @Description Returns the member list. Caller must be owner or admin.
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param communityID path string true "Community ID (UUID)"
// @Success 200 {object} controllers.ListMembersSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /communities/{communityID}/members [get]
func (c *CommunityController) ListMembers(w http.ResponseWriter, r *http.Request) {
	communityID := r.PathValue("communityID")
	if !uuidRegex.MatchString(communityID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid communityID")
		return
	}

	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	members, err := c.Service.ListMembers(r.Context(), communityID, callerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, members)
}

// RemoveMember godoc
// @Summary Remove a member from a community
// @Description Removes the user from the community. Caller must be owner or admin; the owner cannot be removed.
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param communityID path string true "Community ID (UUID)"
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /communities/{communityID}/members/{userID} [delete]
func (c *CommunityController) RemoveMember(w http.ResponseWriter, r *http.Request) {
	communityID := r.PathValue("communityID")
	userID := r.PathValue("userID")
	if !uuidRegex.MatchString(communityID) || !uuidRegex.MatchString(userID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid path parameters")
		return
	}

	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.RemoveMember(r.Context(), communityID, userID, callerID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"removed": true})
}
