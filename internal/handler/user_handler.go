package handler

import (
	"mime/multipart"
	"strings"

	"micasa/internal/middleware"
	"micasa/internal/models"
	"micasa/internal/service"
	"micasa/internal/storage"
	"micasa/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	service service.UserServicer
	auth    service.AuthServicer
}

// NewUserHandler creates a new UserHandler. auth issues fresh tokens after a
// user changes their own role.
func NewUserHandler(service service.UserServicer, auth service.AuthServicer) *UserHandler {
	return &UserHandler{service: service, auth: auth}
}

// GetProfile godoc
// @Summary      Get own profile
// @Description  Retrieve the authenticated user's profile, including homeRoute for the role
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=models.User}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.service.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, user)
}

// ListUsers godoc
// @Summary      List all users
// @Description  Retrieve every user. Admin only.
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=[]models.User}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, users)
}

// UpdateProfile godoc
// @Summary      Update own profile
// @Description  Update name, email and preferences. Send multipart/form-data to also replace the profile image.
// @Tags         users
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        request       body      models.UpdateProfileRequest  false  "Fields to update"
// @Param        profileImage  formData  file                         false  "New profile image (max 5MB)"
// @Success      200           {object}  response.Response{data=models.User}
// @Failure      400           {object}  response.Response
// @Failure      404           {object}  response.Response
// @Failure      409           {object}  response.Response
// @Failure      413           {object}  response.Response
// @Failure      415           {object}  response.Response
// @Failure      500           {object}  response.Response
// @Security     BearerAuth
// @Router       /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	var image *storage.Upload

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		if fh, err := c.FormFile(fieldProfileImage); err == nil {
			u := uploads([]*multipart.FileHeader{fh})[0]
			image = &u
		}
	} else if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), &req, image)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, user)
}

// DeleteProfile godoc
// @Summary      Delete own account
// @Description  Remove the account, revoke its sessions and release its likes
// @Tags         users
// @Produce      json
// @Success      204  "No Content"
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /users/profile [delete]
func (h *UserHandler) DeleteProfile(c *gin.Context) {
	if err := h.service.DeleteProfile(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// ChangeOwnRole godoc
// @Summary      Change own role
// @Description  Switch between hunter, owner and mover. Returns fresh tokens carrying the new role.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      models.ChangeRoleRequest  true  "New role"
// @Success      200      {object}  response.Response{data=models.AuthResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Security     BearerAuth
// @Router       /users/profile/role [put]
func (h *UserHandler) ChangeOwnRole(c *gin.Context) {
	var req models.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.service.ChangeOwnRole(c.Request.Context(), middleware.GetUserID(c), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	tokens, err := h.auth.IssueTokens(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, tokens)
}

// AssignRole godoc
// @Summary      Set a user's role
// @Description  Set any role, including admin, on another user. Admin only.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        uid      path      string                    true  "User uid"
// @Param        request  body      models.ChangeRoleRequest  true  "New role"
// @Success      200      {object}  response.Response{data=models.User}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Security     BearerAuth
// @Router       /users/{uid}/role [put]
func (h *UserHandler) AssignRole(c *gin.Context) {
	var req models.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.service.AssignRole(c.Request.Context(), middleware.GetActor(c), c.Param("uid"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, user)
}

// Notifications godoc
// @Summary      List notifications
// @Description  The authenticated user's notifications, newest first
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=[]models.Notification}
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /users/notifications [get]
func (h *UserHandler) Notifications(c *gin.Context) {
	notifications, err := h.service.Notifications(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, notifications)
}

// MarkNotificationRead godoc
// @Summary      Mark a notification read
// @Tags         users
// @Produce      json
// @Param        id   path  string  true  "Notification id"
// @Success      204  "No Content"
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /users/notifications/{id}/read [put]
func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	if err := h.service.MarkNotificationRead(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// MarkAllNotificationsRead godoc
// @Summary      Mark every notification read
// @Tags         users
// @Produce      json
// @Success      204  "No Content"
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /users/notifications/read-all [put]
func (h *UserHandler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.service.MarkAllNotificationsRead(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// Activity godoc
// @Summary      List activity
// @Description  The authenticated user's activity log, newest first
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=[]models.ActivityEntry}
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /users/activity [get]
func (h *UserHandler) Activity(c *gin.Context) {
	activity, err := h.service.Activity(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, activity)
}
