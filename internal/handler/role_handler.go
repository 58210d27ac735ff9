package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adminforge/backoffice-api/internal/middleware"
	"github.com/adminforge/backoffice-api/internal/service"
	appErrors "github.com/adminforge/backoffice-api/pkg/errors"
	"github.com/adminforge/backoffice-api/pkg/response"
)

// RoleHandler exposes role management endpoints.
type RoleHandler struct {
	roles  *service.RoleService
	logger *zap.Logger
}

// NewRoleHandler creates a RoleHandler.
func NewRoleHandler(roles *service.RoleService, logger *zap.Logger) *RoleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleHandler{roles: roles, logger: logger}
}

// List godoc
// @Summary List roles
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.Role}
// @Router /roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roles.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, roles, nil)
}

// Create godoc
// @Summary Create a role
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateRoleRequest true "New role"
// @Success 201 {object} response.Envelope{data=models.Role}
// @Failure 409 {object} response.Envelope
// @Router /roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	var req service.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	role, err := h.roles.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetAuditTarget(c, role.ID)
	middleware.SetAuditDetails(c, gin.H{"name": role.Name})
	response.Created(c, role)
}

// Update godoc
// @Summary Update a role
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Role ID"
// @Param request body service.UpdateRoleRequest true "Changed fields"
// @Success 200 {object} response.Envelope{data=models.Role}
// @Failure 404 {object} response.Envelope
// @Router /roles/{id} [put]
func (h *RoleHandler) Update(c *gin.Context) {
	var req service.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	role, err := h.roles.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, role, nil)
}

// Assign godoc
// @Summary Assign a role to a user
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.AssignRoleRequest true "User and role IDs"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /roles/assign [post]
func (h *RoleHandler) Assign(c *gin.Context) {
	var req service.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	if err := h.roles.Assign(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetAuditTarget(c, req.UserID)
	middleware.SetAuditDetails(c, gin.H{"role_id": req.RoleID})
	response.NoContent(c)
}
