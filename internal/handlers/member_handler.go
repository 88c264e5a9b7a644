package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/services"
)

// MemberHandler handles budget membership requests.
type MemberHandler struct {
	memberService services.MemberServicer
	auditService  services.AuditServicer
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(memberService services.MemberServicer, auditService services.AuditServicer) *MemberHandler {
	return &MemberHandler{memberService: memberService, auditService: auditService}
}

// InviteMemberRequest represents the request payload for inviting a member.
type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,member_role"`
}

// UpdateMemberRoleRequest represents the request payload for a role change.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,member_role"`
}

// ListMembers handles listing the members of a budget.
// @Summary     List budget members
// @Description List members of a budget with their roles, owner first
// @Tags        members
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {array} models.BudgetMemberWithUser "Members"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/members [get]
func (h *MemberHandler) ListMembers(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	members, err := h.memberService.ListMembers(budgetID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// InviteMember handles adding a user to a budget by email.
// @Summary     Invite a member
// @Description Add a user to the budget by email, or replace their role if already a member; owner only
// @Tags        members
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body InviteMemberRequest true "Invitee email and role"
// @Success     201 {object} models.BudgetMember "Membership created or updated"
// @Failure     400 {object} ErrorResponse "Invalid input, role, or unknown email"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/members [post]
func (h *MemberHandler) InviteMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.memberService.InviteMember(budgetID, userID, req.Email, req.Role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "INVITE_MEMBER", "budget_member", member.UserID, c.ClientIP(),
		map[string]interface{}{"budget_id": budgetID, "role": req.Role})

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// UpdateMemberRole handles replacing a member's role.
// @Summary     Update a member's role
// @Description Replace an existing member's role; owner only, last owner protected
// @Tags        members
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Budget ID"
// @Param       userId  path string                  true "Member user ID"
// @Param       request body UpdateMemberRoleRequest true "New role"
// @Success     200 {object} models.BudgetMember "Updated membership"
// @Failure     400 {object} ErrorResponse "Invalid role or last owner"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/members/{userId} [put]
func (h *MemberHandler) UpdateMemberRole(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberUserID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.memberService.UpdateMemberRole(budgetID, userID, memberUserID, req.Role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_MEMBER_ROLE", "budget_member", memberUserID, c.ClientIP(),
		map[string]interface{}{"budget_id": budgetID, "role": req.Role})

	c.JSON(http.StatusOK, gin.H{"member": member})
}

// RemoveMember handles removing a member from a budget.
// @Summary     Remove a member
// @Description Remove a user from the budget; owner only, idempotent, last owner protected
// @Tags        members
// @Produce     json
// @Security    BearerAuth
// @Param       id     path string true "Budget ID"
// @Param       userId path string true "Member user ID"
// @Success     200 {object} MessageResponse "Member removed"
// @Failure     400 {object} ErrorResponse "Last owner"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/members/{userId} [delete]
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	memberUserID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.memberService.RemoveMember(budgetID, userID, memberUserID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REMOVE_MEMBER", "budget_member", memberUserID, c.ClientIP(),
		map[string]interface{}{"budget_id": budgetID})

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}
