package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/services"
)

// CommentHandler handles entry comment requests.
type CommentHandler struct {
	commentService services.CommentServicer
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentService services.CommentServicer) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateCommentRequest represents the request payload for creating a comment.
type CreateCommentRequest struct {
	Text     string   `json:"text" binding:"required,min=1,max=2000"`
	Mentions []string `json:"mentions" binding:"omitempty,dive,uuid"`
}

// UpdateCommentRequest represents the request payload for editing a comment.
type UpdateCommentRequest struct {
	Text     string   `json:"text" binding:"required,min=1,max=2000"`
	Mentions []string `json:"mentions" binding:"omitempty,dive,uuid"`
}

// ListComments handles listing an entry's comments.
// @Summary     List entry comments
// @Description List an entry's comments, oldest first
// @Tags        comments
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string true "Budget ID"
// @Param       entryId path string true "Entry ID"
// @Success     200 {array} models.CommentWithUser "Comments"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/entries/{entryId}/comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
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

	entryID, err := parsePathID(c, "entryId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	comments, err := h.commentService.ListEntryComments(budgetID, entryID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// CreateComment handles adding a comment to an entry.
// @Summary     Comment on an entry
// @Description Add a comment to an entry; any member may comment, mentioned members get notified
// @Tags        comments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Budget ID"
// @Param       entryId path string               true "Entry ID"
// @Param       request body CreateCommentRequest true "Comment text and mentions"
// @Success     201 {object} models.EntryComment "Comment created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/entries/{entryId}/comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
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

	entryID, err := parsePathID(c, "entryId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	comment, err := h.commentService.CreateComment(budgetID, entryID, userID, req.Text, req.Mentions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// UpdateComment handles editing a comment.
// @Summary     Edit a comment
// @Description Edit a comment's text and mentions; author only
// @Tags        comments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       commentId path string               true "Comment ID"
// @Param       request   body UpdateCommentRequest true "New text and mentions"
// @Success     200 {object} models.EntryComment "Updated comment"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the author"
// @Failure     404 {object} ErrorResponse "Comment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /comments/{commentId} [put]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	commentID, err := parsePathID(c, "commentId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	comment, err := h.commentService.UpdateComment(commentID, userID, req.Text, req.Mentions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// DeleteComment handles removing a comment.
// @Summary     Delete a comment
// @Description Delete a comment; author or budget owner
// @Tags        comments
// @Produce     json
// @Security    BearerAuth
// @Param       commentId path string true "Comment ID"
// @Success     200 {object} MessageResponse "Comment deleted"
// @Failure     400 {object} ErrorResponse "Invalid comment ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the author or owner"
// @Failure     404 {object} ErrorResponse "Comment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /comments/{commentId} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	commentID, err := parsePathID(c, "commentId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.commentService.DeleteComment(commentID, userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
