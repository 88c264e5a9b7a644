package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/models"
	"splitledger/internal/services"
)

type mockCommentService struct {
	listEntryCommentsFn func(budgetID, entryID, userID string) ([]models.CommentWithUser, error)
	createCommentFn     func(budgetID, entryID, userID, text string, mentionUserIDs []string) (*models.EntryComment, error)
	updateCommentFn     func(commentID, userID, text string, mentionUserIDs []string) (*models.EntryComment, error)
	deleteCommentFn     func(commentID, userID string) error
}

var _ services.CommentServicer = (*mockCommentService)(nil)

func (m *mockCommentService) ListEntryComments(budgetID, entryID, userID string) ([]models.CommentWithUser, error) {
	if m.listEntryCommentsFn != nil {
		return m.listEntryCommentsFn(budgetID, entryID, userID)
	}
	return []models.CommentWithUser{}, nil
}

func (m *mockCommentService) CreateComment(budgetID, entryID, userID, text string, mentionUserIDs []string) (*models.EntryComment, error) {
	if m.createCommentFn != nil {
		return m.createCommentFn(budgetID, entryID, userID, text, mentionUserIDs)
	}
	return &models.EntryComment{Base: models.Base{ID: testOtherID}, EntryID: entryID, UserID: userID, CommentText: text}, nil
}

func (m *mockCommentService) UpdateComment(commentID, userID, text string, mentionUserIDs []string) (*models.EntryComment, error) {
	if m.updateCommentFn != nil {
		return m.updateCommentFn(commentID, userID, text, mentionUserIDs)
	}
	return &models.EntryComment{Base: models.Base{ID: commentID}, UserID: userID, CommentText: text}, nil
}

func (m *mockCommentService) DeleteComment(commentID, userID string) error {
	if m.deleteCommentFn != nil {
		return m.deleteCommentFn(commentID, userID)
	}
	return nil
}

func setupCommentRouter(svc services.CommentServicer) *gin.Engine {
	handler := NewCommentHandler(svc)
	r := gin.New()
	authed := r.Group("/", injectUserID(testUserID))
	authed.GET("/budgets/:id/entries/:entryId/comments", handler.ListComments)
	authed.POST("/budgets/:id/entries/:entryId/comments", handler.CreateComment)
	authed.PUT("/comments/:commentId", handler.UpdateComment)
	authed.DELETE("/comments/:commentId", handler.DeleteComment)
	return r
}

func TestCommentHandler_CreateComment(t *testing.T) {
	t.Run("returns 201 with mentions passed through", func(t *testing.T) {
		var gotText string
		var gotMentions []string
		svc := &mockCommentService{
			createCommentFn: func(budgetID, entryID, userID, text string, mentionUserIDs []string) (*models.EntryComment, error) {
				gotText, gotMentions = text, mentionUserIDs
				return &models.EntryComment{Base: models.Base{ID: testOtherID}, EntryID: entryID, CommentText: text}, nil
			},
		}
		r := setupCommentRouter(svc)

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/entries/"+testOtherID+"/comments",
			`{"text":"looks off, can you check?","mentions":["`+testUserID+`"]}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotText != "looks off, can you check?" {
			t.Errorf("unexpected text %q", gotText)
		}
		if len(gotMentions) != 1 || gotMentions[0] != testUserID {
			t.Errorf("unexpected mentions %v", gotMentions)
		}
	})

	t.Run("returns 400 on empty text", func(t *testing.T) {
		r := setupCommentRouter(&mockCommentService{})

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/entries/"+testOtherID+"/comments",
			`{"text":""}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed mention ID", func(t *testing.T) {
		r := setupCommentRouter(&mockCommentService{})

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/entries/"+testOtherID+"/comments",
			`{"text":"hi","mentions":["not-a-uuid"]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 403 for non-member", func(t *testing.T) {
		svc := &mockCommentService{
			createCommentFn: func(_, _, _, _ string, _ []string) (*models.EntryComment, error) {
				return nil, apperrors.ErrForbidden
			},
		}
		r := setupCommentRouter(svc)

		rec := doRequest(r, "POST", "/budgets/"+testBudgetID+"/entries/"+testOtherID+"/comments",
			`{"text":"hi"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}

func TestCommentHandler_ListComments(t *testing.T) {
	t.Run("returns comments with author fields", func(t *testing.T) {
		svc := &mockCommentService{
			listEntryCommentsFn: func(budgetID, entryID, userID string) ([]models.CommentWithUser, error) {
				return []models.CommentWithUser{
					{
						EntryComment: models.EntryComment{Base: models.Base{ID: testOtherID}, EntryID: entryID, CommentText: "first"},
						UserEmail:    "author@test.com",
					},
				}, nil
			},
		}
		r := setupCommentRouter(svc)

		rec := doRequest(r, "GET", "/budgets/"+testBudgetID+"/entries/"+testOtherID+"/comments", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		comments := result["comments"].([]interface{})
		if len(comments) != 1 {
			t.Fatalf("expected 1 comment, got %d", len(comments))
		}
		if comments[0].(map[string]interface{})["user_email"] != "author@test.com" {
			t.Error("expected user_email in comment payload")
		}
	})
}

func TestCommentHandler_UpdateComment(t *testing.T) {
	t.Run("returns 403 when not the author", func(t *testing.T) {
		svc := &mockCommentService{
			updateCommentFn: func(_, _, _ string, _ []string) (*models.EntryComment, error) {
				return nil, apperrors.ErrForbidden
			},
		}
		r := setupCommentRouter(svc)

		rec := doRequest(r, "PUT", "/comments/"+testOtherID, `{"text":"edited"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("returns 200 on success", func(t *testing.T) {
		r := setupCommentRouter(&mockCommentService{})

		rec := doRequest(r, "PUT", "/comments/"+testOtherID, `{"text":"edited"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestCommentHandler_DeleteComment(t *testing.T) {
	t.Run("returns 404 on unknown comment", func(t *testing.T) {
		svc := &mockCommentService{
			deleteCommentFn: func(_, _ string) error {
				return apperrors.ErrCommentNotFound
			},
		}
		r := setupCommentRouter(svc)

		rec := doRequest(r, "DELETE", "/comments/"+testOtherID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, rec, "COMMENT_NOT_FOUND")
	})

	t.Run("returns 200 on success", func(t *testing.T) {
		r := setupCommentRouter(&mockCommentService{})

		rec := doRequest(r, "DELETE", "/comments/"+testOtherID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}
