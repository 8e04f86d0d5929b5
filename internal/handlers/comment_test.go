package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"techblog/internal/db"
	"techblog/internal/models"
)

func postComment(t *testing.T, r *gin.Engine, postID uint, token, content string, parent *uint) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{"content": content}
	if parent != nil {
		body["parentComment"] = *parent
	}
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", postID), body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return data(t, w)
}

func TestCommentNotifiesPostAuthor(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, readerToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)
	post := createPost(t, author, "Discussed post")

	postComment(t, r, post.ID, readerToken, "great write-up", nil)

	var notifications []models.Notification
	db.DB.Where("recipient_id = ?", author.ID).Find(&notifications)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotificationComment, notifications[0].Type)
	require.Contains(t, notifications[0].Content, "Discussed post")
}

func TestReplyNotifiesParentAuthor(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, bobToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)
	carol, carolToken := createUser(t, "Carol", "carol@example.com", models.RoleUser)
	post := createPost(t, author, "Discussed post")

	parent := postComment(t, r, post.ID, carolToken, "first!", nil)
	parentID := uint(parent["id"].(float64))
	postComment(t, r, post.ID, bobToken, "replying to you", &parentID)

	var count int64
	db.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND type = ?", carol.ID, models.NotificationReply).
		Count(&count)
	require.Equal(t, int64(1), count)
}

func TestMentionNotification(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, bobToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)
	carol, _ := createUser(t, "Carol", "carol@example.com", models.RoleUser)
	post := createPost(t, author, "Discussed post")

	// Duplicate mentions and unknown names produce nothing extra.
	postComment(t, r, post.ID, bobToken, "hey @carol and @Carol, also @nobody", nil)

	var mentions []models.Notification
	db.DB.Where("type = ?", models.NotificationMention).Find(&mentions)
	require.Len(t, mentions, 1)
	require.Equal(t, carol.ID, mentions[0].RecipientID)
}

func TestMentionNeverNotifiesSelf(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	bob, bobToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)
	post := createPost(t, author, "Discussed post")

	postComment(t, r, post.ID, bobToken, "note to self @bob", nil)

	var count int64
	db.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND type = ?", bob.ID, models.NotificationMention).
		Count(&count)
	require.Zero(t, count)
}

func TestCommentOnMissingPostAndParent(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, bobToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)
	post := createPost(t, author, "Discussed post")

	w := doJSON(r, http.MethodPost, "/api/posts/9999/comments",
		map[string]interface{}{"content": "hello"}, bobToken)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID),
		map[string]interface{}{"content": "hello", "parentComment": 9999}, bobToken)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTopLevelCommentCascadesReplies(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, bobToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)
	_, carolToken := createUser(t, "Carol", "carol@example.com", models.RoleUser)
	post := createPost(t, author, "Discussed post")

	parent := postComment(t, r, post.ID, bobToken, "parent", nil)
	parentID := uint(parent["id"].(float64))
	postComment(t, r, post.ID, carolToken, "reply one", &parentID)
	postComment(t, r, post.ID, carolToken, "reply two", &parentID)

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/comments/%d", parentID), nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)

	var remaining int64
	db.DB.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&remaining)
	require.Zero(t, remaining)
}

func TestDeleteReplyLeavesSiblings(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, bobToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)
	_, carolToken := createUser(t, "Carol", "carol@example.com", models.RoleUser)
	post := createPost(t, author, "Discussed post")

	parent := postComment(t, r, post.ID, bobToken, "parent", nil)
	parentID := uint(parent["id"].(float64))
	reply := postComment(t, r, post.ID, carolToken, "reply one", &parentID)
	postComment(t, r, post.ID, carolToken, "reply two", &parentID)

	replyID := uint(reply["id"].(float64))
	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/comments/%d", replyID), nil, carolToken)
	require.Equal(t, http.StatusOK, w.Code)

	var remaining int64
	db.DB.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&remaining)
	require.Equal(t, int64(2), remaining)
}

func TestCommentOwnership(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, bobToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)
	_, carolToken := createUser(t, "Carol", "carol@example.com", models.RoleUser)
	post := createPost(t, author, "Discussed post")

	comment := postComment(t, r, post.ID, bobToken, "mine", nil)
	id := uint(comment["id"].(float64))

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/comments/%d", id),
		map[string]interface{}{"content": "hijacked"}, carolToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPut, fmt.Sprintf("/api/comments/%d", id),
		map[string]interface{}{"content": "edited"}, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestApproveRequiresAdmin(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, bobToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)
	_, adminToken := createUser(t, "Root", "root@example.com", models.RoleAdmin)
	post := createPost(t, author, "Moderated post")

	comment := postComment(t, r, post.ID, bobToken, "pending", nil)
	id := uint(comment["id"].(float64))
	path := fmt.Sprintf("/api/comments/%d/approve", id)

	w := doJSON(r, http.MethodPut, path, map[string]interface{}{"isApproved": false}, bobToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPut, path, map[string]interface{}{"isApproved": false}, adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	// Unapproved comments drop out of the post listing.
	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", post.ID), nil, "")
	d := data(t, w)
	require.Empty(t, d["comments"])
}

func TestListCommentsWithReplies(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, bobToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)
	post := createPost(t, author, "Discussed post")

	parent := postComment(t, r, post.ID, bobToken, "parent", nil)
	parentID := uint(parent["id"].(float64))
	postComment(t, r, post.ID, bobToken, "reply", &parentID)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", post.ID), nil, "")
	d := data(t, w)
	comments := d["comments"].([]interface{})
	require.Len(t, comments, 1)

	top := comments[0].(map[string]interface{})
	require.Equal(t, "parent", top["content"])
	replies := top["replies"].([]interface{})
	require.Len(t, replies, 1)
	require.Equal(t, "Bob", top["author"].(map[string]interface{})["name"])
}
