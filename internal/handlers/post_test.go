package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"techblog/internal/db"
	"techblog/internal/models"
)

func TestCreatePostMissingFields(t *testing.T) {
	r := setupEnv(t)
	_, token := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)

	w := doJSON(r, http.MethodPost, "/api/posts", map[string]interface{}{
		"title": "Only a title",
	}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	require.Equal(t, false, body["success"])
	errs := body["errors"].([]interface{})
	require.Len(t, errs, 3)

	var fields []string
	for _, e := range errs {
		fields = append(fields, e.(map[string]interface{})["field"].(string))
	}
	require.Equal(t, []string{"content", "excerpt", "category"}, fields)
}

func TestCreatePostRequiresAuthorRole(t *testing.T) {
	r := setupEnv(t)
	_, token := createUser(t, "Reader", "reader@example.com", models.RoleUser)

	w := doJSON(r, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":    "A post",
		"content":  "Content here",
		"excerpt":  "Excerpt",
		"category": "Programming",
	}, token)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreatePostDerivesFields(t *testing.T) {
	r := setupEnv(t)
	_, token := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)

	longContent := ""
	for i := 0; i < 450; i++ {
		longContent += "word "
	}

	w := doJSON(r, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":    "Long read",
		"content":  longContent,
		"excerpt":  "Excerpt",
		"category": "Robotics",
		"tags":     []string{" go ", "robots", ""},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	d := data(t, w)
	require.Equal(t, float64(3), d["read_time"])
	require.Equal(t, []interface{}{"go", "robots"}, d["tags"].([]interface{}))
	require.Equal(t, models.DefaultCoverImage, d["cover_image"])
}

func TestCreatePostUnknownCategory(t *testing.T) {
	r := setupEnv(t)
	_, token := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)

	w := doJSON(r, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":    "A post",
		"content":  "Content",
		"excerpt":  "Excerpt",
		"category": "Gardening",
	}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPostsSearchAndPagination(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)

	for i := 1; i <= 12; i++ {
		createPost(t, author, fmt.Sprintf("Post number %d", i))
	}
	robot := createPost(t, author, "All about robots")
	require.NoError(t, db.DB.Model(robot).Update("content", "robotics content").Error)

	// Default listing: first page of ten, newest first.
	w := doJSON(r, http.MethodGet, "/api/posts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	d := data(t, w)
	posts := d["posts"].([]interface{})
	require.Len(t, posts, 10)
	first := posts[0].(map[string]interface{})
	require.Equal(t, "All about robots", first["title"])

	pagination := d["pagination"].(map[string]interface{})
	require.Equal(t, float64(13), pagination["total"])
	require.Equal(t, float64(2), pagination["pages"])

	// Search hits title and content case-insensitively.
	w = doJSON(r, http.MethodGet, "/api/posts?search=ROBOT", nil, "")
	d = data(t, w)
	posts = d["posts"].([]interface{})
	require.Len(t, posts, 1)
	require.Equal(t, "All about robots", posts[0].(map[string]interface{})["title"])
}

func TestListPostsSortAllowList(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	createPost(t, author, "Bravo")
	createPost(t, author, "Alpha")

	w := doJSON(r, http.MethodGet, "/api/posts?sortBy=title", nil, "")
	d := data(t, w)
	posts := d["posts"].([]interface{})
	require.Equal(t, "Alpha", posts[0].(map[string]interface{})["title"])

	// Unknown sort fields fall back to newest first.
	w = doJSON(r, http.MethodGet, "/api/posts?sortBy=password", nil, "")
	d = data(t, w)
	posts = d["posts"].([]interface{})
	require.Equal(t, "Alpha", posts[0].(map[string]interface{})["title"])
}

func TestListPostsStatusFilter(t *testing.T) {
	r := setupEnv(t)
	author, authorToken := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, adminToken := createUser(t, "Root", "root@example.com", models.RoleAdmin)

	createPost(t, author, "Published post")
	draft := createPost(t, author, "Draft post")
	require.NoError(t, db.DB.Model(draft).Update("status", models.StatusDraft).Error)

	titles := func(w *httptest.ResponseRecorder) []string {
		d := data(t, w)
		var out []string
		for _, p := range d["posts"].([]interface{}) {
			out = append(out, p.(map[string]interface{})["title"].(string))
		}
		return out
	}

	// Anonymous callers never see drafts, whatever they ask for.
	w := doJSON(r, http.MethodGet, "/api/posts?status=all", nil, "")
	require.Equal(t, []string{"Published post"}, titles(w))
	w = doJSON(r, http.MethodGet, "/api/posts?status=draft", nil, "")
	require.Empty(t, titles(w))

	// The author sees their own drafts alongside published posts.
	w = doJSON(r, http.MethodGet, "/api/posts?status=all", nil, authorToken)
	require.ElementsMatch(t, []string{"Published post", "Draft post"}, titles(w))
	w = doJSON(r, http.MethodGet, "/api/posts?status=draft", nil, authorToken)
	require.Equal(t, []string{"Draft post"}, titles(w))

	// Admins see everything.
	w = doJSON(r, http.MethodGet, "/api/posts?status=all", nil, adminToken)
	require.ElementsMatch(t, []string{"Published post", "Draft post"}, titles(w))

	// Without a status param the listing stays published only.
	w = doJSON(r, http.MethodGet, "/api/posts?limit=20", nil, authorToken)
	require.Equal(t, []string{"Published post"}, titles(w))
}

func TestListPostsDateRange(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)

	old := createPost(t, author, "Ancient post")
	createPost(t, author, "Recent post")
	ancient := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.DB.Model(old).UpdateColumn("created_at", ancient).Error)

	w := doJSON(r, http.MethodGet, "/api/posts?fromDate=2020-01-01", nil, "")
	d := data(t, w)
	posts := d["posts"].([]interface{})
	require.Len(t, posts, 1)
	require.Equal(t, "Recent post", posts[0].(map[string]interface{})["title"])

	w = doJSON(r, http.MethodGet, "/api/posts?toDate=2020-01-01", nil, "")
	d = data(t, w)
	posts = d["posts"].([]interface{})
	require.Len(t, posts, 1)
	require.Equal(t, "Ancient post", posts[0].(map[string]interface{})["title"])
}

func TestTagSuggestionsFollowSearch(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)

	one := createPost(t, author, "Robot one")
	require.NoError(t, db.DB.Model(one).Update("tags", "robotics").Error)
	two := createPost(t, author, "Robot two")
	require.NoError(t, db.DB.Model(two).Update("tags", "robot-arms").Error)
	pasta := createPost(t, author, "Dinner ideas")
	require.NoError(t, db.DB.Model(pasta).Update("tags", "cooking,pasta").Error)

	// Suggestions match the search term and skip tags already on the page.
	w := doJSON(r, http.MethodGet, "/api/posts?search=robot&limit=1", nil, "")
	d := data(t, w)
	posts := d["posts"].([]interface{})
	require.Len(t, posts, 1)
	require.Equal(t, "Robot two", posts[0].(map[string]interface{})["title"])
	require.Equal(t, []interface{}{"robotics"}, d["tagSuggestions"].([]interface{}))

	// Without a search term there is nothing to suggest.
	w = doJSON(r, http.MethodGet, "/api/posts?limit=20", nil, "")
	d = data(t, w)
	require.Empty(t, d["tagSuggestions"].([]interface{}))
}

func TestGetPostRendersContent(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	post := createPost(t, author, "Markdown post")
	require.NoError(t, db.DB.Model(post).Update("content", "# Heading\n\n<script>alert(1)</script>ok").Error)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	d := data(t, w)
	html := d["content_html"].(string)
	require.Contains(t, html, "<h1")
	require.NotContains(t, html, "<script>")

	authorCard := d["author"].(map[string]interface{})
	require.Equal(t, "Ada", authorCard["name"])
}

func TestDraftVisibility(t *testing.T) {
	r := setupEnv(t)
	author, authorToken := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, otherToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)

	post := createPost(t, author, "Draft post")
	require.NoError(t, db.DB.Model(post).Update("status", models.StatusDraft).Error)

	path := fmt.Sprintf("/api/posts/%d", post.ID)
	w := doJSON(r, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, path, nil, otherToken)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, path, nil, authorToken)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUpdatePostOwnership(t *testing.T) {
	r := setupEnv(t)
	author, authorToken := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, otherToken := createUser(t, "Bob", "bob@example.com", models.RoleAuthor)
	post := createPost(t, author, "Original title")

	path := fmt.Sprintf("/api/posts/%d", post.ID)
	w := doJSON(r, http.MethodPut, path, map[string]interface{}{"title": "Hijacked"}, otherToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	longContent := ""
	for i := 0; i < 250; i++ {
		longContent += "word "
	}
	w = doJSON(r, http.MethodPut, path, map[string]interface{}{"content": longContent}, authorToken)
	require.Equal(t, http.StatusOK, w.Code)

	var fresh models.Post
	require.NoError(t, dbFirst(&fresh, post.ID))
	require.Equal(t, 2, fresh.ReadTime)
}

func TestMutatePostRequiresAuthorRole(t *testing.T) {
	r := setupEnv(t)
	author, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	_, readerToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)
	post := createPost(t, author, "Guarded post")

	path := fmt.Sprintf("/api/posts/%d", post.ID)
	w := doJSON(r, http.MethodPut, path, map[string]interface{}{"title": "Nope"}, readerToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodDelete, path, nil, readerToken)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeletePostCascades(t *testing.T) {
	r := setupEnv(t)
	author, authorToken := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	reader, readerToken := createUser(t, "Bob", "bob@example.com", models.RoleUser)
	post := createPost(t, author, "Doomed post")

	doJSON(r, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", post.ID), nil, readerToken)
	doJSON(r, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID),
		map[string]interface{}{"content": "nice"}, readerToken)
	_ = reader

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), nil, authorToken)
	require.Equal(t, http.StatusOK, w.Code)

	var likes, comments int64
	db.DB.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likes)
	db.DB.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	require.Zero(t, likes)
	require.Zero(t, comments)
}

func TestListByAuthor(t *testing.T) {
	r := setupEnv(t)
	ada, _ := createUser(t, "Ada", "ada@example.com", models.RoleAuthor)
	bob, _ := createUser(t, "Bob", "bob@example.com", models.RoleAuthor)
	createPost(t, ada, "Ada one")
	createPost(t, ada, "Ada two")
	createPost(t, bob, "Bob one")

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/posts/author/%d", ada.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	d := data(t, w)
	require.Equal(t, float64(2), d["count"])
}
