package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"techblog/internal/db"
	"techblog/internal/middleware"
	"techblog/internal/models"
	"techblog/internal/utils"
)

// PostHandler serves the post catalog: listing with filters, detail, and the
// author write path.
type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxTagHints     = 5

	// defaultListCacheKey caches only the unfiltered first page, which takes
	// nearly all of the listing traffic.
	defaultListCacheKey = "posts:list:default"
	listCacheTTL        = time.Minute
)

// sortColumns is the allow-list mapping query sort fields to columns.
var sortColumns = map[string]string{
	"title":     "title",
	"createdAt": "created_at",
	"readTime":  "read_time",
	"category":  "category",
}

// PostView is the serialized post: the row plus split tags and the author
// byline.
type PostView struct {
	models.Post
	Tags   []string           `json:"tags"`
	Author models.UserSummary `json:"author"`
}

// PostDetail extends PostView with the rendered content and the fuller
// author card shown on the post page.
type PostDetail struct {
	models.Post
	Tags        []string `json:"tags"`
	ContentHTML string   `json:"content_html"`
	Author      gin.H    `json:"author"`
}

func postView(p *models.Post) PostView {
	return PostView{Post: *p, Tags: p.TagList(), Author: p.Author.Summary()}
}

type listParams struct {
	page      int
	limit     int
	search    string
	category  string
	status    string
	authorID  int
	tags      []string
	fromDate  string
	toDate    string
	sortField string
	sortDesc  bool
}

func parseListParams(c *gin.Context) listParams {
	p := listParams{page: 1, limit: defaultPageSize, sortField: "created_at", sortDesc: true}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.limit = v
		if p.limit > maxPageSize {
			p.limit = maxPageSize
		}
	}
	p.search = strings.TrimSpace(c.Query("search"))
	p.category = strings.TrimSpace(c.Query("category"))
	p.status = c.Query("status")
	if v, err := strconv.Atoi(c.Query("author")); err == nil && v > 0 {
		p.authorID = v
	}
	if raw := c.Query("tags"); raw != "" {
		p.tags = models.SplitTags(raw)
	}
	p.fromDate = c.Query("fromDate")
	p.toDate = c.Query("toDate")

	if raw := c.Query("sortBy"); raw != "" {
		field := raw
		desc := false
		if strings.HasPrefix(raw, "-") {
			field = raw[1:]
			desc = true
		}
		if col, ok := sortColumns[field]; ok {
			p.sortField = col
			p.sortDesc = desc
		}
	}
	return p
}

func (p listParams) isDefault() bool {
	return p.page == 1 && p.limit == defaultPageSize &&
		p.search == "" && p.category == "" && p.status == "" &&
		p.authorID == 0 && len(p.tags) == 0 &&
		p.fromDate == "" && p.toDate == "" &&
		p.sortField == "created_at" && p.sortDesc
}

// List returns published posts with filtering, search and pagination
// (GET /api/posts).
func (h *PostHandler) List(c *gin.Context) {
	params := parseListParams(c)

	if params.isDefault() {
		if cached, ok := utils.PageCache().Lookup(defaultListCacheKey); ok {
			OK(c, http.StatusOK, cached)
			return
		}
	}

	query := db.DB.Model(&models.Post{})
	query = applyStatusFilter(query, params.status, middleware.CurrentUser(c))

	if params.search != "" {
		like := "%" + strings.ToLower(params.search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(tags) LIKE ?",
			like, like, like, like,
		)
	}
	if params.category != "" {
		query = query.Where("category = ?", params.category)
	}
	if params.authorID > 0 {
		query = query.Where("author_id = ?", params.authorID)
	}
	if len(params.tags) > 0 {
		tagQuery := db.DB
		for _, tag := range params.tags {
			tagQuery = tagQuery.Or("LOWER(tags) LIKE ?", "%"+strings.ToLower(tag)+"%")
		}
		query = query.Where(tagQuery)
	}
	if params.fromDate != "" {
		query = query.Where("created_at >= ?", params.fromDate)
	}
	if params.toDate != "" {
		query = query.Where("created_at <= ?", params.toDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	order := params.sortField
	if params.sortDesc {
		order += " DESC"
	}

	var posts []models.Post
	err := query.Preload("Author").
		Order(order).
		Offset((params.page - 1) * params.limit).
		Limit(params.limit).
		Find(&posts).Error
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, postView(&posts[i]))
	}

	data := gin.H{
		"posts": views,
		"pagination": gin.H{
			"page":  params.page,
			"limit": params.limit,
			"total": total,
			"pages": int(math.Ceil(float64(total) / float64(params.limit))),
		},
		"tagSuggestions": tagSuggestions(params.search, posts),
	}

	if params.isDefault() {
		utils.PageCache().Put(defaultListCacheKey, data, listCacheTTL)
	}
	OK(c, http.StatusOK, data)
}

// applyStatusFilter scopes the listing by the status param. Published is the
// default; "all" or "draft" widen it, but drafts stay limited to their own
// author unless the caller is an admin.
func applyStatusFilter(query *gorm.DB, status string, user *models.User) *gorm.DB {
	switch status {
	case "all":
		if user == nil {
			return query.Where("status = ?", models.StatusPublished)
		}
		if user.Role != models.RoleAdmin {
			return query.Where("status = ? OR author_id = ?", models.StatusPublished, user.ID)
		}
		return query
	case models.StatusDraft:
		query = query.Where("status = ?", models.StatusDraft)
		if user == nil {
			return query.Where("author_id = ?", 0)
		}
		if user.Role != models.RoleAdmin {
			return query.Where("author_id = ?", user.ID)
		}
		return query
	default:
		return query.Where("status = ?", models.StatusPublished)
	}
}

// tagSuggestions offers up to five tags matching the search term that are
// not already on the current page. Without a search term there is nothing
// to suggest.
func tagSuggestions(search string, pagePosts []models.Post) []string {
	suggestions := make([]string, 0, maxTagHints)
	if search == "" {
		return suggestions
	}
	term := strings.ToLower(search)

	onPage := make(map[string]bool)
	for i := range pagePosts {
		for _, t := range pagePosts[i].TagList() {
			onPage[strings.ToLower(t)] = true
		}
	}

	var rows []string
	db.DB.Model(&models.Post{}).
		Where("status = ? AND LOWER(tags) LIKE ?", models.StatusPublished, "%"+term+"%").
		Order("created_at DESC").
		Limit(100).
		Pluck("tags", &rows)

	seen := make(map[string]bool)
	for _, row := range rows {
		for _, t := range models.SplitTags(row) {
			key := strings.ToLower(t)
			if !strings.Contains(key, term) || onPage[key] || seen[key] {
				continue
			}
			seen[key] = true
			suggestions = append(suggestions, t)
			if len(suggestions) == maxTagHints {
				return suggestions
			}
		}
	}
	return suggestions
}

// Get returns one post with rendered content (GET /api/posts/:id). Drafts are
// visible only to their author or an admin.
func (h *PostHandler) Get(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}

	if post.Status != models.StatusPublished {
		user := middleware.CurrentUser(c)
		if user == nil || (user.ID != post.AuthorID && user.Role != models.RoleAdmin) {
			Fail(c, http.StatusNotFound, "Post not found")
			return
		}
	}

	detail := PostDetail{
		Post:        *post,
		Tags:        post.TagList(),
		ContentHTML: utils.RenderMarkdown(post.Content),
		Author: gin.H{
			"id":     post.Author.ID,
			"name":   post.Author.Name,
			"bio":    post.Author.Bio,
			"avatar": post.Author.Avatar,
		},
	}
	OK(c, http.StatusOK, detail)
}

// ListByAuthor returns an author's published posts (GET /api/posts/author/:authorId).
// The author themselves and admins also see drafts.
func (h *PostHandler) ListByAuthor(c *gin.Context) {
	authorID, err := strconv.Atoi(c.Param("authorId"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid author id")
		return
	}

	query := db.DB.Model(&models.Post{}).Where("author_id = ?", authorID)
	user := middleware.CurrentUser(c)
	if user == nil || (user.ID != uint(authorID) && user.Role != models.RoleAdmin) {
		query = query.Where("status = ?", models.StatusPublished)
	}

	var posts []models.Post
	if err := query.Preload("Author").Order("created_at DESC").Find(&posts).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, postView(&posts[i]))
	}
	OK(c, http.StatusOK, gin.H{"posts": views, "count": len(views)})
}

// Create publishes a new post (POST /api/posts). The write path is explicit:
// validate the input, derive tags and read time, then persist once.
func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindFail(c, err)
		return
	}

	var missing []FieldError
	for _, f := range []struct {
		name  string
		value string
	}{
		{"title", req.Title},
		{"content", req.Content},
		{"excerpt", req.Excerpt},
		{"category", req.Category},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, FieldError{Field: f.name, Message: f.name + " is required"})
		}
	}
	if len(missing) > 0 {
		FailFields(c, http.StatusBadRequest, "Validation failed", missing)
		return
	}
	if !models.ValidCategory(req.Category) {
		Fail(c, http.StatusBadRequest, "Unknown category: "+req.Category)
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusPublished
	}
	cover := req.CoverImage
	if cover == "" {
		cover = models.DefaultCoverImage
	}

	post := models.Post{
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		Excerpt:    strings.TrimSpace(req.Excerpt),
		CoverImage: cover,
		Category:   req.Category,
		Tags:       models.JoinTags(req.Tags),
		AuthorID:   user.ID,
		Status:     status,
		ReadTime:   models.ComputeReadTime(req.Content),
	}
	if err := db.DB.Create(&post).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not create post")
		return
	}
	post.Author = *user

	utils.PageCache().Invalidate(defaultListCacheKey)
	OK(c, http.StatusCreated, postView(&post))
}

// Update edits a post (PUT /api/posts/:id). Only the owner or an admin may
// edit; read time is rederived whenever the content changes.
func (h *PostHandler) Update(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	if post.AuthorID != user.ID && user.Role != models.RoleAdmin {
		Fail(c, http.StatusForbidden, "Not authorized to update this post")
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindFail(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		updates["content"] = *req.Content
		updates["read_time"] = models.ComputeReadTime(*req.Content)
	}
	if req.Excerpt != nil {
		updates["excerpt"] = strings.TrimSpace(*req.Excerpt)
	}
	if req.Category != nil {
		if !models.ValidCategory(*req.Category) {
			Fail(c, http.StatusBadRequest, "Unknown category: "+*req.Category)
			return
		}
		updates["category"] = *req.Category
	}
	if req.Tags != nil {
		updates["tags"] = models.JoinTags(*req.Tags)
	}
	if req.CoverImage != nil {
		updates["cover_image"] = *req.CoverImage
	}
	if req.Status != nil {
		if *req.Status != models.StatusDraft && *req.Status != models.StatusPublished {
			Fail(c, http.StatusBadRequest, "Status must be draft or published")
			return
		}
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := db.DB.Model(post).Updates(updates).Error; err != nil {
			Fail(c, http.StatusInternalServerError, "Could not update post")
			return
		}
	}

	utils.PageCache().Invalidate(defaultListCacheKey)
	OK(c, http.StatusOK, postView(post))
}

// Delete removes a post and its dependent rows (DELETE /api/posts/:id).
func (h *PostHandler) Delete(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	if post.AuthorID != user.ID && user.Role != models.RoleAdmin {
		Fail(c, http.StatusForbidden, "Not authorized to delete this post")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostShare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not delete post")
		return
	}

	utils.PageCache().Invalidate(defaultListCacheKey)
	OK(c, http.StatusOK, gin.H{"message": fmt.Sprintf("Post %d deleted", post.ID)})
}

// findPost loads the post from the :id param with its author, writing the
// error response itself when the id is bad or missing.
func (h *PostHandler) findPost(c *gin.Context) (*models.Post, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid post id")
		return nil, false
	}
	var post models.Post
	if err := db.DB.Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, "Post not found")
		} else {
			Fail(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &post, true
}
