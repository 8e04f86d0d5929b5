package handlers

// Request bodies for every write endpoint. Binding tags drive validation;
// handlers add the checks the tags cannot express (category enum, tag
// normalization, role allow-list).

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=user author"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"omitempty,max=50"`
	Bio    string `json:"bio" binding:"omitempty,max=500"`
	Avatar string `json:"avatar" binding:"omitempty,url"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type CreatePostRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	CoverImage string   `json:"coverImage"`
	Status     string   `json:"status" binding:"omitempty,oneof=draft published"`
}

type UpdatePostRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Excerpt    *string   `json:"excerpt"`
	Category   *string   `json:"category"`
	Tags       *[]string `json:"tags"`
	CoverImage *string   `json:"coverImage"`
	Status     *string   `json:"status" binding:"omitempty"`
}

type ReactRequest struct {
	Type string `json:"type" binding:"required"`
}

type ShareRequest struct {
	Platform string `json:"platform"`
}

type CreateCommentRequest struct {
	Content       string `json:"content" binding:"required,max=1000"`
	ParentComment *uint  `json:"parentComment"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

type ApproveCommentRequest struct {
	IsApproved bool `json:"isApproved"`
}

type CreateAuthorProfileRequest struct {
	UserID    uint   `json:"userId" binding:"required"`
	Bio       string `json:"bio" binding:"omitempty,max=500"`
	Avatar    string `json:"avatar" binding:"omitempty,url"`
	Website   string `json:"website" binding:"omitempty,url"`
	Twitter   string `json:"twitter"`
	Facebook  string `json:"facebook"`
	LinkedIn  string `json:"linkedin"`
	Instagram string `json:"instagram"`
}

type AuthorProfileRequest struct {
	Bio       string `json:"bio" binding:"omitempty,max=500"`
	Avatar    string `json:"avatar" binding:"omitempty,url"`
	Website   string `json:"website" binding:"omitempty,url"`
	Twitter   string `json:"twitter"`
	Facebook  string `json:"facebook"`
	LinkedIn  string `json:"linkedin"`
	Instagram string `json:"instagram"`
}
