package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"techblog/internal/auth"
	"techblog/internal/config"
	"techblog/internal/db"
	"techblog/internal/middleware"
	"techblog/internal/models"
	"techblog/internal/utils"
)

var googleOauthConfig *oauth2.Config

// googleUserInfoURL is a var so tests can point the callback at a local fake.
var googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// InitGoogleOAuth builds the oauth2 config from the loaded configuration.
// Must run after config.InitConfig.
func InitGoogleOAuth() {
	redirectURL := config.GlobalConfig.Google.RedirectURL
	if redirectURL == "" {
		redirectURL = config.GlobalConfig.Server.SiteURL + "/api/auth/google/callback"
	}
	googleOauthConfig = &oauth2.Config{
		ClientID:     config.GlobalConfig.Google.ClientID,
		ClientSecret: config.GlobalConfig.Google.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// GoogleUserInfo is the profile payload from the userinfo endpoint.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GoogleLogin starts the OAuth flow (GET /api/auth/google). The state nonce
// lives in the cookie session until the callback verifies it.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := generateStateToken()
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not start login")
		return
	}

	session := sessions.Default(c)
	session.Set("oauth_state", state)
	session.Save()

	url := googleOauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback finishes the OAuth flow (GET /api/auth/google/callback):
// verify state, exchange the code, fetch the profile, upsert the account by
// email and issue a JWT.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	savedState := session.Get("oauth_state")
	if savedState == nil || c.Query("state") != savedState.(string) {
		Fail(c, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	session.Delete("oauth_state")
	session.Save()

	code := c.Query("code")
	if code == "" {
		Fail(c, http.StatusBadRequest, "Missing authorization code")
		return
	}

	token, err := googleOauthConfig.Exchange(context.Background(), code)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Token exchange failed")
		return
	}

	userInfo, err := getGoogleUserInfo(token.AccessToken)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not fetch profile")
		return
	}
	if !userInfo.VerifiedEmail {
		Fail(c, http.StatusBadRequest, "Google email is not verified")
		return
	}

	user, err := upsertGoogleUser(userInfo)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not sign in")
		return
	}

	jwtToken, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not issue token")
		return
	}
	c.SetCookie(middleware.TokenCookie, jwtToken, int(config.GlobalConfig.JWT.Expire), "/", "", false, true)
	c.Redirect(http.StatusFound, config.GlobalConfig.Server.SiteURL+"/oauth-success?token="+jwtToken)
}

// upsertGoogleUser finds the account by email or creates one. New accounts
// get the author role and a random placeholder password that can never be
// used for a credential login.
func upsertGoogleUser(info *GoogleUserInfo) (*models.User, error) {
	var user models.User
	err := db.DB.Where("email = ?", info.Email).First(&user).Error
	if err == nil {
		changed := false
		if user.GoogleID == "" {
			user.GoogleID = info.ID
			changed = true
		}
		if info.Picture != "" && user.Avatar != info.Picture {
			user.Avatar = info.Picture
			changed = true
		}
		if changed {
			if err := db.DB.Save(&user).Error; err != nil {
				return nil, err
			}
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	placeholder := make([]byte, 24)
	if _, err := rand.Read(placeholder); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(base64.URLEncoding.EncodeToString(placeholder))
	if err != nil {
		return nil, err
	}

	avatar := info.Picture
	if avatar == "" {
		avatar = models.DefaultAvatar
	}
	user = models.User{
		Name:     info.Name,
		Email:    info.Email,
		Password: hash,
		Role:     models.RoleAuthor,
		GoogleID: info.ID,
		Avatar:   avatar,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func getGoogleUserInfo(accessToken string) (*GoogleUserInfo, error) {
	resp, err := http.Get(googleUserInfoURL + "?access_token=" + accessToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var userInfo GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, err
	}
	return &userInfo, nil
}
