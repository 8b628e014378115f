// Account HTTP handlers.
//
// This file exposes REST endpoints for user accounts and login sessions:
//   - POST   /users         (register; logs the new account in)
//   - POST   /users/login   (issue session cookie)
//   - POST   /users/logout  (clear session)
//   - GET    /users/me      (profile + edit token)
//   - POST   /users/me      (update profile, token + password gated)
//   - DELETE /users/me      (delete account and its data)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Session state lives server-side;
// the browser only carries an opaque cookie token.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/http/middleware"
	"github.com/listoflists/go-survey-backend/internal/repo"
	"github.com/listoflists/go-survey-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// AccountService defines account lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AccountService interface {
	// Register creates an account after checking password confirmation and
	// name availability, returning the stored user.
	Register(ctx context.Context, username, password1, password2, email string) (*domain.User, error)
	// Login verifies credentials and returns the account.
	Login(ctx context.Context, username, password string) (*domain.User, error)
	// Update applies a token- and password-gated profile edit.
	Update(ctx context.Context, acting string, in services.UpdateInput) (*domain.User, error)
	// Delete removes the account and everything that hangs off it.
	Delete(ctx context.Context, acting string) error
	// Get resolves a username to its account.
	Get(ctx context.Context, username string) (*domain.User, error)
}

// SessionService defines server-side login session management.
type SessionService interface {
	// Create issues a fresh opaque token bound to username.
	Create(ctx context.Context, username string) (string, error)
	// Clear discards the session behind token, if any.
	Clear(ctx context.Context, token string) error
}

// SurveyService defines survey browsing, search, creation, and response
// submission.
type SurveyService interface {
	List(ctx context.Context, viewerID uint, page, pageSize int) (*services.SurveyList, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Survey, error)
	Get(ctx context.Context, surveyID, viewerID uint, compare uint) (*services.SurveyView, error)
	Create(ctx context.Context, ownerID uint, name, description, longDescription string) (*domain.Survey, error)
	Submit(ctx context.Context, surveyID, userID uint, privacy string, answers map[uint]int) (*domain.Response, error)
	DeleteResponse(ctx context.Context, responseID, userID uint) error
}

// OrderingService defines question and heading placement operations.
type OrderingService interface {
	AddQuestion(ctx context.Context, in services.AddQuestionInput) (*domain.Question, error)
	AddHeading(ctx context.Context, surveyID uint, text string) (*domain.Heading, error)
	Renumber(ctx context.Context, surveyID, actingUserID uint) error
	Move(ctx context.Context, questionID uint, action string, actingUserID uint) error
}

// VisibilityService resolves single responses through the privacy rules.
type VisibilityService interface {
	VisibleResponse(ctx context.Context, responseID, viewerID uint) (*services.ResponseView, error)
}

// FriendService defines the mutual-confirmation friendship operations.
type FriendService interface {
	RequestOrConfirm(ctx context.Context, acting, theirName string) error
	Remove(ctx context.Context, acting, theirName string) error
	List(ctx context.Context, acting string) (*services.FriendsView, error)
}

// StatsProvider reports global table counts.
type StatsProvider func(ctx context.Context) (*repo.Stats, error)

//
// Handler wiring
//

// CookieOptions carries the session cookie settings handlers need when
// issuing or clearing the login cookie.
type CookieOptions struct {
	Name   string
	MaxAge int // seconds; also used as negative to clear
	Secure bool
}

// Handlers groups HTTP endpoints for accounts, surveys, questions, responses,
// friends, and stats. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	accountSvc AccountService
	sessionSvc SessionService
	surveySvc  SurveyService
	orderSvc   OrderingService
	visSvc     VisibilityService
	friendSvc  FriendService
	stats      StatsProvider
	cookie     CookieOptions
}

// New constructs and returns a Handlers instance bound to the given services.
func New(
	accountSvc AccountService,
	sessionSvc SessionService,
	surveySvc SurveyService,
	orderSvc OrderingService,
	visSvc VisibilityService,
	friendSvc FriendService,
	stats StatsProvider,
	cookie CookieOptions,
) *Handlers {
	return &Handlers{
		accountSvc: accountSvc,
		sessionSvc: sessionSvc,
		surveySvc:  surveySvc,
		orderSvc:   orderSvc,
		visSvc:     visSvc,
		friendSvc:  friendSvc,
		stats:      stats,
		cookie:     cookie,
	}
}

// currentUser returns the authenticated account, or nil for anonymous
// requests. Authentication itself happens in middleware.SessionAuth.
func currentUser(c *gin.Context) *domain.User {
	return middleware.UserFrom(c)
}

// viewerID returns the authenticated account's id, or 0 for anonymous
// requests. Services treat 0 as "no viewer".
func viewerID(c *gin.Context) uint {
	if u := currentUser(c); u != nil {
		return u.ID
	}
	return 0
}

// setSessionCookie issues the login cookie for token on the response.
func (h *Handlers) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
}

// clearSessionCookie expires the login cookie on the response.
func (h *Handlers) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=1,max=64" example:"alice"`
	Password  string `json:"password" binding:"required" example:"hunter2"`
	Password2 string `json:"password2" binding:"required" example:"hunter2"`
	Email     string `json:"email" example:"alice@example.com"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"hunter2"`
}

// UpdateUserRequest is the JSON payload for profile edits. Every edit must
// carry the current password and the profile token from GET /users/me.
type UpdateUserRequest struct {
	OldPassword  string `json:"old_password" binding:"required"`
	Token        string `json:"token" binding:"required"`
	NewUsername  string `json:"new_username"`
	NewPassword  string `json:"new_password"`
	NewPassword2 string `json:"new_password2"`
	NewEmail     string `json:"new_email"`
}

// ProfileResponse is the authenticated account as returned by GET /users/me.
// Token is the csrf-style value profile edits must echo back; it rotates
// whenever the password changes.
type ProfileResponse struct {
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	Token    string  `json:"token"`
}

//
// Handlers
//

// Register godoc
// @ID          createUser
// @Summary     Create an account
// @Description Registers a new user and logs them in by issuing a session cookie.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object}  handlers.ProfileResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request / password mismatch"
// @Failure     409  {object}  handlers.ErrorResponse  "Username taken"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()
	u, err := h.accountSvc.Register(ctx, strings.TrimSpace(req.Username), req.Password, req.Password2, strings.TrimSpace(req.Email))
	if err != nil {
		failErr(c, err)
		return
	}

	token, err := h.sessionSvc.Create(ctx, u.Username)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	h.setSessionCookie(c, token)

	ok(c, http.StatusCreated, ProfileResponse{
		Username: u.Username,
		Email:    u.Email,
		Token:    services.ProfileToken(u),
	})
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials and issues a session cookie. Unknown users and wrong passwords are indistinguishable.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.ProfileResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Router      /users/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()
	u, err := h.accountSvc.Login(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		middleware.LoginsTotal.WithLabelValues("failed").Inc()
		failErr(c, err)
		return
	}
	middleware.LoginsTotal.WithLabelValues("ok").Inc()

	token, err := h.sessionSvc.Create(ctx, u.Username)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	h.setSessionCookie(c, token)

	ok(c, http.StatusOK, ProfileResponse{
		Username: u.Username,
		Email:    u.Email,
		Token:    services.ProfileToken(u),
	})
}

// Logout godoc
// @ID          logout
// @Summary     Log out
// @Description Discards the current session and clears the cookie. Always succeeds.
// @Tags        Users
// @Produce     json
//
// @Success     204  {string}  string  "No Content"
// @Router      /users/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil && token != "" {
		// Best effort; an already-gone session is still a successful logout.
		_ = h.sessionSvc.Clear(c.Request.Context(), token)
	}
	h.clearSessionCookie(c)
	noContent(c)
}

// Me godoc
// @ID          getProfile
// @Summary     Current profile
// @Description Returns the authenticated account and the token profile edits must carry.
// @Tags        Users
// @Produce     json
//
// @Success     200  {object}  handlers.ProfileResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Router      /users/me [get]
func (h *Handlers) Me(c *gin.Context) {
	u := currentUser(c)
	ok(c, http.StatusOK, ProfileResponse{
		Username: u.Username,
		Email:    u.Email,
		Token:    services.ProfileToken(u),
	})
}

// UpdateMe godoc
// @ID          updateUser
// @Summary     Update profile
// @Description Changes username, password, or email. Requires the current password and the profile token.
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.UpdateUserRequest  true  "Profile edit payload"
//
// @Success     200  {object}  handlers.ProfileResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request / password mismatch"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     403  {object}  handlers.ErrorResponse  "Token mismatch / wrong password"
// @Failure     409  {object}  handlers.ErrorResponse  "Username taken"
// @Router      /users/me [post]
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()
	u, err := h.accountSvc.Update(ctx, currentUser(c).Username, services.UpdateInput{
		OldPassword:  req.OldPassword,
		Token:        req.Token,
		NewUsername:  strings.TrimSpace(req.NewUsername),
		NewPassword1: req.NewPassword,
		NewPassword2: req.NewPassword2,
		NewEmail:     strings.TrimSpace(req.NewEmail),
	})
	if err != nil {
		failErr(c, err)
		return
	}

	// A rename or password change drops existing sessions; re-issue one so
	// the caller stays logged in.
	token, err := h.sessionSvc.Create(ctx, u.Username)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	h.setSessionCookie(c, token)

	ok(c, http.StatusOK, ProfileResponse{
		Username: u.Username,
		Email:    u.Email,
		Token:    services.ProfileToken(u),
	})
}

// DeleteMe godoc
// @ID          deleteUser
// @Summary     Delete account
// @Description Removes the account, its friendships, sessions, responses, and answers. Surveys the account created remain.
// @Tags        Users
// @Produce     json
//
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/me [delete]
func (h *Handlers) DeleteMe(c *gin.Context) {
	if err := h.accountSvc.Delete(c.Request.Context(), currentUser(c).Username); err != nil {
		failErr(c, err)
		return
	}
	h.clearSessionCookie(c)
	noContent(c)
}
