package auth

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

type Handler struct{ service Service }

func NewHandler(s Service) *Handler { return &Handler{s} }

// TokenFromRequest reads the bearer token from the Authorization header, or
// from ?access_token= for EventSource clients that cannot set headers.
func TokenFromRequest(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(c.Query("access_token"))
}

// ===============================
// Sign up / sign in
// ===============================

// SignUp handles POST /auth/signup
// @Summary Register an NGO or temple account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body SignUpInput true "Account"
// @Success 201 {object} Principal
// @Failure 403 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/auth/signup [post]
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	p, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Login handles POST /auth/login
// @Summary Sign in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body SignInInput true "Credentials"
// @Success 200 {object} Session
// @Failure 401 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req SignInInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	sess, err := h.service.SignInWithPassword(c.Request.Context(), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"your_refresh_token_here"`
}

func (h *Handler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// ===============================
// Password reset
// ===============================

type forgotPasswordReq struct {
	Email string `json:"email" binding:"required,email" example:"seva@example.org"`
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("please provide a valid email address"))
		return
	}
	if err := h.service.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "If an account exists with this email, a password reset link has been sent",
	})
}

type resetPasswordReq struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

// ===============================
// Session
// ===============================

func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.SignOut(c.Request.Context(), TokenFromRequest(c)); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Session handles GET /auth/session
// @Summary Current session, principal and landing route
// @Tags Auth
// @Produce json
// @Success 200 {object} Session
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/v1/auth/session [get]
func (h *Handler) Session(c *gin.Context) {
	sess, err := h.service.GetSession(c.Request.Context(), TokenFromRequest(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// SessionStream pushes the caller's session events as server-sent events
// until the client goes away or the session is signed out.
func (h *Handler) SessionStream(c *gin.Context) {
	p, ok := PrincipalFrom(c.Request.Context())
	if !ok {
		apperr.Respond(c, apperr.ErrUnauthenticated)
		return
	}
	ctx := c.Request.Context()
	events, cancel, err := h.service.Watch(ctx, p.ID)
	if err != nil {
		apperr.Respond(c, apperr.Wrap(apperr.KindTransient, err, "session events unavailable"))
		return
	}
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"user_id": p.ID})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("session", ev)
			return ev.Type != EventSignedOut
		}
	})
}

// ===============================
// Profile links (admin)
// ===============================

func (h *Handler) LinkProfile(c *gin.Context) {
	var req LinkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("invalid input: %v", err))
		return
	}
	p, err := h.service.LinkProfile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
