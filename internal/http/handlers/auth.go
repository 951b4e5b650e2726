package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/http/middleware"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/http/validation"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/modules/users"
	"github.com/CelionLigalamu/Nyumba-Hunt/internal/shared/apperr"
)

type AuthHandler struct {
	Users     *users.Service
	JWTSecret string
}

func NewAuthHandler(svc *users.Service, jwtSecret string) *AuthHandler {
	return &AuthHandler{Users: svc, JWTSecret: jwtSecret}
}

type registerInput struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Phone    string `json:"phone" binding:"omitempty,min=9,max=20"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=user landlord"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Check the highlighted fields.", fields))
		return
	}

	u, err := h.Users.Register(c.Request.Context(), users.RegisterInput{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: in.Password,
		Role:     in.Role,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			middleware.Fail(c, apperr.ConflictErr("That email is already registered."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	token, err := middleware.CreateToken(h.JWTSecret, u.ID, u.Role)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userResponse(u),
	})
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Check the highlighted fields.", fields))
		return
	}

	u, err := h.Users.Authenticate(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			middleware.Fail(c, apperr.UnauthorizedErr("Invalid email or password."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	token, err := middleware.CreateToken(h.JWTSecret, u.ID, u.Role)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse(u),
	})
}

func userResponse(u users.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"phone": u.Phone,
		"role":  u.Role,
	}
}
