package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/jwt"
	"github.com/Nithin3003/cloud-share-it/internal/interface/api/rest/dto/auth"
	"github.com/Nithin3003/cloud-share-it/internal/interface/api/rest/dto/user"
	"github.com/Nithin3003/cloud-share-it/internal/interface/api/rest/middleware"
	"github.com/Nithin3003/cloud-share-it/internal/interface/api/rest/validator"
)

type AuthController struct {
	logger      *zap.Logger
	authService ports.Auth
}

func NewAuthController(
	r *gin.Engine,
	logger *zap.Logger,
	authService ports.Auth,
	jwtService *jwt.Service,
	sessions ports.SessionStore,
) *AuthController {
	ac := &AuthController{
		logger:      logger,
		authService: authService,
	}

	authMw := middleware.AuthMiddleware(jwtService, sessions, logger)

	r.POST(RouteRegister, ac.RegisterHandler)
	r.POST(RouteLogin, ac.LoginHandler)
	r.POST(RouteLogout, authMw, ac.LogoutHandler)
	r.GET(RouteMe, authMw, ac.MeHandler)

	return ac
}

func (ac *AuthController) RegisterHandler(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}

	if errs := validator.ValidateRegister(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	s, err := ac.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, ac.logger, "Register()", err)
		return
	}

	c.JSON(http.StatusCreated, auth.ToTokenResponse(s))
}

func (ac *AuthController) LoginHandler(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}

	if errs := validator.ValidateLogin(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	s, err := ac.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, ac.logger, "Login()", err)
		return
	}

	c.JSON(http.StatusOK, auth.ToTokenResponse(s))
}

func (ac *AuthController) LogoutHandler(c *gin.Context) {
	tokenID, exp := middleware.TokenID(c)
	ac.authService.Logout(c.Request.Context(), tokenID, exp)

	c.Status(http.StatusNoContent)
}

func (ac *AuthController) MeHandler(c *gin.Context) {
	u, err := ac.authService.Principal(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, ac.logger, "Principal()", err)
		return
	}

	c.JSON(http.StatusOK, user.ToResponseUser(*u))
}
