package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/repositories"
	"github.com/yigit/achievement-portal/internal/app/services"
	"github.com/yigit/achievement-portal/internal/middleware"
)

// AuthController handles authentication and the student's own profile
type AuthController struct {
	authService services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Register handles student registration
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("rollNumber", req.RollNumber).Msg("Failed to register student")
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondCreated(ctx, resp)
}

// Login authenticates a student by email or roll number
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("login", req.Login).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondOK(ctx, resp)
}

// AdminLogin authenticates an administrator
func (c *AuthController) AdminLogin(ctx *gin.Context) {
	var req dto.AdminLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.authService.AdminLogin(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", req.Username).Msg("Admin login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondOK(ctx, resp)
}

// Me returns the caller's account
func (c *AuthController) Me(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}

	account, err := c.authService.Me(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, account)
}

// UpdateProfile edits the caller's account fields
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	account, err := c.authService.UpdateProfile(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, account)
}

// UploadProfilePic stores a new profile picture
func (c *AuthController) UploadProfilePic(ctx *gin.Context) {
	c.upload(ctx, repositories.FileProfilePic, "profilePic")
}

// UploadResume stores a new resume
func (c *AuthController) UploadResume(ctx *gin.Context) {
	c.upload(ctx, repositories.FileResume, "resume")
}

// UploadBanner stores a new profile banner
func (c *AuthController) UploadBanner(ctx *gin.Context) {
	c.upload(ctx, repositories.FileBanner, "banner")
}

func (c *AuthController) upload(ctx *gin.Context, field repositories.FileField, formField string) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}

	file, err := ctx.FormFile(formField)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "File is required").WithField(formField)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorAPIResponse(errorDetail))
		return
	}

	account, err := c.authService.UploadFile(ctx.Request.Context(), actor, field, file)
	if err != nil {
		c.logger.Warn().Err(err).Int64("accountID", actor.ID).Str("field", string(field)).Msg("Upload failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, account)
}
