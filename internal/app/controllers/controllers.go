// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/middleware"
)

// currentActor returns the authenticated principal or aborts with 401.
func currentActor(ctx *gin.Context) (auth.Actor, bool) {
	actor, ok := middleware.ActorFrom(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorAPIResponse(errorDetail))
	}
	return actor, ok
}

// pathID parses the :id style parameter name or aborts with 400.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, ok := dto.ParseID(ctx.Param(name))
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid identifier").
			WithField(name).
			WithDetails(name + " must be a positive integer")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorAPIResponse(errorDetail))
	}
	return id, ok
}

func respondOK(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func respondCreated(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}
