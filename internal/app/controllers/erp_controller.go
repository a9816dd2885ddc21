package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/services"
	"github.com/yigit/achievement-portal/internal/app/workflow"
	"github.com/yigit/achievement-portal/internal/middleware"
	"github.com/yigit/achievement-portal/internal/pkg/helpers"
)

// ERPController handles ERP profile editing and verification
type ERPController struct {
	erp    services.ERPService
	logger zerolog.Logger
}

// NewERPController creates a new ERPController
func NewERPController(erp services.ERPService, logger zerolog.Logger) *ERPController {
	return &ERPController{erp: erp, logger: logger}
}

// GetMine returns the caller's ERP record
func (c *ERPController) GetMine(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}

	rec, err := c.erp.GetMine(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, rec)
}

// UpdateMine merges the allowed profile fields into the caller's record
func (c *ERPController) UpdateMine(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}

	var patch workflow.ERPPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	rec, err := c.erp.UpdateMine(ctx.Request.Context(), actor, patch)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, rec)
}

// SubmitMine sends the caller's record for verification
func (c *ERPController) SubmitMine(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}

	rec, err := c.erp.SubmitMine(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, rec)
}

// AdminList lists ERP records, optionally by status
func (c *ERPController) AdminList(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}

	status := models.ERPStatus(strings.ToLower(ctx.Query("status")))
	list, page, err := c.erp.List(ctx.Request.Context(), actor, status, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"erps": list, "count": len(list), "pagination": page})
}

// GetByStudent returns one student's ERP record
func (c *ERPController) GetByStudent(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	id, valid := pathID(ctx, "id")
	if !valid {
		return
	}

	rec, err := c.erp.GetByStudent(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, rec)
}

// Verify verifies or rejects a submitted record
func (c *ERPController) Verify(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	id, valid := pathID(ctx, "id")
	if !valid {
		return
	}

	var req dto.VerifyERPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	var (
		decision *services.ERPDecision
		err      error
	)
	if req.Action == dto.DecisionVerify {
		decision, err = c.erp.Verify(ctx.Request.Context(), actor, id, req.Points, req.AdminNote)
	} else {
		decision, err = c.erp.Reject(ctx.Request.Context(), actor, id, req.AdminNote)
	}
	if err != nil {
		c.logger.Warn().Err(err).Int64("erpID", id).Str("action", string(req.Action)).Msg("ERP review failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, decision)
}

// SetPoints replaces the award of a verified record
func (c *ERPController) SetPoints(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	id, valid := pathID(ctx, "id")
	if !valid {
		return
	}

	var req dto.SetERPPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	decision, err := c.erp.SetPoints(ctx.Request.Context(), actor, id, *req.Points)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, decision)
}
