package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/services"
	"github.com/yigit/achievement-portal/internal/middleware"
	"github.com/yigit/achievement-portal/internal/pkg/helpers"
)

// AchievementController handles achievement submission and review
type AchievementController struct {
	achievements services.AchievementService
	review       services.ReviewService
	ledger       services.LedgerService
	logger       zerolog.Logger
}

// NewAchievementController creates a new AchievementController
func NewAchievementController(
	achievements services.AchievementService,
	review services.ReviewService,
	ledger services.LedgerService,
	logger zerolog.Logger,
) *AchievementController {
	return &AchievementController{
		achievements: achievements,
		review:       review,
		ledger:       ledger,
		logger:       logger,
	}
}

// Submit creates a pending achievement from a multipart form
func (c *AchievementController) Submit(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}

	var req dto.SubmitAchievementRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	a, err := c.achievements.Submit(ctx.Request.Context(), actor, &req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("accountID", actor.ID).Msg("Achievement submission failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, a)
}

// ListMine lists the caller's achievements
func (c *AchievementController) ListMine(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}

	list, err := c.achievements.ListMine(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.AchievementListResponse{Achievements: list, Count: len(list)})
}

// Get returns one achievement visible to the caller
func (c *AchievementController) Get(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	id, valid := pathID(ctx, "id")
	if !valid {
		return
	}

	a, err := c.achievements.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, a)
}

// Delete removes an achievement owned by the caller, or any achievement for an admin
func (c *AchievementController) Delete(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	id, valid := pathID(ctx, "id")
	if !valid {
		return
	}

	if err := c.achievements.Delete(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"id": id, "deleted": true})
}

// AdminList lists achievements for review
func (c *AchievementController) AdminList(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}

	filter := models.AchievementFilter{
		Status:   models.AchievementStatus(strings.ToLower(ctx.Query("status"))),
		Category: ctx.Query("category"),
	}
	list, page, err := c.achievements.List(ctx.Request.Context(), actor, filter, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.AchievementListResponse{Achievements: list, Count: len(list), Pagination: &page})
}

// Verify approves or rejects an achievement
func (c *AchievementController) Verify(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	id, valid := pathID(ctx, "id")
	if !valid {
		return
	}

	var req dto.VerifyAchievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	var (
		a   *models.Achievement
		err error
	)
	switch req.Action {
	case dto.DecisionApprove:
		a, err = c.review.Approve(ctx.Request.Context(), actor, id, req.Points, req.AdminNote)
	default:
		a, err = c.review.Reject(ctx.Request.Context(), actor, id, req.AdminNote)
	}
	if err != nil {
		c.logger.Warn().Err(err).Int64("achievementID", id).Str("action", string(req.Action)).Msg("Review failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, a)
}

// ToggleHighlight flips the highlighted flag
func (c *AchievementController) ToggleHighlight(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	id, valid := pathID(ctx, "id")
	if !valid {
		return
	}

	a, err := c.review.ToggleHighlight(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, a)
}

// AdjustPoints applies a manual correction to a student's total
func (c *AchievementController) AdjustPoints(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	id, valid := pathID(ctx, "id")
	if !valid {
		return
	}

	var req dto.AdjustPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	total, err := c.ledger.ManualAdjust(ctx.Request.Context(), actor, id, req.Delta, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.PointsResponse{StudentID: id, TotalPoints: total})
}
