package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/achievement-portal/internal/app/services"
	"github.com/yigit/achievement-portal/internal/middleware"
	"github.com/yigit/achievement-portal/internal/pkg/helpers"
	"github.com/yigit/achievement-portal/internal/pkg/assessment"
)

// AdminController serves dashboards, student lookups and certificate analysis
type AdminController struct {
	activity   services.ActivityService
	assessment services.AssessmentService
	logger     zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(activity services.ActivityService, assessment services.AssessmentService, logger zerolog.Logger) *AdminController {
	return &AdminController{activity: activity, assessment: assessment, logger: logger}
}

// Dashboard returns headline statistics and recent submissions
func (c *AdminController) Dashboard(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	d, err := c.activity.Dashboard(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, d)
}

// Analytics returns the top students and achievement counts
func (c *AdminController) Analytics(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	a, err := c.activity.Analytics(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, a)
}

// Students lists accounts by year and department
func (c *AdminController) Students(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	list, page, err := c.activity.Students(ctx.Request.Context(), actor, accountFilter(ctx), helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"students": list, "count": len(list), "pagination": page})
}

// Student returns an account with its achievements
func (c *AdminController) Student(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	id, valid := pathID(ctx, "id")
	if !valid {
		return
	}
	detail, err := c.activity.Student(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, detail)
}

// AnalyzeCertificate scores a certificate description for the reviewer
func (c *AdminController) AnalyzeCertificate(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	var in assessment.Input
	if err := ctx.ShouldBindJSON(&in); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	result, err := c.assessment.Analyze(ctx.Request.Context(), actor, in)
	if err != nil {
		c.logger.Warn().Err(err).Int64("adminID", actor.ID).Msg("Certificate analysis failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// RecentActivity returns the caller's activity feed
func (c *AdminController) RecentActivity(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	feed, err := c.activity.Feed(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, feed)
}
