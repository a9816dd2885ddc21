package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/services"
	"github.com/yigit/achievement-portal/internal/middleware"
)

// AnnouncementController handles announcements for admins and students
type AnnouncementController struct {
	announcements services.AnnouncementService
	logger        zerolog.Logger
}

// NewAnnouncementController creates a new AnnouncementController
func NewAnnouncementController(announcements services.AnnouncementService, logger zerolog.Logger) *AnnouncementController {
	return &AnnouncementController{announcements: announcements, logger: logger}
}

// Create publishes an announcement
func (c *AnnouncementController) Create(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	var req dto.AnnouncementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	a, err := c.announcements.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("adminID", actor.ID).Msg("Failed to publish announcement")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, a)
}

// Update replaces an announcement
func (c *AnnouncementController) Update(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	id, valid := pathID(ctx, "id")
	if !valid {
		return
	}
	var req dto.AnnouncementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	a, err := c.announcements.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, a)
}

// Delete removes an announcement
func (c *AnnouncementController) Delete(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	id, valid := pathID(ctx, "id")
	if !valid {
		return
	}
	if err := c.announcements.Delete(ctx.Request.Context(), actor, id); err != nil {
		c.logger.Warn().Err(err).Int64("announcementID", id).Msg("Failed to delete announcement")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"id": id, "deleted": true})
}

// List returns announcements for the admin view
func (c *AnnouncementController) List(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	filter := models.AnnouncementFilter{Type: models.AnnouncementType(ctx.Query("type"))}
	if raw := ctx.Query("isActive"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.IsActive = &active
		}
	}
	list, err := c.announcements.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"announcements": list, "count": len(list)})
}

// Stats counts announcements by state and type
func (c *AnnouncementController) Stats(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	stats, err := c.announcements.Stats(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, stats)
}

// Active lists the announcements visible to the calling student
func (c *AnnouncementController) Active(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	list, err := c.announcements.Active(ctx.Request.Context(), actor, models.AnnouncementType(ctx.Query("type")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// RecordView increments the view counter
func (c *AnnouncementController) RecordView(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}
	id, valid := pathID(ctx, "id")
	if !valid {
		return
	}
	views, err := c.announcements.RecordView(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.ViewCountResponse{ID: id, ViewCount: views})
}
