package controllers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/services"
	"github.com/yigit/achievement-portal/internal/middleware"
	"github.com/yigit/achievement-portal/internal/pkg/export"
)

// ExportLimit caps the rows written to a leaderboard export.
const ExportLimit = 5000

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeaderboardController serves rankings
type LeaderboardController struct {
	ranking services.RankingService
	logger  zerolog.Logger
}

// NewLeaderboardController creates a new LeaderboardController
func NewLeaderboardController(ranking services.RankingService, logger zerolog.Logger) *LeaderboardController {
	return &LeaderboardController{ranking: ranking, logger: logger}
}

func accountFilter(ctx *gin.Context) models.AccountFilter {
	return models.AccountFilter{
		Year:       models.Year(ctx.Query("year")),
		Department: models.Department(ctx.Query("department")),
	}
}

// Leaderboard lists the top accounts, optionally by year and department
func (c *LeaderboardController) Leaderboard(ctx *gin.Context) {
	entries, err := c.ranking.Leaderboard(ctx.Request.Context(), accountFilter(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, entries)
}

// MyRank places the caller within the filtered population
func (c *LeaderboardController) MyRank(ctx *gin.Context) {
	actor, authed := currentActor(ctx)
	if !authed {
		return
	}

	standing, err := c.ranking.RankOf(ctx.Request.Context(), actor, accountFilter(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, standing)
}

// Export streams the filtered leaderboard as an xlsx workbook
func (c *LeaderboardController) Export(ctx *gin.Context) {
	limit := ExportLimit
	if raw := ctx.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < ExportLimit {
			limit = n
		}
	}

	filter := accountFilter(ctx)
	entries, err := c.ranking.LeaderboardN(ctx.Request.Context(), filter, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLeaderboard(&buf, entries); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	name := export.LeaderboardFilename(string(filter.Department), string(filter.Year), time.Now())
	c.logger.Info().Int("rows", len(entries)).Str("file", name).Msg("Leaderboard exported")
	ctx.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
