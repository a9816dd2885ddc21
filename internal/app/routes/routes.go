package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/achievement-portal/internal/app/controllers"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/middleware"
)

// Controllers groups every HTTP handler set mounted by SetupRouter
type Controllers struct {
	Auth          *controllers.AuthController
	Achievements  *controllers.AchievementController
	ERP           *controllers.ERPController
	Leaderboard   *controllers.LeaderboardController
	Admin         *controllers.AdminController
	Announcements *controllers.AnnouncementController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	health gin.HandlerFunc,
) {
	v1 := router.Group("/api/v1")

	v1.GET("/health", health)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
	}
	v1.POST("/admin/login", c.Auth.AdminLogin)

	// --- Student routes ---
	student := v1.Group("")
	student.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(models.RoleStudent))
	{
		me := student.Group("/auth/me")
		{
			me.GET("", c.Auth.Me)
			me.PUT("", c.Auth.UpdateProfile)
			me.POST("/profile-pic", c.Auth.UploadProfilePic)
			me.POST("/resume", c.Auth.UploadResume)
			me.POST("/banner", c.Auth.UploadBanner)
		}

		student.GET("/leaderboard", c.Leaderboard.Leaderboard)
		student.GET("/leaderboard/me", c.Leaderboard.MyRank)

		achievements := student.Group("/achievements")
		{
			achievements.POST("", c.Achievements.Submit)
			achievements.GET("/me", c.Achievements.ListMine)
			achievements.GET("/:id", c.Achievements.Get)
			achievements.DELETE("/:id", c.Achievements.Delete)
		}

		student.GET("/activity/recent", c.Admin.RecentActivity)

		erp := student.Group("/erp/me")
		{
			erp.GET("", c.ERP.GetMine)
			erp.PUT("", c.ERP.UpdateMine)
			erp.POST("/submit", c.ERP.SubmitMine)
		}

		student.GET("/announcements/active", c.Announcements.Active)
		student.POST("/announcements/:id/view", c.Announcements.RecordView)
	}

	// --- Admin routes ---
	admin := v1.Group("/admin")
	admin.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(models.RoleAdmin))
	{
		achievements := admin.Group("/achievements")
		{
			achievements.GET("", c.Achievements.AdminList)
			achievements.GET("/:id", c.Achievements.Get)
			achievements.PUT("/:id/verify", c.Achievements.Verify)
			achievements.PUT("/:id/highlight", c.Achievements.ToggleHighlight)
			achievements.DELETE("/:id", c.Achievements.Delete)
		}

		students := admin.Group("/students")
		{
			students.GET("", c.Admin.Students)
			students.GET("/:id", c.Admin.Student)
			students.PUT("/:id/points", c.Achievements.AdjustPoints)
		}

		admin.GET("/analytics", c.Admin.Analytics)
		admin.GET("/dashboard-stats", c.Admin.Dashboard)
		admin.GET("/leaderboard", c.Leaderboard.Leaderboard)
		admin.GET("/leaderboard/export", c.Leaderboard.Export)
		admin.POST("/analyze-certificate", c.Admin.AnalyzeCertificate)

		erp := admin.Group("/erp")
		{
			erp.GET("", c.ERP.AdminList)
			erp.GET("/students/:id", c.ERP.GetByStudent)
			erp.PUT("/:id/verify", c.ERP.Verify)
			erp.PUT("/:id/points", c.ERP.SetPoints)
		}

		announcements := admin.Group("/announcements")
		{
			announcements.POST("", c.Announcements.Create)
			announcements.GET("", c.Announcements.List)
			announcements.GET("/stats", c.Announcements.Stats)
			announcements.PUT("/:id", c.Announcements.Update)
			announcements.DELETE("/:id", c.Announcements.Delete)
		}
	}
}
