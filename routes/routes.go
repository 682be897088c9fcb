package routes

import (
	"scipost-api/controllers"
	"scipost-api/middleware"
	"scipost-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "SciPost API is running",
				})
			})

			// DOI dispatch is the public resolution surface
			public.GET("/doi/*label", controllers.ResolveDOI)
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Account
			protected.POST("/refresh", controllers.RefreshToken)
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Notifications
			protected.GET("/notifications", controllers.ListNotifications)
			protected.PUT("/notifications/:id/read", controllers.MarkNotificationRead)

			// Markup preview
			protected.POST("/markup/preview", controllers.PreviewMarkup)

			// Journal catalog (reads for everyone, writes for EdAdmin)
			journals := protected.Group("/journals")
			{
				journals.GET("", controllers.ListJournals)
				journals.GET("/:id", controllers.GetJournal)
				journals.GET("/:id/issues", controllers.GetJournalIssues)
				journals.GET("/:id/publications", controllers.GetJournalPublications)
				journals.GET("/:id/cost", controllers.GetJournalCost)

				journals.POST("", middleware.RequireRole(models.RoleEdAdmin), controllers.CreateJournal)
				journals.PUT("/:id", middleware.RequireRole(models.RoleEdAdmin), controllers.UpdateJournal)
				journals.POST("/:id/volumes", middleware.RequireRole(models.RoleEdAdmin), controllers.CreateVolume)
				journals.POST("/:id/issues", middleware.RequireRole(models.RoleEdAdmin), controllers.CreateIssue)
			}

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.ListSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.POST("", controllers.CreateSubmission)
				submissions.POST("/:id/withdraw", controllers.WithdrawSubmission)

				// Screening and assignment (EdAdmin)
				edadmin := middleware.RequireRole(models.RoleEdAdmin)
				submissions.POST("/:id/admission", edadmin, controllers.ConcludeAdmission)
				submissions.POST("/:id/preassignment/start", edadmin, controllers.StartPreassignment)
				submissions.POST("/:id/preassignment", edadmin, controllers.ConcludePreassignment)
				submissions.POST("/:id/invite-fellow", edadmin, controllers.InviteFellow)
				submissions.POST("/:id/fail-assignment", edadmin, controllers.FailAssignment)
				submissions.POST("/:id/reassign-editor", edadmin, controllers.ReassignEditor)
				submissions.POST("/:id/change-journal", edadmin, controllers.ChangeTargetJournal)
				submissions.POST("/:id/restart-refereeing", edadmin, controllers.RestartRefereeing)

				// Editor-in-charge actions (Fellow)
				fellow := middleware.RequireRole(models.RoleFellow, models.RoleEdAdmin)
				submissions.POST("/:id/cycle", fellow, controllers.SetRefereeingCycle)
				submissions.POST("/:id/extend-deadline", fellow, controllers.ExtendReportingDeadline)
				submissions.POST("/:id/recommendation", fellow, controllers.FormulateRecommendation)
				submissions.POST("/:id/conditional-offers", fellow, controllers.OfferConditionalAssignment)
				submissions.POST("/:id/invitations", fellow, controllers.InviteReferee)

				// Voting and decision (EdAdmin)
				submissions.POST("/:id/voting", edadmin, controllers.OpenVoting)
				submissions.POST("/:id/decision", edadmin, controllers.FixDecision)
				submissions.POST("/:id/publication", edadmin, controllers.CreatePublication)

				// Refereeing (any authenticated user may report)
				submissions.POST("/:id/reports", controllers.SubmitReport)
			}

			// Submission threads
			threads := protected.Group("/threads")
			{
				threads.GET("/:hash", controllers.GetThread)
				threads.GET("/:hash/latest", controllers.GetThreadLatest)
			}

			// Editorial assignments (Fellow)
			assignments := protected.Group("/assignments")
			assignments.Use(middleware.RequireRole(models.RoleFellow, models.RoleEdAdmin))
			{
				assignments.POST("/:id/accept", controllers.AcceptAssignment)
				assignments.POST("/:id/decline", controllers.DeclineAssignment)
			}

			// Conditional assignment offers (authors answer them)
			protected.POST("/conditional-offers/:id/accept", controllers.AcceptConditionalOffer)

			// Referee invitations
			invitations := protected.Group("/invitations")
			{
				invitations.POST("/:id/response", controllers.RespondToInvitation)

				fellow := middleware.RequireRole(models.RoleFellow, models.RoleEdAdmin)
				invitations.POST("/:id/cancel", fellow, controllers.CancelInvitation)
				invitations.POST("/:id/remind", fellow, controllers.RemindReferee)
			}

			// Report vetting (Fellow/EdAdmin)
			protected.POST("/reports/:id/vetting",
				middleware.RequireRole(models.RoleFellow, models.RoleEdAdmin), controllers.VetReport)

			// Recommendations under voting (Fellow)
			protected.POST("/recommendations/:id/vote",
				middleware.RequireRole(models.RoleFellow, models.RoleEdAdmin), controllers.CastVote)

			// DOI deposits (EdAdmin)
			protected.POST("/publications/:id/deposits",
				middleware.RequireRole(models.RoleEdAdmin), controllers.DepositPublication)
		}
	}
}
