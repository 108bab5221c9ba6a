package routes

import (
	"cityfix-be/controllers"
	"cityfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue and follow-up routes. Reporting and reading
// are public (with optional identity); workflow decisions are role-gated at
// the boundary and re-checked by the role policy inside the services.
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController, fc *controllers.FollowUpController, rateLimited bool) {
	issues := r.Group("/api/issues")
	issues.Use(middlewares.OptionalAuth())
	{
		issues.GET("", ic.GetIssues)
		issues.GET("/:id", ic.GetIssue)

		if rateLimited {
			issues.POST("", middlewares.IssueRateLimiter(10), ic.CreateIssue)
		} else {
			issues.POST("", ic.CreateIssue)
		}

		issues.PATCH("/:id", middlewares.AuthMiddleware("admin"), ic.UpdateIssue)
		issues.DELETE("/:id", middlewares.AuthMiddleware("admin"), ic.DeleteIssue)
		issues.POST("/:id/resolve", middlewares.AuthMiddleware("admin"), ic.ResolveIssue)
		issues.POST("/:id/reject", middlewares.AuthMiddleware("admin"), ic.RejectIssue)
		issues.PUT("/:id/deadline", middlewares.AuthMiddleware("admin"), ic.SetDeadline)
		issues.POST("/:id/follow-ups", middlewares.AuthMiddleware("resolver", "admin"), fc.CreateFollowUp)
	}

	followUps := r.Group("/api/follow-ups")
	{
		followUps.PATCH("/:id", middlewares.AuthMiddleware("resolver", "admin"), fc.UpdateFollowUp)
		followUps.DELETE("/:id", middlewares.AuthMiddleware("admin"), fc.DeleteFollowUp)
	}
}
