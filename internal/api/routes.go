package api

import (
	"net/http"

	"go-fbauto-automation/internal/auth"
	"go-fbauto-automation/internal/webhook"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every HTTP surface: public health + webhook
// endpoints and the bearer-guarded admin routes.
func NewRouter(s *Server, wh *webhook.Handler) *gin.Engine {
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "FB automation API is running!",
			"status":  "healthy",
		})
	})

	r.GET("/webhook/messenger", wh.Verify)
	r.POST("/webhook/messenger", wh.Receive)

	r.POST("/api/token/generate", s.GenerateToken)

	admin := r.Group("/api", auth.Middleware(s.tokens, s.repo))
	{
		admin.GET("/token/validate", s.ValidateToken)

		admin.POST("/jobs", s.CreateJob)
		admin.GET("/jobs/:id", s.GetJob)
		admin.PATCH("/posts/:id/status", s.UpdatePostStatus)
		admin.GET("/candidates", s.ListCandidates)

		admin.GET("/scheduler/status", s.SchedulerStatus)
		admin.POST("/scheduler/enable", s.EnableScheduler)
		admin.POST("/scheduler/disable", s.DisableScheduler)
		admin.POST("/scheduler/run", s.RunSchedulerNow)

		admin.GET("/automation/mode", s.AutomationMode)
		admin.POST("/automation/manual-2fa", s.SetManual2FA)
	}

	return r
}
