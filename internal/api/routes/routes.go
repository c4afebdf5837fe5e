package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/crisphq/crisp-interview/internal/api/handlers"
	"github.com/crisphq/crisp-interview/internal/api/middleware"
)

type Deps struct {
	Interview *handlers.InterviewHandler
	Candidate *handlers.CandidateHandler
	Auth      *handlers.AuthHandler
	WS        *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/auth/login", d.Auth.Login)

	// Interviewee flow (no auth: the session is the app's single tenant)
	r.GET("/interview", d.Interview.Get)
	r.POST("/interview/resume", d.Interview.UploadResume)
	r.POST("/interview/confirm", d.Interview.Confirm)
	r.PUT("/interview/draft", d.Interview.SaveDraft)
	r.POST("/interview/answer", d.Interview.SubmitAnswer)
	r.POST("/interview/continue", d.Interview.Continue)
	r.POST("/interview/end", d.Interview.End)
	r.POST("/interview/reset", d.Interview.Reset)

	// WebSocket
	r.GET("/ws/interview", d.WS.InterviewWS)

	// Reviewer dashboard (JWT)
	reviewer := r.Group("/")
	reviewer.Use(middleware.JWTAuth(), middleware.RequireRole("reviewer"))

	reviewer.GET("/candidates", d.Candidate.List)
	reviewer.GET("/candidates/:candidate_id", d.Candidate.Get)
}
