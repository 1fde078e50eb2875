// Admin HTTP handlers: job intake, scheduler control, token issuing and
// the manual-2FA toggle.

package api

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"go-fbauto-automation/internal/auth"
	"go-fbauto-automation/internal/automation"
	"go-fbauto-automation/internal/config"
	"go-fbauto-automation/internal/models"
	"go-fbauto-automation/internal/scheduler"

	"github.com/gin-gonic/gin"
)

// Repo is the slice of the database layer the API needs.
type Repo interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	CreateJob(ctx context.Context, job *models.Job, groupURLs []string) (*models.Job, error)
	GetJobByID(ctx context.Context, jobID string) (*models.Job, error)
	JobPosts(ctx context.Context, jobID string) ([]models.JobPost, error)
	UpdatePostStatus(ctx context.Context, postID string, status models.PostStatus, postURL, errorMessage *string) error
	ListCandidates(ctx context.Context, limit int) ([]models.Candidate, error)
}

// Sched is the scheduler surface exposed over HTTP.
type Sched interface {
	Status() scheduler.Status
	Enable()
	Disable()
	RunNow(ctx context.Context) (scheduler.Stats, error)
}

type Server struct {
	cfg    *config.Config
	repo   Repo
	sched  Sched
	mode   *automation.Mode
	tokens *auth.Manager
}

func NewServer(cfg *config.Config, repo Repo, sched Sched, mode *automation.Mode, tokens *auth.Manager) *Server {
	return &Server{cfg: cfg, repo: repo, sched: sched, mode: mode, tokens: tokens}
}

type generateTokenRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Purpose string `json:"purpose"`
}

func (s *Server) GenerateToken(c *gin.Context) {
	var req generateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	if req.Purpose == "" {
		req.Purpose = auth.PurposeAutomation
	}

	user, err := s.repo.GetUserByID(c.Request.Context(), req.UserID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	token, err := s.tokens.Generate(user, req.Purpose)
	if err != nil {
		log.Printf("❌ Failed to generate token for %s: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(s.tokens.TTL().Seconds()),
	})
}

func (s *Server) ValidateToken(c *gin.Context) {
	// middleware already validated; just echo the claims back
	raw, _ := c.Get(auth.ContextClaimsKey)
	claims, ok := raw.(*auth.Claims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":   true,
		"user_id": claims.UserID,
		"email":   claims.Email,
		"purpose": claims.Purpose,
	})
}

type createJobRequest struct {
	Title       string   `json:"title" binding:"required"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Salary      string   `json:"salary"`
	GroupURLs   []string `json:"group_urls"`
}

// CreateJob stores a job and fans out one PENDING post per target
// group. Groups default to the configured list when omitted.
func (s *Server) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	groups := req.GroupURLs
	if len(groups) == 0 {
		groups = s.cfg.FacebookGroups
	}
	if len(groups) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no target groups configured"})
		return
	}

	job := &models.Job{
		Title:       req.Title,
		Company:     req.Company,
		Description: req.Description,
		Location:    req.Location,
		Salary:      req.Salary,
	}
	if raw, ok := c.Get(auth.ContextClaimsKey); ok {
		if claims, ok := raw.(*auth.Claims); ok {
			job.CreatedBy = claims.UserID
		}
	}

	created, err := s.repo.CreateJob(c.Request.Context(), job, groups)
	if err != nil {
		log.Printf("❌ Failed to create job: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	log.Printf("📋 Job %s created with %d target groups", created.ID, len(groups))
	c.JSON(http.StatusCreated, gin.H{"job": created, "group_count": len(groups)})
}

// GetJob returns one job together with its per-group posting state.
func (s *Server) GetJob(c *gin.Context) {
	jobID := c.Param("id")
	job, err := s.repo.GetJobByID(c.Request.Context(), jobID)
	if err != nil || job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	posts, err := s.repo.JobPosts(c.Request.Context(), jobID)
	if err != nil {
		log.Printf("❌ Failed to list posts for job %s: %v", jobID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list job posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job, "posts": posts})
}

type updatePostStatusRequest struct {
	Status       models.PostStatus `json:"status" binding:"required"`
	PostURL      *string           `json:"post_url"`
	ErrorMessage *string           `json:"error_message"`
}

// UpdatePostStatus lets an operator correct a post's outcome, e.g. mark
// a FAILED row PENDING again for the next pass.
func (s *Server) UpdatePostStatus(c *gin.Context) {
	var req updatePostStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	switch req.Status {
	case models.PostStatusPending, models.PostStatusSuccess, models.PostStatusFailed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	postID := c.Param("id")
	if err := s.repo.UpdatePostStatus(c.Request.Context(), postID, req.Status, req.PostURL, req.ErrorMessage); err != nil {
		log.Printf("❌ Failed to update post %s: %v", postID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update post status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": postID, "status": req.Status})
}

func (s *Server) ListCandidates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	candidates, err := s.repo.ListCandidates(c.Request.Context(), limit)
	if err != nil {
		log.Printf("❌ Failed to list candidates: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list candidates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates, "count": len(candidates)})
}

func (s *Server) SchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.sched.Status())
}

func (s *Server) EnableScheduler(c *gin.Context) {
	s.sched.Enable()
	c.JSON(http.StatusOK, gin.H{"enabled": true})
}

func (s *Server) DisableScheduler(c *gin.Context) {
	s.sched.Disable()
	c.JSON(http.StatusOK, gin.H{"enabled": false})
}

// RunSchedulerNow triggers one run regardless of the enabled flag. A
// run already in flight comes back as 409.
func (s *Server) RunSchedulerNow(c *gin.Context) {
	stats, err := s.sched.RunNow(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (s *Server) AutomationMode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"headless":   s.mode.Headless(),
		"manual_2fa": s.mode.Manual2FA(),
	})
}

type manual2FARequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetManual2FA flips the headed-browser toggle so an operator can
// complete a checkpoint by hand on the next run.
func (s *Server) SetManual2FA(c *gin.Context) {
	var req manual2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled is required"})
		return
	}
	s.mode.SetManual2FA(*req.Enabled)
	log.Printf("🔧 Manual 2FA mode set to %v", *req.Enabled)
	c.JSON(http.StatusOK, gin.H{
		"manual_2fa": s.mode.Manual2FA(),
		"headless":   s.mode.Headless(),
	})
}
