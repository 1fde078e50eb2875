package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-fbauto-automation/internal/auth"
	"go-fbauto-automation/internal/automation"
	"go-fbauto-automation/internal/config"
	"go-fbauto-automation/internal/models"
	"go-fbauto-automation/internal/scheduler"
	"go-fbauto-automation/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	users         map[string]*models.User
	createdJobs   []*models.Job
	lastGroups    []string
	statusUpdates []string
	candidates    []models.Candidate
}

func (f *fakeRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return u, nil
}

func (f *fakeRepo) CreateJob(_ context.Context, job *models.Job, groups []string) (*models.Job, error) {
	job.ID = fmt.Sprintf("job-%d", len(f.createdJobs)+1)
	f.createdJobs = append(f.createdJobs, job)
	f.lastGroups = groups
	return job, nil
}

func (f *fakeRepo) GetJobByID(_ context.Context, id string) (*models.Job, error) {
	for _, j := range f.createdJobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, fmt.Errorf("job %s not found", id)
}

func (f *fakeRepo) JobPosts(_ context.Context, jobID string) ([]models.JobPost, error) {
	var posts []models.JobPost
	for _, g := range f.lastGroups {
		posts = append(posts, models.JobPost{
			ID:               "post-" + g,
			JobID:            jobID,
			FacebookGroupURL: g,
			Status:           models.PostStatusPending,
		})
	}
	return posts, nil
}

func (f *fakeRepo) UpdatePostStatus(_ context.Context, postID string, status models.PostStatus, _, _ *string) error {
	f.statusUpdates = append(f.statusUpdates, postID+":"+string(status))
	return nil
}

func (f *fakeRepo) ListCandidates(_ context.Context, limit int) ([]models.Candidate, error) {
	if len(f.candidates) > limit {
		return f.candidates[:limit], nil
	}
	return f.candidates, nil
}

func (f *fakeRepo) StoreJobContext(_ context.Context, _ *models.JobContext) error {
	return nil
}

type fakeSched struct {
	status   scheduler.Status
	enabled  bool
	runErr   error
	runCalls int
}

func (f *fakeSched) Status() scheduler.Status { return f.status }
func (f *fakeSched) Enable()                  { f.enabled = true }
func (f *fakeSched) Disable()                 { f.enabled = false }
func (f *fakeSched) RunNow(context.Context) (scheduler.Stats, error) {
	f.runCalls++
	if f.runErr != nil {
		return scheduler.Stats{}, f.runErr
	}
	return scheduler.Stats{Total: 2, Successful: 2}, nil
}

type fixture struct {
	router *gin.Engine
	repo   *fakeRepo
	sched  *fakeSched
	mode   *automation.Mode
	tokens *auth.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		FacebookGroups: []string{"https://www.facebook.com/groups/default"},
		JWTSecret:      "test-secret",
	}
	repo := &fakeRepo{users: map[string]*models.User{
		"u-1": {ID: "u-1", Email: "ops@example.com"},
	}}
	sched := &fakeSched{enabled: true, status: scheduler.Status{Scheduled: true, Enabled: true}}
	mode := automation.NewMode(true, false)
	tokens := auth.NewManager(cfg.JWTSecret, time.Hour)

	server := NewServer(cfg, repo, sched, mode, tokens)
	wh := webhook.NewHandler("verify", "", repo)

	return &fixture{
		router: NewRouter(server, wh),
		repo:   repo,
		sched:  sched,
		mode:   mode,
		tokens: tokens,
	}
}

func (f *fixture) bearer(t *testing.T) string {
	t.Helper()
	token, err := f.tokens.Generate(&models.User{ID: "u-1", Email: "ops@example.com"}, auth.PurposeAutomation)
	require.NoError(t, err)
	return "Bearer " + token
}

func (f *fixture) do(method, path, body, authHeader string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestGenerateTokenForKnownUser(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/token/generate", `{"user_id": "u-1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "token")
}

func TestGenerateTokenUnknownUser(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/token/generate", `{"user_id": "nobody"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/scheduler/status", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateTokenEchoesClaims(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/token/validate", "", f.bearer(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"u-1"`)
}

func TestCreateJobUsesConfiguredGroupsByDefault(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/jobs",
		`{"title": "Line cook", "company": "Diner"}`, f.bearer(t))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.repo.createdJobs, 1)
	assert.Equal(t, "u-1", f.repo.createdJobs[0].CreatedBy)
	assert.Equal(t, []string{"https://www.facebook.com/groups/default"}, f.repo.lastGroups)
}

func TestCreateJobWithExplicitGroups(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/jobs",
		`{"title": "Barista", "group_urls": ["https://www.facebook.com/groups/custom"]}`, f.bearer(t))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"https://www.facebook.com/groups/custom"}, f.repo.lastGroups)
}

func TestCreateJobRequiresTitle(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/jobs", `{"company": "Diner"}`, f.bearer(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJobWithPosts(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/jobs", `{"title": "Line cook"}`, f.bearer(t))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodGet, "/api/jobs/job-1", "", f.bearer(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Line cook")
	assert.Contains(t, rec.Body.String(), string(models.PostStatusPending))
}

func TestGetJobNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/jobs/missing", "", f.bearer(t))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePostStatus(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPatch, "/api/posts/post-7/status",
		`{"status": "PENDING"}`, f.bearer(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"post-7:PENDING"}, f.repo.statusUpdates)
}

func TestUpdatePostStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPatch, "/api/posts/post-7/status",
		`{"status": "BOGUS"}`, f.bearer(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.repo.statusUpdates)
}

func TestListCandidates(t *testing.T) {
	f := newFixture(t)
	f.repo.candidates = []models.Candidate{
		{SenderID: "comment:An Nguyen", Name: "An Nguyen", CommentText: "quan tâm"},
	}
	rec := f.do(http.MethodGet, "/api/candidates", "", f.bearer(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "An Nguyen")
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestSchedulerEnableDisable(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/scheduler/disable", "", f.bearer(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, f.sched.enabled)

	rec = f.do(http.MethodPost, "/api/scheduler/enable", "", f.bearer(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.sched.enabled)
}

func TestRunNowReturnsStats(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/scheduler/run", "", f.bearer(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.sched.runCalls)
	assert.Contains(t, rec.Body.String(), `"successful":2`)
}

func TestRunNowConflictWhenBusy(t *testing.T) {
	f := newFixture(t)
	f.sched.runErr = fmt.Errorf("a run is already in progress")
	rec := f.do(http.MethodPost, "/api/scheduler/run", "", f.bearer(t))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already in progress")
}

func TestManual2FAToggleAffectsHeadless(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/automation/manual-2fa", `{"enabled": true}`, f.bearer(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.mode.Manual2FA())
	assert.False(t, f.mode.Headless())

	rec = f.do(http.MethodPost, "/api/automation/manual-2fa", `{"enabled": false}`, f.bearer(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.mode.Headless())
}

func TestManual2FARequiresEnabledField(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/automation/manual-2fa", `{}`, f.bearer(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
