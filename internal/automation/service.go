// Automation service: the posting/monitoring pass the scheduler drives.
//
// One pass owns one browser context start to finish. Login comes first
// through the orchestrator; everything after assumes an authenticated
// page and records per-(job,group) outcomes so an interrupted pass
// resumes on the next tick.

package automation

import (
	"context"
	"log"
	"time"

	"go-fbauto-automation/internal/browser"
	"go-fbauto-automation/internal/challenge"
	"go-fbauto-automation/internal/config"
	"go-fbauto-automation/internal/login"
	"go-fbauto-automation/internal/models"
	"go-fbauto-automation/internal/scheduler"
	"go-fbauto-automation/internal/session"
	"go-fbauto-automation/utils"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

// Repo is the persistence surface one pass needs.
type Repo interface {
	CountPendingPosts(ctx context.Context) (int, error)
	CountMonitorablePosts(ctx context.Context) (int, error)
	PendingPosts(ctx context.Context) ([]models.PendingPost, error)
	UpdatePostStatus(ctx context.Context, postID string, status models.PostStatus, postURL, errorMessage *string) error
	RecentSuccessfulPosts(ctx context.Context, limit int) ([]models.PendingPost, error)
	SaveCandidate(ctx context.Context, candidate *models.Candidate) error
}

// Reporter receives operator-facing events. Also serves as the
// challenge handler's notifier.
type Reporter interface {
	RunCompleted(runID string, stats scheduler.Stats)
	ChallengeWaiting(url string)
}

type Service struct {
	cfg      *config.Config
	repo     Repo
	reporter Reporter
	mode     *Mode
	store    *session.Store
	guard    *challenge.Guard // process-wide, shared across all passes
	shots    *utils.ScreenShotDebugger
}

func NewService(cfg *config.Config, repo Repo, reporter Reporter, mode *Mode) *Service {
	return &Service{
		cfg:      cfg,
		repo:     repo,
		reporter: reporter,
		mode:     mode,
		store:    session.NewStore(cfg.CookiesPath),
		guard:    challenge.NewGuard(),
		shots:    utils.NewScreenShotDebugger(cfg.ScreenshotPath),
	}
}

// PendingWork is the scheduler's cheap existence check.
func (s *Service) PendingWork(ctx context.Context) (bool, error) {
	pending, err := s.repo.CountPendingPosts(ctx)
	if err != nil {
		return false, err
	}
	if pending > 0 {
		return true, nil
	}
	monitorable, err := s.repo.CountMonitorablePosts(ctx)
	if err != nil {
		return false, err
	}
	return monitorable > 0, nil
}

// ProcessPendingJobs runs one full pass: login, post every PENDING row,
// then sweep recent posts for interested comments.
func (s *Service) ProcessPendingJobs(ctx context.Context) (scheduler.Stats, error) {
	runID := uuid.NewString()[:8]
	log.Printf("🚀 [%s] Starting automation pass", runID)

	var stats scheduler.Stats

	mgr, err := browser.NewManager(s.mode.Headless())
	if err != nil {
		return stats, err
	}
	defer mgr.Close()

	bctx, err := mgr.NewContext()
	if err != nil {
		return stats, err
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return stats, err
	}

	if err := s.ensureLoggedIn(page, bctx); err != nil {
		return stats, err
	}

	stats = s.postPending(ctx, page, runID)
	stats.Monitored = s.monitorComments(ctx, page, runID)

	if s.reporter != nil {
		s.reporter.RunCompleted(runID, stats)
	}
	log.Printf("✅ [%s] Automation pass finished: %+v", runID, stats)
	return stats, nil
}

func (s *Service) ensureLoggedIn(page playwright.Page, bctx playwright.BrowserContext) error {
	handler := challenge.NewHandler(challenge.Config{
		WaitInterval: time.Duration(s.cfg.ManualWaitSeconds) * time.Second,
		WaitAttempts: s.cfg.ManualWaitAttempts,
	}, s.guard, s.reporter)

	orch := login.NewOrchestrator(s.store, handler, s.cfg.IsProduction())
	drv := login.NewPageDriver(page, bctx, session.NewValidator())

	//ok mirrors err: the orchestrator answers (true, nil) or (false, err)
	if _, err := orch.EnsureLoggedIn(drv, bctx, login.Credentials{
		AccountID: s.cfg.FacebookEmail,
		Email:     s.cfg.FacebookEmail,
		Password:  s.cfg.FacebookPassword,
	}); err != nil {
		s.shots.CaptureAndLog(page, "login_failure", "Capturing page state after failed login")
		return err
	}
	return nil
}

func (s *Service) postPending(ctx context.Context, page playwright.Page, runID string) scheduler.Stats {
	var stats scheduler.Stats

	pending, err := s.repo.PendingPosts(ctx)
	if err != nil {
		log.Printf("❌ [%s] Failed to list pending posts: %v", runID, err)
		return stats
	}
	if len(pending) == 0 {
		log.Printf("📭 [%s] No pending posts", runID)
		return stats
	}
	log.Printf("📋 [%s] Found %d pending posts", runID, len(pending))

	for _, pp := range pending {
		if ctx.Err() != nil {
			log.Printf("⚠️ [%s] Pass deadline reached, remaining posts stay PENDING", runID)
			break
		}
		stats.Total++

		message := BuildPostMessage(pp.Job, pp.Post, s.cfg.MessengerLink)
		postURL, err := PostToGroup(page, pp.Post.FacebookGroupURL, message)
		if err != nil {
			log.Printf("❌ [%s] Post failed for job %q in %s: %v", runID, pp.Job.Title, pp.Post.FacebookGroupURL, err)
			msg := err.Error()
			if dbErr := s.repo.UpdatePostStatus(ctx, pp.Post.ID, models.PostStatusFailed, nil, &msg); dbErr != nil {
				log.Printf("❌ [%s] Status update failed: %v", runID, dbErr)
			}
			stats.Failed++
			continue
		}

		var urlPtr *string
		if postURL != "" {
			urlPtr = &postURL
		}
		if dbErr := s.repo.UpdatePostStatus(ctx, pp.Post.ID, models.PostStatusSuccess, urlPtr, nil); dbErr != nil {
			log.Printf("❌ [%s] Status update failed: %v", runID, dbErr)
		}
		stats.Successful++
		log.Printf("✅ [%s] Posted %q to %s", runID, pp.Job.Title, pp.Post.FacebookGroupURL)

		//human pacing between groups keeps the account out of rate limits
		browser.HumanPause(8000, 15000)
	}
	return stats
}

func (s *Service) monitorComments(ctx context.Context, page playwright.Page, runID string) int {
	posts, err := s.repo.RecentSuccessfulPosts(ctx, s.cfg.MonitorPostLimit)
	if err != nil {
		log.Printf("❌ [%s] Failed to list posts to monitor: %v", runID, err)
		return 0
	}
	if len(posts) == 0 {
		return 0
	}
	log.Printf("👀 [%s] Monitoring %d posts for comments", runID, len(posts))

	monitored := 0
	for _, pp := range posts {
		if ctx.Err() != nil {
			break
		}
		if pp.Post.PostURL == nil {
			continue
		}

		hits, err := ScanPostComments(page, *pp.Post.PostURL)
		if err != nil {
			log.Printf("⚠️ [%s] Comment scan failed for %s: %v", runID, *pp.Post.PostURL, err)
			continue
		}
		monitored++

		for _, hit := range hits {
			postID := pp.Post.ID
			candidate := &models.Candidate{
				JobPostID:   &postID,
				SenderID:    "comment:" + hit.Author,
				Name:        hit.Author,
				CommentText: hit.Text,
				Source:      "facebook_comment",
			}
			if err := s.repo.SaveCandidate(ctx, candidate); err != nil {
				log.Printf("⚠️ [%s] Failed to save candidate: %v", runID, err)
				continue
			}
			log.Printf("🎯 [%s] Interested candidate on %q: %s", runID, pp.Job.Title, hit.Author)
		}

		if len(hits) > 0 {
			ReplyWithLink(page, s.cfg.MessengerLink)
		}
		browser.HumanPause(4000, 8000)
	}
	return monitored
}
