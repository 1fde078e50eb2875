package database

import (
	"context"
	"fmt"
	"time"

	"go-fbauto-automation/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// IMPORTANT: Supabase connection pooler (PgBouncer in Transaction mode)
	// does not support prepared statements easily. We MUST disable the statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Ping to ensure connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// ---------------- USER OPERATIONS ----------------

func (r *Repository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, name, created_at, updated_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ---------------- JOB OPERATIONS ----------------

// CreateJob inserts a job and fans out one PENDING post row per target group.
func (r *Repository) CreateJob(ctx context.Context, job *models.Job, groupURLs []string) (*models.Job, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO jobs (title, company, description, location, salary, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, company, description, location, salary, created_by, created_at`
	err = tx.QueryRow(ctx, query, job.Title, job.Company, job.Description, job.Location, job.Salary, job.CreatedBy).
		Scan(&job.ID, &job.Title, &job.Company, &job.Description, &job.Location, &job.Salary, &job.CreatedBy, &job.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	for _, groupURL := range groupURLs {
		_, err := tx.Exec(ctx,
			`INSERT INTO job_posts (job_id, facebook_group_url, status) VALUES ($1, $2, $3)`,
			job.ID, groupURL, models.PostStatusPending)
		if err != nil {
			return nil, fmt.Errorf("failed to enqueue post for group %s: %w", groupURL, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit job creation: %w", err)
	}
	return job, nil
}

func (r *Repository) GetJobByID(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	query := `SELECT id, title, company, description, location, salary, created_by, created_at FROM jobs WHERE id = $1`
	err := r.db.QueryRow(ctx, query, jobID).
		Scan(&job.ID, &job.Title, &job.Company, &job.Description, &job.Location, &job.Salary, &job.CreatedBy, &job.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("job not found")
		}
		return nil, fmt.Errorf("failed to get job by ID: %w", err)
	}
	return &job, nil
}

// ---------------- JOB POST OPERATIONS ----------------

// CountPendingPosts is the cheap existence check the scheduler runs
// before paying for a browser.
func (r *Repository) CountPendingPosts(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_posts WHERE status = $1`, models.PostStatusPending).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending posts: %w", err)
	}
	return count, nil
}

func (r *Repository) PendingPosts(ctx context.Context) ([]models.PendingPost, error) {
	query := `
		SELECT p.id, p.job_id, p.facebook_group_url, p.status, p.created_at, p.updated_at,
		       j.id, j.title, j.company, j.description, j.location, j.salary, j.created_by, j.created_at
		FROM job_posts p
		JOIN jobs j ON j.id = p.job_id
		WHERE p.status = $1
		ORDER BY p.created_at ASC`
	rows, err := r.db.Query(ctx, query, models.PostStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending posts: %w", err)
	}
	defer rows.Close()

	var pending []models.PendingPost
	for rows.Next() {
		var pp models.PendingPost
		err := rows.Scan(
			&pp.Post.ID, &pp.Post.JobID, &pp.Post.FacebookGroupURL, &pp.Post.Status, &pp.Post.CreatedAt, &pp.Post.UpdatedAt,
			&pp.Job.ID, &pp.Job.Title, &pp.Job.Company, &pp.Job.Description, &pp.Job.Location, &pp.Job.Salary, &pp.Job.CreatedBy, &pp.Job.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending post: %w", err)
		}
		pending = append(pending, pp)
	}
	return pending, rows.Err()
}

func (r *Repository) UpdatePostStatus(ctx context.Context, postID string, status models.PostStatus, postURL, errorMessage *string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE job_posts SET status = $1, post_url = $2, error_message = $3, updated_at = NOW() WHERE id = $4`,
		status, postURL, errorMessage, postID)
	if err != nil {
		return fmt.Errorf("failed to update post status: %w", err)
	}
	return nil
}

// RecentSuccessfulPosts feeds comment monitoring. Capped to avoid
// crawling the whole history every tick.
func (r *Repository) RecentSuccessfulPosts(ctx context.Context, limit int) ([]models.PendingPost, error) {
	query := `
		SELECT p.id, p.job_id, p.facebook_group_url, p.status, p.post_url, p.created_at, p.updated_at,
		       j.id, j.title, j.company, j.description, j.location, j.salary, j.created_by, j.created_at
		FROM job_posts p
		JOIN jobs j ON j.id = p.job_id
		WHERE p.status = $1 AND p.post_url IS NOT NULL
		ORDER BY p.created_at DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, models.PostStatusSuccess, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list successful posts: %w", err)
	}
	defer rows.Close()

	var posts []models.PendingPost
	for rows.Next() {
		var pp models.PendingPost
		err := rows.Scan(
			&pp.Post.ID, &pp.Post.JobID, &pp.Post.FacebookGroupURL, &pp.Post.Status, &pp.Post.PostURL, &pp.Post.CreatedAt, &pp.Post.UpdatedAt,
			&pp.Job.ID, &pp.Job.Title, &pp.Job.Company, &pp.Job.Description, &pp.Job.Location, &pp.Job.Salary, &pp.Job.CreatedBy, &pp.Job.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan successful post: %w", err)
		}
		posts = append(posts, pp)
	}
	return posts, rows.Err()
}

func (r *Repository) CountMonitorablePosts(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_posts WHERE status = $1 AND post_url IS NOT NULL`,
		models.PostStatusSuccess).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count monitorable posts: %w", err)
	}
	return count, nil
}

// JobPosts lists every post row for one job, newest first.
func (r *Repository) JobPosts(ctx context.Context, jobID string) ([]models.JobPost, error) {
	query := `
		SELECT id, job_id, facebook_group_url, status, post_url, error_message, created_at, updated_at
		FROM job_posts
		WHERE job_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job posts: %w", err)
	}
	defer rows.Close()

	var posts []models.JobPost
	for rows.Next() {
		var p models.JobPost
		if err := rows.Scan(&p.ID, &p.JobID, &p.FacebookGroupURL, &p.Status,
			&p.PostURL, &p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ---------------- CANDIDATE OPERATIONS ----------------

// ListCandidates returns the most recent interested candidates.
func (r *Repository) ListCandidates(ctx context.Context, limit int) ([]models.Candidate, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, job_post_id, sender_id, name, comment_text, source, created_at
		FROM candidates
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.JobPostID, &c.SenderID, &c.Name,
			&c.CommentText, &c.Source, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// SaveCandidate upserts on (sender_id, job_post_id) so re-scanning the
// same comments never duplicates a person.
func (r *Repository) SaveCandidate(ctx context.Context, candidate *models.Candidate) error {
	query := `
		INSERT INTO candidates (job_post_id, sender_id, name, comment_text, source)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sender_id, job_post_id)
		DO UPDATE SET comment_text = EXCLUDED.comment_text, name = EXCLUDED.name`
	_, err := r.db.Exec(ctx, query,
		candidate.JobPostID, candidate.SenderID, candidate.Name, candidate.CommentText, candidate.Source)
	if err != nil {
		return fmt.Errorf("failed to save candidate: %w", err)
	}
	return nil
}

// StoreJobContext remembers which job a Messenger sender came from.
func (r *Repository) StoreJobContext(ctx context.Context, jc *models.JobContext) error {
	query := `
		INSERT INTO job_contexts (sender_id, job_id, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (sender_id)
		DO UPDATE SET job_id = EXCLUDED.job_id, payload = EXCLUDED.payload`
	_, err := r.db.Exec(ctx, query, jc.SenderID, jc.JobID, jc.Payload)
	if err != nil {
		return fmt.Errorf("failed to store job context: %w", err)
	}
	return nil
}
