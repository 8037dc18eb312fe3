package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"gigmarket-backend/internal/domains/gig/model"
	"gigmarket-backend/internal/infrastructure/database"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

const uniqueViolation = "23505"

type postgresGigRepository struct {
	db *database.PostgresDB
}

func NewPostgresGigRepository(db *database.PostgresDB) GigRepository {
	return &postgresGigRepository{db: db}
}

const gigColumns = `
	id, poster_id, title, description, category, sub_category, urgency, experience_level,
	longitude, latitude, address, city, country, is_remote, allows_remote, service_radius,
	skills, payment_rate, payment_currency, payment_type, total_budget, payment_method,
	start_date, end_date, deadline, is_flexible, preferred_time,
	status, posted_at, expires_at, completion_date,
	views, applications_count, assigned_to, created_at, updated_at, version`

func scanGig(row pgx.Row) (*model.Gig, error) {
	g := &model.Gig{}
	var skillsJSON []byte

	err := row.Scan(
		&g.ID, &g.PosterID, &g.Title, &g.Description, &g.Category, &g.SubCategory,
		&g.Urgency, &g.ExperienceLevel,
		&g.Location.Longitude, &g.Location.Latitude, &g.Location.Address,
		&g.Location.City, &g.Location.Country, &g.Location.IsRemote,
		&g.Location.AllowsRemote, &g.Location.ServiceRadius,
		&skillsJSON,
		&g.Payment.Rate, &g.Payment.Currency, &g.Payment.PaymentType,
		&g.Payment.TotalBudget, &g.Payment.PaymentMethod,
		&g.Timeline.StartDate, &g.Timeline.EndDate, &g.Timeline.Deadline,
		&g.Timeline.IsFlexible, &g.Timeline.PreferredTime,
		&g.Status, &g.PostedAt, &g.ExpiresAt, &g.CompletionDate,
		&g.Views, &g.ApplicationsCount, &g.AssignedTo,
		&g.CreatedAt, &g.UpdatedAt, &g.Version,
	)
	if err != nil {
		return nil, err
	}

	if len(skillsJSON) > 0 {
		if err := json.Unmarshal(skillsJSON, &g.Skills); err != nil {
			return nil, fmt.Errorf("failed to decode gig skills: %w", err)
		}
	}

	return g, nil
}

func skillNames(skills []model.Skill) []string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, strings.ToLower(s.Name))
	}
	return names
}

// =====================================================
// CREATE
// =====================================================

func (r *postgresGigRepository) Create(ctx context.Context, gig *model.Gig) error {
	skillsJSON, err := json.Marshal(gig.Skills)
	if err != nil {
		return fmt.Errorf("failed to encode gig skills: %w", err)
	}

	query := `
		INSERT INTO gigs (
			id, poster_id, title, description, category, sub_category, urgency, experience_level,
			longitude, latitude, address, city, country, is_remote, allows_remote, service_radius,
			skills, skill_names, payment_rate, payment_currency, payment_type, total_budget, payment_method,
			start_date, end_date, deadline, is_flexible, preferred_time,
			status, posted_at, expires_at,
			views, applications_count, created_at, updated_at, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23,
			$24, $25, $26, $27, $28,
			$29, $30, $31,
			0, 0, $32, $33, $34
		)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		gig.ID, gig.PosterID, gig.Title, gig.Description, gig.Category, gig.SubCategory,
		gig.Urgency, gig.ExperienceLevel,
		gig.Location.Longitude, gig.Location.Latitude, gig.Location.Address,
		gig.Location.City, gig.Location.Country, gig.Location.IsRemote,
		gig.Location.AllowsRemote, gig.Location.ServiceRadius,
		skillsJSON, pq.Array(skillNames(gig.Skills)),
		gig.Payment.Rate, gig.Payment.Currency, gig.Payment.PaymentType,
		gig.Payment.TotalBudget, gig.Payment.PaymentMethod,
		gig.Timeline.StartDate, gig.Timeline.EndDate, gig.Timeline.Deadline,
		gig.Timeline.IsFlexible, gig.Timeline.PreferredTime,
		gig.Status, gig.PostedAt, gig.ExpiresAt,
		gig.CreatedAt, gig.UpdatedAt, gig.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create gig: %w", err)
	}

	return nil
}

// =====================================================
// GET BY ID (full aggregate)
// =====================================================

func (r *postgresGigRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Gig, error) {
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE id = $1`

	gig, err := scanGig(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGigNotFound
		}
		return nil, fmt.Errorf("failed to get gig: %w", err)
	}

	apps, err := r.listApplications(ctx, id)
	if err != nil {
		return nil, err
	}
	gig.Applications = apps

	return gig, nil
}

const applicationColumns = `
	id, gig_id, applicant_id, status, proposed_rate, message, portfolio_links,
	estimated_duration, availability, applied_at, updated_at`

func scanApplication(row pgx.Row) (*model.Application, error) {
	a := &model.Application{}
	var links []string

	err := row.Scan(
		&a.ID, &a.GigID, &a.ApplicantID, &a.Status, &a.ProposedRate, &a.Message,
		pq.Array(&links), &a.EstimatedDuration, &a.Availability,
		&a.AppliedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.PortfolioLinks = links
	return a, nil
}

func (r *postgresGigRepository) listApplications(ctx context.Context, gigID uuid.UUID) ([]model.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE gig_id = $1
		ORDER BY applied_at ASC, id ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, gigID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *a)
	}

	return apps, rows.Err()
}

// =====================================================
// UPDATE (descriptive fields, version CAS)
// =====================================================

func (r *postgresGigRepository) Update(ctx context.Context, gig *model.Gig) error {
	skillsJSON, err := json.Marshal(gig.Skills)
	if err != nil {
		return fmt.Errorf("failed to encode gig skills: %w", err)
	}

	query := `
		UPDATE gigs SET
			title = $1, description = $2, category = $3, sub_category = $4,
			urgency = $5, experience_level = $6,
			longitude = $7, latitude = $8, address = $9, city = $10, country = $11,
			is_remote = $12, allows_remote = $13, service_radius = $14,
			skills = $15, skill_names = $16,
			payment_rate = $17, payment_currency = $18, payment_type = $19,
			total_budget = $20, payment_method = $21,
			start_date = $22, end_date = $23, deadline = $24,
			is_flexible = $25, preferred_time = $26,
			expires_at = $27,
			version = version + 1, updated_at = NOW()
		WHERE id = $28 AND version = $29
	`

	result, err := r.db.Pool.Exec(ctx, query,
		gig.Title, gig.Description, gig.Category, gig.SubCategory,
		gig.Urgency, gig.ExperienceLevel,
		gig.Location.Longitude, gig.Location.Latitude, gig.Location.Address,
		gig.Location.City, gig.Location.Country,
		gig.Location.IsRemote, gig.Location.AllowsRemote, gig.Location.ServiceRadius,
		skillsJSON, pq.Array(skillNames(gig.Skills)),
		gig.Payment.Rate, gig.Payment.Currency, gig.Payment.PaymentType,
		gig.Payment.TotalBudget, gig.Payment.PaymentMethod,
		gig.Timeline.StartDate, gig.Timeline.EndDate, gig.Timeline.Deadline,
		gig.Timeline.IsFlexible, gig.Timeline.PreferredTime,
		gig.ExpiresAt,
		gig.ID, gig.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update gig: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrVersionConflict
	}

	return nil
}

// =====================================================
// UPDATE STATUS (lifecycle transition, version CAS)
// =====================================================

func (r *postgresGigRepository) UpdateStatus(ctx context.Context, upd StatusUpdate) error {
	setClauses := []string{
		"status = $1",
		"version = version + 1",
		"updated_at = NOW()",
	}
	args := []interface{}{upd.Next}

	if upd.SetPostedAt != nil {
		args = append(args, *upd.SetPostedAt)
		setClauses = append(setClauses, fmt.Sprintf("posted_at = $%d", len(args)))
	}
	if upd.SetExpiresAt != nil {
		args = append(args, *upd.SetExpiresAt)
		setClauses = append(setClauses, fmt.Sprintf("expires_at = $%d", len(args)))
	}
	if upd.SetCompletionDate != nil {
		args = append(args, *upd.SetCompletionDate)
		setClauses = append(setClauses, fmt.Sprintf("completion_date = $%d", len(args)))
	}

	args = append(args, upd.GigID, upd.Version)
	query := fmt.Sprintf(
		`UPDATE gigs SET %s WHERE id = $%d AND version = $%d`,
		strings.Join(setClauses, ", "), len(args)-1, len(args),
	)

	result, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update gig status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrVersionConflict
	}

	return nil
}

// =====================================================
// DELETE (cascades applications via FK)
// =====================================================

func (r *postgresGigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM gigs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete gig: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrGigNotFound
	}

	return nil
}

// =====================================================
// VIEWS / EXPIRY SWEEP
// =====================================================

func (r *postgresGigRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE gigs SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

func (r *postgresGigRepository) ExpireDue(ctx context.Context) (int64, error) {
	query := `
		UPDATE gigs
		SET status = 'expired', version = version + 1, updated_at = NOW()
		WHERE status IN ('posted', 'active') AND expires_at IS NOT NULL AND expires_at <= NOW()
	`

	result, err := r.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to expire due gigs: %w", err)
	}

	return result.RowsAffected(), nil
}

// =====================================================
// APPLICATIONS
// =====================================================

// InsertApplication appends the application and bumps applications_count
// in one transaction. The gig update carries the accepting predicate so
// concurrent applies both succeed without a lost count update.
func (r *postgresGigRepository) InsertApplication(ctx context.Context, app *model.Application) error {
	return r.db.ExecuteInTransaction(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE gigs
			SET applications_count = applications_count + 1,
			    version = version + 1,
			    updated_at = NOW()
			WHERE id = $1
			  AND status IN ('posted', 'active')
			  AND (expires_at IS NULL OR expires_at > NOW())
		`, app.GigID)
		if err != nil {
			return fmt.Errorf("failed to count application: %w", err)
		}
		if result.RowsAffected() == 0 {
			return model.ErrGigNotAcceptingApplications
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO applications (
				id, gig_id, applicant_id, status, proposed_rate, message, portfolio_links,
				estimated_duration, availability, applied_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			app.ID, app.GigID, app.ApplicantID, app.Status, app.ProposedRate, app.Message,
			pq.Array(app.PortfolioLinks), app.EstimatedDuration, app.Availability,
			app.AppliedAt, app.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return model.ErrDuplicateApplication
			}
			return fmt.Errorf("failed to insert application: %w", err)
		}

		return nil
	})
}

// AcceptApplication is the core conditional update: the gig row moves to
// assigned only if the version still matches, the status is accepting,
// and no assignee exists. Exactly one of two racing accepts can satisfy
// the predicate.
func (r *postgresGigRepository) AcceptApplication(
	ctx context.Context,
	gigID, applicationID, applicantID uuid.UUID,
	version int,
) error {
	return r.db.ExecuteInTransaction(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE gigs
			SET status = 'assigned',
			    assigned_to = $1,
			    version = version + 1,
			    updated_at = NOW()
			WHERE id = $2
			  AND version = $3
			  AND status IN ('posted', 'active')
			  AND assigned_to IS NULL
		`, applicantID, gigID, version)
		if err != nil {
			return fmt.Errorf("failed to assign gig: %w", err)
		}
		if result.RowsAffected() == 0 {
			return model.ErrVersionConflict
		}

		result, err = tx.Exec(ctx, `
			UPDATE applications
			SET status = 'accepted', updated_at = NOW()
			WHERE id = $1 AND gig_id = $2 AND status = 'pending'
		`, applicationID, gigID)
		if err != nil {
			return fmt.Errorf("failed to accept application: %w", err)
		}
		if result.RowsAffected() == 0 {
			return model.ErrApplicationNotPending
		}

		return nil
	})
}

func (r *postgresGigRepository) UpdateApplicationStatus(
	ctx context.Context,
	gigID, applicationID uuid.UUID,
	from, to model.ApplicationStatus,
) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE applications
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND gig_id = $3 AND status = $4
	`, to, applicationID, gigID, from)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrApplicationNotPending
	}

	return nil
}

// =====================================================
// SEARCH
// =====================================================

func (r *postgresGigRepository) Search(ctx context.Context, filter SearchFilter) ([]model.Gig, error) {
	var (
		where []string
		args  []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		where = append(where, fmt.Sprintf(
			"(title ILIKE %s OR description ILIKE %s OR category ILIKE %s)", p, p, p,
		))
	}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = %s", arg(filter.Category)))
	}
	if len(filter.Skills) > 0 {
		lowered := make([]string, len(filter.Skills))
		for i, s := range filter.Skills {
			lowered[i] = strings.ToLower(s)
		}
		where = append(where, fmt.Sprintf("skill_names && %s", arg(pq.Array(lowered))))
	}
	if filter.MinRate != nil {
		where = append(where, fmt.Sprintf("payment_rate >= %s", arg(*filter.MinRate)))
	}
	if filter.MaxRate != nil {
		where = append(where, fmt.Sprintf("payment_rate <= %s", arg(*filter.MaxRate)))
	}
	if filter.PaymentType != "" {
		where = append(where, fmt.Sprintf("payment_type = %s", arg(filter.PaymentType)))
	}
	if filter.Urgency != "" {
		where = append(where, fmt.Sprintf("urgency = %s", arg(filter.Urgency)))
	}
	if filter.ExperienceLevel != "" {
		where = append(where, fmt.Sprintf("experience_level = %s", arg(filter.ExperienceLevel)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, fmt.Sprintf("status = ANY(%s)", arg(pq.Array(statuses))))
	}
	if filter.PosterID != nil {
		where = append(where, fmt.Sprintf("poster_id = %s", arg(*filter.PosterID)))
	}
	if filter.GeoCandidateIDs != nil {
		// Remote gigs bypass the geo restriction entirely.
		where = append(where, fmt.Sprintf("(is_remote = TRUE OR id = ANY(%s))", arg(filter.GeoCandidateIDs)))
	}

	query := `SELECT ` + gigColumns + ` FROM gigs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search gigs: %w", err)
	}
	defer rows.Close()

	var gigs []model.Gig
	for rows.Next() {
		g, err := scanGig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gig: %w", err)
		}
		gigs = append(gigs, *g)
	}

	return gigs, rows.Err()
}

// =====================================================
// SCOPED LISTS
// =====================================================

func (r *postgresGigRepository) ListByPoster(
	ctx context.Context,
	posterID uuid.UUID,
	page, limit int,
) ([]model.Gig, int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM gigs WHERE poster_id = $1`, posterID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posted gigs: %w", err)
	}

	query := `
		SELECT ` + gigColumns + `
		FROM gigs
		WHERE poster_id = $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, posterID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posted gigs: %w", err)
	}
	defer rows.Close()

	var gigs []model.Gig
	for rows.Next() {
		g, err := scanGig(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan gig: %w", err)
		}
		gigs = append(gigs, *g)
	}

	return gigs, total, rows.Err()
}

func (r *postgresGigRepository) ListApplicationsByApplicant(
	ctx context.Context,
	applicantID uuid.UUID,
	page, limit int,
) ([]model.ApplicationListItem, int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications WHERE applicant_id = $1`, applicantID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	query := `
		SELECT
			a.id, a.gig_id, a.applicant_id, a.status, a.proposed_rate, a.message,
			a.portfolio_links, a.estimated_duration, a.availability, a.applied_at, a.updated_at,
			g.title, g.status
		FROM applications a
		JOIN gigs g ON g.id = a.gig_id
		WHERE a.applicant_id = $1
		ORDER BY a.applied_at DESC, a.id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, applicantID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var items []model.ApplicationListItem
	for rows.Next() {
		var item model.ApplicationListItem
		var links []string

		err := rows.Scan(
			&item.ID, &item.GigID, &item.ApplicantID, &item.Status, &item.ProposedRate,
			&item.Message, pq.Array(&links), &item.EstimatedDuration, &item.Availability,
			&item.AppliedAt, &item.UpdatedAt,
			&item.GigTitle, &item.GigStatus,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan application: %w", err)
		}

		item.PortfolioLinks = links
		items = append(items, item)
	}

	return items, total, rows.Err()
}
