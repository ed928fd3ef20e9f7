package food

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const listingColumns = `id, food_name, food_img, food_quantity, location, expire_date, additional_notes, status, donator_email, donator_name, donator_image, created_at`

const claimColumns = `id, food_id, user_email, status, request_date, notes, extra, created_at`

// Repository persists food listings and claim records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo over an already opened database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanListing(row interface{ Scan(...any) error }) (Listing, error) {
	var l Listing
	err := row.Scan(&l.ID, &l.FoodName, &l.FoodImg, &l.FoodQuantity, &l.Location,
		&l.ExpireDate, &l.AdditionalNotes, &l.Status,
		&l.Donator.Email, &l.Donator.Name, &l.Donator.Image, &l.CreatedAt)
	return l, err
}

func collectListings(rows *sql.Rows) ([]Listing, error) {
	defer rows.Close()
	var out []Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListFoods returns listings matching the filter, ordered per its sort field.
func (r *Repository) ListFoods(ctx context.Context, filter ListingFilter) ([]Listing, error) {
	where, args, orderBy := filter.SQL()
	rows, err := r.db.QueryContext(ctx, `SELECT `+listingColumns+` FROM foods`+where+orderBy, args...)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

// FeaturedFoods returns the 6 available listings with the largest quantity.
func (r *Repository) FeaturedFoods(ctx context.Context) ([]Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM foods
		WHERE status = $1
		ORDER BY food_quantity DESC
		LIMIT 6
	`, StatusAvailable)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

// GetFood returns a single listing by id.
func (r *Repository) GetFood(ctx context.Context, id string) (Listing, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM foods WHERE id = $1`, id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Listing{}, ErrNotFound
	}
	if err != nil {
		return Listing{}, err
	}
	return l, nil
}

// ListFoodsByDonator returns the donor's own listings, newest first.
func (r *Repository) ListFoodsByDonator(ctx context.Context, email string) ([]Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM foods
		WHERE donator_email = $1
		ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

// InsertFood writes a new listing, assigning id and defaulting status.
func (r *Repository) InsertFood(ctx context.Context, l Listing) (Listing, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = StatusAvailable
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO foods (id, food_name, food_img, food_quantity, location, expire_date, additional_notes, status, donator_email, donator_name, donator_image)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`, l.ID, l.FoodName, l.FoodImg, l.FoodQuantity, l.Location, l.ExpireDate,
		l.AdditionalNotes, l.Status, l.Donator.Email, l.Donator.Name, l.Donator.Image)
	if err := row.Scan(&l.CreatedAt); err != nil {
		return Listing{}, err
	}
	return l, nil
}

// UpdateFood modifies the mutable fields of a listing owned by callerEmail.
// A missing id yields ErrNotFound; an id owned by someone else ErrForbidden.
func (r *Repository) UpdateFood(ctx context.Context, id, callerEmail string, upd ListingUpdate) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE foods
		SET food_name = $3, food_img = $4, food_quantity = $5, location = $6, expire_date = $7, additional_notes = $8
		WHERE id = $1 AND donator_email = $2
	`, id, callerEmail, upd.FoodName, upd.FoodImg, upd.FoodQuantity, upd.Location, upd.ExpireDate, upd.AdditionalNotes)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var owner string
	err = r.db.QueryRowContext(ctx, `SELECT donator_email FROM foods WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrForbidden
}

// DeleteFood removes a listing by id and reports how many rows matched.
// Deleting an absent id is not an error.
func (r *Repository) DeleteFood(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM foods WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SubmitClaim inserts a claim record and transitions the referenced listing
// out of Available in one transaction. The status update matches only
// listings still Available, so of two concurrent claims exactly one commits;
// the loser rolls back with ErrConflict and leaves no orphaned claim row.
func (r *Repository) SubmitClaim(ctx context.Context, claim Claim) (Claim, error) {
	if claim.FoodID == "" {
		return Claim{}, ErrInvalid
	}
	if claim.ID == "" {
		claim.ID = uuid.NewString()
	}
	if claim.Status == "" {
		claim.Status = StatusRequested
	}
	if claim.RequestDate.IsZero() {
		claim.RequestDate = time.Now().UTC()
	}
	var extra []byte
	if claim.Extra != nil {
		b, err := json.Marshal(claim.Extra)
		if err != nil {
			return Claim{}, err
		}
		extra = b
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Claim{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO food_requests (id, food_id, user_email, status, request_date, notes, extra)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, claim.ID, claim.FoodID, claim.UserEmail, claim.Status, claim.RequestDate, claim.Notes, extra)
	if err := row.Scan(&claim.CreatedAt); err != nil {
		return Claim{}, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE foods SET status = $2 WHERE id = $1 AND status = $3
	`, claim.FoodID, claim.Status, StatusAvailable)
	if err != nil {
		return Claim{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Claim{}, err
	}
	if n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM foods WHERE id = $1)`, claim.FoodID).Scan(&exists); err != nil {
			return Claim{}, err
		}
		if !exists {
			return Claim{}, ErrNotFound
		}
		return Claim{}, ErrConflict
	}

	if err := tx.Commit(); err != nil {
		return Claim{}, err
	}
	return claim, nil
}

// ListClaimsByRequester returns every claim submitted by the given principal.
func (r *Repository) ListClaimsByRequester(ctx context.Context, email string) ([]Claim, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+claimColumns+`
		FROM food_requests
		WHERE user_email = $1
		ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Claim
	for rows.Next() {
		var c Claim
		var extra []byte
		if err := rows.Scan(&c.ID, &c.FoodID, &c.UserEmail, &c.Status, &c.RequestDate, &c.Notes, &extra, &c.CreatedAt); err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &c.Extra); err != nil {
				return nil, err
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
