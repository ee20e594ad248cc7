package inquiry

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, inq *Inquiry) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO inquiries (name, email, phone, message, inquiry_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`,
		inq.Name,
		inq.Email,
		inq.Phone,
		inq.Message,
		inq.InquiryType,
	).Scan(&inq.ID, &inq.CreatedAt)
}

func (r *repo) List(ctx context.Context) ([]Inquiry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, COALESCE(phone, ''), message, inquiry_type, created_at
		FROM inquiries
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Inquiry
	for rows.Next() {
		var q Inquiry
		if err := rows.Scan(&q.ID, &q.Name, &q.Email, &q.Phone, &q.Message, &q.InquiryType, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM inquiries WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) LatestCreatedAt(ctx context.Context) (time.Time, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT created_at FROM inquiries ORDER BY created_at DESC LIMIT 1
	`).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
