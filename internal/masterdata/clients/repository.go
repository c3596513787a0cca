package clients

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/shared"
)

type Repository interface {
	List(ctx context.Context, search string, limit, offset int) ([]Client, int, error)
	Get(ctx context.Context, id int64) (Client, error)
	Create(ctx context.Context, client Client) (Client, error)
	Update(ctx context.Context, id int64, client Client) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, search string, limit, offset int) ([]Client, int, error) {
	query := `SELECT id, code, name, address, email, phone, created_at, updated_at FROM clients WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM clients WHERE 1=1`
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` AND (name ILIKE $1 OR code ILIKE $1)`
		countQuery += ` AND (name ILIKE $1 OR code ILIKE $1)`
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
	if limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Address, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Client, error) {
	var c Client
	err := r.db.QueryRow(ctx, `SELECT id, code, name, address, email, phone, created_at, updated_at FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.Code, &c.Name, &c.Address, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, fmt.Errorf("clients: id %d: %w", id, shared.ErrNotFound)
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, client Client) (Client, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO clients (code, name, address, email, phone, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		client.Code, client.Name, client.Address, client.Email, client.Phone, now, now).Scan(&client.ID)
	if err != nil {
		return Client{}, err
	}
	client.CreatedAt = now
	client.UpdatedAt = now
	return client, nil
}

func (r *repository) Update(ctx context.Context, id int64, client Client) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE clients SET code = $1, name = $2, address = $3, email = $4, phone = $5, updated_at = $6 WHERE id = $7`,
		client.Code, client.Name, client.Address, client.Email, client.Phone, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("clients: id %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	return err
}
