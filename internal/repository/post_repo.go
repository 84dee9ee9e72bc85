package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"personal_blog/internal/models"
)

type PostSQLite struct {
	db *sql.DB
}

func NewPostSQLite(db *sql.DB) *PostSQLite {
	return &PostSQLite{db: db}
}

var _ PostRepo = (*PostSQLite)(nil)

const (
	insertPostSQL = `INSERT INTO post (title, content, date_posted, user_id) VALUES (?, ?, ?, ?)`

	selectPostColumns = `
		SELECT p.id, p.title, p.content, p.date_posted, p.user_id,
		       u.id, u.username, u.email, u.image_file
		FROM post p JOIN user u ON u.id = p.user_id`
	selectPostByIDSQL = selectPostColumns + ` WHERE p.id = ?`
	listPostsSQL      = selectPostColumns + ` ORDER BY p.id ASC`

	updatePostSQL = `UPDATE post SET title = ?, content = ? WHERE id = ?`
	deletePostSQL = `DELETE FROM post WHERE id = ?`
)

// Create inserts a post and returns its ID. A zero DatePosted is set to
// now; the stored timestamp is always UTC.
func (r *PostSQLite) Create(ctx context.Context, p models.Post) (int64, error) {
	posted := p.DatePosted
	if posted.IsZero() {
		posted = time.Now()
	}
	res, err := r.db.ExecContext(ctx, insertPostSQL, p.Title, p.Content, posted.UTC(), p.UserID)
	if err != nil {
		return 0, fmt.Errorf("insert post for user id=%d: %w", p.UserID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for post: %w", err)
	}
	return id, nil
}

// GetByID returns (nil, nil) if the post does not exist.
func (r *PostSQLite) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, selectPostByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select post id=%d: %w", id, err)
	}
	return &p, nil
}

// List returns every post in insertion order.
func (r *PostSQLite) List(ctx context.Context) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, listPostsSQL)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	out := make([]models.Post, 0, 16)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return out, nil
}

// Update writes title and content only; author and date_posted are
// immutable.
func (r *PostSQLite) Update(ctx context.Context, p models.Post) error {
	return r.execOne(ctx, "update", updatePostSQL, p.ID, p.Title, p.Content, p.ID)
}

func (r *PostSQLite) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, "delete", deletePostSQL, id, id)
}

// execOne runs a single-row write and reports ErrNoRowsAffected when
// nothing matched.
func (r *PostSQLite) execOne(ctx context.Context, op, query string, id int64, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s post id=%d: %w", op, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for post id=%d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s post id=%d: %w", op, id, ErrNoRowsAffected)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (models.Post, error) {
	var p models.Post
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.DatePosted,
		&p.UserID,
		&p.Author.ID,
		&p.Author.Username,
		&p.Author.Email,
		&p.Author.ImageFile,
	)
	if err != nil {
		return models.Post{}, err
	}
	p.DatePosted = p.DatePosted.UTC()
	return p, nil
}
