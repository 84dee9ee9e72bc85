package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"personal_blog/internal/models"
)

type UserSQLite struct {
	db *sql.DB
}

func NewUserSQLite(db *sql.DB) *UserSQLite {
	return &UserSQLite{db: db}
}

var _ UserRepo = (*UserSQLite)(nil)

const (
	insertUserSQL = `INSERT INTO user (username, email, image_file, password) VALUES (?, ?, ?, ?)`

	selectUserColumns    = `SELECT id, username, email, image_file, password, session_version FROM user`
	selectUserByIDSQL    = selectUserColumns + ` WHERE id = ?`
	selectUserByEmailSQL = selectUserColumns + ` WHERE email = ?`
	selectUserByNameSQL  = selectUserColumns + ` WHERE username = ?`
	updateUserProfileSQL = `UPDATE user SET username = ?, email = ?, image_file = ? WHERE id = ?`
	bumpSessionSQL       = `UPDATE user SET session_version = session_version + 1 WHERE id = ?`
)

// Create inserts a new user and returns its ID. UNIQUE violations come
// back as *DuplicateError.
func (r *UserSQLite) Create(ctx context.Context, u models.User) (int64, error) {
	if u.ImageFile == "" {
		u.ImageFile = models.DefaultImageFile
	}
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Username, u.Email, u.ImageFile, u.Password)
	if err != nil {
		return 0, fmt.Errorf("insert user %q: %w", u.Username, asDuplicate(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for user %q: %w", u.Username, err)
	}
	return id, nil
}

// GetByID returns (nil, nil) if no user has the id.
func (r *UserSQLite) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := r.scanOne(r.db.QueryRowContext(ctx, selectUserByIDSQL, id))
	if err != nil {
		return nil, fmt.Errorf("select user id=%d: %w", id, err)
	}
	return u, nil
}

// GetByEmail returns (nil, nil) if not found.
func (r *UserSQLite) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := r.scanOne(r.db.QueryRowContext(ctx, selectUserByEmailSQL, email))
	if err != nil {
		return nil, fmt.Errorf("select user by email: %w", err)
	}
	return u, nil
}

// GetByUsername returns (nil, nil) if not found.
func (r *UserSQLite) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := r.scanOne(r.db.QueryRowContext(ctx, selectUserByNameSQL, username))
	if err != nil {
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return u, nil
}

// UpdateProfile writes username, email and image_file. The password is
// never touched here.
func (r *UserSQLite) UpdateProfile(ctx context.Context, u models.User) error {
	res, err := r.db.ExecContext(ctx, updateUserProfileSQL, u.Username, u.Email, u.ImageFile, u.ID)
	if err != nil {
		return fmt.Errorf("update user id=%d: %w", u.ID, asDuplicate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user id=%d: %w", u.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update user id=%d: %w", u.ID, ErrNoRowsAffected)
	}
	return nil
}

// BumpSessionVersion revokes every session issued to the user so far.
func (r *UserSQLite) BumpSessionVersion(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, bumpSessionSQL, id)
	if err != nil {
		return fmt.Errorf("bump session version for user id=%d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user id=%d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("bump session version for user id=%d: %w", id, ErrNoRowsAffected)
	}
	return nil
}

func (r *UserSQLite) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.ImageFile, &u.Password, &u.SessionVersion); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
