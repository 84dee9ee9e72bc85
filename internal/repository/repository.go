package repository

import (
	"context"
	"database/sql"

	"personal_blog/internal/models"
)

// UserRepo is the credential store.
type UserRepo interface {
	Create(ctx context.Context, u models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, u models.User) error
	BumpSessionVersion(ctx context.Context, id int64) error
}

// PostRepo is the post store. Reads return posts joined with their author.
type PostRepo interface {
	Create(ctx context.Context, p models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	Update(ctx context.Context, p models.Post) error
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	Users UserRepo
	Posts PostRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users: NewUserSQLite(db),
		Posts: NewPostSQLite(db),
	}
}
