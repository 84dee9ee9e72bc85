package service

import (
	"context"
	"path/filepath"

	"personal_blog/internal/config"
	"personal_blog/internal/logger"
	"personal_blog/internal/models"
	"personal_blog/internal/repository"
)

// Authorization registers users and checks credentials.
type Authorization interface {
	Register(ctx context.Context, in RegistrationInput) (*models.User, error)
	Authenticate(ctx context.Context, in LoginInput) (Session, error)
	EndSessions(ctx context.Context, userID int64) error
}

// Sessions signs and verifies the session and flash cookies.
type Sessions interface {
	IssueSession(userID, version int64, remember bool) (Session, error)
	ParseSession(token string) (*SessionClaims, error)
	SignFlashes(flashes []models.Flash) (string, error)
	ParseFlashes(token string) ([]models.Flash, error)
}

// Account resolves the current identity and updates its profile.
type Account interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateAccount(ctx context.Context, current *models.User, in AccountInput) (*models.User, error)
}

// Posts is post CRUD with ownership checks on mutation.
type Posts interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	EditablePost(ctx context.Context, actor *models.User, id int64) (*models.Post, error)
	CreatePost(ctx context.Context, author *models.User, in PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, actor *models.User, id int64, in PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, actor *models.User, id int64) error
}

// Service aggregates the sub-services used by the HTTP layer.
type Service struct {
	Authorization
	Sessions
	Account
	Posts
}

// NewService builds every sub-service from the repositories and config.
func NewService(repos *repository.Repository, cfg *config.Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	sessions := NewSessionManager(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.RememberTTL)
	avatars := NewAvatarStore(
		filepath.Join(cfg.Static.Dir, ProfilePicsDir),
		cfg.Avatar.Size,
		cfg.Avatar.Default,
	)
	return &Service{
		Authorization: NewAuthService(repos.Users, sessions, cfg.Security.BcryptCost, cfg.Avatar.Default),
		Sessions:      sessions,
		Account:       NewAccountService(repos.Users, avatars, cfg.Avatar.AllowedExt, cfg.Avatar.DeleteReplaced, log.Named("account")),
		Posts:         NewPostService(repos.Posts),
	}
}
