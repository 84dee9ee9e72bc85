package service

import (
	"context"
	"errors"
	"time"

	"personal_blog/internal/models"
	"personal_blog/internal/repository"
)

// PostService implements Posts over a PostRepo.
type PostService struct {
	posts repository.PostRepo
	now   func() time.Time
}

func NewPostService(posts repository.PostRepo) *PostService {
	return &PostService{posts: posts, now: time.Now}
}

func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.posts.List(ctx)
}

// GetPost returns ErrNotFound for an unknown id.
func (s *PostService) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// EditablePost returns the post only if actor is its author.
func (s *PostService) EditablePost(ctx context.Context, actor *models.User, id int64) (*models.Post, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnedBy(actor) {
		return nil, ErrForbidden
	}
	return p, nil
}

// CreatePost stores a post authored by author, dated now (UTC).
func (s *PostService) CreatePost(ctx context.Context, author *models.User, in PostInput) (*models.Post, error) {
	if author == nil {
		return nil, ErrForbidden
	}
	in.normalize()
	if err := invalid(ValidatePost(in)); err != nil {
		return nil, err
	}
	p := models.Post{
		Title:      in.Title,
		Content:    in.Content,
		DatePosted: s.now().UTC(),
		UserID:     author.ID,
		Author:     *author,
	}
	id, err := s.posts.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

// UpdatePost changes title and content. Ownership is checked before the
// input so a non-owner always gets ErrForbidden.
func (s *PostService) UpdatePost(ctx context.Context, actor *models.User, id int64, in PostInput) (*models.Post, error) {
	p, err := s.EditablePost(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := invalid(ValidatePost(in)); err != nil {
		return nil, err
	}
	p.Title = in.Title
	p.Content = in.Content
	if err := s.posts.Update(ctx, *p); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PostService) DeletePost(ctx context.Context, actor *models.User, id int64) error {
	if _, err := s.EditablePost(ctx, actor, id); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
