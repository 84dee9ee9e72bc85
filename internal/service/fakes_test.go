package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"personal_blog/internal/models"
	"personal_blog/internal/repository"
)

// fakeUserRepo is an in-memory repository.UserRepo that enforces the same
// uniqueness rules as the SQLite schema.
type fakeUserRepo struct {
	users   map[int64]models.User
	nextID  int64
	creates int
	updates int
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]models.User{}, nextID: 1}
}

var _ repository.UserRepo = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) conflict(u models.User) error {
	for _, other := range f.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username {
			return &repository.DuplicateError{Field: "username", Err: errors.New("UNIQUE constraint failed: user.username")}
		}
		if other.Email == u.Email {
			return &repository.DuplicateError{Field: "email", Err: errors.New("UNIQUE constraint failed: user.email")}
		}
	}
	return nil
}

func (f *fakeUserRepo) Create(_ context.Context, u models.User) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if err := f.conflict(u); err != nil {
		return 0, err
	}
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = u
	f.creates++
	return u.ID, nil
}

func (f *fakeUserRepo) find(match func(models.User) bool) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	return f.find(func(u models.User) bool { return u.ID == id })
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u models.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return f.find(func(u models.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, u models.User) error {
	if f.err != nil {
		return f.err
	}
	stored, ok := f.users[u.ID]
	if !ok {
		return repository.ErrNoRowsAffected
	}
	if err := f.conflict(u); err != nil {
		return err
	}
	stored.Username = u.Username
	stored.Email = u.Email
	stored.ImageFile = u.ImageFile
	f.users[u.ID] = stored
	f.updates++
	return nil
}

func (f *fakeUserRepo) BumpSessionVersion(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	stored, ok := f.users[id]
	if !ok {
		return repository.ErrNoRowsAffected
	}
	stored.SessionVersion++
	f.users[id] = stored
	return nil
}

// fakePostRepo is an in-memory repository.PostRepo joined against users.
type fakePostRepo struct {
	posts  map[int64]models.Post
	users  *fakeUserRepo
	nextID int64
}

func newFakePostRepo(users *fakeUserRepo) *fakePostRepo {
	return &fakePostRepo{posts: map[int64]models.Post{}, users: users, nextID: 1}
}

var _ repository.PostRepo = (*fakePostRepo)(nil)

func (f *fakePostRepo) Create(_ context.Context, p models.Post) (int64, error) {
	p.ID = f.nextID
	f.nextID++
	if p.DatePosted.IsZero() {
		p.DatePosted = time.Now().UTC()
	}
	f.posts[p.ID] = p
	return p.ID, nil
}

func (f *fakePostRepo) withAuthor(p models.Post) models.Post {
	if u, ok := f.users.users[p.UserID]; ok {
		p.Author = u
		p.Author.Password = ""
	}
	return p
}

func (f *fakePostRepo) GetByID(_ context.Context, id int64) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	p = f.withAuthor(p)
	return &p, nil
}

func (f *fakePostRepo) List(_ context.Context) ([]models.Post, error) {
	out := make([]models.Post, 0, len(f.posts))
	for _, p := range f.posts {
		out = append(out, f.withAuthor(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePostRepo) Update(_ context.Context, p models.Post) error {
	stored, ok := f.posts[p.ID]
	if !ok {
		return repository.ErrNoRowsAffected
	}
	stored.Title = p.Title
	stored.Content = p.Content
	f.posts[p.ID] = stored
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.posts[id]; !ok {
		return repository.ErrNoRowsAffected
	}
	delete(f.posts, id)
	return nil
}
