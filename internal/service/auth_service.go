package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"personal_blog/internal/models"
	"personal_blog/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const (
	msgUsernameTaken = "That username is taken. Please choose a different one."
	msgEmailTaken    = "That email is taken. Please choose a different one."
)

// AuthService handles registration and credential checks.
type AuthService struct {
	users        repository.UserRepo
	sessions     *SessionManager
	cost         int
	defaultImage string

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(users repository.UserRepo, sessions *SessionManager, cost int, defaultImage string) *AuthService {
	return &AuthService{users: users, sessions: sessions, cost: cost, defaultImage: defaultImage}
}

// Register validates the form, rejects taken usernames/emails and stores
// the user with a bcrypt hash of the password.
func (s *AuthService) Register(ctx context.Context, in RegistrationInput) (*models.User, error) {
	in.normalize()
	fe := ValidateRegistration(in)
	if err := checkAvailable(ctx, s.users, fe, in.Username, in.Email, nil); err != nil {
		return nil, err
	}
	if err := invalid(fe); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password, s.cost)
	if err != nil {
		return nil, err
	}
	u := models.User{
		Username:  in.Username,
		Email:     in.Email,
		ImageFile: s.defaultImage,
		Password:  hash,
	}
	id, err := s.users.Create(ctx, u)
	if err != nil {
		if verr := duplicateToValidation(err); verr != nil {
			return nil, verr
		}
		return nil, err
	}
	u.ID = id
	return &u, nil
}

// Authenticate checks email and password and issues a session. Unknown
// emails and wrong passwords both yield ErrInvalidCredentials after a
// bcrypt comparison.
func (s *AuthService) Authenticate(ctx context.Context, in LoginInput) (Session, error) {
	in.normalize()
	if err := invalid(ValidateLogin(in)); err != nil {
		return Session{}, err
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return Session{}, err
	}
	if u == nil {
		_ = verifyPassword(string(s.dummy()), in.Password)
		return Session{}, ErrInvalidCredentials
	}
	if err := verifyPassword(u.Password, in.Password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.sessions.IssueSession(u.ID, u.SessionVersion, in.Remember)
}

// EndSessions revokes every session the user holds, including the one
// in use.
func (s *AuthService) EndSessions(ctx context.Context, userID int64) error {
	if err := s.users.BumpSessionVersion(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// dummy returns a hash at the configured cost used to equalize the work
// done for unknown emails.
func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
	})
	return s.dummyHash
}

// checkAvailable adds "taken" errors to fe for a username or email owned
// by someone other than self.
func checkAvailable(ctx context.Context, users repository.UserRepo, fe FieldErrors, username, email string, self *models.User) error {
	if username != "" && (self == nil || username != self.Username) {
		u, err := users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if u != nil && (self == nil || u.ID != self.ID) {
			fe.Add("username", msgUsernameTaken)
		}
	}
	if email != "" && (self == nil || email != self.Email) {
		u, err := users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if u != nil && (self == nil || u.ID != self.ID) {
			fe.Add("email", msgEmailTaken)
		}
	}
	return nil
}

// duplicateToValidation maps a store UNIQUE violation to a field error.
func duplicateToValidation(err error) error {
	var dup *repository.DuplicateError
	if !errors.As(err, &dup) {
		return nil
	}
	fe := FieldErrors{}
	switch dup.Field {
	case "username":
		fe.Add("username", msgUsernameTaken)
	case "email":
		fe.Add("email", msgEmailTaken)
	}
	return invalid(fe)
}

func hashPassword(password string, cost int) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		fe := FieldErrors{}
		fe.Add("password", msgPasswordTooLong)
		return "", invalid(fe)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// verifyPassword compares in constant time with respect to the hash.
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
