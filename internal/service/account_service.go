package service

import (
	"context"
	"errors"

	"personal_blog/internal/logger"
	"personal_blog/internal/models"
	"personal_blog/internal/repository"
)

const msgUnsupportedImage = "The uploaded file is not a supported image."

// AccountService resolves identities and updates profiles.
type AccountService struct {
	users          repository.UserRepo
	avatars        *AvatarStore
	allowedExt     []string
	deleteReplaced bool
	log            *logger.Logger
}

func NewAccountService(users repository.UserRepo, avatars *AvatarStore, allowedExt []string, deleteReplaced bool, log *logger.Logger) *AccountService {
	if log == nil {
		log = logger.NewNop()
	}
	return &AccountService{
		users:          users,
		avatars:        avatars,
		allowedExt:     allowedExt,
		deleteReplaced: deleteReplaced,
		log:            log,
	}
}

// UserByID returns (nil, nil) for an unknown id.
func (s *AccountService) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateAccount changes username and email and, when a picture is given,
// replaces the avatar. The previous avatar file is removed after the new
// name is stored if deleteReplaced is set.
func (s *AccountService) UpdateAccount(ctx context.Context, current *models.User, in AccountInput) (*models.User, error) {
	if current == nil {
		return nil, ErrForbidden
	}
	in.normalize()
	fe := ValidateAccount(in, s.allowedExt)
	if err := checkAvailable(ctx, s.users, fe, in.Username, in.Email, current); err != nil {
		return nil, err
	}
	if err := invalid(fe); err != nil {
		return nil, err
	}

	updated := *current
	updated.Username = in.Username
	updated.Email = in.Email

	var ingested string
	if in.Picture != nil {
		name, err := s.avatars.Ingest(in.Picture, in.PictureName)
		if err != nil {
			var bad *UnsupportedImageError
			if errors.As(err, &bad) {
				return nil, invalid(FieldErrors{"picture": {msgUnsupportedImage}})
			}
			return nil, err
		}
		ingested = name
		updated.ImageFile = name
	}

	if err := s.users.UpdateProfile(ctx, updated); err != nil {
		s.discard(ingested)
		if verr := duplicateToValidation(err); verr != nil {
			return nil, verr
		}
		return nil, err
	}

	if ingested != "" && s.deleteReplaced && current.ImageFile != ingested {
		if err := s.avatars.Remove(current.ImageFile); err != nil {
			s.log.Errorw("avatar_remove_failed", "user_id", current.ID, "file", current.ImageFile, "err", err)
		}
	}
	return &updated, nil
}

func (s *AccountService) discard(name string) {
	if name == "" {
		return
	}
	if err := s.avatars.Remove(name); err != nil {
		s.log.Errorw("avatar_discard_failed", "file", name, "err", err)
	}
}
