package service

import (
	"io"
	"strings"
)

// Form inputs. `form` tags drive gin binding, `validate` tags drive the
// Validate* functions below.

type RegistrationInput struct {
	Username        string `form:"username" validate:"required,min=2,max=20"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Remember bool   `form:"remember"`
}

// AccountInput is the account form. Picture is nil when no file was
// uploaded.
type AccountInput struct {
	Username    string    `form:"username" validate:"required,min=2,max=20"`
	Email       string    `form:"email" validate:"required,email"`
	PictureName string    `form:"-" validate:"-"`
	Picture     io.Reader `form:"-" validate:"-"`
}

type PostInput struct {
	Title   string `form:"title" validate:"required,max=100"`
	Content string `form:"content" validate:"required"`
}

func (in *RegistrationInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
}

func (in *LoginInput) normalize() {
	in.Email = strings.TrimSpace(in.Email)
}

func (in *AccountInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
}

func (in *PostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	if strings.TrimSpace(in.Content) == "" {
		in.Content = ""
	}
}
