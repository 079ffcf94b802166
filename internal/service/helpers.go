// Package service implements the portal's business operations. Every
// operation resolves its resource fresh, asks the access engine, and only
// then reads bytes or writes.
package service

import (
	"errors"
	"fmt"
	"strings"

	"buildportal/internal/access"
	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
)

func validationError(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// emptyToNil drops blank optional text
func emptyToNil(s *string) *string {
	if s = trimPtr(s); s == nil || *s == "" {
		return nil
	}
	return s
}

func viewMediaAction(kind models.MediaKind) access.Action {
	if kind == models.MediaKindVideo {
		return access.ActionViewVideo
	}
	return access.ActionViewPhoto
}

func uploadMediaAction(kind models.MediaKind) access.Action {
	if kind == models.MediaKindVideo {
		return access.ActionUploadVideo
	}
	return access.ActionUploadPhoto
}

func mediaRefKind(kind models.MediaKind) access.Kind {
	if kind == models.MediaKindVideo {
		return access.KindVideo
	}
	return access.KindPhoto
}

// notFoundAsValidation turns a missing referenced resource in a request
// body into a validation error
func notFoundAsValidation(field string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s: %v", domain.ErrValidation, field, err)
	}
	return err
}
