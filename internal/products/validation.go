package products

import (
	"errors"
	"strings"

	"github.com/odyssey-erp/odyssey-catalog/internal/shared"
)

var errNameRequired = errors.New("name: required")

// validateCreate trims in and checks it against the CreateInput rules.
func (s *Service) validateCreate(in *CreateInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validator.Struct(in); err != nil {
		return shared.ValidationError(err)
	}
	return nil
}

// validateUpdate trims the supplied fields. A name that is present must not
// be blank.
func (s *Service) validateUpdate(in *UpdateInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return shared.ValidationError(errNameRequired)
		}
		in.Name = &name
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		in.Description = &description
	}
	if err := s.validator.Struct(in); err != nil {
		return shared.ValidationError(err)
	}
	return nil
}
