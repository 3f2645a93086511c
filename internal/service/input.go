// Input shapes and their validation rules.
//
// VALIDATION STRATEGY:
// Each request payload is a struct with a Validate() method built on
// ozzo-validation. The handler decodes JSON into the struct; the service calls
// Validate() before touching any state. ozzo reports ALL failing fields at
// once (not just the first), which is exactly what a form-driven frontend
// wants to render.
//
// WHY POINTER FIELDS ON UpdateProfileInput?
// A profile PATCH must distinguish "field absent — leave it alone" from
// "field present and empty". encoding/json leaves absent fields as nil
// pointers, so presence survives decoding. RegisterInput has no such problem —
// every field is required — so it uses plain values.
package service

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/tasnim/quizhub/internal/apperror"
	"github.com/tasnim/quizhub/internal/model"
)

// usernameRe matches 3-30 characters of letters, digits, and underscore.
// The length bounds are repeated in a Length rule so the error message names
// the actual limits instead of "must be in a valid format".
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// RegisterInput is the payload for account registration.
type RegisterInput struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Tier      model.Tier `json:"tier"`
	AvatarURL string     `json:"avatarUrl"`
}

// Validate checks shape and content.
//
// Note the tier rule: self-registration may pick novice or experienced, never
// administrator. An empty tier is allowed and defaults to novice in Register.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username,
			validation.Required,
			validation.Length(3, 30),
			validation.Match(usernameRe).Error("may only contain letters, digits, and underscores"),
		),
		validation.Field(&in.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(&in.Password,
			validation.Required,
			validation.Length(8, 128),
		),
		validation.Field(&in.Tier,
			validation.In(model.TierNovice, model.TierExperienced).
				Error("must be novice or experienced"),
		),
		validation.Field(&in.AvatarURL,
			is.URL,
		),
	)
}

// LoginInput is the payload for login. The identifier may be a username or an
// email — resolution order is documented on AccountService.Login.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Identifier, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}

// UpdateProfileInput is the payload for profile PATCH. Nil = leave alone.
type UpdateProfileInput struct {
	Username  *string     `json:"username"`
	Email     *string     `json:"email"`
	Tier      *model.Tier `json:"tier"`
	AvatarURL *string     `json:"avatarUrl"`
}

// Validate applies the same per-field rules as registration, but only to the
// fields that are present. ozzo skips rules on nil pointers (except Required
// variants, which we don't use here).
func (in UpdateProfileInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username,
			validation.Length(3, 30),
			validation.Match(usernameRe).Error("may only contain letters, digits, and underscores"),
		),
		validation.Field(&in.Email,
			is.Email,
		),
		validation.Field(&in.Tier,
			validation.In(model.TierNovice, model.TierExperienced, model.TierAdministrator).
				Error("must be novice, experienced, or administrator"),
		),
		validation.Field(&in.AvatarURL,
			is.URL,
		),
	)
}

// invalidInput converts an ozzo validation error into the app's validation
// error kind, preserving the per-field detail in the message.
func invalidInput(err error) error {
	if err == nil {
		return nil
	}

	var fields validation.Errors
	if errors.As(err, &fields) {
		// ozzo keys errors by struct field name; surface one stable field in
		// the Field slot and the full per-field report in the message.
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		return apperror.ValidationFailed(strings.ToLower(names[0]), err.Error())
	}

	return apperror.ValidationFailed("", err.Error())
}
