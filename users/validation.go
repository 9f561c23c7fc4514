package users

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Role names are bare uppercase identifiers; the ROLE_ authority prefix is
// applied by the token issuer, never stored.
var roleNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("rolename", func(fl validator.FieldLevel) bool {
			return roleNamePattern.MatchString(fl.Field().String())
		})
	}
}
