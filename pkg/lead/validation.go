package lead

import (
	"errors"
	"regexp"
	"strings"

	"github.com/Abraxas-365/leadgate/pkg/kernel"
	"github.com/go-playground/validator/v10"
)

var linkedinURL = regexp.MustCompile(`^https?://(www\.)?linkedin\.com/(in|company)/[A-Za-z0-9_%-]+/?$`)

// violationMessages maps a failing tag to what the client sees.
var violationMessages = map[string]string{
	"minname":      "First name must be at least 2 characters",
	"leademail":    "Valid email address is required",
	"phoneplus":    "Phone number must start with + and include country code",
	"phonecountry": "Phone number country code cannot start with 0",
	"phonelen":     "Valid phone number with country code is required",
	"linkedin":     "LinkedIn URL must be a linkedin.com/in/ or linkedin.com/company/ address",
}

// Validator checks FormInput against the lead capture rules.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	mustRegister(v, "minname", func(fl validator.FieldLevel) bool {
		return len([]rune(strings.TrimSpace(fl.Field().String()))) >= 2
	})
	mustRegister(v, "leademail", func(fl validator.FieldLevel) bool {
		return kernel.IsValidEmail(fl.Field().String())
	})
	mustRegister(v, "phoneplus", func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(strings.TrimSpace(fl.Field().String()), "+")
	})
	mustRegister(v, "phonecountry", func(fl validator.FieldLevel) bool {
		p := strings.TrimSpace(fl.Field().String())
		return len(p) > 1 && p[1] != '0'
	})
	mustRegister(v, "phonelen", func(fl validator.FieldLevel) bool {
		return len(strings.TrimSpace(fl.Field().String())) >= 10
	})
	mustRegister(v, "linkedin", func(fl validator.FieldLevel) bool {
		u := strings.TrimSpace(fl.Field().String())
		return u == "" || linkedinURL.MatchString(u)
	})
	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Violations returns every rule in breaks, in field order, or nil.
func (val *Validator) Violations(in *FormInput) []string {
	err := val.v.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := violationMessages[fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out = append(out, msg)
	}
	return out
}

// Validate returns ErrValidationFailed listing all violations, or nil.
func (val *Validator) Validate(in *FormInput) error {
	if v := val.Violations(in); len(v) > 0 {
		return ErrValidationFailed(v)
	}
	return nil
}
