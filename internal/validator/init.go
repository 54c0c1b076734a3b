package validator

import (
	"ctchen222/Tic-Tac-Toe-AI/internal/bot"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterCustom(validate); err != nil {
		panic(err)
	}
}

// RegisterCustom adds the game specific tags to v. Gin's binding engine gets them too.
func RegisterCustom(v *validator.Validate) error {
	return v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		_, err := bot.ParseDifficulty(fl.Field().String())
		return err == nil
	})
}

// Struct validates s and flattens any failures into one readable error.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
