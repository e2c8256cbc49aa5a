package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxEmailLength bounds each entry of a verification batch.
const MaxEmailLength = 320

var validate = validator.New()

// ValidateBatch checks that emails is a non-empty list of at most maxBatch
// entries, each no longer than MaxEmailLength.
func ValidateBatch(emails []string, maxBatch int) error {
	rules := fmt.Sprintf("required,min=1,max=%d,dive,max=%d", maxBatch, MaxEmailLength)
	err := validate.Var(emails, rules)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var msgs []string
	seen := make(map[string]bool)
	for _, fe := range verrs {
		var msg string
		switch {
		case fe.Kind() == reflect.Slice && fe.Tag() == "max":
			msg = "emails must contain at most " + fe.Param() + " addresses"
		case fe.Kind() == reflect.Slice:
			msg = "emails must be a non-empty array"
		case fe.Tag() == "max":
			msg = "each email must be at most " + fe.Param() + " characters"
		default:
			msg = "emails is invalid"
		}
		if !seen[msg] {
			seen[msg] = true
			msgs = append(msgs, msg)
		}
	}

	return errors.New(strings.Join(msgs, ", "))
}
