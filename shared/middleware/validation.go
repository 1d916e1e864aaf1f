package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/abpira/accounts/shared/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// Field-specific messages keyed by "<jsonField>.<tag>"; anything not listed
// falls back to the generic message for the tag.
var fieldMessages = map[string]string{
	"name.required":                      "Name should not be empty",
	"name.min":                           "Name should be between 5 and 30 characters",
	"name.max":                           "Name should be between 5 and 30 characters",
	"email.required":                     "Email should not be empty",
	"email.email":                        "Invalid email format",
	"mobileNumber.required":              "Mobile number should not be empty",
	"mobileNumber.mobile":                "Mobile number should be 10 digits",
	"accountsDTO.accountNumber.required": "Account number should not be empty",
	"accountsDTO.accountNumber.account":  "Account number should be a valid 10 digit account number",
	"accountsDTO.accountType.required":   "Account type should not be empty",
	"accountsDTO.branchAddress.required": "Branch address should not be empty",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return utils.ValidateMobileNumber(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("account", func(fl validator.FieldLevel) bool {
		return utils.ValidateAccountNumber(fl.Field().Int())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateRequest checks obj against its validate tags and returns a
// field -> message map, or nil when obj is valid.
func ValidateRequest(obj any) map[string]string {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"request": err.Error()}
	}

	validationErrors := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe)
		if _, seen := validationErrors[field]; seen {
			continue
		}
		validationErrors[field] = getErrorMsg(field, fe)
	}
	return validationErrors
}

// ValidateMobileNumberParam validates a mobileNumber query parameter.
func ValidateMobileNumberParam(mobileNumber string) map[string]string {
	if err := validate.Var(mobileNumber, "mobile"); err != nil {
		return map[string]string{"mobileNumber": fieldMessages["mobileNumber.mobile"]}
	}
	return nil
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read "accountsDTO.accountType".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func getErrorMsg(field string, fe validator.FieldError) string {
	if msg, ok := fieldMessages[field+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + fe.Param()
	case "lte":
		return "Value must be less than or equal to " + fe.Param()
	default:
		return "Invalid value"
	}
}

func RespondWithValidationError(c *gin.Context, validationErrors map[string]string) {
	c.JSON(http.StatusBadRequest, validationErrors)
}
