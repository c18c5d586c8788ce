package validation

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	tagPhone    = "phone"
	tagPassword = "password"
	tagScale    = "scale"
	tagClearURL = "url_or_empty"

	amountScale = 2

	phoneMinLength = 10
	phoneMaxLength = 20
)

// Международный формат: необязательный +, первая цифра не ноль, затем 1-14 цифр.
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

var validate = newValidator()

// Normalizer - входные данные, которые умеют привести себя к каноничному виду.
type Normalizer interface {
	Normalize()
}

// Validate нормализует и проверяет запрос. Возвращает *ValidationError.
func Validate(req Normalizer) error {
	req.Normalize()
	return fromValidator(validate.Struct(req))
}

// ValidPhone проверяет номер телефона.
func ValidPhone(phone string) bool {
	n := utf8.RuneCountInString(phone)
	if n < phoneMinLength || n > phoneMaxLength {
		return false
	}
	return phonePattern.MatchString(phone)
}

// ValidPassword проверяет сложность пароля: заглавная, строчная буква и цифра.
func ValidPassword(password string) bool {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// DecodeStrict читает JSON и отклоняет неизвестные поля.
func DecodeStrict(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		const unknownPrefix = "json: unknown field "
		if msg := err.Error(); strings.HasPrefix(msg, unknownPrefix) {
			field := strings.Trim(strings.TrimPrefix(msg, unknownPrefix), `"`)
			return NewFieldError(field, "unrecognized field")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return NewFieldError(typeErr.Field, "has invalid type")
		}
		return NewFieldError("body", "invalid JSON")
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// decimal проверяется числовыми тегами gt/lte
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(CreatePaymentRequest)
		if !req.Amount.Equal(req.Amount.Round(amountScale)) {
			sl.ReportError(req.Amount, "amount", "Amount", tagScale, strconv.Itoa(amountScale))
		}
	}, CreatePaymentRequest{})

	// пустая строка очищает ссылку
	_ = v.RegisterValidation(tagClearURL, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || v.Var(s, "url") == nil
	})
	_ = v.RegisterValidation(tagPhone, func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation(tagPassword, func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})

	return v
}

// trimPtr обрезает пробелы; пустая строка считается отсутствующим значением.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// trimKeep обрезает пробелы, но сохраняет пустую строку, чтобы её отклонила валидация.
func trimKeep(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
