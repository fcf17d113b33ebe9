package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	phoneRegex  = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	phoneStrip  = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Validator обёртка над go-playground/validator с правилами предметной области
type Validator struct {
	v *validator.Validate
}

// New регистрирует правила date, clock, phone
func New() *Validator {
	v := validator.New()

	// Имена полей в ошибках берем из json-тегов
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})

	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		_, err := time.Parse(clockLayout, fl.Field().String())
		return err == nil
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		return phoneRegex.MatchString(NormalizePhone(fl.Field().String()))
	})

	return &Validator{v: v}
}

// Struct проверяет структуру по тегам validate
func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

// FirstInvalidField возвращает имя первого невалидного поля (подсказка для клиента)
func FirstInvalidField(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return ve[0].Field()
	}
	return ""
}

// NormalizePhone убирает разделители, оставляя цифры и ведущий "+"
func NormalizePhone(phone string) string {
	return phoneStrip.Replace(strings.TrimSpace(phone))
}
