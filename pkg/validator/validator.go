package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Message templates understand the {field} and {param} placeholders.
var (
	engine     *validator.Validate
	engineOnce sync.Once

	messagesMu sync.RWMutex
	messages   = map[string]string{
		"required": "{field} is required",
		"email":    "{field} must be a valid email address",
		"min":      "{field} must be at least {param} characters",
		"max":      "{field} must be at most {param} characters",
		"oneof":    "{field} must be one of {param}",
	}
)

// FieldError is one failed rule, addressed by the field's JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// FieldErrors is returned by Struct when at least one rule fails.
type FieldErrors []FieldError

func (f FieldErrors) Error() string {
	if len(f) == 0 {
		return "invalid request payload"
	}
	out := make([]string, len(f))
	for i := range f {
		out[i] = f[i].Message
	}
	return strings.Join(out, "; ")
}

// Struct runs the validate tags on s. Rule failures come back as FieldErrors; anything
// else (a nil pointer, a non-struct) is returned unchanged.
func Struct(s any) error {
	err := instance().Struct(s)
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return err
	}

	out := make(FieldErrors, 0, len(failures))
	for _, fe := range failures {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: render(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return out
}

// Register adds a custom rule together with the message shown when it fails.
func Register(tag string, fn validator.Func, message string) error {
	if err := instance().RegisterValidation(tag, fn); err != nil {
		return err
	}
	if message != "" {
		messagesMu.Lock()
		messages[tag] = message
		messagesMu.Unlock()
	}
	return nil
}

// MustRegister is Register for package init blocks.
func MustRegister(tag string, fn validator.Func, message string) {
	if err := Register(tag, fn, message); err != nil {
		panic(err)
	}
}

func render(field, tag, param string) string {
	messagesMu.RLock()
	template, ok := messages[tag]
	messagesMu.RUnlock()

	if !ok {
		template = "{field} failed validation: " + tag
		if param != "" {
			template += "={param}"
		}
	}
	return strings.NewReplacer("{field}", displayName(field), "{param}", param).Replace(template)
}

// displayName turns recipient_id into "recipient id".
func displayName(field string) string {
	if field == "" {
		return "field"
	}
	return strings.ToLower(strings.ReplaceAll(field, "_", " "))
}

func instance() *validator.Validate {
	engineOnce.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(jsonName)
	})
	return engine
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
