package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Allow letters, spaces, and common name punctuation: . ' - ,
	nameRegex = regexp.MustCompile(`^[\p{L} .',-]+$`)

	// E164-like phone: optional +, digits 7-15 length. Spaces and dashes are stripped first.
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

var essayTopics = map[string]bool{
	"GREEN_CLIMATE":    true,
	"GREEN_CURRICULUM": true,
	"GREEN_INNOVATION": true,
	"GREEN_ACTION":     true,
	"GREEN_TRANSITION": true,
}

// New returns a validator with every custom rule registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("essay_topic", EssayTopic)
	_ = v.RegisterValidation("scholarship_type", ScholarshipType)
	_ = v.RegisterValidation("yes_no", YesNo)
}

// ValidName rejects digits and most special symbols.
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

// ValidPhone validates a phone/WhatsApp number structure
func ValidPhone(fl validator.FieldLevel) bool {
	val := NormalizePhone(fl.Field().String())
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(val)
}

// NormalizePhone drops the separators people type into phone fields.
func NormalizePhone(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(s))
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		// Supplementary planes are mostly emoji/pictographs
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

func EssayTopic(fl validator.FieldLevel) bool {
	return essayTopics[fl.Field().String()]
}

func ScholarshipType(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return v == "FULLY_FUNDED" || v == "SELF_FUNDED"
}

func YesNo(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return v == "YES" || v == "NO"
}
