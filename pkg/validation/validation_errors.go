package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly Indonesian labels
var FieldLabels = map[string]string{
	// Registration step 1
	"FullName":          "Nama Lengkap",
	"Email":             "Email",
	"Residence":         "Domisili",
	"Nationality":       "Kewarganegaraan",
	"SecondNationality": "Kewarganegaraan Kedua",
	"Whatsapp":          "Nomor WhatsApp",
	"Institution":       "Institusi",
	"DateOfBirth":       "Tanggal Lahir",
	"Gender":            "Jenis Kelamin",
	"DiscoverSource":    "Sumber Informasi",
	"DiscoverOtherText": "Sumber Informasi Lainnya",
	"ScholarshipType":   "Jenis Beasiswa",

	// Fully funded branch
	"EssayTopic":       "Topik Esai",
	"EssayFileID":      "File Esai",
	"EssayDescription": "Deskripsi Esai",

	// Self funded branch
	"PassportNumber": "Nomor Paspor",
	"NeedVisa":       "Kebutuhan Visa",
	"HeadshotFileID": "Foto Formal",
	"ReadPolicies":   "Persetujuan Kebijakan",

	// Auth fields
	"Password":        "Password",
	"CurrentPassword": "Password Saat Ini",
	"NewPassword":     "Password Baru",
	"Name":            "Nama",

	// Job fields
	"Title":     "Judul",
	"SalaryMin": "Gaji Minimum",
	"SalaryMax": "Gaji Maksimum",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// FirstMessage is the first formatted message, for single-line API errors.
func FirstMessage(err error) string {
	msgs := FormatValidationErrors(err)
	if len(msgs) == 0 {
		return "Validasi gagal"
	}
	return msgs[0]
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s: Wajib diisi", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: Minimal %s karakter", label, param)
		}
		return fmt.Sprintf("%s: Minimal %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: Maksimal %s karakter", label, param)
		}
		return fmt.Sprintf("%s: Maksimal %s", label, param)

	case "oneof":
		return fmt.Sprintf("%s: Harus salah satu dari: %s", label, formatOneOfOptions(param))

	case "eq":
		return fmt.Sprintf("%s: Harus %s", label, formatEnumValue(param))

	case "email":
		return fmt.Sprintf("%s: Format email tidak valid", label)

	case "uuid":
		return fmt.Sprintf("%s: Belum diupload", label)

	case "datetime":
		return fmt.Sprintf("%s: Format tanggal harus YYYY-MM-DD", label)

	case "alphanum":
		return fmt.Sprintf("%s: Hanya boleh huruf dan angka", label)

	case "valid_name":
		return fmt.Sprintf("%s: Hanya boleh huruf, spasi, dan tanda baca umum (. ' -)", label)

	case "valid_phone":
		return fmt.Sprintf("%s: Format nomor telepon tidak valid (7-15 digit, dengan/tanpa +)", label)

	case "no_emoji":
		return fmt.Sprintf("%s: Tidak boleh mengandung emoji atau simbol khusus", label)

	case "essay_topic":
		return fmt.Sprintf("%s: Topik esai tidak dikenal", label)

	case "scholarship_type":
		return fmt.Sprintf("%s: Harus FULLY_FUNDED atau SELF_FUNDED", label)

	case "yes_no":
		return fmt.Sprintf("%s: Harus YES atau NO", label)

	case "gtefield":
		return fmt.Sprintf("%s: Harus lebih besar atau sama dengan %s", label, getFieldLabel(param))

	default:
		return fmt.Sprintf("%s: Validasi gagal (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}

func formatOneOfOptions(param string) string {
	options := strings.Split(param, " ")
	formatted := make([]string, len(options))
	for i, opt := range options {
		formatted[i] = formatEnumValue(opt)
	}
	return strings.Join(formatted, ", ")
}

// formatEnumValue maps enum values to Indonesian display labels.
func formatEnumValue(value string) string {
	enumLabels := map[string]string{
		"MALE":              "Laki-laki",
		"FEMALE":            "Perempuan",
		"PREFER_NOT_TO_SAY": "Tidak ingin menyebutkan",
		"RISE_INSTAGRAM":    "Instagram Rise",
		"OTHER_INSTAGRAM":   "Instagram lain",
		"FRIENDS":           "Teman",
		"OTHER":             "Lainnya",
		"YES":               "Ya",
		"NO":                "Tidak",
		"PENDING":           "Menunggu",
		"APPROVED":          "Diterima",
		"REJECTED":          "Ditolak",
	}

	if label, ok := enumLabels[value]; ok {
		return label
	}
	return value
}
