package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applicant struct {
	FullName string `validate:"required,valid_name,no_emoji"`
	Whatsapp string `validate:"required,valid_phone"`
	Topic    string `validate:"omitempty,essay_topic"`
	Type     string `validate:"required,scholarship_type"`
	NeedVisa string `validate:"required,yes_no"`
	Nickname string `validate:"omitempty,no_emoji"`
}

func valid() applicant {
	return applicant{
		FullName: "Siti Nur'aini",
		Whatsapp: "+62 812-3456-7890",
		Topic:    "GREEN_ACTION",
		Type:     "SELF_FUNDED",
		NeedVisa: "NO",
	}
}

func TestCustomValidators(t *testing.T) {
	v := New()

	t.Run("Should accept a valid applicant", func(t *testing.T) {
		assert.NoError(t, v.Struct(valid()))
	})

	t.Run("Should reject digits in names", func(t *testing.T) {
		a := valid()
		a.FullName = "R2D2"
		assert.Error(t, v.Struct(a))
	})

	t.Run("Should reject short phone numbers", func(t *testing.T) {
		a := valid()
		a.Whatsapp = "12345"
		assert.Error(t, v.Struct(a))
	})

	t.Run("Should reject emoji", func(t *testing.T) {
		a := valid()
		a.Nickname = "rocket 🚀"
		assert.Error(t, v.Struct(a))
	})

	t.Run("Should reject unknown enums", func(t *testing.T) {
		a := valid()
		a.Topic = "BLUE_OCEAN"
		a.Type = "HALF_FUNDED"
		a.NeedVisa = "MAYBE"
		err := v.Struct(a)
		require.Error(t, err)
		assert.Len(t, FormatValidationErrors(err), 3)
	})
}

func TestFormatValidationErrors(t *testing.T) {
	v := New()

	type payload struct {
		FullName string `validate:"required"`
		Gender   string `validate:"oneof=MALE FEMALE"`
	}

	err := v.Struct(payload{Gender: "X"})
	require.Error(t, err)

	msgs := FormatValidationErrors(err)
	assert.Contains(t, msgs, "Nama Lengkap: Wajib diisi")
	assert.Contains(t, msgs, "Jenis Kelamin: Harus salah satu dari: Laki-laki, Perempuan")
	assert.Equal(t, "Nama Lengkap: Wajib diisi", FirstMessage(err))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+6281234567890", NormalizePhone(" +62 812-3456 (7890) "))
}
