package postgres

import (
	"testing"

	"go-rise-platform/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestBuildRegistrationQuery(t *testing.T) {
	t.Run("Should default to newest first", func(t *testing.T) {
		where, order, args := buildRegistrationQuery(domain.RegistrationFilter{})
		assert.Empty(t, where)
		assert.Equal(t, " ORDER BY created_at DESC, id DESC", order)
		assert.Empty(t, args)
	})

	t.Run("Should combine filters and whitelist sort column", func(t *testing.T) {
		where, order, args := buildRegistrationQuery(domain.RegistrationFilter{
			Search:          "siti",
			Status:          domain.RegistrationPending,
			ScholarshipType: domain.ScholarshipSelfFunded,
			SortBy:          "full_name",
			SortOrder:       "ASC",
		})
		assert.Equal(t, " WHERE (full_name ILIKE $1 OR email ILIKE $1 OR submission_id ILIKE $1) AND status = $2 AND scholarship_type = $3", where)
		assert.Equal(t, " ORDER BY full_name ASC, id ASC", order)
		assert.Equal(t, []interface{}{"%siti%", "PENDING", "SELF_FUNDED"}, args)
	})

	t.Run("Should ignore unknown sort columns", func(t *testing.T) {
		_, order, _ := buildRegistrationQuery(domain.RegistrationFilter{SortBy: "1; DROP TABLE registrations"})
		assert.Equal(t, " ORDER BY created_at DESC, id DESC", order)
	})
}

func TestNullableJSON(t *testing.T) {
	v, err := nullableJSON[domain.SelfFundedData](nil)
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = nullableJSON(&domain.SelfFundedData{NeedVisa: "YES"})
	assert.NoError(t, err)
	assert.Contains(t, v, `"need_visa":"YES"`)

	assert.Nil(t, rawJSON(nil))
}
