package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"registrar/internal/identity/models"
	"registrar/pkg/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fullBundle() models.IdentityAttributes {
	return models.IdentityAttributes{
		FirstName:   "Jane",
		MiddleName:  "Ann",
		LastName:    "Doe",
		DateOfBirth: date(1990, time.March, 4),
		NationalID:  "QQ123456C",
		PriorRef:    domain.TRN("1234567"),
	}
}

func TestCompare_AllAttributesAgree(t *testing.T) {
	matched := Compare(fullBundle(), fullBundle())
	assert.Equal(t, []models.AttributeName{
		models.AttributeFirstName,
		models.AttributeMiddleName,
		models.AttributeLastName,
		models.AttributeDateOfBirth,
		models.AttributeNationalID,
		models.AttributePriorRef,
	}, matched)
	assert.Equal(t, 4, CoreCount(matched))
}

func TestCompare_NamesAreCaseInsensitiveAndTrimmed(t *testing.T) {
	a := fullBundle()
	b := fullBundle()
	b.FirstName = "  JANE "
	b.MiddleName = "ann"
	b.LastName = " doe"

	matched := Compare(a, b)
	assert.True(t, Contains(matched, models.AttributeFirstName))
	assert.True(t, Contains(matched, models.AttributeMiddleName))
	assert.True(t, Contains(matched, models.AttributeLastName))
}

func TestCompare_AbsentValuesNeverMatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.IdentityAttributes)
		attr   models.AttributeName
	}{
		{"empty middle name", func(a *models.IdentityAttributes) { a.MiddleName = "" }, models.AttributeMiddleName},
		{"whitespace-only first name", func(a *models.IdentityAttributes) { a.FirstName = "   " }, models.AttributeFirstName},
		{"zero date of birth", func(a *models.IdentityAttributes) { a.DateOfBirth = time.Time{} }, models.AttributeDateOfBirth},
		{"empty national id", func(a *models.IdentityAttributes) { a.NationalID = "" }, models.AttributeNationalID},
		{"empty prior ref", func(a *models.IdentityAttributes) { a.PriorRef = "" }, models.AttributePriorRef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := fullBundle()
			b := fullBundle()
			tt.mutate(&a)
			assert.False(t, Contains(Compare(a, b), tt.attr))

			// Absence on either side: both bundles empty must not match either.
			tt.mutate(&b)
			assert.False(t, Contains(Compare(a, b), tt.attr))
		})
	}
}

func TestCompare_DateOfBirthIgnoresTimeOfDay(t *testing.T) {
	a := fullBundle()
	b := fullBundle()
	b.DateOfBirth = time.Date(1990, time.March, 4, 23, 59, 0, 0, time.FixedZone("X", 3600))
	assert.True(t, Contains(Compare(a, b), models.AttributeDateOfBirth))
}

func TestCompare_IdentifiersCompareExactly(t *testing.T) {
	a := fullBundle()
	b := fullBundle()
	b.NationalID = "qq123456c" // case differs: identifiers are exact
	assert.False(t, Contains(Compare(a, b), models.AttributeNationalID))
}

func TestCoreCount_ExcludesIdentifiers(t *testing.T) {
	a := fullBundle()
	b := models.IdentityAttributes{
		NationalID: a.NationalID,
		PriorRef:   a.PriorRef,
	}
	matched := Compare(a, b)
	assert.Len(t, matched, 2)
	assert.Equal(t, 0, CoreCount(matched))
}

// CoreCount must never report a core match when the bundles differ in that
// attribute: for bundles differing in exactly one core attribute, the count
// is exactly three.
func TestCompare_ThreeOfFourWhenOneDiffers(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*models.IdentityAttributes)
	}{
		{"first name differs", func(a *models.IdentityAttributes) { a.FirstName = "Janet" }},
		{"middle name differs", func(a *models.IdentityAttributes) { a.MiddleName = "Beth" }},
		{"last name differs", func(a *models.IdentityAttributes) { a.LastName = "Smith" }},
		{"dob differs", func(a *models.IdentityAttributes) { a.DateOfBirth = date(1991, time.March, 4) }},
	}
	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			a := fullBundle()
			tt.mutate(&a)
			assert.Equal(t, 3, CoreCount(Compare(a, fullBundle())))
		})
	}
}
