package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.True(t, IsEmpty("\t\n"))
	assert.False(t, IsEmpty("x"))
	assert.False(t, IsEmpty(" x "))
}

func TestIsValidDate(t *testing.T) {
	_, ok := IsValidDate("2026-08-31")
	assert.True(t, ok)

	_, ok = IsValidDate("31-08-2026")
	assert.False(t, ok)

	_, ok = IsValidDate("2026-13-01")
	assert.False(t, ok)

	_, ok = IsValidDate("")
	assert.False(t, ok)
}

func TestIsInSlice(t *testing.T) {
	set := []string{"native", "web"}
	assert.True(t, IsInSlice("native", set))
	assert.False(t, IsInSlice("desktop", set))
	assert.False(t, IsInSlice("", set))
}

func TestCoordinateRanges(t *testing.T) {
	assert.True(t, IsValidLatitude(-6.2))
	assert.True(t, IsValidLatitude(90))
	assert.False(t, IsValidLatitude(90.1))

	assert.True(t, IsValidLongitude(106.8))
	assert.True(t, IsValidLongitude(-180))
	assert.False(t, IsValidLongitude(181))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Message: "latitude must be between -90 and 90"},
		{Field: "images", Message: "at least one punch image is required"},
	}

	assert.Contains(t, errs.Error(), "latitude:")
	assert.Contains(t, errs.Error(), "images:")

	m := errs.ToMap()
	assert.Len(t, m, 2)
	assert.Equal(t, "at least one punch image is required", m["images"])
}
