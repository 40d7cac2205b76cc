package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  *string `json:"name" validate:"required,min=3,max=5"`
	Count *int    `json:"count" validate:"required,gt=0"`
	Day   *string `json:"day" validate:"required,datetime=2006-01-02"`
	ID    *int64  `json:"id" validate:"omitnil,absent"`
}

func ptr[T any](v T) *T { return &v }

func TestStructCollectsEveryFailingField(t *testing.T) {
	err := Struct(sample{
		Name:  ptr("ab"),
		Count: ptr(0),
		Day:   ptr("10/01/2024"),
		ID:    ptr(int64(7)),
	})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 4)
	assert.True(t, verr.Has("name", "min"))
	assert.True(t, verr.Has("count", "gt"))
	assert.True(t, verr.Has("day", "date"))
	assert.True(t, verr.Has("id", "server_assigned"))
	assert.Contains(t, verr.Error(), "name: must be at least 3 characters")
}

func TestStructRequiredFields(t *testing.T) {
	err := Struct(sample{})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("name", "required"))
	assert.True(t, verr.Has("count", "required"))
	assert.True(t, verr.Has("day", "required"))
	assert.False(t, verr.Has("id", "server_assigned"))
}

func TestStructRejectsAnyServerAssignedValue(t *testing.T) {
	for _, id := range []int64{0, 7} {
		err := Struct(sample{Name: ptr("abc"), Count: ptr(1), Day: ptr("2024-01-10"), ID: ptr(id)})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "id=%d", id)
		assert.True(t, verr.Has("id", "server_assigned"))
	}
}

func TestStructNumericMaxMessage(t *testing.T) {
	type weighed struct {
		Weight int `json:"weight" validate:"max=10"`
	}

	err := Struct(weighed{Weight: 11})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("weight", "max"))
	assert.Equal(t, "must be at most 10", verr.Fields[0].Message)
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: ptr("abc"), Count: ptr(1), Day: ptr("2024-01-10")}))
}

func TestFromDecodeError(t *testing.T) {
	var dst sample

	err := json.Unmarshal([]byte(`{"count":"many"}`), &dst)
	verr := FromDecodeError(err)
	require.NotNil(t, verr)
	assert.True(t, verr.Has("count", "type"))

	dec := json.NewDecoder(strings.NewReader(`{"extra":1}`))
	dec.DisallowUnknownFields()
	verr = FromDecodeError(dec.Decode(&dst))
	require.NotNil(t, verr)
	assert.True(t, verr.Has("extra", "unknown"))

	assert.Nil(t, FromDecodeError(json.Unmarshal([]byte(`{`), &dst)))
}
