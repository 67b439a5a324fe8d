package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/reglet-dev/lambda-bridge/domain/errors"
	"github.com/reglet-dev/lambda-bridge/domain/value"
)

func testEvent(t *testing.T) Value {
	t.Helper()
	ev, err := value.Parse([]byte(`{
		"name": "widget",
		"count": 3,
		"whole": 4.0,
		"ratio": 0.5,
		"enabled": true,
		"tags": ["a", "b"],
		"mixed": ["a", 1]
	}`))
	require.NoError(t, err)
	return ev
}

func TestGetters(t *testing.T) {
	ev := testEvent(t)

	s, ok := GetString(ev, "name")
	assert.True(t, ok)
	assert.Equal(t, "widget", s)

	_, ok = GetString(ev, "count")
	assert.False(t, ok)

	i, ok := GetInt(ev, "count")
	assert.True(t, ok)
	assert.Equal(t, int64(3), i)

	i, ok = GetInt(ev, "whole")
	assert.True(t, ok)
	assert.Equal(t, int64(4), i)

	_, ok = GetInt(ev, "ratio")
	assert.False(t, ok)

	f, ok := GetFloat(ev, "count")
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	b, ok := GetBool(ev, "enabled")
	assert.True(t, ok)
	assert.True(t, b)

	tags, ok := GetStringSlice(ev, "tags")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tags)

	_, ok = GetStringSlice(ev, "mixed")
	assert.False(t, ok)

	_, ok = GetString(ev, "missing")
	assert.False(t, ok)

	_, ok = GetString(value.String("not an object"), "name")
	assert.False(t, ok)
}

func TestMustGetters(t *testing.T) {
	ev := testEvent(t)

	s, err := MustGetString(ev, "name")
	require.NoError(t, err)
	assert.Equal(t, "widget", s)

	_, err = MustGetInt(ev, "name")
	var evErr *domainerrors.EventError
	require.True(t, errors.As(err, &evErr))
	assert.Equal(t, "name", evErr.Field)

	_, err = MustGetBool(ev, "missing")
	assert.ErrorContains(t, err, "required bool field 'missing'")

	_, err = MustGetString(ev, "count")
	assert.ErrorContains(t, err, "invalid event field count")
}
