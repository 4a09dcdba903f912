package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapstream/processor-go/decode"
)

func noop(*Context) error { return nil }

func TestRegistryLookupPicksHighestEra(t *testing.T) {
	var calls []string
	named := func(name string) Handler {
		return func(*Context) error {
			calls = append(calls, name)
			return nil
		}
	}

	r, err := NewRegistry([]Era{
		{
			MinVersion: decode.ParseSemver("1.2.0"),
			Registrations: []Registration{
				{Name: "Swapping.SwapScheduled", Handler: named("legacy")},
				{Name: "Swapping.SwapExecuted", Handler: named("executed")},
			},
		},
		{
			MinVersion: decode.ParseSemver("1.6.0"),
			Registrations: []Registration{
				{Name: "Swapping.SwapScheduled", Handler: named("modern")},
			},
		},
	})
	require.NoError(t, err)

	h, ok := r.Lookup("Swapping.SwapScheduled", decode.ParseSemver("1.5.0"))
	require.True(t, ok)
	require.NoError(t, h(nil))

	h, ok = r.Lookup("Swapping.SwapScheduled", decode.ParseSemver("1.6.0"))
	require.True(t, ok)
	require.NoError(t, h(nil))

	h, ok = r.Lookup("Swapping.SwapScheduled", decode.ParseSemver("1.9.0"))
	require.True(t, ok)
	require.NoError(t, h(nil))

	assert.Equal(t, []string{"legacy", "modern", "modern"}, calls)

	// Names registered only in an old era stay active in later versions.
	_, ok = r.Lookup("Swapping.SwapExecuted", decode.ParseSemver("1.9.0"))
	assert.True(t, ok)

	// Below the first era nothing matches.
	_, ok = r.Lookup("Swapping.SwapScheduled", decode.ParseSemver("1.1.0"))
	assert.False(t, ok)

	// Unregistered names are skipped.
	_, ok = r.Lookup("Swapping.Unknown", decode.ParseSemver("1.9.0"))
	assert.False(t, ok)
}

func TestRegistryValidation(t *testing.T) {
	_, err := NewRegistry(nil)
	require.Error(t, err)

	_, err = NewRegistry([]Era{
		{MinVersion: decode.ParseSemver("1.6.0"), Registrations: []Registration{{Name: "A", Handler: noop}}},
		{MinVersion: decode.ParseSemver("1.2.0"), Registrations: []Registration{{Name: "A", Handler: noop}}},
	})
	require.Error(t, err)

	_, err = NewRegistry([]Era{
		{MinVersion: decode.ParseSemver("1.2.0"), Registrations: []Registration{{Name: "A", Handler: noop}}},
		{MinVersion: decode.ParseSemver("1.2.0"), Registrations: []Registration{{Name: "B", Handler: noop}}},
	})
	require.Error(t, err)

	_, err = NewRegistry([]Era{
		{MinVersion: decode.ParseSemver("1.2.0"), Registrations: []Registration{
			{Name: "A", Handler: noop},
			{Name: "A", Handler: noop},
		}},
	})
	require.Error(t, err)

	_, err = NewRegistry([]Era{
		{MinVersion: decode.ParseSemver("1.2.0"), Registrations: []Registration{{Name: "A", Handler: nil}}},
	})
	require.Error(t, err)
}

func TestRegistryNames(t *testing.T) {
	r := MustNewRegistry([]Era{
		{MinVersion: decode.ParseSemver("1.2.0"), Registrations: []Registration{
			{Name: "B", Handler: noop},
			{Name: "A", Handler: noop},
		}},
		{MinVersion: decode.ParseSemver("1.6.0"), Registrations: []Registration{
			{Name: "A", Handler: noop},
			{Name: "C", Handler: noop},
		}},
	})
	assert.Equal(t, []string{"A", "B", "C"}, r.Names())
}
