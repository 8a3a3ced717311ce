package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/coffeetab/coffeetab/internal/domain/error"
)

func TestParseAmount(t *testing.T) {
	t.Run("Valid amounts", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected int64
		}{
			{"100.00", 10000},
			{"0.01", 1},
			{"0.10", 10},
			{"1", 100},
			{"1.5", 150},
			{"1234567.89", 123456789},
			{"0.00", 0},
			{"0", 0},
			{"10.", 1000},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				cents, err := ParseAmount(tc.input)
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, cents)
			})
		}
	})

	t.Run("Invalid amounts", func(t *testing.T) {
		testCases := []struct {
			input       string
			errorType   error
			description string
		}{
			{"", errs.ErrInvalidAmount, "Empty string"},
			{"   ", errs.ErrInvalidAmount, "Whitespace only"},
			{"-1.00", errs.ErrNegativeAmount, "Negative amount"},
			{"1.234", errs.ErrInvalidAmount, "Too many decimal places"},
			{"abc", errs.ErrInvalidAmount, "Non-numeric"},
			{"1,000.00", errs.ErrInvalidAmount, "Comma as thousands separator"},
			{"1.00.00", errs.ErrInvalidAmount, "Multiple decimal points"},
			{"$100", errs.ErrInvalidAmount, "Currency symbol"},
		}

		for _, tc := range testCases {
			t.Run(tc.description, func(t *testing.T) {
				_, err := ParseAmount(tc.input)
				assert.Error(t, err)
				assert.ErrorIs(t, err, tc.errorType)
			})
		}
	})
}

func TestParseSignedAmount(t *testing.T) {
	testCases := []struct {
		input    string
		expected int64
	}{
		{"5.00", 500},
		{"-5.00", -500},
		{"-0.01", -1},
		{"0", 0},
		{"-12.5", -1250},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			cents, err := ParseSignedAmount(tc.input)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, cents)
		})
	}

	t.Run("Invalid", func(t *testing.T) {
		for _, input := range []string{"", "--1", "-1.234", "-abc"} {
			_, err := ParseSignedAmount(input)
			assert.Error(t, err, input)
		}
	})
}

func TestCentsToString(t *testing.T) {
	testCases := []struct {
		cents    int64
		expected string
	}{
		{1015, "10.15"},
		{1000, "10.00"},
		{1, "0.01"},
		{0, "0.00"},
		{-50, "-0.50"},
		{-1015, "-10.15"},
		{123456789, "1234567.89"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, CentsToString(tc.cents))
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"0.00", "0.01", "5.00", "123.45", "99999.99"} {
		cents, err := ParseAmount(s)
		assert.NoError(t, err)
		assert.Equal(t, s, CentsToString(cents))
	}
}
