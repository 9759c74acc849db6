package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain bytes", input: "1024", want: 1024},
		{name: "zero", input: "0", want: 0},
		{name: "byte suffix", input: "512B", want: 512},
		{name: "kilobytes", input: "100K", want: 100 * KiB},
		{name: "kibibytes", input: "100KiB", want: 100 * KiB},
		{name: "megabytes lowercase", input: "10mb", want: 10 * MiB},
		{name: "gigabytes", input: "2G", want: 2 * GiB},
		{name: "terabytes", input: "1TiB", want: TiB},
		{name: "surrounding whitespace", input: "  5M ", want: 5 * MiB},
		{name: "decimal", input: "1.5G", want: 1610612736},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown suffix", input: "100X", wantErr: true},
		{name: "negative", input: "-1M", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSizeErrors(t *testing.T) {
	_, err := ParseSize("-5")
	assert.True(t, errors.Is(err, ErrNegativeSize))

	_, err = ParseSize("5Q")
	assert.True(t, errors.Is(err, ErrInvalidSize))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1.0 KiB", FormatSize(KiB))
	assert.Equal(t, "1.5 MiB", FormatSize(MiB+MiB/2))
	assert.Equal(t, "0 B", FormatSize(-10))
}

func TestDuplicateGroups(t *testing.T) {
	groups := DuplicateGroups{
		"aaa": {"/b", "/a"},
		"bbb": {"/d", "/c", "/e"},
	}

	assert.Equal(t, 2, groups.Count())
	assert.Equal(t, 3, groups.Redundant())
	assert.Equal(t, 0, DuplicateGroups{}.Redundant())
}

func TestIsEmptyHash(t *testing.T) {
	assert.True(t, IsEmptyHash(EmptyHash))
	assert.False(t, IsEmptyHash("abc123"))
}
