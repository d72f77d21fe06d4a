package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomMatcher(t *testing.T) {
	rooms := []Document{
		{FieldDescription: "Sea view Deluxe suite", FieldRoomSize: "40 sqm"},
		{FieldDescription: "Cosy single", FieldRoomSize: "Small"},
		{FieldDescription: 42, FieldRoomSize: nil},
	}

	tests := []struct {
		name   string
		search string
		want   []int
	}{
		{"empty search matches all", "", []int{0, 1, 2}},
		{"description case-insensitive", "deluxe", []int{0}},
		{"room size", "small", []int{1}},
		{"regex across both fields", "sea|single", []int{0, 1}},
		{"invalid pattern matched literally", "40 (sqm", nil},
		{"no match", "penthouse", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := RoomMatcher(tt.search)
			var got []int
			for i, r := range rooms {
				if match(r) {
					got = append(got, i)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchPattern(t *testing.T) {
	assert.Equal(t, "suite|room", SearchPattern("suite|room"))
	assert.Equal(t, `\(oops`, SearchPattern("(oops"))
}

func TestWithoutID(t *testing.T) {
	in := Document{FieldID: "abc", FieldEmail: "a@b.com"}
	out := WithoutID(in)

	assert.Equal(t, Document{FieldEmail: "a@b.com"}, out)
	assert.Contains(t, in, FieldID, "input is left untouched")
}
