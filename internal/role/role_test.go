package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Name
		err      error
	}{
		{name: "canonical", input: "Moderator", expected: Moderator},
		{name: "lower case", input: "moderator", expected: Moderator},
		{name: "upper case", input: "ADMINISTRATOR", expected: Administrator},
		{name: "padded", input: "  user ", expected: User},
		{name: "unknown", input: "owner", err: ErrUnknownRole},
		{name: "empty", input: "", err: ErrUnknownRole},
		{name: "prefix only", input: "Admin", err: ErrUnknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("user"))
	assert.False(t, IsValid("guest"))
}

func TestName_Valid(t *testing.T) {
	assert.True(t, Moderator.Valid())
	assert.False(t, Name("moderator").Valid())
}

func TestAll_ReturnsCopy(t *testing.T) {
	roles := All()
	roles[0] = "Changed"

	assert.Equal(t, []Name{Administrator, Moderator, User}, All())
	assert.Equal(t, []string{"Administrator", "Moderator", "User"}, Strings())
}
