package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomGenerator(t *testing.T) {
	gen := NewRandomGenerator(6)
	seen := make(map[string]struct{})

	for i := 0; i < 200; i++ {
		id, err := gen.NewID()
		require.NoError(t, err)
		require.Len(t, id, 6)
		assert.Regexp(t, `^[a-km-np-z2-9]{6}$`, id)
		seen[id] = struct{}{}
	}

	// 32^6 possibilities; 200 draws colliding more than once would be extraordinary
	assert.Greater(t, len(seen), 198)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "abc123", want: "abc123"},
		{in: "Blue Cotton Shirt", want: "blue-cotton-shirt"},
		{in: "  Hello,   World!  ", want: "hello-world"},
		{in: "user@example.com", want: "user-example-com"},
		{in: "snake_case name", want: "snake_case-name"},
		{in: "---", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestNewUUID(t *testing.T) {
	a, b := NewUUID(), NewUUID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
