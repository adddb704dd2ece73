package macro

import (
	"math/rand"
	"strings"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScope(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		start   int
		delims  Delimiters
		want    string
		wantEnd int
	}{
		{"simple", "{abc}", 0, Braces, "abc", 5},
		{"nested", "  {a{b}c} rest", 0, Braces, "a{b}c", 9},
		{"escaped close", "{\\}}", 0, Braces, "\\}", 4},
		{"escaped open", "{a\\{b}", 0, Braces, "a\\{b", 6},
		{"brackets", "[2]{x}", 0, Brackets, "2", 3},
		{"skips comment marker", "%\n{a}", 0, Braces, "a", 5},
		{"start offset", "\\foo{bar}", 4, Braces, "bar", 9},
		{"empty scope", "{}", 0, Braces, "", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, end, err := FindScope(tt.text, tt.start, tt.delims)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestFindScope_Malformed(t *testing.T) {
	_, _, err := FindScope("x{a}", 0, Braces)
	require.ErrorIs(t, err, ErrMalformedScope)

	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 0, serr.Pos)
	assert.Contains(t, err.Error(), "found 'x'")

	_, _, err = FindScope("   ", 0, Braces)
	assert.ErrorIs(t, err, ErrMalformedScope)
	assert.Contains(t, err.Error(), "end of input")
}

func TestFindScope_Truncated(t *testing.T) {
	_, _, err := FindScope("{abc{d}", 0, Braces)
	assert.ErrorIs(t, err, ErrUnterminatedScope)

	got, end, err := Lenient.FindScope("{abc{d}", 0, Braces)
	require.NoError(t, err)
	assert.Equal(t, "abc{d}", got)
	assert.Equal(t, 7, end)
}

// balanced builds a random brace-balanced string without escapes.
func balanced(r *rand.Rand, depth int) string {
	var sb strings.Builder
	for i := r.Intn(4); i >= 0; i-- {
		switch {
		case depth < 4 && r.Intn(3) == 0:
			sb.WriteString("{" + balanced(r, depth+1) + "}")
		case r.Intn(5) == 0:
			sb.WriteString(" ")
		default:
			sb.WriteString(string(rune('a' + r.Intn(26))))
		}
	}
	return sb.String()
}

func TestFindScope_BalancedProperty(t *testing.T) {
	cfg := &quick.Config{MaxCount: 200, Rand: rand.New(rand.NewSource(42))}
	property := func(seed int64) bool {
		r := rand.New(rand.NewSource(seed))
		inner := balanced(r, 0)
		tail := balanced(r, 0)
		text := "{" + inner + "}" + tail
		got, end, err := FindScope(text, 0, Braces)
		return err == nil && got == inner && end == len(inner)+2
	}
	if err := quick.Check(property, cfg); err != nil {
		t.Error(err)
	}
}
