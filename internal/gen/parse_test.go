package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validArray = `[
	{"subject": "s1", "body": "b1"},
	{"subject": "s2", "body": "b2"},
	{"subject": "s3", "body": "b3"}
]`

func TestParseSequenceBareArray(t *testing.T) {
	t.Parallel()

	drafts, err := ParseSequence(validArray)
	require.NoError(t, err)
	assert.Equal(t, "s1", drafts[0].Subject)
	assert.Equal(t, "b2", drafts[1].Body)
	assert.Equal(t, "s3", drafts[2].Subject)
}

func TestParseSequenceWithCommentary(t *testing.T) {
	t.Parallel()

	raw := "Here you go:\n" + validArray + "\nLet me know if you'd like changes!"
	drafts, err := ParseSequence(raw)
	require.NoError(t, err)
	assert.Equal(t, "s1", drafts[0].Subject)
}

func TestParseSequenceObjectWrapper(t *testing.T) {
	t.Parallel()

	raw := `{"emails": ` + validArray + `}`
	drafts, err := ParseSequence(raw)
	require.NoError(t, err)
	assert.Equal(t, "b3", drafts[2].Body)
}

func TestParseSequenceObjectWrapperFieldOrder(t *testing.T) {
	t.Parallel()

	altArray := `[
		{"subject": "alt1", "body": "ab1"},
		{"subject": "alt2", "body": "ab2"},
		{"subject": "alt3", "body": "ab3"}
	]`

	// Non-draft fields are passed over; with two draft arrays the first
	// in document order wins every run.
	raw := `{"note": "two options", "ids": ["a", "b"], "emails": ` + validArray + `, "alternates": ` + altArray + `}`
	for i := 0; i < 20; i++ {
		drafts, err := ParseSequence(raw)
		require.NoError(t, err)
		assert.Equal(t, "s1", drafts[0].Subject)
		assert.Equal(t, "b3", drafts[2].Body)
	}
}

func TestParseSequenceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"no json at all", "I cannot write that email."},
		{"empty string", ""},
		{"wrong count", `[{"subject": "s1", "body": "b1"}, {"subject": "s2", "body": "b2"}]`},
		{"missing body", `[{"subject": "s1", "body": "b1"}, {"subject": "s2", "body": "b2"}, {"subject": "s3", "body": ""}]`},
		{"unterminated array", `[{"subject": "s1", "body": "b1"}`},
		{"object without array field", `{"note": "hello"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSequence(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "bare array",
			in:   `[1, 2, 3]`,
			want: `[1, 2, 3]`,
			ok:   true,
		},
		{
			name: "array with prose around it",
			in:   `Sure! [1, [2]] trailing`,
			want: `[1, [2]]`,
			ok:   true,
		},
		{
			name: "object form",
			in:   `prefix {"a": {"b": 1}} suffix`,
			want: `{"a": {"b": 1}}`,
			ok:   true,
		},
		{
			name: "brackets inside strings ignored",
			in:   `[{"subject": "use [brackets] here"}]`,
			want: `[{"subject": "use [brackets] here"}]`,
			ok:   true,
		},
		{
			name: "escaped quote inside string",
			in:   `[{"body": "say \"hi]\" now"}]`,
			want: `[{"body": "say \"hi]\" now"}]`,
			ok:   true,
		},
		{
			name: "no json",
			in:   "plain prose",
			ok:   false,
		},
		{
			name: "unbalanced",
			in:   `[1, 2`,
			ok:   false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractJSON(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
