package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWord(t *testing.T) {
	tests := []struct {
		name     string
		encoded  string
		wantOpt  Optionality
		wantRep  Repetition
		wantRole Role
		wantText string
		invalid  bool
	}{
		{name: "mandatory literal", encoded: "   test", wantOpt: Mandatory, wantRep: Once, wantRole: Literal, wantText: "test"},
		{name: "repeating capture", encoded: " *$v", wantOpt: Mandatory, wantRep: Repeat, wantRole: Capture, wantText: "v"},
		{name: "optional literal", encoded: "?  ,", wantOpt: Optional, wantRep: Once, wantRole: Literal, wantText: ","},
		{name: "list member", encoded: "^  in", wantOpt: OptionalListMember, wantRep: Once, wantRole: Literal, wantText: "in"},
		{name: "repeat single", encoded: " # x", wantOpt: Mandatory, wantRep: RepeatSingle, wantRole: Literal, wantText: "x"},
		{name: "template", encoded: "  +out $v", wantOpt: Mandatory, wantRep: Once, wantRole: Template, wantText: "out $v"},
		{name: "error message tag", encoded: "  !oops", wantRole: ErrorMessageTag, wantText: "oops"},
		{name: "error fix tag", encoded: "  ?use this", wantRole: ErrorFixTag, wantText: "use this"},
		{name: "empty payload", encoded: "   ", wantRole: Literal, wantText: ""},
		{name: "too short", encoded: " *", invalid: true},
		{name: "bad optionality flag", encoded: "x  a", invalid: true},
		{name: "bad repetition flag", encoded: " x a", invalid: true},
		{name: "bad role flag", encoded: "  xa", invalid: true},
		{name: "repeating template", encoded: " *+t", invalid: true},
		{name: "optional template", encoded: "? +t", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ParseWord(tt.encoded)
			if tt.invalid {
				assert.False(t, w.Valid())
				return
			}
			require.True(t, w.Valid())
			assert.Equal(t, tt.wantOpt, w.Opt)
			assert.Equal(t, tt.wantRep, w.Rep)
			assert.Equal(t, tt.wantRole, w.Role)
			assert.Equal(t, tt.wantText, w.Text)
		})
	}
}

func TestWordEncodeRoundTrip(t *testing.T) {
	for _, encoded := range []string{"   test", " *$v", "?  ,", "^# x", "  +tmpl"} {
		w := ParseWord(encoded)
		require.True(t, w.Valid(), encoded)
		assert.Equal(t, encoded, w.Encode())
	}
}

func TestNewWordRejectsBadTemplate(t *testing.T) {
	assert.False(t, NewWord(Mandatory, Repeat, Template, "t").Valid())
	assert.False(t, NewWord(Optional, Once, Template, "t").Valid())
	assert.True(t, NewWord(Mandatory, Once, Template, "t").Valid())
}

func TestRuleValidation(t *testing.T) {
	tests := []struct {
		name    string
		words   []string
		wantErr string
	}{
		{
			name:  "valid list rule",
			words: []string{"   test", "   (", " *$v", " * ,", "   )", "  +$v"},
		},
		{
			name:    "empty rule",
			words:   nil,
			wantErr: "rule is empty",
		},
		{
			name:    "malformed word",
			words:   []string{"   a", "zz", "  +t"},
			wantErr: "malformed word",
		},
		{
			name:    "missing template",
			words:   []string{"   a", "   b"},
			wantErr: "last word must be a template",
		},
		{
			name:    "duplicate capture names",
			words:   []string{"  $v", "   ,", "  $v", "  +t"},
			wantErr: "duplicate capture name",
		},
		{
			name:    "repeating word followed by optional",
			words:   []string{" * a", "?  b", "  +t"},
			wantErr: "cannot be followed by an optional word",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New("r", tt.words...)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.False(t, r.Disabled())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, r.Disabled())
		})
	}
}

func TestNumWordsExcludesTemplate(t *testing.T) {
	r, err := New("r", "   a", "  $v", "  +t")
	require.NoError(t, err)
	assert.Equal(t, 2, r.NumWords())
	assert.Equal(t, "t", r.Template())
}
