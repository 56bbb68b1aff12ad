package params

import (
	"testing"

	"github.com/stretchr/testify/require"

	fcmmerrors "fcmm.dev/fcmm/internal/errors"
)

var initSchema = Schema{
	Required: [][2]string{{"b", "base"}, {"u", "url"}},
	Flags: []Flag{
		{Short: "b", Long: "base", Value: OneOf, Allowed: []string{"local", "remote"}},
		{Short: "u", Long: "url", Value: AnyValue},
		{Short: "v", Long: "version", Value: AnyValue},
		{Short: "f", Long: "force"},
		{Short: "n", Long: "nopkg"},
	},
}

func TestSplit(t *testing.T) {
	t.Parallel()

	t.Run("flags values and bare words", func(t *testing.T) {
		t.Parallel()
		got := Split("a1 -b1 -c1 c1value  d1 -c2")
		require.Equal(t, Map{
			"a1":  "",
			"-b1": "",
			"-c1": "c1value",
			"d1":  "",
			"-c2": "",
		}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, Split("   "))
	})

	t.Run("duplicates overwrite earlier values", func(t *testing.T) {
		t.Parallel()
		got := Split("-v v1 -v v2")
		require.Equal(t, Map{"-v": "v2"}, got)
	})

	t.Run("tokens keep the typed order", func(t *testing.T) {
		t.Parallel()
		got := Tokens("-z 1 a -b")
		require.Equal(t, []Token{{Key: "-z", Value: "1"}, {Key: "a"}, {Key: "-b"}}, got)
	})

	t.Run("tabs separate tokens", func(t *testing.T) {
		t.Parallel()
		got := Split("-b\tlocal\t-force")
		require.Equal(t, Map{"-b": "local", "-force": ""}, got)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name:    "missing required parameters",
			raw:     "",
			wantErr: "must supply parameter -b / -base",
		},
		{
			name:    "first unsupported parameter as typed",
			raw:     "-f -err2 value1 -err1 value2 -b remote -u ddd",
			wantErr: "parameter -err2 is not supported",
		},
		{
			name:    "typed order decides between kinds of violation",
			raw:     "-b remote -zz -u ddd -v",
			wantErr: "parameter -zz is not supported",
		},
		{
			name:    "value outside the allowed set",
			raw:     "-b testb -url ddd",
			wantErr: `value "testb" of parameter -b is not supported`,
		},
		{
			name:    "enumerated flag without value",
			raw:     "-base -u ddd",
			wantErr: "parameter -base must have a value",
		},
		{
			name:    "value flag without value",
			raw:     "-b remote -v -u ddd",
			wantErr: "parameter -v must have a value",
		},
		{
			name:    "repeated flag is checked with its last value",
			raw:     "-b remote -u ddd -b other",
			wantErr: `value "other" of parameter -b is not supported`,
		},
		{
			name: "valid parameters",
			raw:  "-b remote -u ddd -v V1.1",
		},
		{
			name: "long aliases satisfy required groups",
			raw:  "-base local -url ddd -nopkg -force",
		},
		{
			name: "help flag is always declared",
			raw:  "-b local -u ddd -h",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(Tokens(tc.raw), initSchema)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
			require.Equal(t, fcmmerrors.KindParameter, fcmmerrors.KindOf(err))
		})
	}
}

func TestMapLookup(t *testing.T) {
	t.Parallel()

	m := Split("-base local -force -v")
	require.True(t, m.Has("b", "base"))
	require.True(t, m.Has("f", "force"))
	require.False(t, m.Has("n", "nopkg"))
	require.Equal(t, "local", m.Value("b", "base", ""))
	require.Equal(t, "fallback", m.Value("v", "version", "fallback"))
	require.Equal(t, "fallback", m.Value("t", "tag", "fallback"))
	require.False(t, m.IsHelp())
	require.True(t, Split("-help").IsHelp())
}
