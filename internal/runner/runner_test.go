package runner

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(&Options{})
	require.Error(t, err, "an empty pattern must be rejected")

	_, err = New(&Options{Pattern: "foo", Dialect: "perl"})
	require.Error(t, err, "an unknown dialect must be rejected")

	_, err = New(&Options{Pattern: "a(b", Extended: true})
	require.Error(t, err, "a bad pattern must be rejected")

	r, err := New(&Options{Pattern: "foo", Extended: true})
	require.NoError(t, err)
	r.Close()
}

func TestGrepLines(t *testing.T) {
	input := "one foo\ntwo bar\nthree foo bar\n"

	t.Run("basic", func(t *testing.T) {
		r, err := New(&Options{Pattern: "foo", Extended: true})
		require.NoError(t, err)
		defer r.Close()

		var out bytes.Buffer
		n, err := r.grep(&out, "", strings.NewReader(input))
		require.NoError(t, err)
		require.Equal(t, 2, n)
		require.Equal(t, "one foo\nthree foo bar\n", out.String())
	})

	t.Run("invert", func(t *testing.T) {
		r, err := New(&Options{Pattern: "foo", Extended: true, Invert: true})
		require.NoError(t, err)
		defer r.Close()

		var out bytes.Buffer
		n, err := r.grep(&out, "", strings.NewReader(input))
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.Equal(t, "two bar\n", out.String())
	})

	t.Run("line numbers and file name", func(t *testing.T) {
		r, err := New(&Options{Pattern: "bar", Extended: true, LineNumber: true})
		require.NoError(t, err)
		defer r.Close()

		var out bytes.Buffer
		n, err := r.grep(&out, "data.txt", strings.NewReader(input))
		require.NoError(t, err)
		require.Equal(t, 2, n)
		require.Equal(t, "data.txt:2:two bar\ndata.txt:3:three foo bar\n", out.String())
	})

	t.Run("ignore case", func(t *testing.T) {
		r, err := New(&Options{Pattern: "FOO", Extended: true, IgnoreCase: true})
		require.NoError(t, err)
		defer r.Close()

		var out bytes.Buffer
		n, err := r.grep(&out, "", strings.NewReader(input))
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("grep dialect", func(t *testing.T) {
		r, err := New(&Options{Pattern: `fo\+`, Dialect: "grep"})
		require.NoError(t, err)
		defer r.Close()

		var out bytes.Buffer
		n, err := r.grep(&out, "", strings.NewReader(input))
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("cut tags", func(t *testing.T) {
		r, err := New(&Options{
			Pattern:  "foo[[:cut 2:]]|bar[[:cut 3:]]",
			Extended: true,
			Tags:     true,
		})
		require.NoError(t, err)
		defer r.Close()

		var out bytes.Buffer
		n, err := r.grep(&out, "", strings.NewReader("two bar\n"))
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.Equal(t, "[3]:two bar\n", out.String())
	})
}
