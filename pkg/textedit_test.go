package pkg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplice(t *testing.T) {
	t.Run("replaces a middle span", func(t *testing.T) {
		out, err := Splice("abcdef", Span{Start: 2, End: 4}, "XY")
		require.NoError(t, err)
		require.Equal(t, "abXYef", out)
	})

	t.Run("inserts at an empty span", func(t *testing.T) {
		out, err := Splice("abcdef", Span{Start: 3, End: 3}, "---")
		require.NoError(t, err)
		require.Equal(t, "abc---def", out)
	})

	t.Run("deletes when replacement is empty", func(t *testing.T) {
		out, err := Splice("abcdef", Span{Start: 0, End: 3}, "")
		require.NoError(t, err)
		require.Equal(t, "def", out)
	})

	t.Run("rejects out-of-range spans", func(t *testing.T) {
		_, err := Splice("abc", Span{Start: 1, End: 9}, "x")
		require.Error(t, err)

		_, err = Splice("abc", Span{Start: -1, End: 2}, "x")
		require.Error(t, err)

		_, err = Splice("abc", Span{Start: 2, End: 1}, "x")
		require.Error(t, err)
	})
}

func TestApplyEdits(t *testing.T) {
	t.Run("applies edits regardless of given order", func(t *testing.T) {
		text := "one two three"
		edits := []Edit{
			{Span: Span{Start: 8, End: 13}, Text: "3"},
			{Span: Span{Start: 0, End: 3}, Text: "1"},
		}

		out, err := ApplyEdits(text, edits)
		require.NoError(t, err)
		require.Equal(t, "1 two 3", out)
	})

	t.Run("returns input for no edits", func(t *testing.T) {
		out, err := ApplyEdits("unchanged", nil)
		require.NoError(t, err)
		require.Equal(t, "unchanged", out)
	})

	t.Run("adjacent edits do not overlap", func(t *testing.T) {
		out, err := ApplyEdits("abcd", []Edit{
			{Span: Span{Start: 0, End: 2}, Text: "X"},
			{Span: Span{Start: 2, End: 4}, Text: "Y"},
		})
		require.NoError(t, err)
		require.Equal(t, "XY", out)
	})

	t.Run("rejects overlapping edits", func(t *testing.T) {
		_, err := ApplyEdits("abcdef", []Edit{
			{Span: Span{Start: 0, End: 4}, Text: "X"},
			{Span: Span{Start: 3, End: 6}, Text: "Y"},
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "overlaps")
	})

	t.Run("rejects out-of-range edits", func(t *testing.T) {
		_, err := ApplyEdits("abc", []Edit{{Span: Span{Start: 2, End: 10}, Text: "X"}})
		require.Error(t, err)
	})
}

func TestLineOf(t *testing.T) {
	text := "first\nsecond\nthird"

	cases := []struct {
		name   string
		offset int
		want   int
	}{
		{name: "start of text", offset: 0, want: 1},
		{name: "middle of first line", offset: 3, want: 1},
		{name: "first char after newline", offset: 6, want: 2},
		{name: "last line", offset: 14, want: 3},
		{name: "offset past end clamps to last line", offset: 99, want: 3},
		{name: "negative offset clamps to first line", offset: -5, want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, LineOf(text, tc.offset))
		})
	}
}

func TestIndentAt(t *testing.T) {
	text := "top\n  two spaces\n\ttab\n    const x = 1;\n"

	cases := []struct {
		name   string
		offset int
		want   string
	}{
		{name: "no indent", offset: 1, want: ""},
		{name: "two spaces", offset: 8, want: "  "},
		{name: "tab", offset: 19, want: "\t"},
		{name: "offset on the indent itself", offset: 23, want: "    "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IndentAt(text, tc.offset))
		})
	}
}

func TestSpan(t *testing.T) {
	t.Run("Len and Contains", func(t *testing.T) {
		s := Span{Start: 2, End: 5}
		require.Equal(t, 3, s.Len())
		require.True(t, s.Contains(2))
		require.True(t, s.Contains(4))
		require.False(t, s.Contains(5))
		require.False(t, s.Contains(1))
	})
}
