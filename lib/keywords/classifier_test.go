package keywords

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubstringMatcher(t *testing.T) {
	m := NewSubstringMatcher("saneamento", "Água", "esgoto")

	cases := []struct {
		text    string
		matched bool
		expect  []string
	}{
		{
			text:    "Dispõe sobre o saneamento básico e o acesso à água potável.",
			matched: true,
			expect:  []string{"saneamento", "Água"},
		},
		{
			text:    "SANEAMENTO em caixa alta",
			matched: true,
			expect:  []string{"saneamento"},
		},
		{
			text:    "nada relevante aqui",
			matched: false,
			expect:  nil,
		},
		{
			text:    "",
			matched: false,
			expect:  nil,
		},
	}

	for _, test := range cases {
		matched, found := m.Match(test.text)
		require.Equal(t, test.matched, matched, test.text)
		require.Equal(t, test.expect, found, test.text)
	}
}

func TestRegexpMatcher(t *testing.T) {
	m, err := NewRegexpMatcher(
		Pattern{Keyword: "imposto", Pattern: `impostos?\b`},
		Pattern{Keyword: "lei complementar", Pattern: `lei\s+complementar`},
	)
	require.NoError(t, err)

	matched, found := m.Match("Altera a Lei  Complementar que institui IMPOSTOS sobre serviços.")
	require.True(t, matched)
	require.Equal(t, []string{"imposto", "lei complementar"}, found)

	matched, found = m.Match("texto sem nada")
	require.False(t, matched)
	require.Nil(t, found)
}

func TestRegexpMatcherBadPattern(t *testing.T) {
	_, err := NewRegexpMatcher(Pattern{Keyword: "x", Pattern: `([`})
	require.Error(t, err)
}

func TestParsePolicy(t *testing.T) {
	matchers, err := ParsePolicy([]MatcherConfig{
		{Kind: "substring", Keywords: []string{"educação"}},
		{Kind: "regexp", Patterns: []Pattern{{Keyword: "verba", Pattern: `verbas?`}}},
	})
	require.NoError(t, err)
	require.Len(t, matchers, 2)

	matchers, err = ParsePolicy(nil)
	require.NoError(t, err)
	require.Empty(t, matchers)

	_, err = ParsePolicy([]MatcherConfig{{Kind: "glob"}})
	require.Error(t, err)
}

func TestClassifyAccumulatesAcrossTexts(t *testing.T) {
	c := NewClassifier(
		NewSubstringMatcher("água", "esgoto"),
		NewSubstringMatcher("água", "saúde"),
	)

	matched := NewSet()
	c.Classify(matched, "acesso à água", "rede de esgoto e saúde pública")

	require.Equal(t, []string{"água", "esgoto", "saúde"}, matched.Values())
}

func TestClassifyIsIdempotent(t *testing.T) {
	c := NewClassifier(NewSubstringMatcher("água"))

	matched := NewSet()
	c.Classify(matched, "água encanada")
	first := append([]string{}, matched.Values()...)

	c.Classify(matched, "água encanada")
	require.Equal(t, first, matched.Values())
	require.Equal(t, 1, matched.Len())
}

func TestEligibility(t *testing.T) {
	catchAll := NewClassifier()
	require.True(t, catchAll.CatchAll())
	require.True(t, catchAll.Eligible(NewSet()))

	filtered := NewClassifier(NewSubstringMatcher("água"))
	require.False(t, filtered.CatchAll())
	require.False(t, filtered.Eligible(NewSet()))

	matched := NewSet()
	filtered.Classify(matched, "água")
	require.True(t, filtered.Eligible(matched))
}

func TestSetDeduplicates(t *testing.T) {
	s := NewSet()
	s.Add("a", "b", "a")
	s.Add("b", "c")
	require.Equal(t, []string{"a", "b", "c"}, s.Values())
	require.Equal(t, "a, b, c", s.Join(", "))
}
