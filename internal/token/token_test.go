package token

import "testing"

func TestKeywordFromStringRoundTrip(t *testing.T) {
	for word, kw := range keywordNames {
		got, ok := KeywordFromString(word)
		if !ok || got != kw {
			t.Fatalf("KeywordFromString(%q) = %v, %v; want %v, true", word, got, ok, kw)
		}
		if kw.String() != word {
			t.Fatalf("Keyword(%v).String() = %q; want %q", kw, kw.String(), word)
		}
	}
}

func TestKeywordFromStringRejectsIdent(t *testing.T) {
	if _, ok := KeywordFromString("notAKeyword"); ok {
		t.Fatal("expected KeywordFromString to reject a non-keyword")
	}
}

func TestKindStringCoversAllKinds(t *testing.T) {
	kinds := []Kind{Whitespace, Comment, KeywordTok, Ident, Number, StringLiteral, PunctTok, Other, EOF}
	seen := map[string]bool{}
	for _, k := range kinds {
		s := k.String()
		if s == "Unknown" {
			t.Fatalf("Kind %d stringified to Unknown", k)
		}
		if seen[s] {
			t.Fatalf("Kind %d stringified to duplicate name %q", k, s)
		}
		seen[s] = true
	}
}

func TestIsTrivia(t *testing.T) {
	cases := []struct {
		kind Kind
		want bool
	}{
		{Whitespace, true},
		{Comment, true},
		{Ident, false},
		{KeywordTok, false},
		{EOF, false},
	}
	for _, c := range cases {
		tok := Token{Kind: c.kind}
		if got := tok.IsTrivia(); got != c.want {
			t.Errorf("Token{Kind: %v}.IsTrivia() = %v; want %v", c.kind, got, c.want)
		}
	}
}
