// Package lexer implements C1: conversion of Wuu source text into a token
// stream with byte spans, following the functional-options construction
// style used throughout this module's tooling.
package lexer

import (
	"unicode/utf8"

	"github.com/wuu-lang/wuu/internal/token"
	"github.com/wuu-lang/wuu/internal/wuuerr"
)

// Option configures a Lexer at construction time.
type Option func(*Lexer)

// WithTracing records a tracing flag on the Lexer. Lex does not read the
// flag, so it changes neither the tokens nor any output.
func WithTracing(trace bool) Option {
	return func(l *Lexer) { l.tracing = trace }
}

// Lexer scans a UTF-8 source string into tokens.
type Lexer struct {
	src     string
	tracing bool
}

// New constructs a Lexer over src.
func New(src string, opts ...Option) *Lexer {
	l := &Lexer{src: src}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lex scans the whole input and returns the full token stream, including
// trivia, or the first error encountered.
func Lex(src string) ([]token.Token, *wuuerr.Error) {
	return New(src).Lex()
}

// Lex scans the configured source.
func (l *Lexer) Lex() ([]token.Token, *wuuerr.Error) {
	var tokens []token.Token
	src := l.src
	i := 0
	n := len(src)

	for i < n {
		b := src[i]

		switch {
		case isASCIIWhitespace(b):
			start := i
			for i < n && isASCIIWhitespace(src[i]) {
				i++
			}
			tokens = append(tokens, token.Token{Kind: token.Whitespace, Span: wuuerr.Span{Start: start, End: i}, Text: src[start:i]})

		case b == '/' && i+1 < n && src[i+1] == '/':
			start := i
			for i < n && src[i] != '\n' {
				i++
			}
			tokens = append(tokens, token.Token{Kind: token.Comment, Span: wuuerr.Span{Start: start, End: i}, Text: src[start:i]})

		case b == '/' && i+1 < n && src[i+1] == '*':
			start := i
			i += 2
			closed := false
			for i+1 < n {
				if src[i] == '*' && src[i+1] == '/' {
					i += 2
					closed = true
					break
				}
				i++
			}
			if !closed {
				return nil, wuuerr.WithSpan(wuuerr.KindLex, "unterminated block comment", wuuerr.Span{Start: start, End: n}, src)
			}
			tokens = append(tokens, token.Token{Kind: token.Comment, Span: wuuerr.Span{Start: start, End: i}, Text: src[start:i]})

		case b == '"':
			start := i
			i++
			closed := false
			for i < n {
				if src[i] == '\\' && i+1 < n {
					i += 2
					continue
				}
				if src[i] == '"' {
					i++
					closed = true
					break
				}
				i++
			}
			if !closed {
				return nil, wuuerr.WithSpan(wuuerr.KindLex, "unterminated string literal", wuuerr.Span{Start: start, End: n}, src)
			}
			tokens = append(tokens, token.Token{Kind: token.StringLiteral, Span: wuuerr.Span{Start: start, End: i}, Text: src[start:i]})

		case isIdentStart(b):
			start := i
			i++
			for i < n && isIdentContinue(src[i]) {
				i++
			}
			text := src[start:i]
			if kw, ok := token.KeywordFromString(text); ok {
				tokens = append(tokens, token.Token{Kind: token.KeywordTok, Span: wuuerr.Span{Start: start, End: i}, Text: text, Keyword: kw})
			} else {
				tokens = append(tokens, token.Token{Kind: token.Ident, Span: wuuerr.Span{Start: start, End: i}, Text: text})
			}

		case isASCIIDigit(b):
			start := i
			for i < n && isASCIIDigit(src[i]) {
				i++
			}
			tokens = append(tokens, token.Token{Kind: token.Number, Span: wuuerr.Span{Start: start, End: i}, Text: src[start:i]})

		case b < 0x80:
			tokens = append(tokens, token.Token{Kind: token.PunctTok, Span: wuuerr.Span{Start: i, End: i + 1}, Text: src[i : i+1]})
			i++

		default:
			r, size := utf8.DecodeRuneInString(src[i:])
			if r == utf8.RuneError && size <= 1 {
				return nil, wuuerr.WithSpan(wuuerr.KindLex, "invalid utf-8", wuuerr.Span{Start: i, End: i + 1}, src)
			}
			tokens = append(tokens, token.Token{Kind: token.Other, Span: wuuerr.Span{Start: i, End: i + size}, Text: src[i : i+size]})
			i += size
		}
	}

	return tokens, nil
}

// NonTrivia filters whitespace and comments out of a token stream, the
// subsequence the parser actually walks.
func NonTrivia(tokens []token.Token) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		if !t.IsTrivia() {
			out = append(out, t)
		}
	}
	return out
}

func isASCIIWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isASCIIDigit(b)
}
