// Package logic provides three-valued boolean expressions over named
// conditions, plus a pluggable chain of expression parsers.
//
// An Expression evaluates against a lookup from condition name to
// types.Determination and yields a Determination itself: True only when the
// formula is provably true given the known atoms, False only when provably
// false, Unknown otherwise.
//
// Parsers are ordered strategies: Parse returns nil (not an error) when the
// input is not in that parser's recognized syntax, and Of(p1, p2, ...) tries
// each registered parser in declaration order, using the first non-nil
// result. This lets independent syntaxes coexist without a combined grammar.
package logic
