// Package ast is the database-independent representation of a query.
//
// A query is built bottom-up from values, columns, functions and
// predicates, then handed to a visitor that renders it for one dialect:
//
//	q := ast.SelectFrom("naukio").Where(
//	    ast.Col("word").Equals("meow").
//	        And(ast.Col("age").LessThan(10)).
//	        And(ast.Col("paw").Equals("warm")),
//	)
//
// # Values
//
// Value is a tagged union over the types that flow in and out of a
// database. Go values convert with ValueOf; builders accept plain Go
// values and convert them on the fly. A value that cannot be converted is
// kept as a BadExpr and fails compilation instead of panicking.
//
// # Immutability
//
// Builder methods never modify their receiver. Each returns a copy with
// its own slices, so a partially built query can be reused as a template:
//
//	base := ast.SelectFrom("users").Where(ast.Col("active").Equals(true))
//	page1 := base.Limit(10)
//	page2 := base.Limit(10).Offset(10)
//
// # Conditions
//
// And, Or and Not nest rather than flatten, so a.And(b).And(c) renders as
// ((a AND b) AND c). An empty And always holds and an empty Or never does.
package ast
