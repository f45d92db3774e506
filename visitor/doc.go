// Package visitor renders ast queries as SQL for a specific dialect.
//
// Every dialect shares one tree walk. The dialect decides quoting,
// placeholders, pagination, function spelling and how parameters are
// encoded:
//
//	v, err := visitor.New("mysql")
//	if err != nil {
//	    return err
//	}
//	cq, err := v.Compile(ast.SelectFrom("users").Where(ast.Col("id").Equals(1)))
//	// cq.SQL:    SELECT `users`.* FROM `users` WHERE `id` = ?
//	// cq.Params: [1]
//
// # Capabilities
//
// Constructs a dialect cannot express, such as RETURNING on MySQL or FULL
// JOIN on SQLite, fail with sqlweave.UnsupportedFeature. The table backing
// that decision is exposed through Visitor.Capabilities.
//
// # Parameter encoding
//
// A column carrying a type hint (ast.Column.Typed) drives the encoding of
// values compared with or assigned to it. Text bound to a UUID column is
// parsed, integers bound to a 16 or 32-bit column are range checked, and
// arrays and JSON are sent as JSON text to databases without native types
// for them.
package visitor
