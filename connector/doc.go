// Package connector runs AST queries on a single database connection.
//
// A Connection compiles queries with the visitor of its dialect, converts
// the parameters to driver arguments and reads the result into a
// ResultSet of ast values:
//
//	conn, err := connector.Connect(ctx, c, connector.WithQueryLog(true))
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	q := ast.SelectFrom("users").Where(ast.Col("name").Equals("naukio"))
//	rs, err := conn.Select(ctx, q)
//	if err != nil {
//	    return err
//	}
//	row, err := rs.Single()
//
// Transactions are opened with StartTransaction and finished with Commit
// or Rollback. The Transaction itself is a Queryable:
//
//	tx, err := conn.StartTransaction(ctx)
//	if err != nil {
//	    return err
//	}
//	if _, err := tx.Insert(ctx, ins); err != nil {
//	    _ = tx.Rollback(ctx)
//	    return err
//	}
//	return tx.Commit(ctx)
package connector
