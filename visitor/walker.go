package visitor

import (
	"math"
	"strconv"
	"strings"

	"github.com/syssam/sqlweave"
	"github.com/syssam/sqlweave/ast"
)

// builder walks a query tree and accumulates SQL text and parameters.
// A builder renders a single query and is not reused.
type builder struct {
	sb     strings.Builder
	r      renderer
	caps   *Capabilities
	params []ast.Value
}

func newBuilder(r renderer) *builder {
	return &builder{r: r, caps: r.Capabilities()}
}

// String returns the SQL rendered so far.
func (b *builder) String() string { return b.sb.String() }

func (b *builder) write(ss ...string) {
	for _, s := range ss {
		b.sb.WriteString(s)
	}
}

// ident writes a quoted identifier. Closing quote characters inside the
// name are doubled.
func (b *builder) ident(name string) {
	q := b.caps.QuoteClose
	b.write(b.caps.QuoteOpen, strings.ReplaceAll(name, q, q+q), q)
}

// param encodes v and writes its placeholder.
func (b *builder) param(v ast.Value, hint ast.ColumnType) error {
	ev, err := b.r.encode(v, hint)
	if err != nil {
		return err
	}
	b.params = append(b.params, ev)
	n := strconv.Itoa(len(b.params))
	switch b.caps.Placeholder {
	case PlaceholderDollar:
		b.write("$", n)
	case PlaceholderAtP:
		b.write("@P", n)
	default:
		b.write("?")
	}
	return nil
}

func (b *builder) uintParam(n uint64) error {
	if n > math.MaxInt64 {
		return sqlweave.NewError(sqlweave.ValueOutOfRange{
			Message: "row count " + strconv.FormatUint(n, 10) + " does not fit in a signed 64-bit integer",
		})
	}
	return b.param(ast.Int(int64(n)), ast.TypeInt8)
}

// list calls f for 0..n-1, writing sep between calls.
func (b *builder) list(n int, sep string, f func(int) error) error {
	for i := 0; i < n; i++ {
		if i > 0 {
			b.write(sep)
		}
		if err := f(i); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) alias(a string) {
	if a != "" {
		b.write(" AS ")
		b.ident(a)
	}
}

func (b *builder) selectStmt(s *ast.Select) error {
	if s == nil {
		return malformed("select is nil")
	}
	b.write("SELECT ")
	if s.IsDistinct {
		b.write("DISTINCT ")
	}
	top := b.caps.Pagination == PaginateTop && s.RowLimit != nil && s.RowOffset == nil
	if top {
		b.write("TOP (")
		if err := b.uintParam(*s.RowLimit); err != nil {
			return err
		}
		b.write(") ")
	}
	if err := b.projection(s); err != nil {
		return err
	}
	if len(s.Tables) > 0 {
		b.write(" FROM ")
		if err := b.list(len(s.Tables), ", ", func(i int) error {
			return b.table(s.Tables[i], true)
		}); err != nil {
			return err
		}
	}
	for _, j := range s.Joins {
		if err := b.join(j); err != nil {
			return err
		}
	}
	if s.Conditions != nil {
		b.write(" WHERE ")
		if err := b.conditions(*s.Conditions); err != nil {
			return err
		}
	}
	if len(s.Grouping) > 0 {
		b.write(" GROUP BY ")
		if err := b.list(len(s.Grouping), ", ", func(i int) error {
			return b.scalar(s.Grouping[i], ast.TypeUnknown)
		}); err != nil {
			return err
		}
	}
	if s.HavingConditions != nil {
		b.write(" HAVING ")
		if err := b.conditions(*s.HavingConditions); err != nil {
			return err
		}
	}
	return b.orderAndPage(s.Ordering, s.RowLimit, s.RowOffset, top)
}

func (b *builder) projection(s *ast.Select) error {
	if len(s.Projection) > 0 {
		return b.list(len(s.Projection), ", ", func(i int) error {
			return b.projected(s.Projection[i])
		})
	}
	if len(s.Tables) == 0 {
		b.write("*")
		return nil
	}
	return b.list(len(s.Tables), ", ", func(i int) error {
		t := s.Tables[i]
		if t.Query == nil || t.Alias != "" {
			b.tableRef(t)
			b.write(".")
		}
		b.write("*")
		return nil
	})
}

// projected renders one entry of the select list, with its alias.
func (b *builder) projected(e ast.Expression) error {
	switch e := e.(type) {
	case ast.Column:
		if err := b.column(e); err != nil {
			return err
		}
		b.alias(e.Alias)
	case ast.Function:
		if err := b.function(e); err != nil {
			return err
		}
		b.alias(e.Alias)
	case ast.CastExpr:
		if err := b.cast(e, ast.TypeUnknown); err != nil {
			return err
		}
		b.alias(e.Alias)
	case ast.Aliased:
		if err := b.scalar(e.Expr, ast.TypeUnknown); err != nil {
			return err
		}
		b.alias(e.Alias)
	default:
		return b.scalar(e, ast.TypeUnknown)
	}
	return nil
}

func (b *builder) orderAndPage(o ast.Ordering, limit, offset *uint64, topDone bool) error {
	if len(o) > 0 {
		b.write(" ORDER BY ")
		if err := b.ordering(o); err != nil {
			return err
		}
	}
	switch b.caps.Pagination {
	case PaginateLimitOffset:
		switch {
		case limit != nil:
			b.write(" LIMIT ")
			if err := b.uintParam(*limit); err != nil {
				return err
			}
			if offset != nil {
				b.write(" OFFSET ")
				return b.uintParam(*offset)
			}
		case offset != nil:
			if b.caps.OffsetOnlyLimit != "" {
				b.write(" LIMIT ", b.caps.OffsetOnlyLimit)
			}
			b.write(" OFFSET ")
			return b.uintParam(*offset)
		}
	case PaginateOffsetFetch:
		switch {
		case offset != nil:
			b.write(" OFFSET ")
			if err := b.uintParam(*offset); err != nil {
				return err
			}
			b.write(" ROWS")
			if limit != nil {
				b.write(" FETCH NEXT ")
				if err := b.uintParam(*limit); err != nil {
					return err
				}
				b.write(" ROWS ONLY")
			}
		case limit != nil:
			b.write(" FETCH FIRST ")
			if err := b.uintParam(*limit); err != nil {
				return err
			}
			b.write(" ROWS ONLY")
		}
	case PaginateTop:
		if topDone || (limit == nil && offset == nil) {
			return nil
		}
		// OFFSET requires an ORDER BY clause.
		if len(o) == 0 {
			b.write(" ORDER BY (SELECT NULL)")
		}
		var skip uint64
		if offset != nil {
			skip = *offset
		}
		b.write(" OFFSET ")
		if err := b.uintParam(skip); err != nil {
			return err
		}
		b.write(" ROWS")
		if limit != nil {
			b.write(" FETCH NEXT ")
			if err := b.uintParam(*limit); err != nil {
				return err
			}
			b.write(" ROWS ONLY")
		}
	}
	return nil
}

func (b *builder) ordering(o ast.Ordering) error {
	return b.list(len(o), ", ", func(i int) error {
		if err := b.scalar(o[i].Expr, ast.TypeUnknown); err != nil {
			return err
		}
		switch o[i].Order {
		case ast.Asc:
			b.write(" ASC")
		case ast.Desc:
			b.write(" DESC")
		}
		return nil
	})
}

// tableRef writes the name a table is referred to by: its alias if it has
// one, its qualified name otherwise.
func (b *builder) tableRef(t ast.Table) {
	switch {
	case t.Alias != "":
		b.ident(t.Alias)
	case t.Database != "":
		b.ident(t.Database)
		b.write(".")
		b.ident(t.Name)
	default:
		b.ident(t.Name)
	}
}

func (b *builder) table(t ast.Table, withAlias bool) error {
	switch {
	case t.Query != nil:
		b.write("(")
		if err := b.selectStmt(t.Query); err != nil {
			return err
		}
		b.write(")")
	case t.Name == "":
		return malformed("table has no name")
	default:
		if t.Database != "" {
			b.ident(t.Database)
			b.write(".")
		}
		b.ident(t.Name)
	}
	if withAlias {
		b.alias(t.Alias)
	}
	return nil
}

func (b *builder) join(j ast.Join) error {
	switch j.Kind {
	case ast.InnerJoin, ast.LeftJoin:
	case ast.RightJoin:
		if !b.caps.Supports(FeatureRightJoin) {
			return unsupported(b.caps.Dialect, FeatureRightJoin)
		}
	case ast.FullJoin:
		if !b.caps.Supports(FeatureFullJoin) {
			return unsupported(b.caps.Dialect, FeatureFullJoin)
		}
	default:
		return malformed("unknown join kind %d", j.Kind)
	}
	b.write(" ", j.Kind.String(), " ")
	if err := b.table(j.Table, true); err != nil {
		return err
	}
	b.write(" ON ")
	return b.conditions(j.On)
}

func (b *builder) column(c ast.Column) error {
	if c.Name == "" {
		return malformed("column has no name")
	}
	if t := c.Table; t != nil && (t.Query == nil || t.Alias != "") {
		b.tableRef(*t)
		b.write(".")
	}
	b.ident(c.Name)
	return nil
}

func (b *builder) conditions(t ast.ConditionTree) error {
	switch t.Kind {
	case ast.CondAnd, ast.CondOr:
		if len(t.Exprs) == 0 {
			if t.Kind == ast.CondAnd {
				b.write("1=1")
			} else {
				b.write("1=0")
			}
			return nil
		}
		sep := " AND "
		if t.Kind == ast.CondOr {
			sep = " OR "
		}
		b.write("(")
		if err := b.list(len(t.Exprs), sep, func(i int) error {
			return b.scalar(t.Exprs[i], ast.TypeUnknown)
		}); err != nil {
			return err
		}
		b.write(")")
	case ast.CondNot:
		if len(t.Exprs) != 1 {
			return malformed("NOT takes one expression, got %d", len(t.Exprs))
		}
		b.write("(NOT ")
		if err := b.scalar(t.Exprs[0], ast.TypeUnknown); err != nil {
			return err
		}
		b.write(")")
	case ast.CondSingle:
		if len(t.Exprs) != 1 {
			return malformed("single condition takes one expression, got %d", len(t.Exprs))
		}
		return b.scalar(t.Exprs[0], ast.TypeUnknown)
	case ast.CondNegativeCondition:
		b.write("1=0")
	default:
		b.write("1=1")
	}
	return nil
}

// scalar renders e in a position that takes a single value.
func (b *builder) scalar(e ast.Expression, hint ast.ColumnType) error {
	if _, ok := e.(ast.Row); ok {
		return malformed("row used where a single value is expected")
	}
	return b.expr(e, hint)
}

func (b *builder) expr(e ast.Expression, hint ast.ColumnType) error {
	switch e := e.(type) {
	case nil:
		return malformed("missing expression")
	case ast.Value:
		return b.param(e, hint)
	case ast.Column:
		return b.column(e)
	case ast.Row:
		b.write("(")
		if err := b.list(len(e.Values), ", ", func(i int) error {
			return b.expr(e.Values[i], hint)
		}); err != nil {
			return err
		}
		b.write(")")
	case *ast.Select:
		b.write("(")
		if err := b.selectStmt(e); err != nil {
			return err
		}
		b.write(")")
	case ast.Function:
		return b.function(e)
	case ast.Asterisk:
		if e.Table != nil {
			b.tableRef(*e.Table)
			b.write(".")
		}
		b.write("*")
	case ast.Compare:
		return b.compare(e)
	case ast.ConditionTree:
		return b.conditions(e)
	case ast.CastExpr:
		return b.cast(e, hint)
	case ast.Raw:
		b.write(string(e))
	case ast.Aliased:
		return b.expr(e.Expr, hint)
	case ast.BadExpr:
		if e.Err == nil {
			return sqlweave.NewError(sqlweave.ConversionError{Message: "invalid expression"})
		}
		return e.Err
	default:
		return malformed("unknown expression %T", e)
	}
	return nil
}

// hintOf returns the type hint carried by a column operand.
func hintOf(e ast.Expression) ast.ColumnType {
	if c, ok := e.(ast.Column); ok {
		return c.Type
	}
	return ast.TypeUnknown
}

func (b *builder) compare(c ast.Compare) error {
	hint := hintOf(c.Left)
	if hint == ast.TypeUnknown {
		hint = hintOf(c.Right)
	}
	switch c.Op {
	case ast.OpEquals, ast.OpNotEquals:
		if v, ok := c.Right.(ast.Value); ok && v.IsNull() {
			if err := b.scalar(c.Left, hint); err != nil {
				return err
			}
			if c.Op == ast.OpEquals {
				b.write(" IS NULL")
			} else {
				b.write(" IS NOT NULL")
			}
			return nil
		}
		return b.binary(c, hint)
	case ast.OpLessThan, ast.OpLessThanOrEquals, ast.OpGreaterThan, ast.OpGreaterThanOrEquals:
		return b.binary(c, hint)
	case ast.OpLike, ast.OpNotLike:
		if err := b.scalar(c.Left, hint); err != nil {
			return err
		}
		b.write(" ", c.Op.String(), " ")
		return b.scalar(c.Right, ast.TypeUnknown)
	case ast.OpIn, ast.OpNotIn:
		return b.in(c, hint)
	case ast.OpIsNull, ast.OpIsNotNull:
		if err := b.scalar(c.Left, hint); err != nil {
			return err
		}
		b.write(" ", c.Op.String())
	case ast.OpBetween, ast.OpNotBetween:
		if err := b.scalar(c.Left, hint); err != nil {
			return err
		}
		b.write(" ", c.Op.String(), " ")
		if err := b.scalar(c.Right, hint); err != nil {
			return err
		}
		b.write(" AND ")
		return b.scalar(c.High, hint)
	case ast.OpMatches, ast.OpNotMatches:
		if f, ok := c.Left.(ast.Function); !ok || f.Kind != ast.FnTextSearch {
			return malformed("full-text match requires a text search function on the left")
		}
		return b.r.matches(b, c)
	case ast.OpRaw:
		if c.RawOp == "" {
			return malformed("raw comparison has no operator")
		}
		if err := b.expr(c.Left, hint); err != nil {
			return err
		}
		b.write(" ", c.RawOp, " ")
		return b.expr(c.Right, hint)
	default:
		return malformed("unknown comparison operator %d", c.Op)
	}
	return nil
}

// binary renders a two-sided comparison. Rows compare only with rows of
// the same length.
func (b *builder) binary(c ast.Compare, hint ast.ColumnType) error {
	lr, lok := c.Left.(ast.Row)
	rr, rok := c.Right.(ast.Row)
	if lok != rok {
		return malformed("row compared with a single value")
	}
	if lok && lr.Len() != rr.Len() {
		return malformed("rows of %d and %d values compared", lr.Len(), rr.Len())
	}
	if err := b.expr(c.Left, hint); err != nil {
		return err
	}
	b.write(" ", c.Op.String(), " ")
	if lok {
		return b.hintedRow(rr, rowHints(lr))
	}
	return b.expr(c.Right, hint)
}

func (b *builder) in(c ast.Compare, hint ast.ColumnType) error {
	switch right := c.Right.(type) {
	case nil:
		return malformed("IN without a right side")
	case ast.Row:
		if right.Len() == 0 {
			if c.Op == ast.OpIn {
				b.write("1=0")
			} else {
				b.write("1=1")
			}
			return nil
		}
		if left, ok := c.Left.(ast.Row); ok {
			return b.tupleIn(c.Op, left, right)
		}
		if err := b.scalar(c.Left, hint); err != nil {
			return err
		}
		b.write(" ", c.Op.String(), " (")
		if err := b.list(right.Len(), ", ", func(i int) error {
			return b.scalar(right.Values[i], hint)
		}); err != nil {
			return err
		}
		b.write(")")
	case *ast.Select:
		if err := b.expr(c.Left, hint); err != nil {
			return err
		}
		b.write(" ", c.Op.String(), " ")
		return b.expr(right, hint)
	default:
		if err := b.scalar(c.Left, hint); err != nil {
			return err
		}
		b.write(" ", c.Op.String(), " (")
		if err := b.scalar(right, hint); err != nil {
			return err
		}
		b.write(")")
	}
	return nil
}

// tupleIn renders (a, b) IN ((?, ?), (?, ?)).
func (b *builder) tupleIn(op ast.CompareOp, left, right ast.Row) error {
	if err := b.expr(left, ast.TypeUnknown); err != nil {
		return err
	}
	hints := rowHints(left)
	b.write(" ", op.String(), " (")
	if err := b.list(right.Len(), ", ", func(i int) error {
		r, ok := right.Values[i].(ast.Row)
		if !ok || r.Len() != left.Len() {
			return malformed("tuple IN expects rows of %d values", left.Len())
		}
		return b.hintedRow(r, hints)
	}); err != nil {
		return err
	}
	b.write(")")
	return nil
}

func rowHints(r ast.Row) []ast.ColumnType {
	hints := make([]ast.ColumnType, r.Len())
	for i, e := range r.Values {
		hints[i] = hintOf(e)
	}
	return hints
}

func (b *builder) hintedRow(r ast.Row, hints []ast.ColumnType) error {
	b.write("(")
	if err := b.list(r.Len(), ", ", func(i int) error {
		var h ast.ColumnType
		if i < len(hints) {
			h = hints[i]
		}
		return b.scalar(r.Values[i], h)
	}); err != nil {
		return err
	}
	b.write(")")
	return nil
}

func (b *builder) function(f ast.Function) error {
	if !b.caps.SupportsFunction(f.Kind) {
		return unsupported(b.caps.Dialect, f.Kind)
	}
	if f.Kind == ast.FnJSONExtract {
		want, name := JSONPathString, "json_extract with a string path"
		if f.Path.IsArray {
			want, name = JSONPathArray, "json_extract with an array path"
		}
		if b.caps.JSONPath != want {
			return unsupported(b.caps.Dialect, name)
		}
	}
	return b.r.function(b, f)
}

// standardFunction renders the functions every dialect spells the same.
func (b *builder) standardFunction(f ast.Function) error {
	switch f.Kind {
	case ast.FnRowNumber:
		b.write("ROW_NUMBER() OVER(")
		if len(f.Partition) > 0 {
			b.write("PARTITION BY ")
			if err := b.args(f.Partition); err != nil {
				return err
			}
			if len(f.Ordering) > 0 {
				b.write(" ")
			}
		}
		if len(f.Ordering) > 0 {
			b.write("ORDER BY ")
			if err := b.ordering(f.Ordering); err != nil {
				return err
			}
		}
		b.write(")")
		return nil
	case ast.FnCount:
		if len(f.Args) == 0 {
			b.write("COUNT(*)")
			return nil
		}
		return b.call("COUNT", f.Args)
	case ast.FnAverage:
		return b.call("AVG", f.Args)
	case ast.FnSum:
		return b.call("SUM", f.Args)
	case ast.FnLower:
		return b.call("LOWER", f.Args)
	case ast.FnUpper:
		return b.call("UPPER", f.Args)
	case ast.FnMinimum:
		return b.call("MIN", f.Args)
	case ast.FnMaximum:
		return b.call("MAX", f.Args)
	case ast.FnCoalesce:
		return b.call("COALESCE", f.Args)
	case ast.FnConcat:
		return b.call("CONCAT", f.Args)
	}
	return unsupported(b.caps.Dialect, f.Kind)
}

// call writes name(args...).
func (b *builder) call(name string, args []ast.Expression) error {
	if len(args) == 0 {
		return malformed("%s needs at least one argument", name)
	}
	b.write(name, "(")
	if err := b.args(args); err != nil {
		return err
	}
	b.write(")")
	return nil
}

func (b *builder) args(args []ast.Expression) error {
	return b.list(len(args), ", ", func(i int) error {
		return b.scalar(args[i], ast.TypeUnknown)
	})
}

// concatOperator renders (a || b || c).
func (b *builder) concatOperator(args []ast.Expression) error {
	if len(args) == 0 {
		return malformed("concat needs at least one argument")
	}
	b.write("(")
	if err := b.list(len(args), " || ", func(i int) error {
		return b.scalar(args[i], ast.TypeUnknown)
	}); err != nil {
		return err
	}
	b.write(")")
	return nil
}

func (b *builder) cast(c ast.CastExpr, hint ast.ColumnType) error {
	if !b.caps.Supports(FeatureCast) || !c.Type.AppliesTo(b.caps.CastOn) {
		return b.scalar(c.Expr, hint)
	}
	if c.Type.Kind == ast.CastCustom && c.Type.Custom == "" {
		return malformed("custom cast has no type name")
	}
	name := b.r.castName(c.Type)
	if name == "" {
		return malformed("unknown cast kind %d", c.Type.Kind)
	}
	b.write("CAST(")
	if err := b.scalar(c.Expr, hint); err != nil {
		return err
	}
	b.write(" AS ", name, ")")
	return nil
}

func (b *builder) checkReturning(cols []ast.Column) error {
	if len(cols) > 0 && !b.caps.Supports(FeatureReturning) && !b.caps.Supports(FeatureOutputInserted) {
		return unsupported(b.caps.Dialect, FeatureReturning)
	}
	return nil
}

// output writes the OUTPUT INSERTED clause of dialects that return rows
// that way.
func (b *builder) output(cols []ast.Column) {
	if len(cols) == 0 || !b.caps.Supports(FeatureOutputInserted) {
		return
	}
	b.write(" OUTPUT ")
	for i, c := range cols {
		if i > 0 {
			b.write(", ")
		}
		b.write("INSERTED.")
		b.ident(c.Name)
	}
}

func (b *builder) returning(cols []ast.Column) {
	if len(cols) == 0 || !b.caps.Supports(FeatureReturning) {
		return
	}
	b.write(" RETURNING ")
	for i, c := range cols {
		if i > 0 {
			b.write(", ")
		}
		b.ident(c.Name)
	}
}

func (b *builder) insertStmt(ins *ast.Insert) error {
	if ins == nil {
		return malformed("insert is nil")
	}
	ignore := ins.Conflict == ast.OnConflictDoNothing
	if ignore && !b.caps.Supports(FeatureOnConflictNothing) {
		return unsupported(b.caps.Dialect, FeatureOnConflictNothing)
	}
	if err := b.checkReturning(ins.Returning); err != nil {
		return err
	}
	b.write("INSERT ")
	if ignore {
		b.write(b.caps.conflictPrefix)
	}
	b.write("INTO ")
	if err := b.table(ins.Table, false); err != nil {
		return err
	}
	if len(ins.Columns) == 0 {
		for _, r := range ins.Rows {
			if r.Len() > 0 {
				return malformed("insert has values but no columns")
			}
		}
		b.output(ins.Returning)
		b.write(b.caps.EmptyInsert)
	} else {
		if len(ins.Rows) == 0 {
			return malformed("insert has columns but no rows")
		}
		b.write(" (")
		for i, c := range ins.Columns {
			if c.Name == "" {
				return malformed("insert column %d has no name", i)
			}
			if i > 0 {
				b.write(", ")
			}
			b.ident(c.Name)
		}
		b.write(")")
		b.output(ins.Returning)
		b.write(" VALUES ")
		if err := b.list(len(ins.Rows), ", ", func(i int) error {
			r := ins.Rows[i]
			if r.Len() != len(ins.Columns) {
				return malformed("insert row %d has %d values for %d columns", i, r.Len(), len(ins.Columns))
			}
			b.write("(")
			if err := b.list(r.Len(), ", ", func(j int) error {
				return b.scalar(r.Values[j], ins.Columns[j].Type)
			}); err != nil {
				return err
			}
			b.write(")")
			return nil
		}); err != nil {
			return err
		}
	}
	if ignore {
		b.write(b.caps.conflictSuffix)
	}
	b.returning(ins.Returning)
	return nil
}

func (b *builder) updateStmt(u *ast.Update) error {
	if u == nil {
		return malformed("update is nil")
	}
	if len(u.Columns) == 0 {
		return malformed("update has no assignments")
	}
	if len(u.Columns) != len(u.Values) {
		return malformed("update has %d columns and %d values", len(u.Columns), len(u.Values))
	}
	if err := b.checkReturning(u.Returning); err != nil {
		return err
	}
	b.write("UPDATE ")
	if err := b.table(u.Table, false); err != nil {
		return err
	}
	b.write(" SET ")
	if err := b.list(len(u.Columns), ", ", func(i int) error {
		c := u.Columns[i]
		if c.Name == "" {
			return malformed("update column %d has no name", i)
		}
		b.ident(c.Name)
		b.write(" = ")
		return b.scalar(u.Values[i], c.Type)
	}); err != nil {
		return err
	}
	b.output(u.Returning)
	if u.Conditions != nil {
		b.write(" WHERE ")
		if err := b.conditions(*u.Conditions); err != nil {
			return err
		}
	}
	b.returning(u.Returning)
	return nil
}

func (b *builder) deleteStmt(d *ast.Delete) error {
	if d == nil {
		return malformed("delete is nil")
	}
	b.write("DELETE FROM ")
	if err := b.table(d.Table, false); err != nil {
		return err
	}
	if d.Conditions != nil {
		b.write(" WHERE ")
		return b.conditions(*d.Conditions)
	}
	return nil
}

func (b *builder) unionStmt(u *ast.Union) error {
	if u == nil || len(u.Selects) == 0 {
		return malformed("union has no selects")
	}
	if len(u.Types) != len(u.Selects)-1 {
		return malformed("union has %d selects and %d operators", len(u.Selects), len(u.Types))
	}
	nested := b.caps.Supports(FeatureNestedUnion)
	for i, s := range u.Selects {
		if i > 0 {
			if u.Types[i-1] == ast.UnionAll {
				b.write(" UNION ALL ")
			} else {
				b.write(" UNION ")
			}
		}
		if !nested {
			if s != nil && (len(s.Ordering) > 0 || s.RowLimit != nil || s.RowOffset != nil) {
				return unsupported(b.caps.Dialect, "ORDER BY or LIMIT inside a UNION member")
			}
			if err := b.selectStmt(s); err != nil {
				return err
			}
			continue
		}
		b.write("(")
		if err := b.selectStmt(s); err != nil {
			return err
		}
		b.write(")")
	}
	return b.orderAndPage(u.Ordering, u.RowLimit, u.RowOffset, false)
}

func (b *builder) rawQuery(q ast.RawQuery) error {
	if strings.TrimSpace(q.SQL) == "" {
		return malformed("raw query is empty")
	}
	b.write(q.SQL)
	for _, v := range q.Params {
		ev, err := b.r.encode(v, ast.TypeUnknown)
		if err != nil {
			return err
		}
		b.params = append(b.params, ev)
	}
	return nil
}

// wrap writes prefix, the single argument of f, then suffix.
func (b *builder) wrap(prefix string, f ast.Function, suffix string) error {
	arg, err := oneArg(f)
	if err != nil {
		return err
	}
	b.write(prefix)
	if err := b.scalar(arg, ast.TypeUnknown); err != nil {
		return err
	}
	b.write(suffix)
	return nil
}

func oneArg(f ast.Function) (ast.Expression, error) {
	if len(f.Args) != 1 {
		return nil, malformed("%s takes one argument, got %d", f.Kind, len(f.Args))
	}
	return f.Args[0], nil
}

func castName(names []string, t ast.CastType) string {
	if t.Kind == ast.CastCustom {
		return t.Custom
	}
	if int(t.Kind) < len(names) {
		return names[t.Kind]
	}
	return ""
}
