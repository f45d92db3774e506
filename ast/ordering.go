package ast

// Order is the direction of an ordering entry.
type Order uint8

// Orders. OrderUnset leaves the direction to the database.
const (
	OrderUnset Order = iota
	Asc
	Desc
)

// OrderDef is one ordering entry.
type OrderDef struct {
	Expr  Expression
	Order Order
}

// Ordering is a list of ordering entries. The first entry is the primary
// sort key.
type Ordering []OrderDef

// Append returns a copy of o with the given entries appended. Entries may
// be OrderDef values, column names or expressions.
func (o Ordering) Append(defs ...any) Ordering {
	out := appendClip(o)
	for _, d := range defs {
		out = append(out, toOrderDef(d))
	}
	return out
}

func toOrderDef(v any) OrderDef {
	switch v := v.(type) {
	case OrderDef:
		return v
	case string:
		return OrderDef{Expr: Col(v)}
	}
	return OrderDef{Expr: Expr(v)}
}

// AscOf orders by e ascending. Strings name columns.
func AscOf(e any) OrderDef { return OrderDef{Expr: colExpr(e), Order: Asc} }

// DescOf orders by e descending. Strings name columns.
func DescOf(e any) OrderDef { return OrderDef{Expr: colExpr(e), Order: Desc} }
