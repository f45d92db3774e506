package ast

// ConditionKind identifies the shape of a ConditionTree.
type ConditionKind uint8

// Condition tree kinds.
const (
	CondAnd ConditionKind = iota + 1
	CondOr
	CondNot
	CondSingle
	// CondNoCondition always holds.
	CondNoCondition
	// CondNegativeCondition never holds.
	CondNegativeCondition
)

// ConditionTree combines predicates with AND, OR and NOT. Children are
// compares or nested trees; precedence comes from the tree shape, so every
// AND and OR group is rendered in parentheses.
//
// An empty And always holds and an empty Or never holds. Dialects choose
// the literal spelling of both.
type ConditionTree struct {
	Kind  ConditionKind
	Exprs []Expression
}

// And returns a tree holding when all expressions hold.
func And(exprs ...Expression) ConditionTree {
	return ConditionTree{Kind: CondAnd, Exprs: appendClip[Expression](nil, exprs...)}
}

// Or returns a tree holding when any expression holds.
func Or(exprs ...Expression) ConditionTree {
	return ConditionTree{Kind: CondOr, Exprs: appendClip[Expression](nil, exprs...)}
}

// Not negates e.
func Not(e Expression) ConditionTree {
	return ConditionTree{Kind: CondNot, Exprs: []Expression{e}}
}

// Single wraps one expression as a tree.
func Single(e Expression) ConditionTree {
	return ConditionTree{Kind: CondSingle, Exprs: []Expression{e}}
}

// NoCondition returns a tree that always holds.
func NoCondition() ConditionTree { return ConditionTree{Kind: CondNoCondition} }

// NegativeCondition returns a tree that never holds.
func NegativeCondition() ConditionTree { return ConditionTree{Kind: CondNegativeCondition} }

// And returns (t AND e). The receiver is nested, not flattened, so
// a.And(b).And(c) renders ((a AND b) AND c).
func (t ConditionTree) And(e Expression) ConditionTree { return And(t, e) }

// Or returns (t OR e).
func (t ConditionTree) Or(e Expression) ConditionTree { return Or(t, e) }

// Not returns NOT t.
func (t ConditionTree) Not() ConditionTree { return Not(t) }

// Conjunctive is implemented by every node that can seed a boolean tree.
type Conjunctive interface {
	Expression
	And(Expression) ConditionTree
	Or(Expression) ConditionTree
	Not() ConditionTree
}

var (
	_ Conjunctive = Compare{}
	_ Conjunctive = ConditionTree{}
	_ Conjunctive = Column{}
	_ Conjunctive = Function{}
	_ Conjunctive = Raw("")
	_ Conjunctive = Value{}
)

// And returns (r AND e).
func (r Raw) And(e Expression) ConditionTree { return And(r, e) }

// Or returns (r OR e).
func (r Raw) Or(e Expression) ConditionTree { return Or(r, e) }

// Not returns NOT r.
func (r Raw) Not() ConditionTree { return Not(r) }

// toCondition turns a filter argument into a condition tree.
func toCondition(e Expression) ConditionTree {
	if t, ok := e.(ConditionTree); ok {
		return t
	}
	return Single(e)
}
