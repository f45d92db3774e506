package ast

// CastKind is the target type of a cast.
type CastKind uint8

// Cast targets.
const (
	CastInt2 CastKind = iota + 1
	CastInt4
	CastInt8
	CastFloat4
	CastFloat8
	CastDecimal
	CastBoolean
	CastUUID
	CastJSON
	CastJSONB
	CastDate
	CastTime
	CastDateTime
	CastBytes
	CastText
	CastCustom
)

// CastDatabase is a set of databases a cast applies to.
type CastDatabase uint8

// Databases that accept casts. SQLite never casts.
const (
	CastOnPostgres CastDatabase = 1 << iota
	CastOnMySQL
	CastOnSQLServer
)

// CastType is a cast target, optionally restricted to some databases.
type CastType struct {
	Kind CastKind
	// Custom is the verbatim type name of a CastCustom target.
	Custom     string
	restricted bool
	on         CastDatabase
}

// CastTo returns an unrestricted cast target.
func CastTo(kind CastKind) CastType { return CastType{Kind: kind} }

// CastToCustom returns a cast to a database type given by name.
func CastToCustom(name string) CastType { return CastType{Kind: CastCustom, Custom: name} }

// restrict adds db to the allowed set. The first restriction replaces the
// implicit "every database" default.
func (c CastType) restrict(db CastDatabase) CastType {
	if !c.restricted {
		c.restricted = true
		c.on = 0
	}
	c.on |= db
	return c
}

// OnPostgres allows the cast on Postgres.
func (c CastType) OnPostgres() CastType { return c.restrict(CastOnPostgres) }

// OnMySQL allows the cast on MySQL.
func (c CastType) OnMySQL() CastType { return c.restrict(CastOnMySQL) }

// OnSQLServer allows the cast on SQL Server.
func (c CastType) OnSQLServer() CastType { return c.restrict(CastOnSQLServer) }

// AppliesTo reports whether the cast is rendered on db. A zero db stands
// for a database outside the set, which only unrestricted casts reach.
func (c CastType) AppliesTo(db CastDatabase) bool {
	return !c.restricted || c.on&db != 0
}

// Restricted reports whether any restriction has been applied.
func (c CastType) Restricted() bool { return c.restricted }

// CastExpr casts an expression to a type.
type CastExpr struct {
	Expr  Expression
	Type  CastType
	Alias string
}

// Cast returns CAST(e AS t). Strings name columns.
func Cast(e any, t CastType) CastExpr {
	return CastExpr{Expr: colExpr(e), Type: t}
}

// As returns a copy of c aliased as alias.
func (c CastExpr) As(alias string) CastExpr {
	c.Alias = alias
	return c
}

// Equals returns c = v.
func (c CastExpr) Equals(v any) Compare { return binary(OpEquals, c, v) }
