package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionNesting(t *testing.T) {
	c := Col("word").Equals("meow").
		And(Col("age").LessThan(10)).
		And(Col("paw").Equals("warm"))

	require.Equal(t, CondAnd, c.Kind)
	require.Len(t, c.Exprs, 2)
	inner, ok := c.Exprs[0].(ConditionTree)
	require.True(t, ok)
	assert.Equal(t, CondAnd, inner.Kind)
	assert.Len(t, inner.Exprs, 2)
	last, ok := c.Exprs[1].(Compare)
	require.True(t, ok)
	assert.Equal(t, OpEquals, last.Op)
	assert.Equal(t, Text("warm"), last.Right)
}

func TestSelectImmutable(t *testing.T) {
	base := SelectFrom("users").Where(Col("active").Equals(true))
	a := base.Columns("id").Limit(10)
	b := base.Columns("name")

	assert.Empty(t, base.Projection)
	assert.Nil(t, base.RowLimit)
	require.Len(t, a.Projection, 1)
	require.Len(t, b.Projection, 1)
	assert.Equal(t, "id", a.Projection[0].(Column).Name)
	assert.Equal(t, "name", b.Projection[0].(Column).Name)

	// Appending to a shared prefix must not leak between branches.
	x := a.Columns("x")
	y := a.Columns("y")
	assert.Equal(t, "x", x.Projection[1].(Column).Name)
	assert.Equal(t, "y", y.Projection[1].(Column).Name)
}

func TestInSet(t *testing.T) {
	c := Col("id").In(1, 2, 3)
	row, ok := c.Right.(Row)
	require.True(t, ok)
	assert.Equal(t, 3, row.Len())

	c = Col("id").In([]int{4, 5})
	row, ok = c.Right.(Row)
	require.True(t, ok)
	assert.Equal(t, 2, row.Len())

	sub := SelectFrom("other").Columns("id")
	c = Col("id").In(sub)
	assert.Same(t, sub, c.Right)

	c = In("id")
	row, ok = c.Right.(Row)
	require.True(t, ok)
	assert.Zero(t, row.Len())
}

func TestBadExpr(t *testing.T) {
	c := Col("id").Equals(struct{}{})
	bad, ok := c.Right.(BadExpr)
	require.True(t, ok)
	assert.Error(t, bad.Err)
}

func TestInsertBuilders(t *testing.T) {
	ins := InsertInto("users").Value("name", "alice").Value("age", 30)
	require.Len(t, ins.Columns, 2)
	require.Len(t, ins.Rows, 1)
	assert.Equal(t, 2, ins.Rows[0].Len())
	assert.False(t, ins.IsMultiRow())

	multi := MultiInsertInto("users", "name", "age").Values("a", 1).Values("b", 2)
	assert.True(t, multi.IsMultiRow())
	assert.Len(t, multi.Rows, 2)
	assert.Len(t, multi.Columns, 2)

	first := InsertInto("t").Value("a", 1)
	second := first.Value("b", 2)
	assert.Equal(t, 1, first.Rows[0].Len())
	assert.Equal(t, 2, second.Rows[0].Len())
}

func TestCastRestriction(t *testing.T) {
	c := CastTo(CastInt4)
	assert.False(t, c.Restricted())
	assert.True(t, c.AppliesTo(CastOnPostgres))
	assert.True(t, c.AppliesTo(CastOnMySQL))

	pg := c.OnPostgres()
	assert.True(t, pg.AppliesTo(CastOnPostgres))
	assert.False(t, pg.AppliesTo(CastOnMySQL))

	// Restrictions accumulate, even after every database has been named.
	all := pg.OnMySQL().OnSQLServer()
	assert.True(t, all.AppliesTo(CastOnPostgres))
	assert.True(t, all.AppliesTo(CastOnMySQL))
	assert.True(t, all.AppliesTo(CastOnSQLServer))
	again := all.OnPostgres()
	assert.True(t, again.AppliesTo(CastOnMySQL))
	assert.False(t, again.AppliesTo(0))
}

func TestOrdering(t *testing.T) {
	o := Ordering{}.Append("a", Col("b").Desc(), AscOf("c"))
	require.Len(t, o, 3)
	assert.Equal(t, OrderUnset, o[0].Order)
	assert.Equal(t, Desc, o[1].Order)
	assert.Equal(t, Asc, o[2].Order)
}
