// File: formula.go
// Role: Compile boolean formula text into symbolic sets.
//
// Syntax is the expr-lang expression grammar restricted to booleans:
//
//	&&  and  ||  or  !  not  ==  !=  ?:  true  false  0  1
//	implies(a, b)  iff(a, b)  xor(a, b)
//
// A next-state variable is written with a trailing apostrophe (x').
package spec

import (
	"fmt"
	"regexp"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/katalvlaran/gr1synth/symbolic"
)

// Scope limits which variables a formula may mention.
type Scope int

const (
	// ScopeState allows current-state variables only (init, goals).
	ScopeState Scope = iota

	// ScopeEnvTrans also allows primed environment variables.
	ScopeEnvTrans

	// ScopeSysTrans allows every current and primed variable.
	ScopeSysTrans
)

const primedFunc = "primed"

// apostrophes open string literals in expr, so x' is rewritten first.
var primeRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)'`)

// Compile parses src and builds the set it denotes over m.
func Compile(m *symbolic.Manager, src string, scope Scope) (symbolic.Set, error) {
	tree, err := parser.Parse(primeRe.ReplaceAllString(src, primedFunc+"($1)"))
	if err != nil {
		return symbolic.Set{}, fmt.Errorf("%w: %q: %v", ErrFormula, src, err)
	}
	c := &compiler{m: m, scope: scope, src: src}
	out, err := c.node(tree.Node)
	if err != nil {
		return symbolic.Set{}, err
	}
	if err := m.Err(); err != nil {
		return symbolic.Set{}, err
	}
	return out, nil
}

type compiler struct {
	m     *symbolic.Manager
	scope Scope
	src   string
}

func (c *compiler) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %q: %s", ErrFormula, c.src, fmt.Sprintf(format, args...))
}

func (c *compiler) node(n ast.Node) (symbolic.Set, error) {
	switch n := n.(type) {
	case *ast.BoolNode:
		if n.Value {
			return c.m.True(), nil
		}
		return c.m.False(), nil

	case *ast.IntegerNode:
		switch n.Value {
		case 0:
			return c.m.False(), nil
		case 1:
			return c.m.True(), nil
		}
		return symbolic.Set{}, c.errorf("integer %d is not boolean", n.Value)

	case *ast.IdentifierNode:
		i, ok := c.m.VarIndex(n.Value)
		if !ok {
			return symbolic.Set{}, fmt.Errorf("%w: %q in %q", ErrUnknownVariable, n.Value, c.src)
		}
		return c.m.Var(i), nil

	case *ast.UnaryNode:
		if n.Operator != "!" && n.Operator != "not" {
			return symbolic.Set{}, c.errorf("unsupported operator %q", n.Operator)
		}
		x, err := c.node(n.Node)
		if err != nil {
			return symbolic.Set{}, err
		}
		return c.m.Not(x), nil

	case *ast.BinaryNode:
		l, err := c.node(n.Left)
		if err != nil {
			return symbolic.Set{}, err
		}
		r, err := c.node(n.Right)
		if err != nil {
			return symbolic.Set{}, err
		}
		switch n.Operator {
		case "&&", "and":
			return c.m.And(l, r), nil
		case "||", "or":
			return c.m.Or(l, r), nil
		case "==":
			return c.m.Iff(l, r), nil
		case "!=":
			return c.m.Not(c.m.Iff(l, r)), nil
		}
		return symbolic.Set{}, c.errorf("unsupported operator %q", n.Operator)

	case *ast.ConditionalNode:
		cond, err := c.node(n.Cond)
		if err != nil {
			return symbolic.Set{}, err
		}
		a, err := c.node(n.Exp1)
		if err != nil {
			return symbolic.Set{}, err
		}
		b, err := c.node(n.Exp2)
		if err != nil {
			return symbolic.Set{}, err
		}
		return c.m.Ite(cond, a, b), nil

	case *ast.CallNode:
		return c.call(n)
	}
	return symbolic.Set{}, c.errorf("unsupported expression %T", n)
}

func (c *compiler) call(n *ast.CallNode) (symbolic.Set, error) {
	callee, ok := n.Callee.(*ast.IdentifierNode)
	if !ok {
		return symbolic.Set{}, c.errorf("unsupported call")
	}
	if callee.Value == primedFunc {
		return c.primed(n)
	}
	if len(n.Arguments) != 2 {
		return symbolic.Set{}, c.errorf("%s takes 2 arguments, got %d", callee.Value, len(n.Arguments))
	}
	a, err := c.node(n.Arguments[0])
	if err != nil {
		return symbolic.Set{}, err
	}
	b, err := c.node(n.Arguments[1])
	if err != nil {
		return symbolic.Set{}, err
	}
	switch callee.Value {
	case "implies":
		return c.m.Imp(a, b), nil
	case "iff":
		return c.m.Iff(a, b), nil
	case "xor":
		return c.m.Not(c.m.Iff(a, b)), nil
	}
	return symbolic.Set{}, c.errorf("unknown function %q", callee.Value)
}

func (c *compiler) primed(n *ast.CallNode) (symbolic.Set, error) {
	if len(n.Arguments) != 1 {
		return symbolic.Set{}, c.errorf("bad primed variable")
	}
	id, ok := n.Arguments[0].(*ast.IdentifierNode)
	if !ok {
		return symbolic.Set{}, c.errorf("only variables can be primed")
	}
	i, ok := c.m.VarIndex(id.Value)
	if !ok {
		return symbolic.Set{}, fmt.Errorf("%w: %q in %q", ErrUnknownVariable, id.Value, c.src)
	}
	switch {
	case c.scope == ScopeState:
		return symbolic.Set{}, c.errorf("next-state variable %s' not allowed here", id.Value)
	case c.scope == ScopeEnvTrans && !c.m.IsEnv(i):
		return symbolic.Set{}, c.errorf("environment transitions cannot constrain %s'", id.Value)
	}
	return c.m.PrimedVar(i), nil
}
