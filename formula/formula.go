package formula

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
)

var (
	ErrSyntax          = errors.New("formula: syntax error")
	ErrUnknownVariable = errors.New("formula: unknown variable")
	ErrUnknownFunction = errors.New("formula: unknown function")
	ErrDivideByZero    = errors.New("formula: division by zero")
	ErrNotFinite       = errors.New("formula: result is not finite")
)

// Vars 变量名到值的映射
type Vars map[string]float64

// Expr 解析后的表达式，可以用不同的变量多次求值
type Expr struct {
	src  string
	root node
}

// Parse 解析表达式
func Parse(src string) (*Expr, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, t.text, t.pos)
	}
	return &Expr{src: src, root: root}, nil
}

// Eval 解析并求值
func Eval(src string, vars Vars) (float64, error) {
	e, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return e.Eval(vars)
}

func (e *Expr) Eval(vars Vars) (float64, error) {
	v, err := e.root.eval(vars)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	return v, nil
}

// Variables 表达式中引用的变量名，已排序去重
func (e *Expr) Variables() []string {
	var names []string
	e.root.walk(func(n node) {
		if v, ok := n.(variable); ok {
			names = append(names, string(v))
		}
	})
	sort.Strings(names)
	return slices.Compact(names)
}

func (e *Expr) String() string {
	return e.src
}

type node interface {
	eval(Vars) (float64, error)
	walk(func(node))
}

type number float64

func (n number) eval(Vars) (float64, error) { return float64(n), nil }
func (n number) walk(fn func(node))         { fn(n) }

type variable string

func (v variable) eval(vars Vars) (float64, error) {
	if val, ok := vars[string(v)]; ok {
		return val, nil
	}
	if c, ok := constants[string(v)]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownVariable, string(v))
}
func (v variable) walk(fn func(node)) { fn(v) }

type unary struct{ x node }

func (u unary) eval(vars Vars) (float64, error) {
	v, err := u.x.eval(vars)
	return -v, err
}
func (u unary) walk(fn func(node)) { fn(u); u.x.walk(fn) }

type binary struct {
	op   string
	l, r node
}

func (b binary) eval(vars Vars) (float64, error) {
	l, err := b.l.eval(vars)
	if err != nil {
		return 0, err
	}
	r, err := b.r.eval(vars)
	if err != nil {
		return 0, err
	}
	switch b.op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, ErrDivideByZero
		}
		return l / r, nil
	}
	return 0, fmt.Errorf("%w: operator %s", ErrSyntax, b.op)
}
func (b binary) walk(fn func(node)) { fn(b); b.l.walk(fn); b.r.walk(fn) }

type call struct {
	name string
	args []node
}

func (c call) eval(vars Vars) (float64, error) {
	fn, ok := functions[c.name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownFunction, c.name)
	}
	if fn.arity >= 0 && len(c.args) != fn.arity || len(c.args) == 0 {
		return 0, fmt.Errorf("%w: %s takes %d arguments", ErrSyntax, c.name, fn.arity)
	}
	args := make([]float64, len(c.args))
	for i, a := range c.args {
		v, err := a.eval(vars)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	return fn.apply(args), nil
}
func (c call) walk(fn func(node)) {
	fn(c)
	for _, a := range c.args {
		a.walk(fn)
	}
}

var constants = map[string]float64{"pi": math.Pi, "PI": math.Pi}

type function struct {
	arity int // -1 表示可变参数
	apply func([]float64) float64
}

var functions = map[string]function{
	"sqrt":  {1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"abs":   {1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"round": {1, func(a []float64) float64 { return math.Round(a[0]) }},
	"min":   {-1, func(a []float64) float64 { return slices.Min(a) }},
	"max":   {-1, func(a []float64) float64 { return slices.Max(a) }},
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	return t.kind == tokOp && slices.Contains(ops, t.text)
}

// expr := term (('+'|'-') term)*
func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, l: left, r: right}
	}
	return left, nil
}

// term := factor (('*'|'/') factor)*
func (p *parser) term() (node, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/") {
		op := p.next().text
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, l: left, r: right}
	}
	return left, nil
}

// factor := ('-'|'+') factor | primary
func (p *parser) factor() (node, error) {
	if p.isOp("-") {
		p.next()
		x, err := p.factor()
		if err != nil {
			return nil, err
		}
		return unary{x: x}, nil
	}
	if p.isOp("+") {
		p.next()
		return p.factor()
	}
	return p.primary()
}

// primary := number | ident | ident '(' args ')' | '(' expr ')'
func (p *parser) primary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return number(t.value), nil
	case tokIdent:
		if !p.isOp("(") {
			return variable(t.text), nil
		}
		p.next()
		var args []node
		for !p.isOp(")") {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.isOp(",") {
				break
			}
			p.next()
		}
		if !p.isOp(")") {
			return nil, fmt.Errorf("%w: missing ) at %d", ErrSyntax, p.peek().pos)
		}
		p.next()
		return call{name: t.text, args: args}, nil
	case tokOp:
		if t.text == "(" {
			x, err := p.expr()
			if err != nil {
				return nil, err
			}
			if !p.isOp(")") {
				return nil, fmt.Errorf("%w: missing ) at %d", ErrSyntax, p.peek().pos)
			}
			p.next()
			return x, nil
		}
	}
	if t.kind == tokEOF {
		return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, t.text, t.pos)
}
