// Package formula 实现一个只支持算术的表达式求值器：
// 数字、+ - * / × ÷、括号、命名变量(可带点号，如 entity1.length)和少量内置函数。
// 不执行任何其他代码。
package formula

import (
	"fmt"
	"strconv"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp // + - * / ( ) ,
)

type token struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

func tokenize(src string) ([]token, error) {
	var (
		tokens []token
		runes  = []rune(src)
	)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			// 科学计数法 1e-3
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					for j < len(runes) && unicode.IsDigit(runes[j]) {
						j++
					}
					i = j
				}
			}
			text := string(runes[start:i])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q at %d", ErrSyntax, text, start)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, value: v, pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_' || runes[i] == '.') {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		default:
			op, ok := operators[r]
			if !ok {
				return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, r, i)
			}
			tokens = append(tokens, token{kind: tokOp, text: op, pos: i})
			i++
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(runes)}), nil
}

var operators = map[rune]string{
	'+': "+", '-': "-", '−': "-",
	'*': "*", '×': "*", '·': "*",
	'/': "/", '÷': "/",
	'(': "(", ')': ")", ',': ",",
}
