package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/types"
)

// Runtime defines the helpers translated predicates call, and holds(test, v),
// which reports whether a predicate evaluated to true
//
//go:embed runtime.js
var Runtime string

// binaryOps maps CEL operators onto the names the script's op() helper
// dispatches on
var binaryOps = map[string]string{
	operators.Equals:        "==",
	operators.NotEquals:     "!=",
	operators.Less:          "<",
	operators.LessEquals:    "<=",
	operators.Greater:       ">",
	operators.GreaterEquals: ">=",
	operators.Add:           "+",
	operators.Subtract:      "-",
	operators.Multiply:      "*",
	operators.Modulo:        "%",
}

// toJS translates a checked expression into a script expression over an
// object `v` holding the same variables. The expression only calls the
// helpers defined in Runtime. Errors are a value there, not an exception, so
// && and || absorb them the way CEL does and every other operator passes
// them on. Only the operator subset predicates need is supported; anything
// else is rejected at build time.
func toJS(checked *cel.Ast) (string, error) {
	nat := checked.NativeRep()
	return exprJS(nat, nat.Expr())
}

func exprJS(nat *celast.AST, e celast.Expr) (string, error) {
	switch e.Kind() {
	case celast.LiteralKind:
		return literalJS(e)
	case celast.IdentKind:
		return "v." + e.AsIdent(), nil
	case celast.SelectKind:
		sel := e.AsSelect()
		if sel.IsTestOnly() {
			return "", fmt.Errorf("has() is not supported in predicates")
		}
		operand, err := exprJS(nat, sel.Operand())
		if err != nil {
			return "", err
		}
		field, _ := json.Marshal(sel.FieldName())
		return fmt.Sprintf("at(%s, %s)", operand, field), nil
	case celast.CallKind:
		return callJS(nat, e)
	}
	return "", fmt.Errorf("unsupported expression in predicate")
}

func callJS(nat *celast.AST, e celast.Expr) (string, error) {
	call := e.AsCall()
	if call.IsMemberFunction() {
		return "", fmt.Errorf("function %s is not supported in predicates", call.FunctionName())
	}
	args := make([]string, len(call.Args()))
	for i, a := range call.Args() {
		s, err := exprJS(nat, a)
		if err != nil {
			return "", err
		}
		args[i] = s
	}

	fn := call.FunctionName()
	if op, ok := binaryOps[fn]; ok && len(args) == 2 {
		return fmt.Sprintf("op(%q, %s, %s)", op, args[0], args[1]), nil
	}
	switch {
	case fn == operators.LogicalAnd && len(args) == 2:
		return fmt.Sprintf("and(%s, %s)", args[0], args[1]), nil
	case fn == operators.LogicalOr && len(args) == 2:
		return fmt.Sprintf("or(%s, %s)", args[0], args[1]), nil
	case fn == operators.Divide && len(args) == 2:
		if t := nat.GetType(e.ID()); t != nil && (t.Kind() == types.IntKind || t.Kind() == types.UintKind) {
			return fmt.Sprintf("op(\"div\", %s, %s)", args[0], args[1]), nil
		}
		return fmt.Sprintf("op(\"/\", %s, %s)", args[0], args[1]), nil
	case fn == operators.LogicalNot && len(args) == 1:
		return fmt.Sprintf("not(%s)", args[0]), nil
	case fn == operators.Negate && len(args) == 1:
		return fmt.Sprintf("neg(%s)", args[0]), nil
	case fn == operators.Conditional && len(args) == 3:
		return fmt.Sprintf("cond(%s, %s, %s)", args[0], args[1], args[2]), nil
	case fn == operators.Index && len(args) == 2:
		return fmt.Sprintf("at(%s, %s)", args[0], args[1]), nil
	}
	return "", fmt.Errorf("function %s is not supported in predicates", fn)
}

func literalJS(e celast.Expr) (string, error) {
	switch v := e.AsLiteral().(type) {
	case types.Int:
		return strconv.FormatInt(int64(v), 10), nil
	case types.Uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case types.Double:
		return strconv.FormatFloat(float64(v), 'g', -1, 64), nil
	case types.Bool:
		return strconv.FormatBool(bool(v)), nil
	case types.String:
		b, _ := json.Marshal(string(v))
		return string(b), nil
	}
	return "", fmt.Errorf("unsupported literal in predicate")
}
