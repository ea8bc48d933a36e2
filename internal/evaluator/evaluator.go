package evaluator

import (
	"math"

	"github.com/predicated/dispatch/internal/ast"
)

// Eval walks an expression tree and reduces it to a single Object against
// the given bindings. Evaluation is pure: no I/O, no mutation of env.
func Eval(node ast.Expression, env *Environment) Object {
	switch node := node.(type) {
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}
	case *ast.FloatLiteral:
		return &Float{Value: node.Value}
	case *ast.StringLiteral:
		return &String{Value: node.Value}
	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)
	case *ast.Identifier:
		return evalIdentifier(node, env)
	case *ast.PrefixExpression:
		return evalPrefixExpression(node, env)
	case *ast.InfixExpression:
		return evalInfixExpression(node, env)
	case nil:
		return newError("cannot evaluate nil expression")
	}
	return newError("unknown expression node %T", node)
}

func evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	return newError("identifier not found: %s", node.Value)
}

func evalPrefixExpression(node *ast.PrefixExpression, env *Environment) Object {
	right := Eval(node.Right, env)
	if isError(right) {
		return right
	}

	switch node.Operator {
	case "!":
		if b, ok := right.(*Boolean); ok {
			return nativeBoolToBooleanObject(!b.Value)
		}
		return newError("operator ! not supported for %s", right.Type())
	case "-":
		switch r := right.(type) {
		case *Integer:
			return &Integer{Value: -r.Value}
		case *Float:
			return &Float{Value: -r.Value}
		case *Complex:
			return &Complex{Value: -r.Value}
		}
		return newError("unknown operator: -%s", right.Type())
	}
	return newError("unknown operator: %s%s", node.Operator, right.Type())
}

func evalInfixExpression(node *ast.InfixExpression, env *Environment) Object {
	// && and || short-circuit
	switch node.Operator {
	case "&&":
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		lb, ok := left.(*Boolean)
		if !ok {
			return newError("operator && expects booleans, got %s", left.Type())
		}
		if !lb.Value {
			return FALSE
		}
		return expectBoolean(Eval(node.Right, env), "&&")
	case "||":
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		lb, ok := left.(*Boolean)
		if !ok {
			return newError("operator || expects booleans, got %s", left.Type())
		}
		if lb.Value {
			return TRUE
		}
		return expectBoolean(Eval(node.Right, env), "||")
	}

	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}
	right := Eval(node.Right, env)
	if isError(right) {
		return right
	}

	return evalBinaryOp(node.Operator, left, right)
}

func expectBoolean(obj Object, op string) Object {
	if isError(obj) {
		return obj
	}
	if _, ok := obj.(*Boolean); !ok {
		return newError("operator %s expects booleans, got %s", op, obj.Type())
	}
	return obj
}

func evalBinaryOp(operator string, left, right Object) Object {
	// & and | act as logical on booleans (Python annotations use bitwise
	// spelling for compound predicates) and as bitwise on integers.
	if operator == "&" || operator == "|" {
		if lb, ok := left.(*Boolean); ok {
			rb, ok := right.(*Boolean)
			if !ok {
				return newError("type mismatch: %s %s %s", left.Type(), operator, right.Type())
			}
			if operator == "&" {
				return nativeBoolToBooleanObject(lb.Value && rb.Value)
			}
			return nativeBoolToBooleanObject(lb.Value || rb.Value)
		}
	}

	switch {
	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		return evalIntegerInfixExpression(operator, left.(*Integer), right.(*Integer))
	case isNumeric(left) && isNumeric(right) && (left.Type() == COMPLEX_OBJ || right.Type() == COMPLEX_OBJ):
		return evalComplexInfixExpression(operator, toComplex(left), toComplex(right))
	case isNumeric(left) && isNumeric(right):
		return evalFloatInfixExpression(operator, toFloat(left), toFloat(right))
	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		return evalStringInfixExpression(operator, left.(*String), right.(*String))
	case left.Type() == BYTES_OBJ && right.Type() == BYTES_OBJ:
		return evalBytesInfixExpression(operator, left.(*Bytes), right.(*Bytes))
	case left.Type() == BOOLEAN_OBJ && right.Type() == BOOLEAN_OBJ:
		return evalBooleanInfixExpression(operator, left.(*Boolean), right.(*Boolean))
	case left.Type() != right.Type():
		return newError("type mismatch: %s %s %s", left.Type(), operator, right.Type())
	}
	return newError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
}

func isNumeric(obj Object) bool {
	t := obj.Type()
	return t == INTEGER_OBJ || t == FLOAT_OBJ || t == COMPLEX_OBJ
}

func toFloat(obj Object) float64 {
	switch o := obj.(type) {
	case *Integer:
		return float64(o.Value)
	case *Float:
		return o.Value
	}
	return 0
}

func toComplex(obj Object) complex128 {
	switch o := obj.(type) {
	case *Integer:
		return complex(float64(o.Value), 0)
	case *Float:
		return complex(o.Value, 0)
	case *Complex:
		return o.Value
	}
	return 0
}

func evalIntegerInfixExpression(operator string, left, right *Integer) Object {
	switch operator {
	case "+":
		return &Integer{Value: left.Value + right.Value}
	case "-":
		return &Integer{Value: left.Value - right.Value}
	case "*":
		return &Integer{Value: left.Value * right.Value}
	case "/":
		if right.Value == 0 {
			return newError("division by zero")
		}
		// Python annotation semantics: / always produces a float
		return &Float{Value: float64(left.Value) / float64(right.Value)}
	case "%":
		if right.Value == 0 {
			return newError("division by zero")
		}
		return &Integer{Value: left.Value % right.Value}
	case "**":
		return evalIntegerPower(left.Value, right.Value)
	case "&":
		return &Integer{Value: left.Value & right.Value}
	case "|":
		return &Integer{Value: left.Value | right.Value}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	case "==":
		return nativeBoolToBooleanObject(left.Value == right.Value)
	case "!=":
		return nativeBoolToBooleanObject(left.Value != right.Value)
	}
	return newError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
}

func evalIntegerPower(base, exp int64) Object {
	if exp < 0 {
		return &Float{Value: math.Pow(float64(base), float64(exp))}
	}
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return &Integer{Value: result}
}

func evalFloatInfixExpression(operator string, left, right float64) Object {
	switch operator {
	case "+":
		return &Float{Value: left + right}
	case "-":
		return &Float{Value: left - right}
	case "*":
		return &Float{Value: left * right}
	case "/":
		if right == 0 {
			return newError("division by zero")
		}
		return &Float{Value: left / right}
	case "%":
		return &Float{Value: math.Mod(left, right)}
	case "**":
		return &Float{Value: math.Pow(left, right)}
	case "<":
		return nativeBoolToBooleanObject(left < right)
	case "<=":
		return nativeBoolToBooleanObject(left <= right)
	case ">":
		return nativeBoolToBooleanObject(left > right)
	case ">=":
		return nativeBoolToBooleanObject(left >= right)
	case "==":
		return nativeBoolToBooleanObject(left == right)
	case "!=":
		return nativeBoolToBooleanObject(left != right)
	}
	return newError("unknown operator: FLOAT %s FLOAT", operator)
}

func evalComplexInfixExpression(operator string, left, right complex128) Object {
	switch operator {
	case "+":
		return &Complex{Value: left + right}
	case "-":
		return &Complex{Value: left - right}
	case "*":
		return &Complex{Value: left * right}
	case "/":
		if right == 0 {
			return newError("division by zero")
		}
		return &Complex{Value: left / right}
	case "==":
		return nativeBoolToBooleanObject(left == right)
	case "!=":
		return nativeBoolToBooleanObject(left != right)
	}
	return newError("unknown operator: COMPLEX %s COMPLEX", operator)
}

func evalStringInfixExpression(operator string, left, right *String) Object {
	switch operator {
	case "+":
		return &String{Value: left.Value + right.Value}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	case "==":
		return nativeBoolToBooleanObject(left.Value == right.Value)
	case "!=":
		return nativeBoolToBooleanObject(left.Value != right.Value)
	}
	return newError("unknown operator: STRING %s STRING", operator)
}

func evalBytesInfixExpression(operator string, left, right *Bytes) Object {
	switch operator {
	case "==":
		return nativeBoolToBooleanObject(string(left.Value) == string(right.Value))
	case "!=":
		return nativeBoolToBooleanObject(string(left.Value) != string(right.Value))
	}
	return newError("unknown operator: BYTES %s BYTES", operator)
}

func evalBooleanInfixExpression(operator string, left, right *Boolean) Object {
	switch operator {
	case "==":
		return nativeBoolToBooleanObject(left.Value == right.Value)
	case "!=":
		return nativeBoolToBooleanObject(left.Value != right.Value)
	}
	return newError("unknown operator: BOOLEAN %s BOOLEAN", operator)
}
