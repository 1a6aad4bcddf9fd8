package evaluator

import (
	"math"
	"rill/internal/object"
	"rill/internal/token"
)

func (e *Evaluator) evalPrefixExpression(op token.Token, right object.Object) (object.Object, error) {
	switch op.Type {
	case token.BANG:
		return object.NativeBoolToBooleanObject(!object.IsTruthy(right)), nil
	case token.MINUS:
		return e.evalMinusPrefixOperatorExpression(op, right)
	default:
		return nil, newError(op, "Unknown operator.")
	}
}

func (e *Evaluator) evalMinusPrefixOperatorExpression(op token.Token, right object.Object) (object.Object, error) {
	switch right := right.(type) {
	case *object.Integer:
		return &object.Integer{Value: -right.Value}, nil
	case *object.Float:
		return &object.Float{Value: -right.Value}, nil
	default:
		return nil, newError(op, "Operand must be a number.")
	}
}

func (e *Evaluator) evalInfixExpression(op token.Token, left, right object.Object) (object.Object, error) {
	switch op.Type {
	case token.EQUAL_EQUAL:
		return object.NativeBoolToBooleanObject(object.Equal(left, right)), nil
	case token.BANG_EQUAL:
		return object.NativeBoolToBooleanObject(!object.Equal(left, right)), nil
	}

	if op.Type == token.PLUS {
		l, lok := left.(*object.String)
		r, rok := right.(*object.String)
		if lok && rok {
			return &object.String{Value: l.Value + r.Value}, nil
		}
		if lok || rok {
			return nil, newError(op, "Operands must be two numbers or two strings.")
		}
	}

	if li, ok := left.(*object.Integer); ok {
		if ri, ok := right.(*object.Integer); ok {
			return e.evalIntegerInfixExpression(op, li.Value, ri.Value)
		}
	}

	lf, lok := object.ToFloat(left)
	rf, rok := object.ToFloat(right)
	if !lok || !rok {
		return nil, newError(op, "Operands must be numbers.")
	}
	return e.evalFloatInfixExpression(op, lf, rf)
}

func (e *Evaluator) evalIntegerInfixExpression(op token.Token, left, right int64) (object.Object, error) {
	switch op.Type {
	case token.PLUS:
		return &object.Integer{Value: left + right}, nil
	case token.MINUS:
		return &object.Integer{Value: left - right}, nil
	case token.STAR:
		return &object.Integer{Value: left * right}, nil
	case token.SLASH:
		if right == 0 {
			return nil, newError(op, "Division by zero.")
		}
		return &object.Integer{Value: left / right}, nil
	case token.CARET:
		// Int ^ Int is computed as a real power and truncated back.
		power := math.Pow(float64(left), float64(right))
		if math.IsNaN(power) || power >= math.MaxInt64 || power < math.MinInt64 {
			return nil, newError(op, "Integer overflow.")
		}
		return &object.Integer{Value: int64(power)}, nil
	}
	return e.evalFloatInfixExpression(op, float64(left), float64(right))
}

// evalFloatInfixExpression handles every numeric operator once an operand
// is a float, and the comparisons for all numbers.
func (e *Evaluator) evalFloatInfixExpression(op token.Token, left, right float64) (object.Object, error) {
	switch op.Type {
	case token.PLUS:
		return &object.Float{Value: left + right}, nil
	case token.MINUS:
		return &object.Float{Value: left - right}, nil
	case token.STAR:
		return &object.Float{Value: left * right}, nil
	case token.SLASH:
		return &object.Float{Value: left / right}, nil
	case token.CARET:
		return &object.Float{Value: math.Pow(left, right)}, nil
	case token.LESS:
		return object.NativeBoolToBooleanObject(left < right), nil
	case token.LESS_EQUAL:
		return object.NativeBoolToBooleanObject(left <= right), nil
	case token.GREATER:
		return object.NativeBoolToBooleanObject(left > right), nil
	case token.GREATER_EQUAL:
		return object.NativeBoolToBooleanObject(left >= right), nil
	default:
		return nil, newError(op, "Unknown operator.")
	}
}
