package filterexpr

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Msg wraps request DTOs that expose filter and order_by raw inputs.
type Msg interface {
	GetFilter() string
	GetOrderBy() string
}

// ValueKind describes the kind of literal value a field accepts.
type ValueKind string

const (
	KindString ValueKind = "string"
	KindNumber ValueKind = "number"
)

// Op represents a supported comparison operation.
type Op string

const (
	OpEQ  Op = "=="
	OpGTE Op = ">="
	OpLTE Op = "<="
)

// FilterField describes how a filter field maps to a params struct field and
// which operations are allowed.
type FilterField struct {
	Kind ValueKind
	Ops  map[Op]string
}

// ResourceSchema aggregates filtering and ordering rules for a resource.
type ResourceSchema struct {
	Filter map[string]FilterField
	Order  OrderSchema
}

// Bind parses the request filter & order_by and populates the query params
// struct accordingly. Filters are restricted to AND-joined comparisons of
// whitelisted fields against literals.
func Bind[M Msg, P any](msg M, binding *P, schema ResourceSchema) error {
	if binding == nil {
		return errors.New("binding must not be nil")
	}

	if err := bindFilterTo(binding, msg.GetFilter(), schema.Filter); err != nil {
		return fmt.Errorf("filter: %w", err)
	}

	order, err := parseOrderBy(msg.GetOrderBy(), schema.Order)
	if err != nil {
		return fmt.Errorf("order_by: %w", err)
	}
	return setOrderParams(binding, order)
}

func bindFilterTo(binding any, filter string, fields map[string]FilterField) error {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil
	}
	if len(fields) == 0 {
		return errors.New("filter schema has no fields defined")
	}

	env, err := buildEnv(fields)
	if err != nil {
		return err
	}

	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("invalid filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return fmt.Errorf("failed to convert AST: %w", err)
	}

	conjuncts, err := extractConjuncts(parsed.GetExpr())
	if err != nil {
		return err
	}

	dest := reflect.ValueOf(binding).Elem()
	if dest.Kind() != reflect.Struct {
		return errors.New("binding must point to a struct")
	}

	for _, expr := range conjuncts {
		pred, err := parsePredicate(expr)
		if err != nil {
			return err
		}

		rule, ok := fields[pred.Field]
		if !ok {
			return fmt.Errorf("field %q is not allowed", pred.Field)
		}
		targetName, ok := rule.Ops[pred.Op]
		if !ok {
			return fmt.Errorf("operator %q is not allowed for field %q", string(pred.Op), pred.Field)
		}
		if err := validateLiteral(rule.Kind, pred.Value); err != nil {
			return fmt.Errorf("field %q: %w", pred.Field, err)
		}

		field := dest.FieldByName(targetName)
		if !field.IsValid() {
			return fmt.Errorf("params struct %s has no field named %q", dest.Type(), targetName)
		}
		if !field.CanSet() {
			return fmt.Errorf("cannot set field %q on params struct", targetName)
		}
		if err := assignValue(field, pred.Value); err != nil {
			return fmt.Errorf("failed to assign field %q: %w", targetName, err)
		}
	}
	return nil
}

type predicate struct {
	Field string
	Op    Op
	Value any
}

func buildEnv(fields map[string]FilterField) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, rule := range fields {
		switch rule.Kind {
		case KindString:
			opts = append(opts, cel.Variable(name, cel.StringType))
		case KindNumber:
			opts = append(opts, cel.Variable(name, cel.DoubleType))
		default:
			return nil, fmt.Errorf("field %q: unsupported field kind %s", name, rule.Kind)
		}
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

func extractConjuncts(expr *exprpb.Expr) ([]*exprpb.Expr, error) {
	if expr == nil {
		return nil, errors.New("empty expression")
	}

	call := expr.GetCallExpr()
	if call == nil {
		return []*exprpb.Expr{expr}, nil
	}

	switch call.Function {
	case "_&&_":
		var result []*exprpb.Expr
		for _, arg := range call.Args {
			nested, err := extractConjuncts(arg)
			if err != nil {
				return nil, err
			}
			result = append(result, nested...)
		}
		return result, nil
	case "_||_", "_?_:_", "!":
		return nil, fmt.Errorf("logical operator %q is not supported; only AND is allowed", call.Function)
	default:
		return []*exprpb.Expr{expr}, nil
	}
}

func parsePredicate(expr *exprpb.Expr) (predicate, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return predicate{}, errors.New("unsupported expression; expected a comparison")
	}

	var op Op
	switch call.Function {
	case "_==_":
		op = OpEQ
	case "_>=_":
		op = OpGTE
	case "_<=_":
		op = OpLTE
	default:
		return predicate{}, fmt.Errorf("function %q is not supported", call.Function)
	}

	if call.Target != nil || len(call.Args) != 2 {
		return predicate{}, fmt.Errorf("operator %q expects two operands", string(op))
	}

	ident := call.Args[0].GetIdentExpr()
	if ident == nil {
		return predicate{}, errors.New("left-hand side must be an identifier")
	}

	value, err := parseLiteral(call.Args[1])
	if err != nil {
		return predicate{}, err
	}
	return predicate{Field: ident.GetName(), Op: op, Value: value}, nil
}

func parseLiteral(expr *exprpb.Expr) (any, error) {
	constant := expr.GetConstExpr()
	if constant == nil {
		return nil, errors.New("right-hand side must be a literal")
	}
	switch constant.ConstantKind.(type) {
	case *exprpb.Constant_StringValue:
		return constant.GetStringValue(), nil
	case *exprpb.Constant_Int64Value:
		return float64(constant.GetInt64Value()), nil
	case *exprpb.Constant_Uint64Value:
		return float64(constant.GetUint64Value()), nil
	case *exprpb.Constant_DoubleValue:
		return constant.GetDoubleValue(), nil
	default:
		return nil, fmt.Errorf("literal type %T is not supported", constant.ConstantKind)
	}
}

func validateLiteral(kind ValueKind, value any) error {
	switch kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	case KindNumber:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("expected %s literal", kind)
		}
	default:
		return fmt.Errorf("unsupported field kind %s", kind)
	}
	return nil
}

func assignValue(field reflect.Value, value any) error {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return assignValue(field.Elem(), value)
	}

	switch v := value.(type) {
	case string:
		if field.Kind() != reflect.String {
			return fmt.Errorf("expected string-compatible destination, got %s", field.Kind())
		}
		field.SetString(v)
		return nil
	case float64:
		return assignNumeric(field, v)
	default:
		return fmt.Errorf("unsupported literal type %T", value)
	}
}

func assignNumeric(field reflect.Value, value float64) error {
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		field.SetFloat(value)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if math.Trunc(value) != value {
			return fmt.Errorf("cannot assign non-integer value %v to integer field", value)
		}
		field.SetInt(int64(value))
		return nil
	default:
		return fmt.Errorf("numeric assignment requires integer or float field, got %s", field.Kind())
	}
}
