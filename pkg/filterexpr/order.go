package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// OrderField describes one whitelisted order key and the direction implied
// when the request does not state one.
type OrderField struct {
	DefaultDesc bool
}

// OrderSchema describes the default ordering and the whitelisted keys.
type OrderSchema struct {
	DefaultKey  string
	DefaultDesc bool
	Fields      map[string]OrderField
}

type orderParams struct {
	Key  string
	Desc bool
}

// parseOrderBy accepts "key" or "key asc|desc"; a single key only, since the
// in-memory sort is stable and ties keep collection order.
func parseOrderBy(raw string, schema OrderSchema) (orderParams, error) {
	if schema.DefaultKey == "" {
		return orderParams{}, errors.New("order schema default key required")
	}
	if _, ok := schema.Fields[schema.DefaultKey]; !ok {
		return orderParams{}, fmt.Errorf("order key %q missing from schema fields", schema.DefaultKey)
	}

	ord := orderParams{Key: schema.DefaultKey, Desc: schema.DefaultDesc}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ord, nil
	}
	if strings.Contains(raw, ",") {
		return orderParams{}, errors.New("order_by supports a single key")
	}

	parts := strings.Fields(raw)
	rule, ok := schema.Fields[parts[0]]
	if !ok {
		return orderParams{}, fmt.Errorf("field %q cannot be used for ordering", parts[0])
	}
	ord.Key = parts[0]
	ord.Desc = rule.DefaultDesc

	switch len(parts) {
	case 1:
	case 2:
		switch strings.ToLower(parts[1]) {
		case "asc":
			ord.Desc = false
		case "desc":
			ord.Desc = true
		default:
			return orderParams{}, fmt.Errorf("invalid direction %q for field %q", parts[1], parts[0])
		}
	default:
		return orderParams{}, fmt.Errorf("invalid order segment %q", raw)
	}
	return ord, nil
}

func setOrderParams(binding any, ord orderParams) error {
	rv := reflect.ValueOf(binding)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("binding must be a non-nil pointer")
	}
	target := rv.Elem()
	if target.Kind() != reflect.Struct {
		return errors.New("binding must point to a struct")
	}

	key := target.FieldByName("OrderKey")
	if !key.IsValid() || key.Kind() != reflect.String || !key.CanSet() {
		return fmt.Errorf("params struct %s needs a settable string field OrderKey", target.Type())
	}
	key.SetString(ord.Key)

	desc := target.FieldByName("OrderDesc")
	if !desc.IsValid() || desc.Kind() != reflect.Bool || !desc.CanSet() {
		return fmt.Errorf("params struct %s needs a settable bool field OrderDesc", target.Type())
	}
	desc.SetBool(ord.Desc)
	return nil
}
