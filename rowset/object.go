package rowset

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"xorkevin.dev/forgeresult/result"
	"xorkevin.dev/kerrors"
)

var (
	bytesType  = reflect.TypeOf([]byte(nil))
	stringType = reflect.TypeOf("")
)

// decodeObject hydrates a new value of the struct type typ from row, matching
// columns to fields by their model tag, and then constructs it with args
func decodeObject(row result.Row, typ reflect.Type, args []interface{}) (interface{}, error) {
	if typ == nil {
		return nil, kerrors.WithKind(nil, result.ErrConfig, "No row type provided")
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, kerrors.WithKind(nil, result.ErrConfig, fmt.Sprintf("Row type %s is not a struct", typ))
	}
	v := reflect.New(typ).Interface()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			bytesToStringHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
		TagName: result.TagName,
		Result:  v,
	})
	if err != nil {
		return nil, kerrors.WithKind(err, result.ErrConfig, fmt.Sprintf("Invalid row type %s", typ))
	}
	if err := dec.Decode(row.Map()); err != nil {
		return nil, kerrors.WithKind(err, result.ErrConfig, fmt.Sprintf("Failed to decode row into %s", typ))
	}
	c, ok := v.(result.Constructor)
	if !ok {
		if len(args) != 0 {
			return nil, kerrors.WithKind(nil, result.ErrConfig, fmt.Sprintf("Row type %s does not take constructor args", typ))
		}
		return v, nil
	}
	if err := c.Construct(args...); err != nil {
		return nil, kerrors.WithKind(err, result.ErrConfig, fmt.Sprintf("Failed to construct %s", typ))
	}
	return v, nil
}

func bytesToStringHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from != bytesType || to != stringType {
		return data, nil
	}
	return string(data.([]byte)), nil
}
