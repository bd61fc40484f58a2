package common

import (
	"encoding/json"
	"fmt"
	"path"
	"reflect"

	"github.com/pkg/errors"
)

// registry maps a registered type name to a zero value of the type.
var registry = make(map[string]interface{})

// DoesNotMatch is returned by InterfaceTestMarshalAndUnmarshal if the decoded
// value differs from the input.
var DoesNotMatch = errors.New("rbfnet: does not match")

// InterfaceTestMarshalAndUnmarshal round-trips the value in the interface
// through InterfaceMarshaler and returns an error if the result differs.
func InterfaceTestMarshalAndUnmarshal(i interface{}) error {
	b, err := json.Marshal(InterfaceMarshaler{I: i})
	if err != nil {
		return err
	}
	var decoded InterfaceMarshaler
	if err := json.Unmarshal(b, &decoded); err != nil {
		return err
	}
	if !reflect.DeepEqual(i, decoded.I) {
		return DoesNotMatch
	}
	return nil
}

// typeKey is the registry key for i: package path, type name and a trailing
// "*" for pointers.
func typeKey(i interface{}) string {
	t := reflect.TypeOf(i)
	ptr := t.Kind() == reflect.Ptr
	if ptr {
		t = t.Elem()
	}
	key := path.Join(t.PkgPath(), t.Name())
	if ptr {
		key += "*"
	}
	return key
}

// Register records the dynamic type of i so values of that type can be stored
// in an interface field and still be encoded with InterfaceMarshaler. Types are
// usually registered from an init function, as with encoding/gob. A type and
// a pointer to it are separate registrations. Register panics if the type is
// already registered.
func Register(i interface{}) {
	key := typeKey(i)
	if _, ok := registry[key]; ok {
		panic("common/Register: type " + key + " already registered")
	}
	t := reflect.TypeOf(i)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	registry[key] = reflect.New(t).Elem().Interface()
}

// NotRegistered is returned when encoding or decoding an unregistered type.
type NotRegistered struct {
	Type string
}

func (n *NotRegistered) Error() string {
	return fmt.Sprintf("common: type %s not registered", n.Type)
}

// InterfaceMarshaler encodes an interface value together with its registered
// type name so it can be decoded back into the same concrete type.
type InterfaceMarshaler struct {
	I interface{}
}

type typedValue struct {
	Type  string
	Value json.RawMessage
}

func (m InterfaceMarshaler) MarshalJSON() ([]byte, error) {
	key := typeKey(m.I)
	if _, ok := registry[key]; !ok {
		return nil, &NotRegistered{Type: key}
	}
	value, err := json.Marshal(m.I)
	if err != nil {
		return nil, err
	}
	return json.Marshal(typedValue{Type: key, Value: value})
}

func (m *InterfaceMarshaler) UnmarshalJSON(data []byte) error {
	var tv typedValue
	if err := json.Unmarshal(data, &tv); err != nil {
		return err
	}
	zero, ok := registry[tv.Type]
	if !ok {
		return errors.Wrap(&NotRegistered{Type: tv.Type}, "common: unmarshal interface")
	}
	ptr := reflect.New(reflect.TypeOf(zero))
	if err := json.Unmarshal(tv.Value, ptr.Interface()); err != nil {
		return errors.Wrapf(err, "common: unmarshal %s", tv.Type)
	}
	if tv.Type[len(tv.Type)-1] == '*' {
		m.I = ptr.Interface()
	} else {
		m.I = ptr.Elem().Interface()
	}
	return nil
}
