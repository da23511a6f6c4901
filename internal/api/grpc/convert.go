package grpcapi

import (
	"fmt"
	"reflect"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// toMessage copies src, a weather struct or a pointer to one, into a new
// message of type md. Struct fields are matched to proto fields by their json
// name. A nil pointer yields an empty message.
func toMessage(src interface{}, md protoreflect.MessageDescriptor) (*dynamicpb.Message, error) {
	msg := dynamicpb.NewMessage(md)
	v := reflect.ValueOf(src)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return msg, nil
		}
		v = v.Elem()
	}
	if err := encodeStruct(msg, v); err != nil {
		return nil, err
	}
	return msg, nil
}

// fromMessage copies msg into dst, a pointer to a weather struct. Repeated
// fields always decode to non-nil slices.
func fromMessage(msg protoreflect.Message, dst interface{}) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("decode %s: destination must be a non-nil pointer", msg.Descriptor().FullName())
	}
	return decodeStruct(msg, v.Elem())
}

func wireName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}

func fieldFor(md protoreflect.MessageDescriptor, f reflect.StructField) (protoreflect.FieldDescriptor, error) {
	fd := md.Fields().ByName(protoreflect.Name(wireName(f)))
	if fd == nil {
		return nil, fmt.Errorf("%s has no field for %s", md.FullName(), f.Name)
	}
	return fd, nil
}

func encodeStruct(msg protoreflect.Message, v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		fd, err := fieldFor(msg.Descriptor(), t.Field(i))
		if err != nil {
			return err
		}
		fv := v.Field(i)

		switch {
		case fd.IsList():
			if fv.Len() == 0 {
				continue
			}
			list := msg.Mutable(fd).List()
			for j := 0; j < fv.Len(); j++ {
				if fd.Message() == nil {
					val, err := scalarValue(fd, fv.Index(j))
					if err != nil {
						return err
					}
					list.Append(val)
					continue
				}
				elem := list.NewElement()
				if err := encodeStruct(elem.Message(), fv.Index(j)); err != nil {
					return err
				}
				list.Append(elem)
			}
		case fd.Message() != nil:
			if fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if err := encodeStruct(msg.Mutable(fd).Message(), fv); err != nil {
				return err
			}
		default:
			if fv.IsZero() {
				continue
			}
			val, err := scalarValue(fd, fv)
			if err != nil {
				return err
			}
			msg.Set(fd, val)
		}
	}
	return nil
}

func decodeStruct(msg protoreflect.Message, v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		fd, err := fieldFor(msg.Descriptor(), t.Field(i))
		if err != nil {
			return err
		}
		fv := v.Field(i)

		switch {
		case fd.IsList():
			list := msg.Get(fd).List()
			out := reflect.MakeSlice(fv.Type(), list.Len(), list.Len())
			for j := 0; j < list.Len(); j++ {
				if fd.Message() != nil {
					err = decodeStruct(list.Get(j).Message(), out.Index(j))
				} else {
					err = setScalar(fd, out.Index(j), list.Get(j))
				}
				if err != nil {
					return err
				}
			}
			fv.Set(out)
		case fd.Message() != nil:
			if fv.Kind() != reflect.Ptr {
				if err := decodeStruct(msg.Get(fd).Message(), fv); err != nil {
					return err
				}
				continue
			}
			if !msg.Has(fd) {
				fv.Set(reflect.Zero(fv.Type()))
				continue
			}
			p := reflect.New(fv.Type().Elem())
			if err := decodeStruct(msg.Get(fd).Message(), p.Elem()); err != nil {
				return err
			}
			fv.Set(p)
		default:
			if err := setScalar(fd, fv, msg.Get(fd)); err != nil {
				return err
			}
		}
	}
	return nil
}

func scalarValue(fd protoreflect.FieldDescriptor, v reflect.Value) (protoreflect.Value, error) {
	switch fd.Kind() {
	case protoreflect.DoubleKind:
		if v.CanFloat() {
			return protoreflect.ValueOfFloat64(v.Float()), nil
		}
	case protoreflect.Int32Kind:
		if v.CanInt() {
			return protoreflect.ValueOfInt32(int32(v.Int())), nil
		}
	case protoreflect.Int64Kind:
		if v.CanInt() {
			return protoreflect.ValueOfInt64(v.Int()), nil
		}
	case protoreflect.StringKind:
		if v.Kind() == reflect.String {
			return protoreflect.ValueOfString(v.String()), nil
		}
	}
	return protoreflect.Value{}, fmt.Errorf("%s: cannot encode %s as %s", fd.FullName(), v.Type(), fd.Kind())
}

func setScalar(fd protoreflect.FieldDescriptor, dst reflect.Value, val protoreflect.Value) error {
	switch fd.Kind() {
	case protoreflect.DoubleKind:
		if dst.CanFloat() {
			dst.SetFloat(val.Float())
			return nil
		}
	case protoreflect.Int32Kind, protoreflect.Int64Kind:
		if dst.CanInt() {
			dst.SetInt(val.Int())
			return nil
		}
	case protoreflect.StringKind:
		if dst.Kind() == reflect.String {
			dst.SetString(val.String())
			return nil
		}
	}
	return fmt.Errorf("%s: cannot decode %s into %s", fd.FullName(), fd.Kind(), dst.Type())
}
