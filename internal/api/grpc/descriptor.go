package grpcapi

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// The descriptors below are built from the message table in this file and
// must stay in step with api/weather.proto.
var (
	// WeatherFile is the descriptor of weather.proto.
	WeatherFile = mustBuildWeatherFile()

	requestDescriptor  = WeatherFile.Messages().ByName("WeatherDataRequest")
	responseDescriptor = WeatherFile.Messages().ByName("WeatherDataResponse")
)

const protoPackage = "weather"

type fieldDef struct {
	name     string
	typ      descriptorpb.FieldDescriptorProto_Type
	message  string
	repeated bool
}

func scalar(name string, typ descriptorpb.FieldDescriptorProto_Type) fieldDef {
	return fieldDef{name: name, typ: typ}
}

func scalarList(name string, typ descriptorpb.FieldDescriptorProto_Type) fieldDef {
	return fieldDef{name: name, typ: typ, repeated: true}
}

func nested(name, typeName string) fieldDef {
	return fieldDef{name: name, typ: descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, message: typeName}
}

func nestedList(name, typeName string) fieldDef {
	return fieldDef{name: name, typ: descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, message: typeName, repeated: true}
}

const (
	typeDouble = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	typeInt32  = descriptorpb.FieldDescriptorProto_TYPE_INT32
	typeInt64  = descriptorpb.FieldDescriptorProto_TYPE_INT64
	typeString = descriptorpb.FieldDescriptorProto_TYPE_STRING
)

// weatherMessages lists every message of weather.proto; field numbers follow
// the order of the fields.
var weatherMessages = []struct {
	name   string
	fields []fieldDef
}{
	{"Coordinates", []fieldDef{
		scalar("latitude", typeDouble),
		scalar("longitude", typeDouble),
	}},
	{"WeatherDataRequest", []fieldDef{
		nested("coordinates", "Coordinates"),
		scalarList("exclude", typeString),
		scalar("units", typeString),
		scalar("language", typeString),
	}},
	{"WeatherCondition", []fieldDef{
		scalar("id", typeInt32),
		scalar("main", typeString),
		scalar("description", typeString),
		scalar("icon", typeString),
	}},
	{"CurrentWeather", []fieldDef{
		scalar("dt", typeInt64),
		scalar("sunrise", typeInt64),
		scalar("sunset", typeInt64),
		scalar("temp", typeDouble),
		scalar("feels_like", typeDouble),
		scalar("pressure", typeInt32),
		scalar("humidity", typeInt32),
		scalar("dew_point", typeDouble),
		scalar("uvi", typeDouble),
		scalar("clouds", typeInt32),
		scalar("visibility", typeInt32),
		scalar("wind_speed", typeDouble),
		scalar("wind_deg", typeInt32),
		scalar("wind_gust", typeDouble),
		nestedList("weather", "WeatherCondition"),
	}},
	{"MinuteForecast", []fieldDef{
		scalar("dt", typeInt64),
		scalar("precipitation", typeDouble),
	}},
	{"HourlyForecast", []fieldDef{
		scalar("dt", typeInt64),
		scalar("temp", typeDouble),
		scalar("feels_like", typeDouble),
		scalar("pressure", typeInt32),
		scalar("humidity", typeInt32),
		scalar("dew_point", typeDouble),
		scalar("clouds", typeInt32),
		scalar("visibility", typeInt32),
		scalar("wind_speed", typeDouble),
		scalar("wind_deg", typeInt32),
		scalar("wind_gust", typeDouble),
		scalar("pop", typeDouble),
		nestedList("weather", "WeatherCondition"),
	}},
	{"Temperature", []fieldDef{
		scalar("day", typeDouble),
		scalar("min", typeDouble),
		scalar("max", typeDouble),
		scalar("night", typeDouble),
		scalar("eve", typeDouble),
		scalar("morn", typeDouble),
	}},
	{"FeelsLike", []fieldDef{
		scalar("day", typeDouble),
		scalar("night", typeDouble),
		scalar("eve", typeDouble),
		scalar("morn", typeDouble),
	}},
	{"DailyForecast", []fieldDef{
		scalar("dt", typeInt64),
		scalar("sunrise", typeInt64),
		scalar("sunset", typeInt64),
		scalar("moonrise", typeInt64),
		scalar("moonset", typeInt64),
		scalar("moon_phase", typeDouble),
		nested("temp", "Temperature"),
		nested("feels_like", "FeelsLike"),
		scalar("pressure", typeInt32),
		scalar("humidity", typeInt32),
		scalar("dew_point", typeDouble),
		scalar("wind_speed", typeDouble),
		scalar("wind_deg", typeInt32),
		scalar("wind_gust", typeDouble),
		scalar("clouds", typeInt32),
		scalar("pop", typeDouble),
		scalar("uvi", typeDouble),
		nestedList("weather", "WeatherCondition"),
	}},
	{"WeatherAlert", []fieldDef{
		scalar("sender_name", typeString),
		scalar("event", typeString),
		scalar("start", typeInt64),
		scalar("end", typeInt64),
		scalar("description", typeString),
		scalarList("tags", typeString),
	}},
	{"WeatherDataResponse", []fieldDef{
		nested("current", "CurrentWeather"),
		nestedList("minutely", "MinuteForecast"),
		nestedList("hourly", "HourlyForecast"),
		nestedList("daily", "DailyForecast"),
		nestedList("alerts", "WeatherAlert"),
	}},
}

func qualified(name string) *string {
	return proto.String("." + protoPackage + "." + name)
}

func weatherFileProto() *descriptorpb.FileDescriptorProto {
	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("weather.proto"),
		Package: proto.String(protoPackage),
		Syntax:  proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("WeatherService"),
			Method: []*descriptorpb.MethodDescriptorProto{{
				Name:       proto.String("GetWeatherData"),
				InputType:  qualified("WeatherDataRequest"),
				OutputType: qualified("WeatherDataResponse"),
			}},
		}},
	}

	for _, m := range weatherMessages {
		msg := &descriptorpb.DescriptorProto{Name: proto.String(m.name)}
		for i, f := range m.fields {
			label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
			if f.repeated {
				label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
			}
			field := &descriptorpb.FieldDescriptorProto{
				Name:   proto.String(f.name),
				Number: proto.Int32(int32(i + 1)),
				Label:  label.Enum(),
				Type:   f.typ.Enum(),
			}
			if f.message != "" {
				field.TypeName = qualified(f.message)
			}
			msg.Field = append(msg.Field, field)
		}
		fd.MessageType = append(fd.MessageType, msg)
	}
	return fd
}

func mustBuildWeatherFile() protoreflect.FileDescriptor {
	fd, err := protodesc.NewFile(weatherFileProto(), new(protoregistry.Files))
	if err != nil {
		panic(fmt.Sprintf("grpcapi: invalid weather.proto descriptor: %v", err))
	}
	return fd
}
