package grpcapi

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/i474232898/weather-grpc-service/internal/weather"
)

const (
	ServiceName              = "weather.WeatherService"
	FullMethodGetWeatherData = "/" + ServiceName + "/GetWeatherData"
)

// WeatherServiceServer is the server API for the weather service.
type WeatherServiceServer interface {
	GetWeatherData(ctx context.Context, req *weather.WeatherDataRequest) (*weather.WeatherDataResponse, error)
}

// WeatherServiceDesc describes the weather service for grpc.Server.RegisterService.
var WeatherServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WeatherServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetWeatherData",
			Handler:    getWeatherDataHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "weather.proto",
}

// getWeatherDataHandler decodes the request into a weather.proto message and
// hands the interceptors that message; the server itself works on the
// weather structs.
func getWeatherDataHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := dynamicpb.NewMessage(requestDescriptor)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return serveGetWeatherData(ctx, srv.(WeatherServiceServer), req.(*dynamicpb.Message))
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: FullMethodGetWeatherData,
	}
	return interceptor(ctx, in, info, handler)
}

func serveGetWeatherData(ctx context.Context, srv WeatherServiceServer, in *dynamicpb.Message) (*dynamicpb.Message, error) {
	var req weather.WeatherDataRequest
	if err := fromMessage(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	resp, err := srv.GetWeatherData(ctx, &req)
	if err != nil {
		return nil, err
	}
	out, err := toMessage(resp, responseDescriptor)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// RegisterWeatherServiceServer registers srv on s.
func RegisterWeatherServiceServer(s grpc.ServiceRegistrar, srv WeatherServiceServer) {
	s.RegisterService(&WeatherServiceDesc, srv)
}

// Handler adapts weather.Service to the RPC surface.
type Handler struct {
	service *weather.Service
}

// NewHandler creates a Handler serving service.
func NewHandler(service *weather.Service) *Handler {
	return &Handler{service: service}
}

// GetWeatherData implements WeatherServiceServer.
func (h *Handler) GetWeatherData(ctx context.Context, req *weather.WeatherDataRequest) (*weather.WeatherDataResponse, error) {
	resp, err := h.service.GetWeatherData(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// toStatus maps upstream-reported errors to InvalidArgument and every other
// failure to Internal.
func toStatus(err error) error {
	var upErr *weather.UpstreamError
	if errors.As(err, &upErr) {
		return status.Error(codes.InvalidArgument, upErr.Message)
	}
	return status.Error(codes.Internal, err.Error())
}

var _ WeatherServiceServer = (*Handler)(nil)
