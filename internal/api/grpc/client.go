package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/i474232898/weather-grpc-service/internal/weather"
)

// WeatherServiceClient is the client API for the weather service.
type WeatherServiceClient interface {
	GetWeatherData(ctx context.Context, in *weather.WeatherDataRequest, opts ...grpc.CallOption) (*weather.WeatherDataResponse, error)
}

type weatherServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a client using cc. Calls are sent as protobuf unless
// WithJSON is passed.
func NewClient(cc grpc.ClientConnInterface) WeatherServiceClient {
	return &weatherServiceClient{cc: cc}
}

// WithJSON sends a call with the JSON codec instead of protobuf.
func WithJSON() grpc.CallOption {
	return grpc.CallContentSubtype(CodecName)
}

func (c *weatherServiceClient) GetWeatherData(ctx context.Context, in *weather.WeatherDataRequest, opts ...grpc.CallOption) (*weather.WeatherDataResponse, error) {
	req, err := toMessage(in, requestDescriptor)
	if err != nil {
		return nil, err
	}
	reply := dynamicpb.NewMessage(responseDescriptor)
	if err := c.cc.Invoke(ctx, FullMethodGetWeatherData, req, reply, opts...); err != nil {
		return nil, err
	}
	out := new(weather.WeatherDataResponse)
	if err := fromMessage(reply, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Dial opens an insecure client connection to target.
func Dial(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	return grpc.NewClient(target, opts...)
}
