package grpcapi

import (
	"context"
	"math"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/i474232898/weather-grpc-service/internal/weather"
)

type stubProvider struct {
	body []byte
	err  error
}

func (s stubProvider) Name() string { return "stub" }

func (s stubProvider) Fetch(ctx context.Context, q weather.Query) ([]byte, error) {
	return s.body, s.err
}

// startServer serves srv over an in-memory listener and returns a connected client.
func startServer(t *testing.T, srv WeatherServiceServer, poolSize int) (WeatherServiceClient, *grpc.ClientConn, *Server) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := NewServer(srv, poolSize)
	go func() { _ = s.Serve(lis) }()

	conn, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return NewClient(conn), conn, s
}

func TestGetWeatherData_Success(t *testing.T) {
	body := `{"current": {"dt":1000,"temp":30.5,"humidity":80,"weather":[{"id":800,"main":"Clear","description":"clear sky","icon":"01d"}]}}`
	handler := NewHandler(weather.NewService(stubProvider{body: []byte(body)}))
	client, _, _ := startServer(t, handler, 10)

	var header metadata.MD
	resp, err := client.GetWeatherData(context.Background(), &weather.WeatherDataRequest{
		Coordinates: weather.Coordinates{Latitude: 23.777176, Longitude: -90.399452},
		Exclude:     []string{},
		Units:       "metric",
		Language:    "en",
	}, grpc.Header(&header))
	require.NoError(t, err)

	require.NotNil(t, resp.Current)
	assert.Equal(t, 30.5, resp.Current.Temp)
	assert.Equal(t, int32(80), resp.Current.Humidity)
	assert.Equal(t, int32(0), resp.Current.Pressure)
	require.Len(t, resp.Current.Weather, 1)
	assert.Equal(t, "clear sky", resp.Current.Weather[0].Description)
	assert.Empty(t, resp.Minutely)
	assert.Empty(t, resp.Hourly)
	assert.Empty(t, resp.Daily)
	assert.Empty(t, resp.Alerts)

	assert.NotEmpty(t, header.Get(RequestIDHeader))
}

func TestGetWeatherData_StatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		provider stubProvider
		wantCode codes.Code
		wantMsg  string
	}{
		{
			name:     "upstream error document",
			provider: stubProvider{body: []byte(`{"cod": 400, "message": "invalid coordinates"}`)},
			wantCode: codes.InvalidArgument,
			wantMsg:  "invalid coordinates",
		},
		{
			name:     "upstream error without message",
			provider: stubProvider{body: []byte(`{"cod": "404"}`)},
			wantCode: codes.InvalidArgument,
			wantMsg:  "Invalid request",
		},
		{
			name:     "translation failure",
			provider: stubProvider{body: []byte(`{"daily": [{"dt": 1}]}`)},
			wantCode: codes.Internal,
		},
		{
			name:     "transport failure",
			provider: stubProvider{err: context.DeadlineExceeded},
			wantCode: codes.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _, _ := startServer(t, NewHandler(weather.NewService(tt.provider)), 2)

			resp, err := client.GetWeatherData(context.Background(), &weather.WeatherDataRequest{})
			require.Error(t, err)
			assert.Nil(t, resp)

			st := status.Convert(err)
			assert.Equal(t, tt.wantCode, st.Code())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, st.Message())
			}
		})
	}
}

type panickingServer struct{}

func (panickingServer) GetWeatherData(ctx context.Context, req *weather.WeatherDataRequest) (*weather.WeatherDataResponse, error) {
	panic("boom")
}

func TestGetWeatherData_PanicKeepsServing(t *testing.T) {
	client, conn, _ := startServer(t, panickingServer{}, 1)

	for i := 0; i < 2; i++ {
		_, err := client.GetWeatherData(context.Background(), &weather.WeatherDataRequest{})
		assert.Equal(t, codes.Internal, status.Code(err))
	}

	health := healthpb.NewHealthClient(conn)
	resp, err := health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

// blockingServer counts concurrent calls and blocks until released.
type blockingServer struct {
	running int32
	peak    int32
	release chan struct{}
}

func (b *blockingServer) GetWeatherData(ctx context.Context, req *weather.WeatherDataRequest) (*weather.WeatherDataResponse, error) {
	n := atomic.AddInt32(&b.running, 1)
	for {
		peak := atomic.LoadInt32(&b.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&b.peak, peak, n) {
			break
		}
	}
	<-b.release
	atomic.AddInt32(&b.running, -1)
	return &weather.WeatherDataResponse{}, nil
}

func TestConcurrencyIsBounded(t *testing.T) {
	const poolSize = 2
	srv := &blockingServer{release: make(chan struct{})}
	client, _, _ := startServer(t, srv, poolSize)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.GetWeatherData(context.Background(), &weather.WeatherDataRequest{})
			assert.NoError(t, err)
		}()
	}

	// Let the first calls occupy every slot before releasing them one at a time.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		srv.release <- struct{}{}
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&srv.peak), int32(poolSize))
}

func TestSetServing(t *testing.T) {
	_, conn, s := startServer(t, panickingServer{}, 1)
	health := healthpb.NewHealthClient(conn)

	s.SetServing(false)
	resp, err := health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	s.SetServing(true)
	resp, err = health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

// recordingServer keeps the last request and answers with resp.
type recordingServer struct {
	mu   sync.Mutex
	last weather.WeatherDataRequest
	resp *weather.WeatherDataResponse
}

func (r *recordingServer) GetWeatherData(ctx context.Context, req *weather.WeatherDataRequest) (*weather.WeatherDataResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = *req
	return r.resp, nil
}

func (r *recordingServer) lastRequest() weather.WeatherDataRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func TestGetWeatherData_PlainProtobufCall(t *testing.T) {
	srv := &recordingServer{resp: &weather.WeatherDataResponse{
		Current: &weather.CurrentWeather{Dt: 1700000000, Temp: 30.5, Humidity: 80},
		Daily:   []weather.DailyForecast{{Dt: 1700040000, Temp: weather.Temperature{Max: 31.25}}},
	}}
	_, conn, _ := startServer(t, srv, 2)

	// Request encoded by hand with the field numbers of api/weather.proto.
	var coords []byte
	coords = protowire.AppendTag(coords, 1, protowire.Fixed64Type)
	coords = protowire.AppendFixed64(coords, math.Float64bits(23.777176))
	coords = protowire.AppendTag(coords, 2, protowire.Fixed64Type)
	coords = protowire.AppendFixed64(coords, math.Float64bits(-90.399452))
	var raw []byte
	raw = protowire.AppendTag(raw, 1, protowire.BytesType)
	raw = protowire.AppendBytes(raw, coords)
	raw = protowire.AppendTag(raw, 2, protowire.BytesType)
	raw = protowire.AppendString(raw, "minutely")
	raw = protowire.AppendTag(raw, 3, protowire.BytesType)
	raw = protowire.AppendString(raw, "imperial")
	raw = protowire.AppendTag(raw, 4, protowire.BytesType)
	raw = protowire.AppendString(raw, "es")

	req := dynamicpb.NewMessage(requestDescriptor)
	require.NoError(t, proto.Unmarshal(raw, req))

	// No content-subtype: grpc-go uses its default protobuf codec.
	reply := dynamicpb.NewMessage(responseDescriptor)
	require.NoError(t, conn.Invoke(context.Background(), FullMethodGetWeatherData, req, reply))

	got := srv.lastRequest()
	assert.Equal(t, weather.Coordinates{Latitude: 23.777176, Longitude: -90.399452}, got.Coordinates)
	assert.Equal(t, []string{"minutely"}, got.Exclude)
	assert.Equal(t, "imperial", got.Units)
	assert.Equal(t, "es", got.Language)

	fields := responseDescriptor.Fields()
	require.True(t, reply.Has(fields.ByNumber(1)))
	current := reply.Get(fields.ByNumber(1)).Message()
	currentFields := current.Descriptor().Fields()
	assert.Equal(t, int64(1700000000), current.Get(currentFields.ByNumber(1)).Int())
	assert.Equal(t, 30.5, current.Get(currentFields.ByNumber(4)).Float())
	assert.Equal(t, int64(80), current.Get(currentFields.ByNumber(7)).Int())

	daily := reply.Get(fields.ByNumber(4)).List()
	require.Equal(t, 1, daily.Len())
	day := daily.Get(0).Message()
	temp := day.Get(day.Descriptor().Fields().ByNumber(7)).Message()
	assert.Equal(t, 31.25, temp.Get(temp.Descriptor().Fields().ByNumber(3)).Float())

	assert.Equal(t, 0, reply.Get(fields.ByNumber(2)).List().Len())
}

func TestGetWeatherData_JSONCodec(t *testing.T) {
	srv := &recordingServer{resp: &weather.WeatherDataResponse{
		Current: &weather.CurrentWeather{Temp: 12.5},
		Alerts:  []weather.WeatherAlert{{Event: "Storm", Tags: []string{"Wind"}}},
	}}
	client, _, _ := startServer(t, srv, 2)

	resp, err := client.GetWeatherData(context.Background(), &weather.WeatherDataRequest{
		Coordinates: weather.Coordinates{Latitude: 51.5, Longitude: -0.12},
		Units:       "standard",
	}, WithJSON())
	require.NoError(t, err)

	assert.Equal(t, 51.5, srv.lastRequest().Coordinates.Latitude)
	assert.Equal(t, "standard", srv.lastRequest().Units)
	require.NotNil(t, resp.Current)
	assert.Equal(t, 12.5, resp.Current.Temp)
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, []string{"Wind"}, resp.Alerts[0].Tags)
	assert.NotNil(t, resp.Hourly)
}

func TestHealthCheckIsNotQueuedBehindBusyWorkers(t *testing.T) {
	srv := &blockingServer{release: make(chan struct{})}
	client, conn, _ := startServer(t, srv, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = client.GetWeatherData(context.Background(), &weather.WeatherDataRequest{})
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&srv.running) == 1
	}, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	srv.release <- struct{}{}
	<-done
}
