package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	grpcapi "github.com/i474232898/weather-grpc-service/internal/api/grpc"
	"github.com/i474232898/weather-grpc-service/internal/weather"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "Weather gRPC server address")
	lat := flag.Float64("lat", 23.777176, "Latitude")
	lon := flag.Float64("lon", -90.399452, "Longitude")
	exclude := flag.String("exclude", "", "Comma-separated sections to exclude")
	units := flag.String("units", "metric", "Unit system")
	lang := flag.String("lang", "en", "Language")
	timeout := flag.Duration("timeout", 15*time.Second, "Call timeout")
	useJSON := flag.Bool("json", false, "Send the call with the JSON codec instead of protobuf")
	flag.Parse()

	conn, err := grpcapi.Dial(*addr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *addr, err)
	}
	defer conn.Close()

	client := grpcapi.NewClient(conn)

	req := &weather.WeatherDataRequest{
		Coordinates: weather.Coordinates{Latitude: *lat, Longitude: *lon},
		Units:       *units,
		Language:    *lang,
	}
	if *exclude != "" {
		req.Exclude = strings.Split(*exclude, ",")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var opts []grpc.CallOption
	if *useJSON {
		opts = append(opts, grpcapi.WithJSON())
	}

	resp, err := client.GetWeatherData(ctx, req, opts...)
	if err != nil {
		st := status.Convert(err)
		log.Fatalf("Error occurred: %s (Code: %s)", st.Message(), st.Code())
	}

	printCurrentWeather(resp.Current, *units)
}

func printCurrentWeather(current *weather.CurrentWeather, units string) {
	fmt.Println("\nCurrent Weather:")
	if current == nil {
		fmt.Println("N/A")
		return
	}

	symbol := "°C"
	switch units {
	case "imperial":
		symbol = "°F"
	case "standard":
		symbol = "K"
	}

	description := "N/A"
	if len(current.Weather) > 0 {
		description = current.Weather[0].Description
	}

	fmt.Printf("Timestamp: %s\n", time.Unix(current.Dt, 0).Format(time.DateTime))
	fmt.Printf("Temperature: %.2f%s\n", current.Temp, symbol)
	fmt.Printf("Feels Like: %.2f%s\n", current.FeelsLike, symbol)
	fmt.Printf("Humidity: %d%%\n", current.Humidity)
	fmt.Printf("Weather Description: %s\n", description)
}
