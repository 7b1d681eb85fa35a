// Package provider fetches live air quality observations from an external
// data service, used when a user has no recent sensor readings of their own.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/airlens/airlens/internal/health"
)

type Client interface {
	CurrentConditions(ctx context.Context, lat, lon float64) (*health.AirQualityReading, error)
}

type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// conditionsResponse mirrors the provider's wire format. Pollutants the
// provider does not report come back as zero, which the engine treats as
// unmeasured.
type conditionsResponse struct {
	AQI        int     `json:"aqi"`
	PM25       float64 `json:"pm2_5"`
	PM10       float64 `json:"pm10"`
	NO2        float64 `json:"no2"`
	SO2        float64 `json:"so2"`
	O3         float64 `json:"o3"`
	CO         float64 `json:"co"`
	Temp       float64 `json:"temperature"`
	Humidity   float64 `json:"humidity"`
	WindSpeed  float64 `json:"wind_speed"`
	ObservedAt int64   `json:"observed_at"` // unix seconds
}

func (c *HTTPClient) CurrentConditions(ctx context.Context, lat, lon float64) (*health.AirQualityReading, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/current?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("provider GET /v1/current: %d %s", resp.StatusCode, string(body))
	}

	var cr conditionsResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, err
	}

	reading := &health.AirQualityReading{
		Latitude:    lat,
		Longitude:   lon,
		PM25:        cr.PM25,
		PM10:        cr.PM10,
		NO2:         cr.NO2,
		SO2:         cr.SO2,
		O3:          cr.O3,
		CO:          cr.CO,
		AQI:         cr.AQI,
		Temperature: cr.Temp,
		Humidity:    cr.Humidity,
		WindSpeed:   cr.WindSpeed,
		Source:      "provider",
		ReadingTime: time.Unix(cr.ObservedAt, 0).UTC(),
	}
	if cr.ObservedAt <= 0 {
		reading.ReadingTime = time.Now().UTC()
	}
	// Providers sometimes omit the composite index; derive it locally.
	if reading.AQI == 0 {
		aqi, category, _ := health.ComputeAQI(reading)
		reading.AQI = aqi
		reading.AQICategory = category
	} else {
		reading.AQICategory = health.AQICategoryFor(reading.AQI)
	}
	return reading, nil
}
