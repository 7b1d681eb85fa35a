// seed_readings.go — standalone script to parse a CSV of air quality samples
// and seed readings via the airlens API.
//
// Usage:
//
//	go run scripts/seed_readings.go -csv /path/to/samples.csv -api http://localhost:8700 -client seeder
//
// CSV columns: reading_time,user_id,latitude,longitude,pm25,pm10,no2,o3,aqi
// The header row is skipped. Empty numeric cells are treated as unmeasured.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

type readingPayload struct {
	UserID      string  `json:"user_id,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	PM25        float64 `json:"pm25,omitempty"`
	PM10        float64 `json:"pm10,omitempty"`
	NO2         float64 `json:"no2,omitempty"`
	O3          float64 `json:"o3,omitempty"`
	AQI         int     `json:"aqi,omitempty"`
	Source      string  `json:"source"`
	ReadingTime string  `json:"reading_time,omitempty"`
}

func parseFloat(cell string) float64 {
	if cell == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0
	}
	return v
}

func main() {
	csvPath := flag.String("csv", "samples.csv", "path to the samples CSV")
	apiURL := flag.String("api", "http://localhost:8700", "airlens API base URL")
	clientID := flag.String("client", "seeder", "X-Client-ID header value")
	dryRun := flag.Bool("dry-run", false, "print payloads without posting")
	flag.Parse()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 9

	var payloads []readingPayload
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("read csv line %d: %v", line+1, err)
		}
		line++
		if line == 1 && record[0] == "reading_time" {
			continue
		}

		p := readingPayload{
			UserID:    record[1],
			Latitude:  parseFloat(record[2]),
			Longitude: parseFloat(record[3]),
			PM25:      parseFloat(record[4]),
			PM10:      parseFloat(record[5]),
			NO2:       parseFloat(record[6]),
			O3:        parseFloat(record[7]),
			Source:    "import",
		}
		if record[0] != "" {
			t, err := time.Parse(time.RFC3339, record[0])
			if err != nil {
				log.Printf("line %d: bad reading_time %q, skipping", line, record[0])
				continue
			}
			p.ReadingTime = t.UTC().Format(time.RFC3339)
		}
		if record[8] != "" {
			if n, err := strconv.Atoi(record[8]); err == nil {
				p.AQI = n
			}
		}
		if p.PM25 <= 0 && p.PM10 <= 0 && p.AQI <= 0 {
			log.Printf("line %d: no pollutant data, skipping", line)
			continue
		}
		payloads = append(payloads, p)
	}

	fmt.Printf("parsed %d readings from %s\n", len(payloads), *csvPath)

	if *dryRun {
		for _, p := range payloads {
			b, _ := json.MarshalIndent(p, "", "  ")
			fmt.Println(string(b))
		}
		return
	}

	posted := 0
	for i, p := range payloads {
		body, err := json.Marshal(p)
		if err != nil {
			log.Printf("marshal reading %d: %v", i+1, err)
			continue
		}
		req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/readings", bytes.NewReader(body))
		if err != nil {
			log.Printf("build request %d: %v", i+1, err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Printf("post reading %d: %v", i+1, err)
			continue
		}
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			log.Printf("post reading %d: status %d: %s", i+1, resp.StatusCode, b)
		} else {
			posted++
		}
		resp.Body.Close()
	}

	fmt.Printf("posted %d/%d readings\n", posted, len(payloads))
}
