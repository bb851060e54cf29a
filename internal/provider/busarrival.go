package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// busAPIBase is the arrival feed; the stop code is appended as a query
// parameter and the account key travels in a header.
const busAPIBase = "https://datamall2.mytransport.sg/ltaodataservice/v3/BusArrival"

// BusArrival is one service's next arrivals at a stop.
type BusArrival struct {
	ServiceNo string   `json:"service_no"`
	NextETAs  []string `json:"next_etas"` // RFC3339 estimated arrival times
}

// BusClient fetches live arrivals for a bus stop.
type BusClient struct {
	apiKey string
	base   string
	client *http.Client
	log    *zap.Logger
}

func NewBusClient(apiKey string, log *zap.Logger) *BusClient {
	return &BusClient{
		apiKey: apiKey,
		base:   busAPIBase,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

// busFeedResponse mirrors the upstream payload shape.
type busFeedResponse struct {
	Services []struct {
		ServiceNo string `json:"ServiceNo"`
		NextBus   struct {
			EstimatedArrival string `json:"EstimatedArrival"`
		} `json:"NextBus"`
		NextBus2 struct {
			EstimatedArrival string `json:"EstimatedArrival"`
		} `json:"NextBus2"`
		NextBus3 struct {
			EstimatedArrival string `json:"EstimatedArrival"`
		} `json:"NextBus3"`
	} `json:"Services"`
}

// Arrivals returns the next arrivals per service at the given stop code.
func (b *BusClient) Arrivals(ctx context.Context, stopCode string) ([]BusArrival, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		b.base+"?BusStopCode="+stopCode, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("AccountKey", b.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		b.log.Warn("bus arrival request failed", zap.String("stop", stopCode), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errStatus(resp.StatusCode)
	}

	var feed busFeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, err
	}

	out := make([]BusArrival, 0, len(feed.Services))
	for _, s := range feed.Services {
		a := BusArrival{ServiceNo: s.ServiceNo}
		for _, eta := range []string{s.NextBus.EstimatedArrival, s.NextBus2.EstimatedArrival, s.NextBus3.EstimatedArrival} {
			if eta != "" {
				a.NextETAs = append(a.NextETAs, eta)
			}
		}
		out = append(out, a)
	}
	return out, nil
}
