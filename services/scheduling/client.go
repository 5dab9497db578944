package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"bookcheckout/config"
	"bookcheckout/models"
	"bookcheckout/utils"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// SlotQuery identifies the catalog entry whose availability is requested.
// Empty fields fall back to the configured defaults.
type SlotQuery struct {
	TherapistID string `json:"therapist_id"`
	LocationID  string `json:"loc_id"`
	ServiceID   string `json:"service_id"`
	GetMore     int    `json:"get_more"`
}

type slotResponse struct {
	Slots []string `json:"Slots"`
	Dates []string `json:"dates"`
}

// SlotFetcher is what the HTTP layer needs from this package.
type SlotFetcher interface {
	FetchSlots(ctx context.Context, q SlotQuery) (*models.SlotSchedule, error)
}

type Client struct {
	url      string
	defaults SlotQuery
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[*slotResponse]
	logger   *zap.Logger
}

var _ SlotFetcher = (*Client)(nil)

func NewClient(cfg *config.Config, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		url: cfg.SchedulingURL,
		defaults: SlotQuery{
			TherapistID: cfg.TherapistID,
			LocationID:  cfg.LocationID,
			ServiceID:   cfg.ServiceID,
		},
		http: httpClient,
		breaker: utils.NewBreaker[*slotResponse]("scheduling", utils.BreakerConfig{
			MaxFailures: cfg.BreakerMaxFailures,
			OpenTimeout: cfg.BreakerOpenTimeout,
		}, logger),
		logger: logger.Named("scheduling"),
	}
}

// FetchSlots asks the scheduling webhook for the first page of availability
// and groups it by date. Every failure wraps ErrSlotsUnavailable.
func (c *Client) FetchSlots(ctx context.Context, q SlotQuery) (*models.SlotSchedule, error) {
	q = c.withDefaults(q)

	resp, err := c.breaker.Execute(func() (*slotResponse, error) {
		return c.post(ctx, q)
	})
	if err != nil {
		c.logger.Warn("failed to fetch slots",
			zap.String("therapist_id", q.TherapistID),
			zap.String("service_id", q.ServiceID),
			zap.Error(err))
		if errors.Is(err, ErrSlotsUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSlotsUnavailable, err)
	}

	schedule := GroupSlots(resp.Slots, resp.Dates)
	c.logger.Debug("fetched slots", zap.Int("raw", len(resp.Slots)), zap.Int("dates", len(schedule.Dates)))
	return &schedule, nil
}

func (c *Client) withDefaults(q SlotQuery) SlotQuery {
	if q.TherapistID == "" {
		q.TherapistID = c.defaults.TherapistID
	}
	if q.LocationID == "" {
		q.LocationID = c.defaults.LocationID
	}
	if q.ServiceID == "" {
		q.ServiceID = c.defaults.ServiceID
	}
	q.GetMore = 0
	return q
}

func (c *Client) post(ctx context.Context, q SlotQuery) (*slotResponse, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrSlotsUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSlotsUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSlotsUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrSlotsUnavailable, res.StatusCode)
	}
	var out slotResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSlotsUnavailable, err)
	}
	return &out, nil
}
