// Package qdrant provides a vector index adapter backed by a Qdrant server
// reached over its REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/logger"
)

// Payload field names shared by upserts and search filters.
const (
	fieldDocumentID = "mongo_id"
	fieldChannelID  = "channelId"
	fieldStart      = "start"
	fieldEnd        = "end"
)

// DefaultTimeout bounds each call when no timeout is configured.
const DefaultTimeout = domain.DefaultCallTimeout

// ErrStatus is wrapped by errors carrying an unexpected HTTP status.
var ErrStatus = errors.New("qdrant: unexpected status")

// ClientConfig configures the REST client.
type ClientConfig struct {
	// URL is the server base URL, e.g. http://localhost:6333 (required).
	URL string

	// APIKey is sent in the api-key header when set.
	APIKey string

	// Collection is the collection name (default: transcripts).
	Collection string

	// Timeout bounds each call (default: 30s).
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client is a minimal Qdrant REST client for one collection.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	collection string
	timeout    time.Duration
}

// NewClient creates a REST client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant: URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("qdrant: invalid URL %q: %w", cfg.URL, err)
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &Client{
		http:       cfg.HTTPClient,
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		timeout:    cfg.Timeout,
	}, nil
}

// Collection returns the collection name.
func (c *Client) Collection() string {
	return c.collection
}

type vectorsConfig struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createCollectionRequest struct {
	Vectors vectorsConfig `json:"vectors"`
}

// EnsureCollection creates the collection with cosine distance if it does
// not exist. An existing collection is left untouched.
func (c *Client) EnsureCollection(ctx context.Context, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive, got %d", domain.ErrInvalidInput, vectorSize)
	}

	status, _, err := c.do(ctx, http.MethodGet, c.collectionPath(""), nil, true)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("%w %d reading collection %s", ErrStatus, status, c.collection)
	}

	logger.Info("Creating vector collection %s (size %d)", c.collection, vectorSize)
	body := createCollectionRequest{Vectors: vectorsConfig{Size: vectorSize, Distance: "Cosine"}}
	status, raw, err := c.do(ctx, http.MethodPut, c.collectionPath(""), body, false)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w %d creating collection %s: %s", ErrStatus, status, c.collection, raw)
	}
	return nil
}

type point struct {
	ID      uint64         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type upsertRequest struct {
	Points []point `json:"points"`
}

// UpsertPoints writes points and waits for them to be indexed.
// Upserts are never retried.
func (c *Client) UpsertPoints(ctx context.Context, points []domain.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	req := upsertRequest{Points: make([]point, len(points))}
	for i, p := range points {
		req.Points[i] = point{
			ID:     p.ID,
			Vector: p.Vector,
			Payload: map[string]any{
				fieldDocumentID: p.Payload.DocumentID,
				fieldChannelID:  p.Payload.ChannelID,
				fieldStart:      p.Payload.WindowStart,
				fieldEnd:        p.Payload.WindowEnd,
			},
		}
	}

	status, raw, err := c.do(ctx, http.MethodPut, c.collectionPath("/points?wait=true"), req, false)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w %d upserting points: %s", ErrStatus, status, raw)
	}
	return nil
}

type rangeCondition struct {
	GTE *int64 `json:"gte,omitempty"`
	LTE *int64 `json:"lte,omitempty"`
}

type matchCondition struct {
	Any []int `json:"any"`
}

type fieldCondition struct {
	Key   string          `json:"key"`
	Range *rangeCondition `json:"range,omitempty"`
	Match *matchCondition `json:"match,omitempty"`
}

type searchFilter struct {
	Must []fieldCondition `json:"must"`
}

type searchRequest struct {
	Vector      []float32     `json:"vector"`
	Filter      *searchFilter `json:"filter,omitempty"`
	Limit       int           `json:"limit"`
	WithPayload bool          `json:"with_payload"`
}

type scoredPoint struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload struct {
		DocumentID string `json:"mongo_id"`
	} `json:"payload"`
}

type searchResponse struct {
	Result []scoredPoint `json:"result"`
}

// SearchHit is one scored point returned by a search.
type SearchHit struct {
	DocumentID string
	Score      float64
}

// SearchPoints returns the nearest points whose window overlaps the given
// window, restricted to channels when any are given.
func (c *Client) SearchPoints(
	ctx context.Context,
	vector []float32,
	window *domain.TimeWindow,
	channels []int,
	topK int,
) ([]SearchHit, error) {
	req := searchRequest{
		Vector:      vector,
		Filter:      buildFilter(window, channels),
		Limit:       topK,
		WithPayload: true,
	}

	status, raw, err := c.do(ctx, http.MethodPost, c.collectionPath("/points/search"), req, true)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w %d searching points: %s", ErrStatus, status, raw)
	}

	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("qdrant: decode search response: %w", err)
	}

	hits := make([]SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, SearchHit{DocumentID: r.Payload.DocumentID, Score: r.Score})
	}
	return hits, nil
}

// buildFilter encodes the window as epoch-second range conditions on the
// same payload fields written by UpsertPoints.
func buildFilter(window *domain.TimeWindow, channels []int) *searchFilter {
	var must []fieldCondition
	if window != nil {
		start := window.Start.Unix()
		end := window.End.Unix()
		must = append(must,
			fieldCondition{Key: fieldEnd, Range: &rangeCondition{GTE: &start}},
			fieldCondition{Key: fieldStart, Range: &rangeCondition{LTE: &end}},
		)
	}
	if len(channels) > 0 {
		must = append(must, fieldCondition{Key: fieldChannelID, Match: &matchCondition{Any: channels}})
	}
	if len(must) == 0 {
		return nil
	}
	return &searchFilter{Must: must}
}

// Ping checks the server answers on its root endpoint.
func (c *Client) Ping(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/", nil, true)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w %d from server root", ErrStatus, status)
	}
	return nil
}

func (c *Client) collectionPath(suffix string) string {
	return "/collections/" + url.PathEscape(c.collection) + suffix
}

// do sends one request. Reads pass retry=true and are attempted a second
// time after a transport error or a 5xx answer.
func (c *Client) do(ctx context.Context, method, path string, body any, retry bool) (int, []byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("qdrant: marshal request: %w", err)
		}
	}

	attempts := 1
	if retry {
		attempts = 2
	}

	var (
		status int
		raw    []byte
		err    error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		status, raw, err = c.send(ctx, method, path, payload)
		if err == nil && status < http.StatusInternalServerError {
			return status, raw, nil
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			logger.Debug("Retrying qdrant %s %s after attempt %d (status %d, err %v)", method, path, attempt, status, err)
		}
	}
	if err != nil {
		return 0, nil, fmt.Errorf("qdrant: %s %s: %w", method, path, err)
	}
	return status, raw, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}
