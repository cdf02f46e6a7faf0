package forecast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/reoring/immjson"
	"github.com/reoring/immjson/source"
)

// DefaultBaseURL is the open-meteo API root.
const DefaultBaseURL = "https://api.open-meteo.com"

// Request selects the forecast to fetch.
type Request struct {
	BaseURL   string
	Latitude  float64
	Longitude float64
	Days      int
	// Timezone makes daily.time local midnights ("auto" or an IANA name);
	// empty means GMT.
	Timezone string
}

// ErrDays is returned for a Days value the model has no room for.
var ErrDays = fmt.Errorf("forecast days must be between 1 and %d", Days)

// URL returns the forecast endpoint for r, requesting exactly the series
// the Forecast model holds with unix timestamps.
func (r Request) URL() (string, error) {
	if r.Days < 1 || r.Days > Days {
		return "", ErrDays
	}
	base := r.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u = u.JoinPath("v1", "forecast")
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(r.Latitude, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(r.Longitude, 'f', 6, 64))
	q.Set("hourly", "temperature_2m,weather_code")
	q.Set("daily", "sunrise,sunset")
	q.Set("forecast_days", strconv.Itoa(r.Days))
	q.Set("timeformat", "unixtime")
	if r.Timezone != "" {
		q.Set("timezone", r.Timezone)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// StatusError reports a non-200 response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string { return "forecast: unexpected HTTP status " + e.Status }

// Client fetches forecasts over HTTP and decodes them while the body
// streams in.
type Client struct {
	HTTP *http.Client
	// ChunkSize is the read size fed to the decoder.
	// source.DefaultChunkSize when zero.
	ChunkSize int
	Opt       immjson.ParseOpt
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// Fetch requests the forecast and decodes it into f.
func (c *Client) Fetch(ctx context.Context, req Request, f *Forecast) error {
	u, err := req.URL()
	if err != nil {
		return err
	}
	start := time.Now()
	Logger().Debug("fetching forecast", zap.String("url", u))
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(hreq)
	if err != nil {
		Logger().Warn("forecast request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		Logger().Warn("forecast request rejected", zap.Int("status", resp.StatusCode))
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	src := source.Reader(resp.Body, c.ChunkSize)
	if err := Decode(ctx, src, f, c.Opt); err != nil {
		logDecodeFailure(err)
		return err
	}
	Logger().Info("forecast updated",
		zap.Int("reads", src.Reads),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// FetchRaw speaks HTTP/1.0 directly over conn, typically a TLS connection,
// and decodes the body after skipping the response header. It mirrors
// what a device without an HTTP stack does.
func (c *Client) FetchRaw(ctx context.Context, conn io.ReadWriter, req Request, f *Forecast) error {
	u, err := req.URL()
	if err != nil {
		return err
	}
	pu, err := url.Parse(u)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(conn, "GET %s HTTP/1.0\r\nHost: %s\r\nUser-Agent: immjson-dashboard\r\n\r\n", pu.RequestURI(), pu.Host); err != nil {
		return err
	}
	body := source.SkipHTTPHeader(source.Reader(conn, c.ChunkSize))
	if err := Decode(ctx, body, f, c.Opt); err != nil {
		if errors.Is(err, source.ErrNoBody) {
			Logger().Warn("forecast response had no body")
		}
		logDecodeFailure(err)
		return err
	}
	Logger().Info("forecast updated", zap.Int("header_bytes", body.HeaderBytes))
	return nil
}

func logDecodeFailure(err error) {
	iss, ok := immjson.AsIssues(err)
	if !ok || len(iss) == 0 {
		Logger().Error("forecast decode failed", zap.Error(err))
		return
	}
	it := iss[0]
	Logger().Error("forecast decode failed",
		zap.String("code", it.Code),
		zap.String("path", it.Path),
		zap.Int("line", it.Line),
		zap.Int("column", it.Column),
		zap.String("detail", it.Hint),
		zap.String("remainder", it.InputFragment),
	)
}
