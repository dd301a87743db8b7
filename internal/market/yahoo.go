package market

import (
	"context"
	"encoding/json"
	"fmt"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultYahooBaseURL = "https://query2.finance.yahoo.com"

// YahooClient reads prices and option chains from the Yahoo Finance JSON API.
// The options endpoint requires a crumb bound to a session cookie; both are
// obtained lazily and shared by all requests.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
	sessionURL string
	userAgent  string
	limiter    *rate.Limiter
	now        func() time.Time
	logger     *zap.Logger

	crumbMu sync.Mutex
	crumb   string
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *yahooError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type optionsResponse struct {
	OptionChain struct {
		Result []optionsResult `json:"result"`
		Error  *yahooError     `json:"error"`
	} `json:"optionChain"`
}

type optionsResult struct {
	UnderlyingSymbol string  `json:"underlyingSymbol"`
	ExpirationDates  []int64 `json:"expirationDates"`
	Options          []struct {
		ExpirationDate int64        `json:"expirationDate"`
		Calls          []yahooQuote `json:"calls"`
		Puts           []yahooQuote `json:"puts"`
	} `json:"options"`
}

type yahooQuote struct {
	ContractSymbol string   `json:"contractSymbol"`
	Strike         float64  `json:"strike"`
	LastPrice      *float64 `json:"lastPrice"`
}

func NewYahooClient(baseURL, sessionURL, userAgent string, ratePerSec int, timeout time.Duration, logger *zap.Logger) *YahooClient {
	transport := &http.Transport{
		MaxIdleConns:       100,
		MaxConnsPerHost:    10,
		IdleConnTimeout:    90 * time.Second,
		DisableCompression: false,
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec*2)
	}

	// cookiejar.New only fails on a bad PublicSuffixList, and none is passed
	jar, _ := cookiejar.New(nil)

	return &YahooClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			Jar:       jar,
		},
		baseURL:    baseURL,
		sessionURL: sessionURL,
		userAgent:  userAgent,
		limiter:    limiter,
		now:        time.Now,
		logger:     logger,
	}
}

// Compile-time interface verification
var _ Provider = (*YahooClient)(nil)

func (c *YahooClient) History(ctx context.Context, symbol string, days int) ([]Bar, error) {
	end := c.now().UTC()
	start := end.AddDate(0, 0, -days)

	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")

	var resp chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), q, &resp); err != nil {
		return nil, err
	}
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("%s: %s", e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return []Bar{}, nil
	}

	result := resp.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar := Bar{Date: time.Unix(ts, 0).UTC()}
		if i < len(closes) {
			bar.Close = closes[i]
		}
		bars = append(bars, bar)
	}

	c.logger.Debug("history fetched",
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
	)
	return bars, nil
}

func (c *YahooClient) ExpirationDates(ctx context.Context, symbol string) ([]string, error) {
	result, err := c.options(ctx, symbol, nil)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return []string{}, nil
	}

	dates := make([]string, 0, len(result.ExpirationDates))
	for _, ts := range result.ExpirationDates {
		dates = append(dates, time.Unix(ts, 0).UTC().Format(ExpirationLayout))
	}
	return dates, nil
}

func (c *YahooClient) OptionChain(ctx context.Context, symbol, expiration string) (*Chain, error) {
	date, err := time.Parse(ExpirationLayout, expiration)
	if err != nil {
		return nil, fmt.Errorf("parsing expiration %q: %w", expiration, err)
	}

	q := url.Values{}
	q.Set("date", strconv.FormatInt(date.Unix(), 10))

	result, err := c.options(ctx, symbol, q)
	if err != nil {
		return nil, err
	}

	chain := &Chain{
		Expiration: expiration,
		Calls:      []OptionQuote{},
		Puts:       []OptionQuote{},
	}
	if result == nil || len(result.Options) == 0 {
		return chain, nil
	}

	chain.Calls = convertQuotes(result.Options[0].Calls)
	chain.Puts = convertQuotes(result.Options[0].Puts)

	c.logger.Debug("option chain fetched",
		zap.String("symbol", symbol),
		zap.String("expiration", expiration),
		zap.Int("calls", len(chain.Calls)),
		zap.Int("puts", len(chain.Puts)),
	)
	return chain, nil
}

// options queries the options endpoint with the session crumb. A rejected
// crumb is replaced once; a second rejection is returned to the caller.
func (c *YahooClient) options(ctx context.Context, symbol string, q url.Values) (*optionsResult, error) {
	crumb, err := c.sessionCrumb(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.fetchOptions(ctx, symbol, q, crumb)
	if errors.Is(err, ErrInvalidCrumb) {
		c.logger.Info("crumb rejected, refreshing session", zap.String("symbol", symbol))
		c.dropCrumb(crumb)
		if crumb, err = c.sessionCrumb(ctx); err != nil {
			return nil, err
		}
		resp, err = c.fetchOptions(ctx, symbol, q, crumb)
	}
	if err != nil {
		return nil, err
	}

	if e := resp.OptionChain.Error; e != nil {
		return nil, fmt.Errorf("%s: %s", e.Code, e.Description)
	}
	if len(resp.OptionChain.Result) == 0 {
		return nil, nil
	}
	return &resp.OptionChain.Result[0], nil
}

func (c *YahooClient) fetchOptions(ctx context.Context, symbol string, q url.Values, crumb string) (*optionsResponse, error) {
	params := url.Values{}
	for k, v := range q {
		params[k] = v
	}
	params.Set("crumb", crumb)

	var resp optionsResponse
	if err := c.get(ctx, "/v7/finance/options/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// sessionCrumb returns the cached crumb, running the cookie and crumb
// handshake first when there is none.
func (c *YahooClient) sessionCrumb(ctx context.Context) (string, error) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	// The session endpoint answers 404 but still sets the cookie
	if c.sessionURL != "" {
		if _, _, err := c.do(ctx, c.sessionURL); err != nil {
			return "", fmt.Errorf("fetching session cookie: %w", err)
		}
	}

	status, body, err := c.do(ctx, c.baseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("fetching crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if status != http.StatusOK || crumb == "" {
		return "", fmt.Errorf("fetching crumb: %w %d", ErrUpstreamStatus, status)
	}

	c.logger.Debug("yahoo session established")
	c.crumb = crumb
	return crumb, nil
}

// dropCrumb forgets stale unless another request has already replaced it.
func (c *YahooClient) dropCrumb(stale string) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()
	if c.crumb == stale {
		c.crumb = ""
	}
}

func (c *YahooClient) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	status, body, err := c.do(ctx, u)
	if err != nil {
		return err
	}

	if status == http.StatusNotFound {
		if desc := errorDescription(body); desc != "" {
			return fmt.Errorf("%w: %s", ErrSymbolNotFound, desc)
		}
		return ErrSymbolNotFound
	}

	if status == http.StatusUnauthorized {
		if desc := errorDescription(body); strings.Contains(strings.ToLower(desc), "crumb") {
			return fmt.Errorf("%w: %s", ErrInvalidCrumb, desc)
		}
	}

	if status != http.StatusOK {
		if desc := errorDescription(body); desc != "" {
			return fmt.Errorf("%w %d: %s", ErrUpstreamStatus, status, desc)
		}
		return fmt.Errorf("%w %d", ErrUpstreamStatus, status)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// do performs one rate-limited GET and returns the status and full body.
func (c *YahooClient) do(ctx context.Context, u string) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter: %w", err)
	}
	c.logger.Debug("requesting", zap.String("url", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}

	// Read body before closing for error messages
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return 0, nil, fmt.Errorf("reading response: %w", readErr)
	}
	return resp.StatusCode, body, nil
}

// errorDescription extracts the error description from either Yahoo envelope.
func errorDescription(body []byte) string {
	var env struct {
		Chart struct {
			Error *yahooError `json:"error"`
		} `json:"chart"`
		OptionChain struct {
			Error *yahooError `json:"error"`
		} `json:"optionChain"`
		Finance struct {
			Error *yahooError `json:"error"`
		} `json:"finance"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	for _, e := range []*yahooError{env.Chart.Error, env.OptionChain.Error, env.Finance.Error} {
		if e != nil && e.Description != "" {
			return e.Description
		}
	}
	return ""
}

func convertQuotes(in []yahooQuote) []OptionQuote {
	out := make([]OptionQuote, 0, len(in))
	for _, q := range in {
		out = append(out, OptionQuote{
			ContractSymbol: q.ContractSymbol,
			Strike:         q.Strike,
			LastPrice:      q.LastPrice,
		})
	}
	return out
}
