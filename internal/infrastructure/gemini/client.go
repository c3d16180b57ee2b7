package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const (
	defaultInitURL     = "https://gemini.google.com/app"
	defaultGenerateURL = "https://gemini.google.com/_/BardChatUi/data/assistant.lamda.BardFrontendService/StreamGenerate"
	defaultRotateURL   = "https://accounts.google.com/RotateCookies"

	buildLabel = "boq_assistant-bard-web-server_20240625.13_p0"
	userAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

	cookiePSID   = "__Secure-1PSID"
	cookiePSIDTS = "__Secure-1PSIDTS"

	// modelHeader carries the JSPB blob that selects a model. Requests for
	// the unspecified model omit it entirely.
	modelHeader = "x-goog-ext-525001261-jspb"

	rotateBody = `[000,"-0000000000000000000"]`
)

// atTokenPattern extracts the SNlM0e page token from the app shell. The
// token is required by the generate endpoint and only appears when the
// cookies identify a live session.
var atTokenPattern = regexp.MustCompile(`"SNlM0e":"(.*?)"`)

// Config carries everything needed to build a Client.
type Config struct {
	Credentials Credentials
	ProxyURL    string
	Timeout     time.Duration
}

// Client drives a cookie-authenticated Gemini web session. It is safe for
// concurrent use once Init has succeeded.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration

	mu      sync.RWMutex
	creds   Credentials
	atToken string

	reqID atomic.Int64

	initURL     string
	generateURL string
	rotateURL   string
}

// NewClient builds a Client for the given cookie pair. It does not touch the
// network; call Init to establish the session.
func NewClient(cfg Config) (*Client, error) {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	c := &Client{
		httpClient:  &http.Client{Transport: transport},
		timeout:     timeout,
		creds:       cfg.Credentials,
		initURL:     defaultInitURL,
		generateURL: defaultGenerateURL,
		rotateURL:   defaultRotateURL,
	}
	c.reqID.Store(int64(100000 + rand.Intn(900000)))
	return c, nil
}

// Init loads the Gemini app shell and extracts the page token that must
// accompany every generate call.
func (c *Client) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.initURL, nil)
	if err != nil {
		return &UnavailableError{Reason: "building init request", Err: err}
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnavailableError{Reason: "reaching gemini", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Reason: fmt.Sprintf("app shell returned status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return &UnavailableError{Reason: fmt.Sprintf("app shell returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UnavailableError{Reason: "reading app shell", Err: err}
	}

	match := atTokenPattern.FindSubmatch(body)
	if match == nil {
		return &AuthError{Reason: "no page token in app shell, cookies likely expired"}
	}

	c.mu.Lock()
	c.atToken = string(match[1])
	c.mu.Unlock()

	log.Debug().Msg("Gemini session initialized")
	return nil
}

// Generate sends the prompt and blocks until the full reply is available.
func (c *Client) Generate(ctx context.Context, prompt string, model Model) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.startGenerate(ctx, prompt, model)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var (
		text       string
		sawPayload bool
	)
	er := newEnvelopeReader(resp.Body)
	for {
		payload, err := er.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &UnavailableError{Reason: "reading reply envelope", Err: err}
		}
		if candidate, ok := candidateText(payload); ok {
			text = candidate
			sawPayload = true
		}
	}
	if !sawPayload {
		return nil, &AuthError{Reason: "reply carried no candidates, session likely expired"}
	}
	return &Reply{Kind: ReplyComplete, Text: text}, nil
}

// GenerateStream sends the prompt and returns a streaming reply whose deltas
// arrive as the backend produces them. The caller must drain Deltas; the
// channel closes when the stream ends or the context is cancelled.
func (c *Client) GenerateStream(ctx context.Context, prompt string, model Model) (*Reply, error) {
	resp, err := c.startGenerate(ctx, prompt, model)
	if err != nil {
		return nil, err
	}

	deltas := make(chan Delta)
	go func() {
		defer close(deltas)
		defer resp.Body.Close()

		emit := func(d Delta) bool {
			select {
			case deltas <- d:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var (
			prev       string
			sawPayload bool
		)
		er := newEnvelopeReader(resp.Body)
		for {
			payload, err := er.next()
			if err == io.EOF {
				break
			}
			if err != nil {
				emit(Delta{Err: &UnavailableError{Reason: "reading reply envelope", Err: err}})
				return
			}
			curr, ok := candidateText(payload)
			if !ok {
				continue
			}
			sawPayload = true

			// Frames carry the accumulated text so far. Emit only the
			// suffix the previous frame did not have; a frame that
			// rewrites earlier text replaces it wholesale.
			var delta string
			if strings.HasPrefix(curr, prev) {
				delta = curr[len(prev):]
			} else {
				delta = curr
			}
			prev = curr
			if delta == "" {
				continue
			}
			if !emit(Delta{Content: delta}) {
				return
			}
		}
		if !sawPayload {
			emit(Delta{Err: &AuthError{Reason: "reply carried no candidates, session likely expired"}})
		}
	}()

	return &Reply{Kind: ReplyStreaming, Deltas: deltas}, nil
}

// RotateCookies asks Google for a fresh __Secure-1PSIDTS, swaps it into the
// session and returns the updated cookie pair.
func (c *Client) RotateCookies(ctx context.Context) (Credentials, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rotateURL, strings.NewReader(rotateBody))
	if err != nil {
		return Credentials{}, &UnavailableError{Reason: "building rotate request", Err: err}
	}
	c.decorate(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credentials{}, &UnavailableError{Reason: "reaching accounts.google.com", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Credentials{}, &AuthError{Reason: fmt.Sprintf("rotate returned status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return Credentials{}, &UnavailableError{Reason: fmt.Sprintf("rotate returned status %d", resp.StatusCode)}
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == cookiePSIDTS && cookie.Value != "" {
			c.mu.Lock()
			c.creds.PSIDTS = cookie.Value
			creds := c.creds
			c.mu.Unlock()
			log.Debug().Msg("Gemini session cookie rotated")
			return creds, nil
		}
	}
	return Credentials{}, &UnavailableError{Reason: "rotate response carried no fresh cookie"}
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) startGenerate(ctx context.Context, prompt string, model Model) (*http.Response, error) {
	c.mu.RLock()
	token := c.atToken
	c.mu.RUnlock()
	if token == "" {
		return nil, &AuthError{Reason: "session not initialized"}
	}

	inner, err := json.Marshal([]interface{}{[]interface{}{prompt}, nil, nil})
	if err != nil {
		return nil, &UnavailableError{Reason: "encoding prompt", Err: err}
	}
	outer, err := json.Marshal([]interface{}{nil, string(inner)})
	if err != nil {
		return nil, &UnavailableError{Reason: "encoding request envelope", Err: err}
	}

	form := url.Values{}
	form.Set("f.req", string(outer))
	form.Set("at", token)

	query := url.Values{}
	query.Set("bl", buildLabel)
	query.Set("_reqid", strconv.FormatInt(c.reqID.Add(100000), 10))
	query.Set("rt", "c")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL+"?"+query.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &UnavailableError{Reason: "building generate request", Err: err}
	}
	c.decorate(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	req.Header.Set("X-Same-Domain", "1")
	req.Header.Set("Origin", "https://gemini.google.com")
	req.Header.Set("Referer", "https://gemini.google.com/")
	if model.Header != "" {
		req.Header.Set(modelHeader, model.Header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Reason: "reaching gemini", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, &AuthError{Reason: fmt.Sprintf("generate returned status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, &UnavailableError{Reason: fmt.Sprintf("generate returned status %d", resp.StatusCode)}
	}
	return resp, nil
}

// decorate applies the session cookies and browser identity every Gemini
// endpoint expects.
func (c *Client) decorate(req *http.Request) {
	c.mu.RLock()
	creds := c.creds
	c.mu.RUnlock()

	req.Header.Set("User-Agent", userAgent)
	req.AddCookie(&http.Cookie{Name: cookiePSID, Value: creds.PSID})
	if creds.PSIDTS != "" {
		req.AddCookie(&http.Cookie{Name: cookiePSIDTS, Value: creds.PSIDTS})
	}
}

// candidateText pulls the accumulated reply text out of a wrb.fr payload.
// Frames that carry metadata instead of candidates report ok false.
func candidateText(payload string) (string, bool) {
	result := gjson.Get(payload, "4.0.1.0")
	if !result.Exists() {
		return "", false
	}
	return result.String(), true
}
