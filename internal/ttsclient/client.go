// Package ttsclient implements the external speech-synthesis HTTP
// protocol: POST /audio_query to get a mutable query object, mutate its
// speed/pitch scale, then POST /synthesis to get back WAV bytes. Both
// calls retry with exponential backoff, grounded on the general "retry
// until a fix works or attempts run out" shape of the teacher's
// internal/ffmpeg/retry.go RetryState, but implemented with
// cenkalti/backoff/v4 rather than a hand-rolled attempt counter since
// there is no per-attempt "fix" to select here, only a wait-and-retry.
package ttsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/scenecast/scenecast/internal/errs"
)

// Query is the audio_query response: an engine-defined JSON object that
// the caller mutates (speedScale, pitchScale) before passing back to
// Synthesize. Kept as a raw map since the engine's query schema is not
// specified by this package's caller-facing contract.
type Query map[string]interface{}

// Client talks to one running TTS engine instance.
type Client struct {
	baseURL string
	http    *http.Client

	newBackOff func() backoff.BackOff
}

// New returns a Client for the engine at baseURL (e.g.
// "http://127.0.0.1:50021"). requestTimeout bounds each individual HTTP
// call; the backoff schedule governs retries across failed calls.
func New(baseURL string, requestTimeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 4 * time.Second
			b.MaxInterval = 10 * time.Second
			b.MaxElapsedTime = 0 // bounded by WithMaxRetries below, not elapsed time
			return backoff.WithMaxRetries(b, 4) // 5 attempts: the first call plus 4 retries
		},
	}
}

// Synthesize runs the full audio_query -> mutate -> synthesis flow for
// one line, returning WAV bytes.
func (c *Client) Synthesize(ctx context.Context, text string, speaker int, speed, pitch float64) ([]byte, error) {
	query, err := c.AudioQuery(ctx, text, speaker)
	if err != nil {
		return nil, err
	}
	query["speedScale"] = speed
	query["pitchScale"] = pitch
	return c.Synthesis(ctx, speaker, query)
}

// AudioQuery calls POST /audio_query?text=&speaker= and returns the
// parsed query object, retrying on transport or non-2xx failures.
func (c *Client) AudioQuery(ctx context.Context, text string, speaker int) (Query, error) {
	var result Query
	op := func() error {
		u := fmt.Sprintf("%s/audio_query?text=%s&speaker=%d", c.baseURL, url.QueryEscape(text), speaker)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			return fmt.Errorf("audio_query: status %d", resp.StatusCode)
		}
		result = nil
		return json.NewDecoder(resp.Body).Decode(&result)
	}
	if err := backoff.Retry(op, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		return nil, &errs.DependencyError{Dep: "tts", Err: err}
	}
	return result, nil
}

// Synthesis calls POST /synthesis?speaker= with query as the JSON body
// and returns the raw WAV bytes, retrying on transport or non-2xx
// failures.
func (c *Client) Synthesis(ctx context.Context, speaker int, query Query) ([]byte, error) {
	var wav []byte
	op := func() error {
		body, err := json.Marshal(query)
		if err != nil {
			return backoff.Permanent(err)
		}
		u := fmt.Sprintf("%s/synthesis?speaker=%d", c.baseURL, speaker)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			return fmt.Errorf("synthesis: status %d", resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		wav = data
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		return nil, &errs.DependencyError{Dep: "tts", Err: err}
	}
	return wav, nil
}
