package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
)

// Azure speech tokens live for ten minutes; the cache TTL stays below that
// so a cached token is always still usable by the client.
const (
	speechTokenCacheKey = "readfluent:speech:token"
	speechTokenCacheTTL = 9 * time.Minute
)

// SpeechToken is a short-lived token plus the region the client must use.
type SpeechToken struct {
	Token  string `json:"token"`
	Region string `json:"region"`
}

// SpeechTokenClient exchanges a server-held subscription key for short-lived
// speech-service tokens, caching them in Redis between requests.
type SpeechTokenClient struct {
	subscriptionKey string
	region          string
	issueURL        string
	http            *resty.Client
	cache           *redis.Client
}

// NewSpeechTokenClient constructs a client for the given region. cache may be
// nil, in which case every call hits the upstream token endpoint.
func NewSpeechTokenClient(subscriptionKey, region string, cache *redis.Client) (*SpeechTokenClient, error) {
	subscriptionKey = strings.TrimSpace(subscriptionKey)
	region = strings.TrimSpace(region)
	if subscriptionKey == "" {
		return nil, fmt.Errorf("speech subscription key required")
	}
	if region == "" {
		return nil, fmt.Errorf("speech region required")
	}
	return &SpeechTokenClient{
		subscriptionKey: subscriptionKey,
		region:          region,
		issueURL:        fmt.Sprintf("https://%s.api.cognitive.microsoft.com/sts/v1.0/issueToken", region),
		http:            resty.New().SetTimeout(10 * time.Second),
		cache:           cache,
	}, nil
}

// SetIssueURL overrides the token endpoint, used by tests.
func (c *SpeechTokenClient) SetIssueURL(url string) {
	c.issueURL = url
}

// IssueToken returns a usable speech token, from cache when possible.
func (c *SpeechTokenClient) IssueToken(ctx context.Context) (SpeechToken, error) {
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, speechTokenCacheKey).Result()
		if err == nil && cached != "" {
			return SpeechToken{Token: cached, Region: c.region}, nil
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Ocp-Apim-Subscription-Key", c.subscriptionKey).
		Post(c.issueURL)
	if err != nil {
		return SpeechToken{}, fmt.Errorf("issue speech token: %w", err)
	}
	if resp.IsError() {
		return SpeechToken{}, &UpstreamError{Status: resp.StatusCode(), Message: "speech token request failed"}
	}
	token := strings.TrimSpace(string(resp.Body()))
	if token == "" {
		return SpeechToken{}, &UpstreamError{Status: resp.StatusCode(), Message: "empty speech token response"}
	}

	if c.cache != nil {
		// Best effort; a cache miss next time just re-issues.
		_ = c.cache.Set(ctx, speechTokenCacheKey, token, speechTokenCacheTTL).Err()
	}
	return SpeechToken{Token: token, Region: c.region}, nil
}
