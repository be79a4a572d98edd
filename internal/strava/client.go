package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stmilos/yearinsport/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	oneHour          = 60 * 60
	photoCacheExpire = oneHour * 1 // photos barely change, an hour is plenty

	oauthTokenURL = "https://www.strava.com/oauth/token"
)

// Client talks to the Strava v3 API. It owns pagination and the page-count
// safety ceiling; callers get back full year record sets.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	maxPages     int
	perPage      int
	photoCache   *freecache.Cache
	httpClient   *http.Client
}

type NewClientParams struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	MaxPages     int
	PerPage      int
	HTTPClient   *http.Client
}

func NewClient(params NewClientParams) *Client {
	megabyte := 1024 * 1024
	cacheSize := 10 * megabyte

	return &Client{
		baseURL:      strings.TrimSuffix(params.BaseURL, "/"),
		clientID:     params.ClientID,
		clientSecret: params.ClientSecret,
		maxPages:     params.MaxPages,
		perPage:      params.PerPage,
		photoCache:   freecache.NewCache(cacheSize),
		httpClient:   params.HTTPClient,
	}
}

// ExchangeCode trades an OAuth authorization code for tokens plus the
// athlete summary.
func (c *Client) ExchangeCode(ctx context.Context, code string) (_ *TokenExchangeResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stravaApi.exchangeCode")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return c.tokenRequest(ctx, url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
	})
}

// RefreshTokens trades a refresh token for a fresh credential set.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (_ *TokenExchangeResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stravaApi.refreshTokens")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return c.tokenRequest(ctx, url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	})
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (*TokenExchangeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oauthTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: token request: %s", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return nil, ErrAuthExpired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token request status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	tokenResp := &TokenExchangeResponse{}
	if err := json.Unmarshal(respBytes, tokenResp); err != nil {
		return nil, fmt.Errorf("unmarshal token response: %w", err)
	}

	return tokenResp, nil
}

// ListActivities fetches one page of activities in [after, before) epoch range.
func (c *Client) ListActivities(
	ctx context.Context,
	accessToken string,
	afterEpoch, beforeEpoch int64,
	page, perPage int,
) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stravaApi.listActivities")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", page))

	params := url.Values{}
	params.Set("after", strconv.FormatInt(afterEpoch, 10))
	params.Set("before", strconv.FormatInt(beforeEpoch, 10))
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	reqURL := fmt.Sprintf("%s/athlete/activities?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: list activities: %s", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuthExpired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list activities status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var activities []Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("unmarshal activities: %w", err)
	}

	return activities, nil
}

// ActivitiesForYear walks all pages of the athlete's activities for the
// given calendar year. Pagination is sequential: each continuation depends
// on the previous page's size, and the page ceiling guarantees termination
// against a misbehaving upstream.
func (c *Client) ActivitiesForYear(ctx context.Context, accessToken string, year int) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stravaApi.activitiesForYear")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("year", year))

	afterEpoch, beforeEpoch := yearEpochRange(year)

	var all []Activity
	for page := 1; ; page++ {
		if page > c.maxPages {
			log.Warnf("year %d activities fetch hit the %d page ceiling, stopping", year, c.maxPages)
			break
		}

		activities, err := c.ListActivities(ctx, accessToken, afterEpoch, beforeEpoch, page, c.perPage)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		all = append(all, activities...)
		if len(activities) < c.perPage {
			break
		}
	}

	span.SetAttributes(attribute.Int("activities.count", len(all)))
	return all, nil
}

// GetPhotos returns the photos of an activity. Photos are decorative: on any
// non-fatal failure an empty list is returned, never an error. Responses are
// cached in-process to spare the upstream rate limit.
func (c *Client) GetPhotos(ctx context.Context, accessToken string, activityID int64) (_ []Photo, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stravaApi.getPhotos")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("activity.id", activityID))

	cacheKey := fmt.Sprintf("photos::%d", activityID)
	if photosBytes, err := c.photoCache.Get([]byte(cacheKey)); err == nil {
		var photos []Photo
		if err = json.Unmarshal(photosBytes, &photos); err == nil {
			log.Tracef("found photos for activity %d in cache", activityID)
			return photos, nil
		}
		log.Errorf("failed to unmarshal cached photos for activity %d: %s", activityID, err)
	}

	reqURL := fmt.Sprintf("%s/activities/%d/photos?photo_sources=true&size=600", c.baseURL, activityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debugf("get photos for activity %d: %s", activityID, err)
		return []Photo{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// photos might not exist or we are rate limited
		log.Debugf("get photos for activity %d: status %d", activityID, resp.StatusCode)
		return []Photo{}, nil
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Debugf("read photos response for activity %d: %s", activityID, err)
		return []Photo{}, nil
	}

	var photos []Photo
	if err := json.Unmarshal(respBytes, &photos); err != nil {
		log.Debugf("unmarshal photos for activity %d: %s", activityID, err)
		return []Photo{}, nil
	}

	if err := c.photoCache.Set([]byte(cacheKey), respBytes, photoCacheExpire); err != nil {
		log.Errorf("failed to cache photos for activity %d: %s", activityID, err)
	}

	return photos, nil
}

func yearEpochRange(year int) (afterEpoch, beforeEpoch int64) {
	// the year boundary is deliberately coarse; the cache store re-filters
	// on the activity local date anyway
	after := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return after.Unix(), before.Unix()
}
