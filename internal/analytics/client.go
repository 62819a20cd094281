package analytics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"studiosync/internal/models"
	"studiosync/internal/providers"
	"studiosync/internal/structures"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

var (
	ErrQuotaExceeded   = errors.New("provider quota exceeded")
	ErrChannelNotFound = errors.New("channel not found")
)

// Client is the analytics provider surface the fetcher depends on. One call
// resolves one identifier; batching and failure isolation live in the Fetcher.
type Client interface {
	ChannelByID(ctx context.Context, key, channelID string) (*models.LiveStatsRecord, error)
	ChannelByHandle(ctx context.Context, key, handle string) (*models.LiveStatsRecord, error)
	RecentActivity(ctx context.Context, key, channelID string, limit int) ([]models.ActivityEvent, error)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  providers.Logger
}

func NewHTTPClient(conf *structures.Config, logger providers.Logger) Client {
	return &HTTPClient{
		baseURL: strings.TrimRight(conf.Provider.BaseURL, "/"),
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(conf.Provider.RatePerSecond), conf.Provider.Burst),
		logger:  logger,
	}
}

// channelsResponse mirrors the provider's channel list payload. Statistics
// arrive as decimal strings.
type channelsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			CustomURL  string `json:"customUrl"`
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			ViewCount       string `json:"viewCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			ChannelID            string `json:"channelId"`
			Title                string `json:"title"`
			PublishedAt          string `json:"publishedAt"`
			LiveBroadcastContent string `json:"liveBroadcastContent"`
			Thumbnails           struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		// The provider reports daily quota exhaustion as 403.
		io.Copy(io.Discard, resp.Body)
		return ErrQuotaExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d for %s", resp.StatusCode, endpoint)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPClient) channel(ctx context.Context, key string, params url.Values) (*models.LiveStatsRecord, error) {
	params.Set("part", "snippet,statistics")
	params.Set("key", key)

	var resp channelsResponse
	if err := c.getJSON(ctx, "channels", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, ErrChannelNotFound
	}

	item := resp.Items[0]
	return &models.LiveStatsRecord{
		ChannelID:    item.ID,
		Handle:       item.Snippet.CustomURL,
		DisplayTitle: item.Snippet.Title,
		LogoURL:      item.Snippet.Thumbnails.Default.URL,
		Subscribers:  parseCount(item.Statistics.SubscriberCount),
		Views:        parseCount(item.Statistics.ViewCount),
		Uploads:      parseCount(item.Statistics.VideoCount),
	}, nil
}

func (c *HTTPClient) ChannelByID(ctx context.Context, key, channelID string) (*models.LiveStatsRecord, error) {
	params := url.Values{}
	params.Set("id", channelID)
	return c.channel(ctx, key, params)
}

func (c *HTTPClient) ChannelByHandle(ctx context.Context, key, handle string) (*models.LiveStatsRecord, error) {
	params := url.Values{}
	params.Set("forHandle", handle)
	return c.channel(ctx, key, params)
}

func (c *HTTPClient) RecentActivity(ctx context.Context, key, channelID string, limit int) ([]models.ActivityEvent, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("channelId", channelID)
	params.Set("order", "date")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("key", key)

	var resp searchResponse
	if err := c.getJSON(ctx, "search", params, &resp); err != nil {
		return nil, err
	}

	events := make([]models.ActivityEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		isLive := item.Snippet.LiveBroadcastContent == "live"
		eventType := models.ActivityVideo
		if isLive {
			eventType = models.ActivityLive
		}
		ts := int64(0)
		if published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			ts = published.UnixMilli()
		}
		events = append(events, models.ActivityEvent{
			ID:        item.ID.VideoID,
			ChannelID: item.Snippet.ChannelID,
			Type:      eventType,
			IsLive:    isLive,
			Title:     item.Snippet.Title,
			Thumbnail: item.Snippet.Thumbnails.Medium.URL,
			URL:       "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			Timestamp: ts,
		})
	}
	return events, nil
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
