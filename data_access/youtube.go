package data_access

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/OffCrazyFreak/Pogled-app/models"
)

// YouTubeClient finds official trailers and their statistics. Without an API
// key all lookups return nil, which downgrades ingestion to trailer-less
// records instead of failing it.
type YouTubeClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewYouTubeClient(apiKey, baseURL string) *YouTubeClient {
	return &YouTubeClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// SearchTrailer returns the video id of the top "official trailer" search
// result, or "" when nothing matches.
func (c *YouTubeClient) SearchTrailer(ctx context.Context, movieTitle string) (string, error) {
	if c.apiKey == "" {
		return "", nil
	}

	query := url.QueryEscape(movieTitle + " official trailer")
	u := fmt.Sprintf("%s/search?part=snippet&q=%s&type=video&maxResults=1&key=%s", c.baseURL, query, c.apiKey)

	var result youtubeSearchResponse
	if err := c.doGet(ctx, u, &result); err != nil {
		return "", err
	}
	if len(result.Items) == 0 {
		return "", nil
	}
	return result.Items[0].ID.VideoID, nil
}

// GetVideoStatistics fetches snippet and statistics for a video id.
func (c *YouTubeClient) GetVideoStatistics(ctx context.Context, videoID string) (*models.TrailerInfo, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	u := fmt.Sprintf("%s/videos?part=snippet,statistics&id=%s&key=%s", c.baseURL, videoID, c.apiKey)

	var result youtubeVideosResponse
	if err := c.doGet(ctx, u, &result); err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	item := result.Items[0]
	views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
	likes, _ := strconv.ParseInt(item.Statistics.LikeCount, 10, 64)

	return &models.TrailerInfo{
		VideoID:      videoID,
		Title:        item.Snippet.Title,
		ChannelTitle: item.Snippet.ChannelTitle,
		PublishedAt:  item.Snippet.PublishedAt,
		ViewCount:    views,
		LikeCount:    likes,
	}, nil
}

// GetTrailerInfo searches for a movie's trailer and resolves its statistics.
// Returns nil when no trailer is found. When statistics are unavailable the
// bare video id is still returned.
func (c *YouTubeClient) GetTrailerInfo(ctx context.Context, movieTitle string) (*models.TrailerInfo, error) {
	videoID, err := c.SearchTrailer(ctx, movieTitle)
	if err != nil {
		return nil, err
	}
	if videoID == "" {
		return nil, nil
	}

	stats, err := c.GetVideoStatistics(ctx, videoID)
	if err != nil || stats == nil {
		return &models.TrailerInfo{VideoID: videoID}, nil
	}
	return stats, nil
}

func (c *YouTubeClient) doGet(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request to YouTube API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("YouTube API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding YouTube response: %v", err)
	}
	return nil
}
