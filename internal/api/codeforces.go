package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"codeforces-tracker/internal/config"
	"codeforces-tracker/internal/errs"

	"github.com/valyala/fasthttp"
)

// Client issues read-only requests against the Codeforces REST API.
// Every endpoint answers with the same envelope:
// {"status":"OK"|"FAILED","result":...,"comment":"..."}.
type Client struct {
	baseURL string
	client  *fasthttp.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.CodeforcesBaseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

type RawUser struct {
	Handle    string `json:"handle"`
	Rating    *int   `json:"rating"`
	MaxRating *int   `json:"maxRating"`
}

type RawContest struct {
	ContestID               int    `json:"contestId"`
	ContestName             string `json:"contestName"`
	Handle                  string `json:"handle"`
	Rank                    int    `json:"rank"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
}

type RawProblem struct {
	Name   string `json:"name"`
	Rating *int   `json:"rating"`
}

type RawSubmission struct {
	ID                  int64      `json:"id"`
	ContestID           int        `json:"contestId"`
	CreationTimeSeconds int64      `json:"creationTimeSeconds"`
	Problem             RawProblem `json:"problem"`
	ProgrammingLanguage string     `json:"programmingLanguage"`
	Verdict             string     `json:"verdict"`
}

// GetUserInfo fetches the profile for a single handle via user.info.
func (c *Client) GetUserInfo(ctx context.Context, handle string) (*RawUser, error) {
	u := fmt.Sprintf("%s/user.info?handles=%s", c.baseURL, url.QueryEscape(handle))
	users, err := doRequest[[]RawUser](ctx, c, u)
	if err != nil {
		return nil, err
	}
	if len(*users) == 0 {
		return nil, &errs.APIError{Comment: fmt.Sprintf("no user returned for handle %s", handle)}
	}
	return &(*users)[0], nil
}

// GetRatingHistory fetches the ordered contest participation list via
// user.rating.
func (c *Client) GetRatingHistory(ctx context.Context, handle string) ([]RawContest, error) {
	u := fmt.Sprintf("%s/user.rating?handle=%s", c.baseURL, url.QueryEscape(handle))
	contests, err := doRequest[[]RawContest](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *contests, nil
}

// GetSubmissions fetches one page of the most recent submissions via
// user.status. The client never paginates past the requested page.
func (c *Client) GetSubmissions(ctx context.Context, handle string, from, count int) ([]RawSubmission, error) {
	u := fmt.Sprintf("%s/user.status?handle=%s&from=%d&count=%d", c.baseURL, url.QueryEscape(handle), from, count)
	submissions, err := doRequest[[]RawSubmission](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *submissions, nil
}

func doRequest[T any](ctx context.Context, client *Client, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, &errs.NetworkError{Err: err}
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, &errs.NetworkError{Err: err}
		}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, &errs.NetworkError{Err: fmt.Errorf("decode envelope: %w", err)}
	}

	if env.Status != "OK" {
		comment := env.Comment
		if comment == "" {
			comment = fmt.Sprintf("status %d", resp.StatusCode())
		}
		return nil, &errs.APIError{Comment: comment}
	}

	var result T
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return nil, &errs.NetworkError{Err: fmt.Errorf("decode result: %w", err)}
	}
	return &result, nil
}
