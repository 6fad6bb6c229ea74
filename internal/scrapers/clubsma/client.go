// client.go contains everything that talks to clubs.ma over http, it knows nothing
// about the structure of a listing.

package clubsma

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"clubscraper/internal/components/assert"
	"clubscraper/internal/components/chrono"
	"clubscraper/internal/components/telemetry"
	"clubscraper/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch_page = "client.fetch-page"
	report_client_robots     = "client.robots"
)

type ClientOptions struct {
	// BaseUrl is the listing page url without the page number, ex. `https://www.clubs.ma/casablanca?page=`
	BaseUrl   string
	UserAgent string
	Timeout   time.Duration
	// Delay is slept after every successful page response.
	Delay chrono.Jitter

	// RequestsPerSecond caps the request rate, 0 means no cap.
	RequestsPerSecond float64
	CloudflareBypass  bool
	RespectRobots     bool

	// DumpDir receives a copy of every http exchange when set, it is emptied first.
	DumpDir string
}

// Client fetches listing pages, one request at a time.
type Client struct {
	http    *resty.Client
	baseUrl string
	origin  *url.URL
	opts    ClientOptions

	robots *robotstxt.RobotsData

	time chrono.API
	tel  telemetry.API
}

func NewClient(opts ClientOptions, time chrono.API, tel telemetry.API) (*Client, error) {
	assert.NotEmptyStr(opts.BaseUrl)
	assert.NotNil(time)
	assert.NotNil(tel)

	parsedBaseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	origin := &url.URL{Scheme: parsedBaseUrl.Scheme, Host: parsedBaseUrl.Host}

	httpClient := resty.New()
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		httpClient.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	if opts.RequestsPerSecond > 0 {
		// burst of 1 so that the cap also holds for the very first requests.
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)

	var output restyutil.InstrumentOutput
	if opts.DumpDir != "" {
		fsOutput, err := restyutil.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("create dump dir: %w", err)
		}
		output = fsOutput
	}
	restyutil.InstrumentClient(httpClient, tracer, output)

	return &Client{
		http:    httpClient,
		baseUrl: opts.BaseUrl,
		origin:  origin,
		opts:    opts,
		time:    time,
		tel:     tel,
	}, nil
}

// PageUrl is the url of the given listing page.
func (c *Client) PageUrl(page int) string {
	return c.baseUrl + strconv.Itoa(page)
}

// FetchPage requests a listing page and parses it. Any transport error, non-2xx status
// or robots.txt disallow is an error. The configured delay is slept after a successful
// response, before parsing.
func (c *Client) FetchPage(ctx context.Context, page int) (*goquery.Document, error) {
	endpoint := c.PageUrl(page)

	if c.opts.RespectRobots {
		allowed, err := c.allowedByRobots(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("disallowed by robots.txt: %s", endpoint)
		}
	}

	c.tel.ReportDebug(report_client_fetch_page, endpoint)

	res, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("fetch: unexpected status %s", res.Status())
	}

	err = c.time.Sleep(ctx, c.opts.Delay.Next())
	if err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return doc, nil
}

// robots.txt is fetched once per client, a robots.txt that cannot be fetched
// at all allows everything.
func (c *Client) allowedByRobots(ctx context.Context, endpoint string) (bool, error) {
	if c.robots == nil {
		robotsUrl := c.origin.String() + "/robots.txt"
		res, err := c.http.R().
			SetContext(ctx).
			Get(robotsUrl)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			c.tel.ReportWarning(report_client_robots, fmt.Errorf("fetch robots.txt: %w", err))
			c.robots = allowAllRobots()
		} else {
			robots, err := robotstxt.FromStatusAndBytes(res.StatusCode(), res.Body())
			if err != nil {
				c.tel.ReportWarning(report_client_robots, fmt.Errorf("parse robots.txt: %w", err))
				robots = allowAllRobots()
			}
			c.robots = robots
		}
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return false, fmt.Errorf("parse page url: %w", err)
	}
	return c.robots.TestAgent(parsed.RequestURI(), c.opts.UserAgent), nil
}

func allowAllRobots() *robotstxt.RobotsData {
	// a 4xx robots.txt means no restrictions.
	robots, _ := robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)
	return robots
}
