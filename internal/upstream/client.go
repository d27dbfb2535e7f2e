package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/actuallystonmai/product-composite-service/internal/domain"
	"github.com/actuallystonmai/product-composite-service/internal/logger"
)

const (
	defaultTimeout = 5 * time.Second
	initialBackoff = 250 * time.Millisecond
	maxBodyBytes   = 1 << 20
)

type Options struct {
	ProductURL        string
	RecommendationURL string
	ReviewURL         string

	Timeout    time.Duration
	MaxRetries int

	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Client is the REST implementation of Gateway.
type Client struct {
	productURL        string
	recommendationURL string
	reviewURL         string

	timeout    time.Duration
	maxRetries int
	backoff    time.Duration

	httpClient *http.Client
	log        *logger.Logger
	tracer     trace.Tracer
}

var _ Gateway = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	productURL := normalizeBaseURL(opts.ProductURL)
	recommendationURL := normalizeBaseURL(opts.RecommendationURL)
	reviewURL := normalizeBaseURL(opts.ReviewURL)
	if productURL == "" || recommendationURL == "" || reviewURL == "" {
		return nil, errors.New("product, recommendation and review base URLs are required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		productURL:        productURL,
		recommendationURL: recommendationURL,
		reviewURL:         reviewURL,
		timeout:           timeout,
		maxRetries:        maxRetries,
		backoff:           initialBackoff,
		httpClient:        hc,
		log:               log.With("component", "upstream"),
		tracer:            otel.Tracer("product-composite/upstream"),
	}, nil
}

// GET {product}/product/{id}
func (c *Client) GetProduct(ctx context.Context, productID int) (*domain.Product, error) {
	endpoint := c.productURL + "/product/" + strconv.Itoa(productID)

	var product domain.Product
	if err := c.getJSON(ctx, "product", endpoint, &product); err != nil {
		if IsHTTPStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("product id=%d: %w", productID, domain.ErrProductNotFound)
		}
		return nil, classify("product", err)
	}
	return &product, nil
}

// GET {recommendation}/recommendation?productId={id}
func (c *Client) GetRecommendations(ctx context.Context, productID int) ([]domain.Recommendation, error) {
	endpoint := c.recommendationURL + "/recommendation?" + productQuery(productID)

	var recs []domain.Recommendation
	if err := c.getJSON(ctx, "recommendation", endpoint, &recs); err != nil {
		return nil, classify("recommendation", err)
	}
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	return recs, nil
}

// GET {review}/review?productId={id}
func (c *Client) GetReviews(ctx context.Context, productID int) ([]domain.Review, error) {
	endpoint := c.reviewURL + "/review?" + productQuery(productID)

	var reviews []domain.Review
	if err := c.getJSON(ctx, "review", endpoint, &reviews); err != nil {
		return nil, classify("review", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

// classify turns a raw transport or HTTP error into a domain error.
func classify(service string, err error) error {
	var he *HTTPError
	if errors.As(err, &he) && he.StatusCode == http.StatusUnprocessableEntity {
		msg := he.Message
		if msg == "" {
			msg = fmt.Sprintf("%s service rejected the request", service)
		}
		return &domain.Error{Kind: domain.KindInvalidInput, Msg: msg, Err: err}
	}
	return domain.UpstreamFailure(err, "%s service: %v", service, err)
}

func (c *Client) getJSON(ctx context.Context, service, endpoint string, out any) error {
	ctx, span := c.tracer.Start(ctx, "upstream."+service, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.url", endpoint))

	err := c.doWithRetry(ctx, endpoint, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) doWithRetry(ctx context.Context, endpoint string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lastErr error
	backoff := c.backoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = c.do(ctx, endpoint, out)
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}

		if attempt < c.maxRetries {
			c.log.Debug("upstream call failed, retrying", "url", endpoint, "attempt", attempt+1, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseHTTPError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &decodeError{err: fmt.Errorf("decode response from %s: %w", endpoint, err)}
	}
	return nil
}

func productQuery(productID int) string {
	return url.Values{"productId": []string{strconv.Itoa(productID)}}.Encode()
}

func normalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}
