// Package shortener 冻结前缩短图片链接（tinyurl 兼容的 GET 接口）
package shortener

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rightshare/client-sdk-go/client"
	"github.com/rightshare/client-sdk-go/services/rights"
)

// DefaultEndpoint tinyurl 创建接口
const DefaultEndpoint = "https://tinyurl.com/api-create.php"

// maxResponseSize 响应体上限
const maxResponseSize = 4 << 10

// Config 缩短服务配置
type Config struct {
	// Endpoint 接口地址，长链接通过 url 查询参数传入
	Endpoint string

	// Timeout 单次请求超时
	Timeout time.Duration

	Logger client.Logger
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		Timeout:  10 * time.Second,
	}
}

// Service 实现 rights.ImageShortener
type Service struct {
	endpoint string
	client   *http.Client
	logger   client.Logger
}

var _ rights.ImageShortener = (*Service)(nil)

// NewService 创建缩短服务
func NewService(cfg *Config) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid shortener endpoint: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = client.NopLogger()
	}
	return &Service{
		endpoint: endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}, nil
}

// Shorten 返回短链接；空串原样返回
func (s *Service) Shorten(ctx context.Context, longURL string) (string, error) {
	if strings.TrimSpace(longURL) == "" {
		return longURL, nil
	}

	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid shortener endpoint: %w", err)
	}
	q := u.Query()
	q.Set("url", longURL)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request failed: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", client.NewNetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shorten failed: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	short := strings.TrimSpace(string(body))
	if !strings.HasPrefix(short, "http://") && !strings.HasPrefix(short, "https://") {
		return "", client.NewInvalidResponseError(fmt.Sprintf("unexpected shortener response: %q", short))
	}
	s.logger.Debug("image url shortened", "from", longURL, "to", short)
	return short, nil
}
