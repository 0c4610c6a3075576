package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// 接続先設定
	BaseURL  string
	LoginURL string
	Username string
	Password string

	// リソースエンドポイント
	MergeRequestsURL string
	IssuesURL        string
	RequirementsURL  string
	TestCasesURL     string

	// 通信設定
	RequestTimeout       time.Duration
	MaxRetries           int
	RetryInitialInterval time.Duration

	// 並列処理設定
	MaxConcurrent int

	// 2xx応答にクッキーが無い場合は認証失敗として扱う
	RequireSessionCookie bool

	// ログ設定
	LogLevel  string
	LogFormat string
}

// Endpoints はエンドポイント定義ファイル (YAML) の内容です
type Endpoints struct {
	BaseURL       string `yaml:"base_url"`
	Login         string `yaml:"login"`
	MergeRequests string `yaml:"merge_requests"`
	Issues        string `yaml:"issues"`
	Requirements  string `yaml:"requirements"`
	TestCases     string `yaml:"test_cases"`
}

// LoadConfig は環境変数から設定を読み込みます
func LoadConfig() (*Config, error) {
	// .envファイルを読み込む
	_ = godotenv.Load()

	var endpoints Endpoints
	if path := os.Getenv("ENDPOINTS_FILE"); path != "" {
		loaded, err := LoadEndpoints(path)
		if err != nil {
			return nil, err
		}
		endpoints = *loaded
	}

	config := &Config{
		BaseURL:              strings.TrimRight(getEnvWithDefault("BASE_URL", endpoints.BaseURL), "/"),
		LoginURL:             getEnvWithDefault("LOGIN_URL", endpoints.Login),
		Username:             os.Getenv("LOGIN_USERNAME"),
		Password:             os.Getenv("LOGIN_PASSWORD"),
		MergeRequestsURL:     getEnvWithDefault("MERGE_REQUESTS_URL", endpoints.MergeRequests),
		IssuesURL:            getEnvWithDefault("ISSUES_URL", endpoints.Issues),
		RequirementsURL:      getEnvWithDefault("REQUIREMENTS_URL", endpoints.Requirements),
		TestCasesURL:         getEnvWithDefault("TEST_CASES_URL", endpoints.TestCases),
		RequestTimeout:       getEnvAsDurationWithDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRetries:           getEnvAsIntWithDefault("MAX_RETRIES", 3),
		RetryInitialInterval: getEnvAsDurationWithDefault("RETRY_INITIAL_INTERVAL", 500*time.Millisecond),
		MaxConcurrent:        getEnvAsIntWithDefault("MAX_CONCURRENT", 4),
		RequireSessionCookie: getEnvAsBoolWithDefault("REQUIRE_SESSION_COOKIE", true),
		LogLevel:             getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvWithDefault("LOG_FORMAT", "text"),
	}

	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}

	return config, nil
}

// LoadEndpoints はYAMLのエンドポイント定義ファイルを読み込みます
func LoadEndpoints(path string) (*Endpoints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("エンドポイント定義ファイル読み込みエラー: %w", err)
	}

	var endpoints Endpoints
	if err := yaml.Unmarshal(data, &endpoints); err != nil {
		return nil, fmt.Errorf("エンドポイント定義ファイル解析エラー: %w", err)
	}

	return &endpoints, nil
}

// Validate はログインに必要な設定が揃っているかを確認します
func (c *Config) Validate() error {
	var missing []string
	if c.LoginURL == "" {
		missing = append(missing, "LOGIN_URL")
	}
	if c.Username == "" {
		missing = append(missing, "LOGIN_USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "LOGIN_PASSWORD")
	}

	if len(missing) > 0 {
		return fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ResolveURL は相対パスのエンドポイントを BaseURL 基準の絶対URLに変換します
func (c *Config) ResolveURL(endpoint string) (string, error) {
	if endpoint == "" {
		return "", nil
	}

	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("URL解析エラー: %w", err)
	}
	if ref.IsAbs() {
		return endpoint, nil
	}

	if c.BaseURL == "" {
		return "", fmt.Errorf("相対パス '%s' を解決するには BASE_URL が必要です", endpoint)
	}

	base, err := url.Parse(c.BaseURL + "/")
	if err != nil {
		return "", fmt.Errorf("BASE_URL解析エラー: %w", err)
	}

	return base.ResolveReference(&url.URL{
		Path:     strings.TrimLeft(ref.Path, "/"),
		RawQuery: ref.RawQuery,
	}).String(), nil
}

// デフォルト値付きで環境変数を取得
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// デフォルト値付きで環境変数を整数として取得
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// デフォルト値付きで環境変数を真偽値として取得
func getEnvAsBoolWithDefault(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// デフォルト値付きで環境変数を時間として取得 ("30s" 形式または秒数)
func getEnvAsDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
