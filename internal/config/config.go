// Package config loads server configuration from flags and environment,
// with .env support for local development.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	LLM     LLMConfig
	Weather WeatherConfig
	Stream  StreamConfig
	Archive ArchiveConfig
}

type LLMConfig struct {
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
}

type WeatherConfig struct {
	APIKey string
}

type StreamConfig struct {
	Enabled    bool
	ControlURL string
	User       string
	Password   string
	HLSBase    string
	WebRTCBase string
}

type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:    *port,
		Env:     env,
		LLM:     loadLLMConfig(),
		Weather: WeatherConfig{APIKey: strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))},
		Stream:  loadStreamConfig(),
		Archive: loadArchiveConfig(env),
	}, nil
}

func loadLLMConfig() LLMConfig {
	return LLMConfig{
		GeminiAPIKey:    firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))),
		GeminiModel:     strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		OpenAIAPIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:     strings.TrimSpace(os.Getenv("OPENAI_MODEL")),
		AnthropicAPIKey: strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		AnthropicModel:  strings.TrimSpace(os.Getenv("ANTHROPIC_MODEL")),
	}
}

func loadStreamConfig() StreamConfig {
	control := strings.TrimSpace(os.Getenv("MEDIAMTX_API_URL"))
	return StreamConfig{
		Enabled:    control != "",
		ControlURL: control,
		User:       strings.TrimSpace(os.Getenv("MEDIAMTX_USER")),
		Password:   strings.TrimSpace(os.Getenv("MEDIAMTX_PASS")),
		HLSBase:    firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIAMTX_HLS_URL")), "http://localhost:8888"),
		WebRTCBase: firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIAMTX_WEBRTC_URL")), "http://localhost:8889"),
	}
}

func loadArchiveConfig(env string) ArchiveConfig {
	endpoint := resolveArchiveEndpoint(env)
	return ArchiveConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("UPLOAD_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("UPLOAD_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("UPLOAD_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("UPLOAD_S3_BUCKET")), "pulseboard-uploads"),
		UseSSL:    resolveArchiveUseSSL(env),
	}
}

func resolveArchiveEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return firstNonEmpty(strings.TrimSpace(os.Getenv("UPLOAD_MINIO_ENDPOINT")), "")
	}
	return strings.TrimSpace(os.Getenv("UPLOAD_S3_ENDPOINT"))
}

func resolveArchiveUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("UPLOAD_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
