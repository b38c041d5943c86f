package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Gateway   GatewayConfig
	RateLimit RateLimitConfig
	Queue     QueueConfig
	Store     StoreConfig
	Engine    EngineConfig
	Storage   StorageConfig
	Lyrics    LyricsConfig
	Prompts   PromptsConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type GatewayConfig struct {
	Enabled bool
}

type RateLimitConfig struct {
	TracksPerHour int
	LyricsPerMin  int
}

type QueueConfig struct {
	Capacity              int
	PerJobEstimateSeconds int
}

type StoreConfig struct {
	ResultsPath string
}

type EngineConfig struct {
	PythonBin   string
	InferScript string
	WorkDir     string
	Stage1Model string
	Stage2Model string
	OutputDir   string
}

type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

// ProviderConfig holds credentials for one lyrics backend.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type LyricsConfig struct {
	Provider  string
	OpenAI    ProviderConfig
	Anthropic ProviderConfig
	Gemini    ProviderConfig
}

type PromptsConfig struct {
	LyricsPath string
	GenrePath  string
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("OPENAI_API_KEY")
	readSecret("ANTHROPIC_API_KEY")
	readSecret("GEMINI_API_KEY")
	readSecret("STORAGE_ACCOUNT_ID")
	readSecret("STORAGE_ACCESS_KEY_ID")
	readSecret("STORAGE_SECRET_ACCESS_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.api_domain", "API_DOMAIN")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("gateway.enabled", "GATEWAY_ENABLED")
	_ = viper.BindEnv("ratelimit.tracks_per_hour", "RATELIMIT_TRACKS_PER_HOUR")
	_ = viper.BindEnv("ratelimit.lyrics_per_min", "RATELIMIT_LYRICS_PER_MIN")
	_ = viper.BindEnv("queue.capacity", "QUEUE_CAPACITY")
	_ = viper.BindEnv("queue.per_job_estimate_seconds", "QUEUE_PER_JOB_ESTIMATE_SECONDS")
	_ = viper.BindEnv("store.results_path", "RESULTS_PATH")
	_ = viper.BindEnv("engine.python_bin", "ENGINE_PYTHON_BIN")
	_ = viper.BindEnv("engine.infer_script", "ENGINE_INFER_SCRIPT")
	_ = viper.BindEnv("engine.work_dir", "ENGINE_WORK_DIR")
	_ = viper.BindEnv("engine.stage1_model", "ENGINE_STAGE1_MODEL")
	_ = viper.BindEnv("engine.stage2_model", "ENGINE_STAGE2_MODEL")
	_ = viper.BindEnv("engine.output_dir", "ENGINE_OUTPUT_DIR")
	_ = viper.BindEnv("storage.account_id", "STORAGE_ACCOUNT_ID")
	_ = viper.BindEnv("storage.access_key_id", "STORAGE_ACCESS_KEY_ID")
	_ = viper.BindEnv("storage.secret_access_key", "STORAGE_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("storage.bucket_name", "STORAGE_BUCKET_NAME")
	_ = viper.BindEnv("storage.public_url", "STORAGE_PUBLIC_URL")
	_ = viper.BindEnv("lyrics.provider", "LYRICS_PROVIDER")
	_ = viper.BindEnv("lyrics.openai.api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("lyrics.openai.base_url", "OPENAI_BASE_URL")
	_ = viper.BindEnv("lyrics.openai.model", "OPENAI_MODEL")
	_ = viper.BindEnv("lyrics.anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("lyrics.anthropic.base_url", "ANTHROPIC_BASE_URL")
	_ = viper.BindEnv("lyrics.anthropic.model", "ANTHROPIC_MODEL")
	_ = viper.BindEnv("lyrics.gemini.api_key", "GEMINI_API_KEY")
	_ = viper.BindEnv("lyrics.gemini.base_url", "GEMINI_BASE_URL")
	_ = viper.BindEnv("lyrics.gemini.model", "GEMINI_MODEL")
	_ = viper.BindEnv("prompts.lyrics_path", "LYRICS_PROMPT_PATH")
	_ = viper.BindEnv("prompts.genre_path", "GENRE_PROMPT_PATH")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("gateway.enabled", false)
	viper.SetDefault("ratelimit.tracks_per_hour", 10)
	viper.SetDefault("ratelimit.lyrics_per_min", 30)
	viper.SetDefault("queue.capacity", 256)
	viper.SetDefault("queue.per_job_estimate_seconds", 60)
	viper.SetDefault("store.results_path", "results.json")
	viper.SetDefault("engine.python_bin", "python")
	viper.SetDefault("engine.infer_script", "src/yue/infer.py")
	viper.SetDefault("engine.work_dir", ".")
	viper.SetDefault("engine.stage1_model", "models/YuE-s1-7B-anneal-en-cot-exl2-8.0bpw")
	viper.SetDefault("engine.stage2_model", "models/YuE-s2-1B-general-exl2-8.0bpw")
	viper.SetDefault("engine.output_dir", "output")
	viper.SetDefault("lyrics.provider", "openai")
	viper.SetDefault("lyrics.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("lyrics.openai.model", "gpt-4o")
	viper.SetDefault("lyrics.anthropic.base_url", "https://api.anthropic.com")
	viper.SetDefault("lyrics.anthropic.model", "claude-3-5-sonnet-latest")
	viper.SetDefault("lyrics.gemini.base_url", "https://generativelanguage.googleapis.com")
	viper.SetDefault("lyrics.gemini.model", "gemini-1.5-flash")
	viper.SetDefault("prompts.lyrics_path", "lyrics_prompt.txt")
	viper.SetDefault("prompts.genre_path", "genre_prompt.txt")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			ApiDomain: viper.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Gateway: GatewayConfig{
			Enabled: viper.GetBool("gateway.enabled"),
		},
		RateLimit: RateLimitConfig{
			TracksPerHour: viper.GetInt("ratelimit.tracks_per_hour"),
			LyricsPerMin:  viper.GetInt("ratelimit.lyrics_per_min"),
		},
		Queue: QueueConfig{
			Capacity:              viper.GetInt("queue.capacity"),
			PerJobEstimateSeconds: viper.GetInt("queue.per_job_estimate_seconds"),
		},
		Store: StoreConfig{
			ResultsPath: viper.GetString("store.results_path"),
		},
		Engine: EngineConfig{
			PythonBin:   viper.GetString("engine.python_bin"),
			InferScript: viper.GetString("engine.infer_script"),
			WorkDir:     viper.GetString("engine.work_dir"),
			Stage1Model: viper.GetString("engine.stage1_model"),
			Stage2Model: viper.GetString("engine.stage2_model"),
			OutputDir:   viper.GetString("engine.output_dir"),
		},
		Storage: StorageConfig{
			AccountID:       viper.GetString("storage.account_id"),
			AccessKeyID:     viper.GetString("storage.access_key_id"),
			SecretAccessKey: viper.GetString("storage.secret_access_key"),
			BucketName:      viper.GetString("storage.bucket_name"),
			PublicURL:       viper.GetString("storage.public_url"),
		},
		Lyrics: LyricsConfig{
			Provider: viper.GetString("lyrics.provider"),
			OpenAI: ProviderConfig{
				APIKey:  viper.GetString("lyrics.openai.api_key"),
				BaseURL: viper.GetString("lyrics.openai.base_url"),
				Model:   viper.GetString("lyrics.openai.model"),
			},
			Anthropic: ProviderConfig{
				APIKey:  viper.GetString("lyrics.anthropic.api_key"),
				BaseURL: viper.GetString("lyrics.anthropic.base_url"),
				Model:   viper.GetString("lyrics.anthropic.model"),
			},
			Gemini: ProviderConfig{
				APIKey:  viper.GetString("lyrics.gemini.api_key"),
				BaseURL: viper.GetString("lyrics.gemini.base_url"),
				Model:   viper.GetString("lyrics.gemini.model"),
			},
		},
		Prompts: PromptsConfig{
			LyricsPath: viper.GetString("prompts.lyrics_path"),
			GenrePath:  viper.GetString("prompts.genre_path"),
		},
	}

	return cfg, nil
}
