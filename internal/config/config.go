package config

import (
	"github.com/ilyakaznacheev/cleanenv"
)

// MinimumAPIVersion is the oldest completion-provider API version this
// backend accepts. Client construction fails for anything older.
const MinimumAPIVersion = "2024-02-15-preview"

// OpenAI holds the completion-provider settings.
type OpenAI struct {
	Endpoint      string  `env:"AZURE_OPENAI_ENDPOINT"`
	Key           string  `env:"AZURE_OPENAI_KEY"`
	Model         string  `env:"AZURE_OPENAI_MODEL"`
	Temperature   float32 `env:"AZURE_OPENAI_TEMPERATURE" env-default:"0"`
	TopP          float32 `env:"AZURE_OPENAI_TOP_P" env-default:"1.0"`
	MaxTokens     int     `env:"AZURE_OPENAI_MAX_TOKENS" env-default:"1000"`
	SystemMessage string  `env:"AZURE_OPENAI_SYSTEM_MESSAGE" env-default:"You are an AI assistant that helps people find information."`
	APIVersion    string  `env:"AZURE_OPENAI_API_VERSION" env-default:"2024-02-15-preview"`
	Stream        bool    `env:"AZURE_OPENAI_STREAM" env-default:"true"`
}

// Redis holds the history-store connection settings. An empty Addr disables
// chat history and user-profile persistence.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// UI holds the labels returned by GET /frontend_settings.
type UI struct {
	Title           string `env:"UI_TITLE" env-default:"HEALio"`
	Logo            string `env:"UI_LOGO"`
	ChatLogo        string `env:"UI_CHAT_LOGO"`
	ChatTitle       string `env:"UI_CHAT_TITLE" env-default:"Start chatting with HEAL"`
	ChatDescription string `env:"UI_CHAT_DESCRIPTION" env-default:"This chatbot is configured to guide you on your health journey"`
	Favicon         string `env:"UI_FAVICON" env-default:"/favicon.ico"`
	ShowShareButton bool   `env:"UI_SHOW_SHARE_BUTTON" env-default:"true"`
}

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" env-default:":8080"`
	StaticDir  string `env:"STATIC_DIR" env-default:"static"`

	AuthEnabled     bool `env:"AUTH_ENABLED" env-default:"true"`
	FeedbackEnabled bool `env:"FEEDBACK_ENABLED" env-default:"true"`
	SanitizeAnswer  bool `env:"SANITIZE_ANSWER" env-default:"false"`

	OpenAI OpenAI
	Redis  Redis
	UI     UI
}

// Load reads the configuration snapshot from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// HistoryEnabled reports whether a history store is configured.
func (c *Config) HistoryEnabled() bool {
	return c.Redis.Addr != ""
}
