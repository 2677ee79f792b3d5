package configs

import (
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config struct
type Config struct {
	App      `mapstructure:"app"`
	Postgres `mapstructure:"postgres"`
	LLM      `mapstructure:"llm"`
	LMStudio `mapstructure:"lmstudio"`
	Gemini   `mapstructure:"gemini"`
	Session  `mapstructure:"session"`
	Deck     `mapstructure:"deck"`
	Line     `mapstructure:"line"`
	Tracing  `mapstructure:"tracing"`
}

// App struct
type App struct {
	Debug bool   `mapstructure:"debug"`
	Env   string `mapstructure:"env"`
	Port  string `mapstructure:"port"`
}

// Postgres struct
type Postgres struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"database"`
	SSLMode  bool   `mapstructure:"sslmode"`
}

// LLM struct - selects the model provider
type LLM struct {
	Provider string `mapstructure:"provider"` // lmstudio | gemini
	Timeout  int    `mapstructure:"timeout"`  // seconds for one interpretation
}

// LMStudio struct
type LMStudio struct {
	BaseURL      string `mapstructure:"base_url"`
	Model        string `mapstructure:"model"`
	Timeout      int    `mapstructure:"timeout"`
	SystemPrompt string `mapstructure:"system_prompt"` // also used by gemini
	MaxAttempts  int    `mapstructure:"max_attempts"`
	// Temperature is sent only when > 0; otherwise the loaded model's default applies
	Temperature float64 `mapstructure:"temperature"`
}

// Gemini struct
type Gemini struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

// Session struct
type Session struct {
	Timeout      int  `mapstructure:"timeout"` // minutes
	SecureCookie bool `mapstructure:"secure_cookie"`
}

// Deck struct
type Deck struct {
	Source string `mapstructure:"source"` // embedded | file | postgres
	Path   string `mapstructure:"path"`
	Seed   bool   `mapstructure:"seed"`
}

// Line struct
type Line struct {
	Enabled       bool   `mapstructure:"enabled"`
	ChannelSecret string `mapstructure:"channel_secret"`
	ChannelToken  string `mapstructure:"channel_token"`
}

// Tracing struct
type Tracing struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

var config Config

// InitViper func
func InitViper(path, env string) {
	getConfig(path, env)
}

// GetViper func
func GetViper() *Config {
	return &config
}

func getConfig(path, env string) {
	viper.SetConfigName("config")
	viper.AddConfigPath(path)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Println("Config file has changed: ", e.Name)
	})
	err = viper.Unmarshal(&config)
	if err != nil {
		log.Fatalln(err)
	}
}
