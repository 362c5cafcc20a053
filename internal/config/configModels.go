package config

import "time"

type Config struct {
	Env            string           `yaml:"env" env-default:"local"`
	HttpServer     HttpServerConfig `yaml:"httpServer"`
	DBConfig       DBConfig         `yaml:"db" env-required:"true"`
	Weather        WeatherConfig    `yaml:"weather"`
	Notify         NotifyConfig     `yaml:"notify"`
	EditPolicy     string           `yaml:"editPolicy" env-default:"officers"` // "officers" or "everyone"
	ConfigFilePath string           `yaml:"configFilePath" env:"CONFIG_FILEPATH" env-default:""`
	ConfigFileName string           `yaml:"configFileName" env:"CONFIG_FILENAME" env-default:""`
	configPath     string
}

type HttpServerConfig struct {
	Address     string        `yaml:"address" env-default:"0.0.0.0"`
	Port        string        `yaml:"port" env-default:"8080"`
	MetricsPort string        `yaml:"metricsPort" env-default:"9090"`
	ReadTimeout time.Duration `yaml:"readTimeout" env-default:"10s"`
}

type DBConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	Name     string `yaml:"name" env:"DB_NAME" env-default:"postgres"`
	User     string `yaml:"user" env:"DB_USER" env-default:"user"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-default:"password"`
	Schema   string `yaml:"schema" env:"DB_SCHEMA" env-default:"gar"`
}

type WeatherConfig struct {
	ForecastURL    string        `yaml:"forecastUrl" env-default:"https://api.open-meteo.com/v1/forecast"`
	MarineURL      string        `yaml:"marineUrl" env-default:"https://marine-api.open-meteo.com/v1/marine"`
	Latitude       float64       `yaml:"latitude" env-default:"33.77"`
	Longitude      float64       `yaml:"longitude" env-default:"-118.19"`
	Timeout        time.Duration `yaml:"timeout" env-default:"15s"`
	CacheTTL       time.Duration `yaml:"cacheTtl" env-default:"1h"`
	AllowSynthetic bool          `yaml:"allowSynthetic" env-default:"false"` // honored only when env=local
}

type NotifyConfig struct {
	AppBaseURL string         `yaml:"appBaseUrl" env-default:"http://localhost:3000"`
	Channels   []string       `yaml:"channels" env-default:"email"` // "email", "telegram"
	SMTP       SMTPConfig     `yaml:"smtp"`
	Telegram   TelegramConfig `yaml:"telegram"`
}

type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User     string `yaml:"user" env:"SMTP_USER" env-default:""`
	Password string `yaml:"password" env:"SMTP_PASSWORD" env-default:""`
	From     string `yaml:"from" env:"SMTP_FROM" env-default:"gar@firedepartment.local"`
}

type TelegramConfig struct {
	ApiToken string `yaml:"apitoken" env:"TGBOT_APITOKEN" env-default:""`
}
