package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration lets yaml files use Go duration strings ("500ms", "15s").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	MySQLDSN string `yaml:"mysql_dsn"`

	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`

	Shipping struct {
		BaseURL          string   `yaml:"base_url"`
		APIKey           string   `yaml:"api_key"`
		Policy           string   `yaml:"policy"`
		CallTimeout      Duration `yaml:"call_timeout"`
		ThrottleInterval Duration `yaml:"throttle_interval"`
	} `yaml:"shipping"`

	Email struct {
		BaseURL     string   `yaml:"base_url"`
		APIKey      string   `yaml:"api_key"`
		From        string   `yaml:"from"`
		FromName    string   `yaml:"from_name"`
		MaxAttempts int      `yaml:"max_attempts"`
		BaseDelay   Duration `yaml:"base_delay"`
	} `yaml:"email"`

	// Warehouse is the fixed "from" address for every shipment.
	Warehouse Address `yaml:"warehouse"`

	Parcel struct {
		PerItemWeightKg float64 `yaml:"per_item_weight_kg"`
		MinWeightKg     float64 `yaml:"min_weight_kg"`
		LengthCm        float64 `yaml:"length_cm"`
		WidthCm         float64 `yaml:"width_cm"`
		BaseHeightCm    float64 `yaml:"base_height_cm"`
		HeightCmPerKg   float64 `yaml:"height_cm_per_kg"`
		DefaultContent  string  `yaml:"default_content"`
	} `yaml:"parcel"`

	Workers int `yaml:"workers"`
}

type Address struct {
	Name       string `yaml:"name"`
	Phone      string `yaml:"phone"`
	Email      string `yaml:"email"`
	Line1      string `yaml:"line1"`
	Line2      string `yaml:"line2"`
	City       string `yaml:"city"`
	State      string `yaml:"state"`
	PostalCode string `yaml:"postal_code"`
	Country    string `yaml:"country"`
}

func defaults() *Config {
	cfg := &Config{
		HTTPAddr: ":8080",
		MySQLDSN: "root:root@tcp(localhost:3306)/storefront?parseTime=true",
		Workers:  3,
	}
	cfg.Redis.Addr = "localhost:6379"
	cfg.Shipping.Policy = "cheapest"
	cfg.Shipping.CallTimeout = Duration(15 * time.Second)
	cfg.Shipping.ThrottleInterval = Duration(500 * time.Millisecond)
	cfg.Email.MaxAttempts = 3
	cfg.Email.BaseDelay = Duration(2 * time.Second)
	cfg.Email.From = "orders@aurelle.example"
	cfg.Email.FromName = "Aurelle"
	cfg.Parcel.PerItemWeightKg = 0.3
	cfg.Parcel.MinWeightKg = 0.5
	cfg.Parcel.LengthCm = 35
	cfg.Parcel.WidthCm = 25
	cfg.Parcel.BaseHeightCm = 10
	cfg.Parcel.HeightCmPerKg = 4
	cfg.Parcel.DefaultContent = "apparel"
	return cfg
}

// Load reads the YAML config file, if any, over built-in defaults,
// then applies environment overrides for credentials so secrets stay
// out of the file.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.MySQLDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SHIPPING_API_KEY"); v != "" {
		cfg.Shipping.APIKey = v
	}
	if v := os.Getenv("EMAIL_API_KEY"); v != "" {
		cfg.Email.APIKey = v
	}

	return cfg, nil
}
