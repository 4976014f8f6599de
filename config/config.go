package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Backend is the marketplace REST API serving businesses and coupons
	Backend *BackendConfig `json:"backend" yaml:"backend"`

	// Map configures clustering, viewport and map sessions
	Map *MapConfig `json:"map" yaml:"map"`

	// Geolocation configures the device position lookup
	Geolocation *GeolocationConfig `json:"geolocation" yaml:"geolocation"`

	Cart *CartConfig `json:"cart" yaml:"cart"`

	// Storage is the local preference store
	Storage *StorageConfig `json:"storage" yaml:"storage"`

	// Tiles configures base map tile serving from a PMTiles archive
	Tiles *TilesConfig `json:"tiles" yaml:"tiles"`

	// WhatsApp configures checkout deep links
	WhatsApp *WhatsAppConfig `json:"whatsapp" yaml:"whatsapp"`

	// Worker configures the live business update endpoint
	Worker *WorkerConfig `json:"worker" yaml:"worker"`

	// PubSub configures the business update publisher used by tooling
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// BackendConfig defines the marketplace REST client
type BackendConfig struct {
	BaseURL string        `json:"baseUrl" yaml:"baseUrl"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// MaxResponseBytes caps a successful response body
	MaxResponseBytes int64 `json:"maxResponseBytes" yaml:"maxResponseBytes"`
}

// MapConfig defines clustering and viewport behaviour
type MapConfig struct {
	// Clustering radius in pixels of an Extent-sized tile
	Radius float64 `json:"radius" yaml:"radius"`
	// Above MaxZoom every business renders individually
	MaxZoom   int     `json:"maxZoom" yaml:"maxZoom"`
	MinZoom   int     `json:"minZoom" yaml:"minZoom"`
	Extent    float64 `json:"extent" yaml:"extent"`
	MinPoints int     `json:"minPoints" yaml:"minPoints"`

	ZoomStep     int `json:"zoomStep" yaml:"zoomStep"`
	MaxMapZoom   int `json:"maxMapZoom" yaml:"maxMapZoom"`
	RecenterZoom int `json:"recenterZoom" yaml:"recenterZoom"`
	SelectZoom   int `json:"selectZoom" yaml:"selectZoom"`
	DefaultZoom  int `json:"defaultZoom" yaml:"defaultZoom"`

	DefaultCenter struct {
		Lat float64 `json:"lat" yaml:"lat"`
		Lng float64 `json:"lng" yaml:"lng"`
	} `json:"defaultCenter" yaml:"defaultCenter"`

	// Debounce delays re-querying after a user pan or zoom
	Debounce      time.Duration `json:"debounce" yaml:"debounce"`
	DetailTimeout time.Duration `json:"detailTimeout" yaml:"detailTimeout"`

	SessionTTL  time.Duration `json:"sessionTTL" yaml:"sessionTTL"`
	MaxSessions int           `json:"maxSessions" yaml:"maxSessions"`
}

// GeolocationConfig defines how device positions are resolved
type GeolocationConfig struct {
	// Provider is "http" (IP geolocation endpoint) or "static"
	Provider string `json:"provider" yaml:"provider"`
	// Endpoint may contain {ip}, replaced by the client address
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
	// MaxAge is how long a resolved position is reused
	MaxAge time.Duration `json:"maxAge" yaml:"maxAge"`
}

// CartConfig defines cart pricing rules
type CartConfig struct {
	GramStep         int      `json:"gramStep" yaml:"gramStep"`
	WeightCategories []string `json:"weightCategories" yaml:"weightCategories"`
	DeliveryFee      string   `json:"deliveryFee" yaml:"deliveryFee"`
	Currency         string   `json:"currency" yaml:"currency"`
}

// StorageConfig defines the preference store
type StorageConfig struct {
	// Driver is "sqlite" or "redis"
	Driver string       `json:"driver" yaml:"driver"`
	DSN    string       `json:"dsn" yaml:"dsn"`
	Redis  *RedisConfig `json:"redis" yaml:"redis"`
}

// RedisConfig defines the redis preference store
type RedisConfig struct {
	URL       string `json:"url" yaml:"url"`
	Address   string `json:"address" yaml:"address"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`
	// TTL expires idle preferences; zero keeps them forever
	TTL          time.Duration `json:"ttl" yaml:"ttl"`
	DialTimeout  time.Duration `json:"dialTimeout" yaml:"dialTimeout"`
	ReadTimeout  time.Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
}

// TilesConfig defines PMTiles base map serving
type TilesConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// PMTiles source URL (local file path, HTTP URL, or bucket URL)
	Source string `json:"source" yaml:"source"`

	// Format is the tile file extension served by the archive, e.g. "mvt" or "png"
	Format string `json:"format" yaml:"format"`

	CacheSize int `json:"cacheSize" yaml:"cacheSize"`
}

// WhatsAppConfig defines checkout deep links and their QR codes
type WhatsAppConfig struct {
	// Phone is used when the business has no phone of its own
	Phone                string `json:"phone" yaml:"phone"`
	QRSize               int    `json:"qrSize" yaml:"qrSize"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// WorkerConfig defines the push endpoint server
type WorkerConfig struct {
	Port int `json:"port" yaml:"port"`
	// Token, when set, must be sent as "Authorization: Bearer <token>" on every push
	Token string `json:"token" yaml:"token"`
}

// PubSubConfig defines where business update events are published
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	ProjectID string `json:"projectId" yaml:"projectId"`
	TopicID   string `json:"topicId" yaml:"topicId"`

	// LocalEndpoint is the worker push URL used by the local provider
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	k := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	configFile := ""
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate

			break
		}
	}
	if configFile == "" {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existing := k.Raw()

	// ENV_VAR_NAME overrides are matched against the YAML keys, so that
	// MAP_SESSIONTTL lands on map.sessionTTL.
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, v string) (string, any) {
			return canonicalizeEnvKey(key, existing), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if cfg.Backend.BaseURL == "" {
		return nil, errors.New("backend.baseUrl is required")
	}

	return cfg, nil
}

// applyDefaults fills every section left out of the YAML file.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.HTTP.MaxRequestBodySize) == "" {
		c.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if c.Backend == nil {
		c.Backend = &BackendConfig{}
	}
	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = 10 * time.Second
	}
	setDefault(&c.Backend.MaxResponseBytes, 10<<20)

	if c.Map == nil {
		c.Map = &MapConfig{}
	}
	m := c.Map
	setDefault(&m.Radius, 60)
	setDefault(&m.MaxZoom, 16)
	setDefault(&m.Extent, 512)
	setDefault(&m.MinPoints, 2)
	setDefault(&m.ZoomStep, 2)
	setDefault(&m.MaxMapZoom, 20)
	setDefault(&m.RecenterZoom, 15)
	setDefault(&m.SelectZoom, 17)
	setDefault(&m.DefaultZoom, 13)
	setDefault(&m.DetailTimeout, 10*time.Second)
	setDefault(&m.SessionTTL, 30*time.Minute)
	setDefault(&m.MaxSessions, 1000)
	if m.DefaultCenter.Lat == 0 && m.DefaultCenter.Lng == 0 {
		m.DefaultCenter.Lat, m.DefaultCenter.Lng = 19.039, -98.339
	}

	if c.Geolocation == nil {
		c.Geolocation = &GeolocationConfig{}
	}
	setDefault(&c.Geolocation.Provider, "static")
	setDefault(&c.Geolocation.Timeout, 10*time.Second)
	setDefault(&c.Geolocation.MaxAge, 5*time.Minute)

	if c.Cart == nil {
		c.Cart = &CartConfig{}
	}
	setDefault(&c.Cart.GramStep, 250)
	setDefault(&c.Cart.DeliveryFee, "0")
	setDefault(&c.Cart.Currency, "MXN")

	if c.Storage == nil {
		c.Storage = &StorageConfig{}
	}
	setDefault(&c.Storage.Driver, "sqlite")
	setDefault(&c.Storage.DSN, "file:marketmap.db?cache=shared")
	if c.Storage.Redis == nil {
		c.Storage.Redis = &RedisConfig{}
	}
	setDefault(&c.Storage.Redis.KeyPrefix, "marketmap")
	setDefault(&c.Storage.Redis.DialTimeout, 5*time.Second)

	if c.Tiles == nil {
		c.Tiles = &TilesConfig{}
	}
	setDefault(&c.Tiles.Format, "mvt")
	setDefault(&c.Tiles.CacheSize, 64)

	if c.WhatsApp == nil {
		c.WhatsApp = &WhatsAppConfig{}
	}
	setDefault(&c.WhatsApp.QRSize, 256)
	setDefault(&c.WhatsApp.ErrorCorrectionLevel, "M")

	if c.Worker == nil {
		c.Worker = &WorkerConfig{}
	}
	setDefault(&c.Worker.Port, 8081)
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
