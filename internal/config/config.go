package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/gfs-plot/internal/domain"
)

const defaultImageSizes = "WA=886x600,unknownWA=886x600,EA=600x733,unknownEA=600x733"

// Config holds all settings, populated from environment variables.
type Config struct {
	// BaseDir holds controls/namelist and controls/domains.
	BaseDir      string
	DataDir      string
	ImageDir     string
	NamelistPath string
	DomainsPath  string

	Workers        int
	FieldCacheSize int

	// ImageSizes maps region names to resize targets. Regions without an
	// entry keep the trimmed size.
	ImageSizes          map[string]domain.ImageSize
	BasemapSize         domain.ImageSize
	BoundariesShapefile string

	HTTPAddr        string
	PushgatewayURL  string
	KafkaBrokers    []string
	KafkaTopic      string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	workers, err := parseBounded("WORKERS", 12, 1, 256)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseBounded("FIELD_CACHE_SIZE", 64, 0, 1<<16)
	if err != nil {
		return nil, err
	}

	sizes, err := domain.ParseImageSizes(sharedcfg.EnvOrDefault("IMAGE_SIZES", defaultImageSizes))
	if err != nil {
		return nil, errors.New("invalid IMAGE_SIZES: " + err.Error())
	}
	basemap, err := domain.ParseImageSize(sharedcfg.EnvOrDefault("BASEMAP_SIZE", "1350x900"))
	if err != nil {
		return nil, errors.New("invalid BASEMAP_SIZE: " + err.Error())
	}

	base := sharedcfg.EnvOrDefault("SWIFT_GFS", ".")
	cfg := &Config{
		BaseDir:      base,
		DataDir:      sharedcfg.EnvOrDefault("GFS_DATA_DIR", base),
		ImageDir:     sharedcfg.EnvOrDefault("GFS_IMAGE_DIR", filepath.Join(base, "MARTIN")),
		NamelistPath: sharedcfg.EnvOrDefault("GFS_NAMELIST", filepath.Join(base, "controls", "namelist")),
		DomainsPath:  sharedcfg.EnvOrDefault("GFS_DOMAINS", filepath.Join(base, "controls", "domains")),

		Workers:        workers,
		FieldCacheSize: cacheSize,

		ImageSizes:          sizes,
		BasemapSize:         basemap,
		BoundariesShapefile: os.Getenv("BOUNDARIES_SHAPEFILE"),

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		PushgatewayURL:  os.Getenv("PUSHGATEWAY_URL"),
		KafkaBrokers:    sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "gfs-images"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	return cfg, nil
}

// ImageSize returns the resize target for a region, if one is configured.
func (c *Config) ImageSize(region string) *domain.ImageSize {
	s, ok := c.ImageSizes[region]
	if !ok {
		return nil
	}
	return &s
}

// NotificationsEnabled reports whether images are announced on Kafka.
func (c *Config) NotificationsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseBounded(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, errors.New("invalid " + key + ": must be " + strconv.Itoa(lo) + "-" + strconv.Itoa(hi))
	}
	return n, nil
}
