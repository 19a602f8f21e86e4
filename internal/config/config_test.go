package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gfs-plot/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.BaseDir)
	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, "MARTIN", cfg.ImageDir)
	assert.Equal(t, filepath.Join("controls", "namelist"), cfg.NamelistPath)
	assert.Equal(t, filepath.Join("controls", "domains"), cfg.DomainsPath)
	assert.Equal(t, 12, cfg.Workers)
	assert.Equal(t, 64, cfg.FieldCacheSize)
	assert.Equal(t, domain.ImageSize{Width: 1350, Height: 900}, cfg.BasemapSize)
	assert.Empty(t, cfg.BoundariesShapefile)
	assert.Empty(t, cfg.HTTPAddr)
	assert.Empty(t, cfg.PushgatewayURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.NotificationsEnabled())
	assert.Equal(t, "gfs-images", cfg.KafkaTopic)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	want := map[string]domain.ImageSize{
		"WA":        {Width: 886, Height: 600},
		"unknownWA": {Width: 886, Height: 600},
		"EA":        {Width: 600, Height: 733},
		"unknownEA": {Width: 600, Height: 733},
	}
	if diff := cmp.Diff(want, cfg.ImageSizes); diff != "" {
		t.Errorf("image sizes mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SWIFT_GFS", "/srv/swift")
	t.Setenv("GFS_DATA_DIR", "/data/gfs")
	t.Setenv("WORKERS", "4")
	t.Setenv("FIELD_CACHE_SIZE", "0")
	t.Setenv("IMAGE_SIZES", "WA=100x50")
	t.Setenv("BASEMAP_SIZE", "300x200")
	t.Setenv("BOUNDARIES_SHAPEFILE", "/srv/borders.shp")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "images")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/gfs", cfg.DataDir)
	assert.Equal(t, "/srv/swift/MARTIN", cfg.ImageDir)
	assert.Equal(t, "/srv/swift/controls/namelist", cfg.NamelistPath)
	assert.Equal(t, "/srv/swift/controls/domains", cfg.DomainsPath)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 0, cfg.FieldCacheSize)
	assert.Equal(t, &domain.ImageSize{Width: 100, Height: 50}, cfg.ImageSize("WA"))
	assert.Nil(t, cfg.ImageSize("EA"))
	assert.Equal(t, domain.ImageSize{Width: 300, Height: 200}, cfg.BasemapSize)
	assert.Equal(t, "/srv/borders.shp", cfg.BoundariesShapefile)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "http://pushgateway:9091", cfg.PushgatewayURL)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.NotificationsEnabled())
	assert.Equal(t, "images", cfg.KafkaTopic)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"WORKERS", "0"},
		{"WORKERS", "257"},
		{"WORKERS", "many"},
		{"FIELD_CACHE_SIZE", "-1"},
		{"IMAGE_SIZES", "WA=wide"},
		{"BASEMAP_SIZE", "1350"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
