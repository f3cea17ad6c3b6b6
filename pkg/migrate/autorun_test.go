package migrate

import (
	"context"
	"io"
	"testing"

	"github.com/mariaquintana/insurecrm-backend/pkg/config"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
)

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cfg := &config.Config{App: config.AppConfig{Env: "production", AutoMigrate: true}}

	if err := MaybeRunDev(context.Background(), cfg, logg, nil); err != nil {
		t.Fatalf("expected no-op outside dev, got %v", err)
	}
}

func TestMaybeRunDevSkipsWhenDisabled(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cfg := &config.Config{App: config.AppConfig{Env: "dev", AutoMigrate: false}}

	if err := MaybeRunDev(context.Background(), cfg, logg, nil); err != nil {
		t.Fatalf("expected no-op with auto-migrate disabled, got %v", err)
	}
}
