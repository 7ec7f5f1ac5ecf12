package influxdb

import (
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/mastercontrol/internal/infrastructure/config"
)

func TestActivityPoint(t *testing.T) {
	at := time.Unix(1700000000, 0)
	line := write.PointToLineProtocol(activityPoint("dev-1", EventConfigUpdated, at), time.Second)

	want := "device_activity,device_id=dev-1,event=config_updated count=1i 1700000000\n"
	if line != want {
		t.Errorf("line protocol = %q, want %q", line, want)
	}
}

func TestBatchSettings(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		flush     int
		wantSize  int
		wantFlush int
	}{
		{"configured", 50, 2, 50, 2},
		{"zero falls back", 0, 0, defaultBatchSize, defaultFlushInterval},
		{"negative falls back", -5, -1, defaultBatchSize, defaultFlushInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, flush := batchSettings(config.InfluxDBConfig{BatchSize: tt.size, FlushInterval: tt.flush})
			if size != tt.wantSize || flush != tt.wantFlush {
				t.Errorf("batchSettings() = (%d, %d), want (%d, %d)", size, flush, tt.wantSize, tt.wantFlush)
			}
		})
	}
}
