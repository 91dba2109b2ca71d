package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// metricRecord is the JSON line written for each counter data point.
type metricRecord struct {
	Name       string         `json:"name"`
	Value      int64          `json:"value"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// MeterProvider collects counters in memory and writes them to w as JSON
// lines when Shutdown is called.
type MeterProvider struct {
	mu       sync.Mutex
	w        io.Writer
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

func NewMeterProvider(w io.Writer) *MeterProvider {
	reader := sdkmetric.NewManualReader()
	return &MeterProvider{
		w:        w,
		reader:   reader,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

func (p *MeterProvider) Meter(name string) metric.Meter { return p.provider.Meter(name) }

// Flush writes the current value of every int64 sum.
func (p *MeterProvider) Flush(ctx context.Context) error {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	enc := json.NewEncoder(p.w)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				rec := metricRecord{Name: m.Name, Value: dp.Value}
				if dp.Attributes.Len() > 0 {
					rec.Attributes = make(map[string]any, dp.Attributes.Len())
					for _, kv := range dp.Attributes.ToSlice() {
						rec.Attributes[string(kv.Key)] = attrValue(kv.Value)
					}
				}
				if err := enc.Encode(rec); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Shutdown flushes and then stops the provider.
func (p *MeterProvider) Shutdown(ctx context.Context) error {
	if err := p.Flush(ctx); err != nil {
		_ = p.provider.Shutdown(ctx)
		return err
	}
	return p.provider.Shutdown(ctx)
}
