package config

import (
	"time"

	"github.com/spf13/viper"
)

// Tracer config struct for OpenTelemetry. An empty Endpoint keeps the
// global no-op tracer provider.
type Tracer struct {
	Endpoint       string        `json:"endpoint" yaml:"endpoint"` // OTLP gRPC endpoint
	ServiceName    string        `json:"service_name" yaml:"service_name"`
	ServiceVersion string        `json:"service_version" yaml:"service_version"`
	Environment    string        `json:"environment" yaml:"environment"`
	SamplingRate   float64       `json:"sampling_rate" yaml:"sampling_rate" validate:"gte=0,lte=1"`
	BatchTimeout   time.Duration `json:"batch_timeout" yaml:"batch_timeout"`
	ExportTimeout  time.Duration `json:"export_timeout" yaml:"export_timeout"`
	Insecure       bool          `json:"insecure" yaml:"insecure"`
}

// Enabled reports whether spans should be exported.
func (t *Tracer) Enabled() bool {
	return t != nil && t.Endpoint != ""
}

// getTracerConfig get tracer config with defaults
func getTracerConfig(v *viper.Viper) *Tracer {
	return &Tracer{
		Endpoint:       v.GetString("observes.tracer.endpoint"),
		ServiceName:    v.GetString("observes.tracer.service_name"),
		ServiceVersion: v.GetString("observes.tracer.service_version"),
		Environment:    v.GetString("observes.tracer.environment"),
		SamplingRate:   getFloat64OrDefault(v, "observes.tracer.sampling_rate", 1.0),
		BatchTimeout:   getDurationOrDefault(v, "observes.tracer.batch_timeout", 5*time.Second),
		ExportTimeout:  getDurationOrDefault(v, "observes.tracer.export_timeout", 30*time.Second),
		Insecure:       v.GetBool("observes.tracer.insecure"),
	}
}

// Observes config struct
type Observes struct {
	Tracer *Tracer `validate:"required"`
}

// get Observes config
func getObservesConfig(v *viper.Viper) *Observes {
	return &Observes{
		Tracer: getTracerConfig(v),
	}
}
