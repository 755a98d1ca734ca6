package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Data represents the data configuration
type Data struct {
	MongoDB *MongoDB `json:"mongodb" yaml:"mongodb" validate:"required"`
}

// MongoDB mongodb config struct
type MongoDB struct {
	Master   *MongoNode    `json:"master"`
	Slaves   []*MongoNode  `json:"slaves"`
	Database string        `json:"database" validate:"required"`
	Strategy string        `json:"strategy" validate:"omitempty,oneof=round_robin random weight"`
	Timeout  time.Duration `json:"timeout"`
	Breaker  *Breaker      `json:"breaker"`
}

// MongoNode mongodb node config
type MongoNode struct {
	URI    string `json:"uri"`
	Weight int    `json:"weight"`
}

// Breaker circuit breaker config guarding data source calls.
// A zero MaxFailures disables the breaker.
type Breaker struct {
	MaxFailures uint32        `json:"max_failures"`
	MaxRequests uint32        `json:"max_requests"`
	Interval    time.Duration `json:"interval"`
	Timeout     time.Duration `json:"timeout"`
}

// Enabled reports whether the breaker should wrap data source calls.
func (b *Breaker) Enabled() bool {
	return b != nil && b.MaxFailures > 0
}

func getDataConfig(v *viper.Viper) *Data {
	return &Data{
		MongoDB: getMongoDBConfigs(v),
	}
}

// getMongoDBConfigs reads MongoDB configurations
func getMongoDBConfigs(v *viper.Viper) *MongoDB {
	var master *MongoNode
	if uri := v.GetString("data.mongodb.master.uri"); uri != "" {
		master = &MongoNode{URI: uri}
	}

	return &MongoDB{
		Master:   master,
		Slaves:   getMongoSlaveConfigs(v),
		Database: v.GetString("data.mongodb.database"),
		Strategy: v.GetString("data.mongodb.strategy"),
		Timeout:  getDurationOrDefault(v, "data.mongodb.timeout", 10*time.Second),
		Breaker: &Breaker{
			MaxFailures: getUint32OrDefault(v, "data.mongodb.breaker.max_failures", 0),
			MaxRequests: getUint32OrDefault(v, "data.mongodb.breaker.max_requests", 1),
			Interval:    getDurationOrDefault(v, "data.mongodb.breaker.interval", 0),
			Timeout:     getDurationOrDefault(v, "data.mongodb.breaker.timeout", 30*time.Second),
		},
	}
}

// getMongoSlaveConfigs reads MongoDB slave configurations
func getMongoSlaveConfigs(v *viper.Viper) []*MongoNode {
	var slaves []*MongoNode

	slavesConfig, ok := v.Get("data.mongodb.slaves").([]any)
	if !ok {
		return slaves
	}

	for i := range slavesConfig {
		slave := &MongoNode{
			URI:    v.GetString(fmt.Sprintf("data.mongodb.slaves.%d.uri", i)),
			Weight: v.GetInt(fmt.Sprintf("data.mongodb.slaves.%d.weight", i)),
		}
		if slave.URI == "" {
			continue
		}
		if slave.Weight <= 0 {
			slave.Weight = 1
		}
		slaves = append(slaves, slave)
	}

	return slaves
}
