package config

import (
	"github.com/spf13/viper"
)

// Paging holds the paginator defaults applied to every request.
type Paging struct {
	SortKey      string `json:"sort_key" yaml:"sort_key" validate:"required"`
	DefaultLimit int    `json:"default_limit" yaml:"default_limit" validate:"gte=1"`
	MaxLimit     int    `json:"max_limit" yaml:"max_limit" validate:"gte=0"`
	StrictOrder  bool   `json:"strict_order" yaml:"strict_order"`
}

func getPagingConfig(v *viper.Viper) *Paging {
	return &Paging{
		SortKey:      v.GetString("paging.sort_key"),
		DefaultLimit: v.GetInt("paging.default_limit"),
		MaxLimit:     getIntOrDefault(v, "paging.max_limit", 0),
		StrictOrder:  v.GetBool("paging.strict_order"),
	}
}
