// Package config loads the service configuration with viper.
//
// Configuration is read from a YAML/JSON/TOML file and can be overridden by
// environment variables prefixed with KEYSET_:
//
//	app_name: keyset
//	run_mode: release
//	server:
//	  host: 0.0.0.0
//	  port: 3000
//	logger:
//	  level: 5          # logrus level, 5 = debug
//	  format: json
//	  output: stdout
//	data:
//	  mongodb:
//	    master:
//	      uri: mongodb://localhost:27017
//	    slaves:
//	      - uri: mongodb://replica:27017
//	        weight: 2
//	    database: app
//	    strategy: round_robin
//	    breaker:
//	      max_failures: 5
//	paging:
//	  sort_key: _id
//	  default_limit: 10
//	  max_limit: 100
//	observes:
//	  tracer:
//	    endpoint: localhost:4317
//
// Load and watch:
//
//	cfg, err := config.LoadConfig("config.yaml")
//	cfg.Watch(func(c *config.Config) { ... }, nil)
package config
