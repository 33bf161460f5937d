// Package config loads application configuration from environment
// variables and YAML files.
//
// Env-tagged structs are parsed with github.com/caarlos0/env/v11, with
// .env files loaded first via github.com/joho/godotenv. Each struct type
// is parsed once per process and served from a cache afterwards, so any
// package can call Load for its own Config without coordinating startup
// order.
//
//	type StorageConfig struct {
//	    Root    string `env:"STORAGE_ROOT" envDefault:"./data/files"`
//	    BaseURL string `env:"STORAGE_BASE_URL" envDefault:"/files/"`
//	}
//
//	var cfg StorageConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Settings that do not fit flat env vars, like thumbnail size lists, live
// in a YAML file parsed with LoadYAML into yaml-tagged structs.
//
// ResetCache and ForceReloadConfig exist for tests that mutate the
// process environment.
package config
