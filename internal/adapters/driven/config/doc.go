// Package config assembles typed application settings from a ConfigStore.
//
// Keys use dot notation and map onto config.toml tables:
//
//	data_dir = "~/.hirescope/data"
//
//	[embedding]
//	provider = "ollama"
//	model = "nomic-embed-text"
//
//	[keyword]
//	ttl = "1h"
//
//	[similarity.thresholds]
//	high = 0.8
//	medium = 0.6
//
// Missing keys keep the defaults from domain.DefaultSettings.
package config
