package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"telegram": map[string]interface{}{
			"token":        "",
			"poll_timeout": 30,
		},
		"mongo": map[string]interface{}{
			"uri":      "mongodb://localhost:27017/",
			"database": "task_planner",
		},
		"scheduler": map[string]interface{}{
			"interval": 60,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.planner-bot/config.yaml"
}
