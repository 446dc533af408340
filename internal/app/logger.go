package app

import "github.com/charlesng35/studentms/pkg/logger"

const serviceName = "studentms"

// ConfigureLogging installs the global logger described by the server section.
func ConfigureLogging(cfg ServerConfig) error {
	return logger.InitWithOptions(logger.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})
}
