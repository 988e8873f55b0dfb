package logging

import "log/slog"

// SetupMCPMode initializes logging for the serve subcommand's MCP stdio
// transport. The MCP client speaks JSON-RPC over stdin/stdout; any stray
// write to stderr from the same process has, in practice, been enough to
// make clients mistake it for a malformed frame and drop the connection.
// SetupMCPMode forces WriteToStderr off regardless of cfg, and raises an
// empty or "info" level to debug so a failed connection still leaves a full
// trace in the log file, the only place logs can safely go while serving;
// any other configured level is kept.
func SetupMCPMode(cfg Config) (*slog.Logger, func(), error) {
	cfg.WriteToStderr = false
	if cfg.Level == "" || cfg.Level == "info" {
		cfg.Level = "debug"
	}

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("MCP mode logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level),
		slog.Bool("stderr_disabled", true))

	return logger, cleanup, nil
}
