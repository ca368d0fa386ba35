package main

import (
	"context"
	"log/slog"

	"contest-assist/cmd/contest-assist/commands"
	"contest-assist/lib/telemetry"
)

func main() {
	ctx := commands.SignalContext()
	if err := telemetry.SetupFromEnv(ctx, "contest-assist"); err != nil {
		slog.Warn("telemetry setup failed", "err", err)
	}
	telemetry.InitSlog(true)
	commands.ExecuteContext(ctx)
	telemetry.Shutdown(context.Background())
}
