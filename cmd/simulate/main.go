package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielpatrickdp/orbitctl/internal/config"
	"github.com/danielpatrickdp/orbitctl/internal/metrics"
	"github.com/danielpatrickdp/orbitctl/internal/orchestrator"
)

// #region main

func main() {
	cycles := flag.Int("cycles", 1, "number of orchestration cycles to run")
	scenarioPath := flag.String("scenario", "", "path to a scenario JSON file (optional)")
	lockCycles := flag.Int("recovery-lock-cycles", 0, "override MIN_RECOVERY_LOCK_CYCLES (0 = use ARBITER_RECOVERY_LOCK_CYCLES/default)")
	flag.Parse()

	cfg := config.Load()
	if *lockCycles > 0 {
		cfg.RecoveryLockCycles = *lockCycles
	}

	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)

	orch := orchestrator.New(cfg, rec)

	if *scenarioPath != "" {
		s, err := loadScenario(*scenarioPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		s.apply(orch)
	}

	frames := orch.Run(*cycles)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(frames); err != nil {
		fmt.Fprintf(os.Stderr, "encode frames: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main
