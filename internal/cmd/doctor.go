package cmd

import (
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zvakanaka/orcaslicer-web/internal/config"
	"github.com/zvakanaka/orcaslicer-web/internal/observability"
	"github.com/zvakanaka/orcaslicer-web/pkg/baseindex"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks on the slicing environment and report problems.

Examples:
  orcaslicer-web doctor`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	log := observability.CLILogger
	log.Info("=== orcaslicer-web doctor ===")
	log.Info("Running diagnostic checks...")

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid configuration", err)
	}

	allChecks := true
	checkNum := 1
	const totalChecks = 5

	// Check 1: engine binary
	if info, err := os.Stat(cfg.Slicer.Binary); err == nil && !info.IsDir() && info.Mode()&0111 != 0 {
		log.Info(fmt.Sprintf("[%d/%d] Checking slicer binary... ✅ %s", checkNum, totalChecks, cfg.Slicer.Binary),
			zap.String("binary", cfg.Slicer.Binary))
	} else {
		log.Error(fmt.Sprintf("[%d/%d] Checking slicer binary... ❌ not found or not executable: %s", checkNum, totalChecks, cfg.Slicer.Binary))
		allChecks = false
	}
	checkNum++

	// Check 2: bundled profile index
	index, err := baseindex.Load(cfg.Slicer.BundledProfilesDir, zap.NewNop())
	if err != nil || index.Count() == 0 {
		log.Warn(fmt.Sprintf("[%d/%d] Checking bundled profiles... ⚠️  none indexed under %s (inheriting uploads will fail)", checkNum, totalChecks, cfg.Slicer.BundledProfilesDir))
		allChecks = false
	} else {
		log.Info(fmt.Sprintf("[%d/%d] Checking bundled profiles... ✅ %d indexed", checkNum, totalChecks, index.Count()),
			zap.Int("count", index.Count()))
	}
	checkNum++

	// Check 3: profiles dir writable
	if dirWritable(cfg.Profiles.Dir) {
		log.Info(fmt.Sprintf("[%d/%d] Checking profiles directory... ✅ %s", checkNum, totalChecks, cfg.Profiles.Dir))
	} else {
		log.Error(fmt.Sprintf("[%d/%d] Checking profiles directory... ❌ not writable: %s", checkNum, totalChecks, cfg.Profiles.Dir))
		allChecks = false
	}
	checkNum++

	// Check 4: workspace dir writable
	if dirWritable(cfg.Workspace.Dir) {
		log.Info(fmt.Sprintf("[%d/%d] Checking workspace directory... ✅ %s", checkNum, totalChecks, cfg.Workspace.Dir))
	} else {
		log.Error(fmt.Sprintf("[%d/%d] Checking workspace directory... ❌ not writable: %s", checkNum, totalChecks, cfg.Workspace.Dir))
		allChecks = false
	}
	checkNum++

	// Check 5: display server
	if cfg.Slicer.Display != "" {
		log.Info(fmt.Sprintf("[%d/%d] Checking display configuration... ✅ DISPLAY=%s", checkNum, totalChecks, cfg.Slicer.Display))
	} else {
		log.Warn(fmt.Sprintf("[%d/%d] Checking display configuration... ⚠️  no display configured; the engine needs one even headless", checkNum, totalChecks))
		allChecks = false
	}

	if !allChecks {
		return exitError(int(foundry.ExitExternalServiceUnavailable), "Diagnostics found problems", fmt.Errorf("one or more checks failed"))
	}
	log.Info("All checks passed ✅")
	return nil
}

// dirWritable creates the directory if needed and probes it with a temp file.
func dirWritable(dir string) bool {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false
	}
	f, err := os.CreateTemp(dir, ".doctor.*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
