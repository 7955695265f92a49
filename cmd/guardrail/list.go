package main

import (
	"fmt"
	"os"

	"github.com/vcodec/guardrail/internal/config"
	"github.com/vcodec/guardrail/internal/guardrail"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List declared guardrails in execution order",
	RunE: func(cmd *cobra.Command, args []string) error {
		type entry struct {
			Name        string `yaml:"name"`
			Description string `yaml:"description"`
			Threshold   string `yaml:"threshold"`
		}

		var entries []entry
		for _, g := range guardrail.Registry() {
			entries = append(entries, entry{
				Name:        g.Name(),
				Description: g.Describe(),
				Threshold:   thresholdSummary(cfg, g.Name()),
			})
		}

		if listFormat == "yaml" {
			data, err := yaml.Marshal(entries)
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stdout, string(data))
			return nil
		}

		for i, e := range entries {
			fmt.Fprintf(os.Stdout, "%d. %s - %s (%s)\n", i+1, e.Name, e.Description, e.Threshold)
		}
		return nil
	},
}

// thresholdSummary renders the configured pass/fail limit for one guardrail.
func thresholdSummary(cfg *config.Config, name string) string {
	switch name {
	case "memory":
		return fmt.Sprintf("rss growth <= %d MiB over %d iterations", cfg.Memory.LimitMB, cfg.Memory.Iterations)
	case "watchdog":
		return fmt.Sprintf("heartbeat lag <= %s, severity %s", cfg.Watchdog.MaxLag, cfg.Watchdog.Severity)
	case "fuzz":
		return "zero malformed vectors accepted"
	case "throughput":
		return fmt.Sprintf(">= %.1f fps over %d frames", cfg.Throughput.TargetFPS, cfg.Throughput.Frames)
	default:
		return "unconfigured"
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listFormat, "format", "text", "output format (text, yaml)")
}
