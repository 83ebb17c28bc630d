package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"jobpilot/crawler-service/internal/model"
	"jobpilot/crawler-service/internal/store"
)

var seedFile string

// seedSource is one entry of the sources YAML file.
type seedSource struct {
	Name          string `yaml:"name"`
	URL           string `yaml:"url"`
	Format        string `yaml:"format"`
	IntervalHours int    `yaml:"interval_hours"`
	Active        *bool  `yaml:"active"` // default true
}

type seedDoc struct {
	Sources []seedSource `yaml:"sources"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Register or refresh job sources from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}

		var doc seedDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse seed file: %w", err)
		}
		if len(doc.Sources) == 0 {
			return fmt.Errorf("seed file %s lists no sources", seedFile)
		}

		st := store.New(pool)
		for _, s := range doc.Sources {
			src, err := validateSeedSource(s)
			if err != nil {
				return err
			}
			if err := st.UpsertSource(cmd.Context(), src); err != nil {
				return err
			}
			logger.Info("source registered",
				slog.String("name", src.Name),
				slog.String("format", string(src.Format)))
		}
		logger.Info("seeding complete", slog.Int("sources", len(doc.Sources)))
		return nil
	},
}

func validateSeedSource(s seedSource) (model.JobSource, error) {
	if s.Name == "" || s.URL == "" {
		return model.JobSource{}, fmt.Errorf("seed source needs name and url, got %+v", s)
	}
	format, err := model.ParseSourceFormat(s.Format)
	if err != nil {
		return model.JobSource{}, fmt.Errorf("source %q: %w", s.Name, err)
	}
	interval := s.IntervalHours
	if interval <= 0 {
		interval = 24
	}
	active := true
	if s.Active != nil {
		active = *s.Active
	}
	return model.JobSource{
		Name:          s.Name,
		URL:           s.URL,
		Format:        format,
		IntervalHours: interval,
		IsActive:      active,
	}, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "sources.yaml", "YAML file listing job sources")
}
