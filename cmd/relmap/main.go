package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/relmap/relmap/servicenow"
)

// Build-time variables set via ldflags.
var (
	version   = "0.3.0"
	commit    = ""
	buildDate = ""
)

const defaultInstance = "http://localhost:8090"

var (
	apiClient *servicenow.Client
	cliLog    *logrus.Logger

	flagInstance string
	flagToken    string
	flagUser     string
	flagPassword string
	flagVerbose  bool
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("relmap version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("relmap version %s-dev", version)
}

type configFile struct {
	// Flat format
	Instance string `yaml:"instance"`
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Profile format
	Profiles      map[string]configProfile `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

type configProfile struct {
	Instance string `yaml:"instance"`
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "relmap",
		Short:   "Explore CI relationships and impact in a CMDB",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			cliLog = newLogger()
			var opts []servicenow.Option
			switch {
			case flagToken != "":
				opts = append(opts, servicenow.WithToken(flagToken))
			case flagUser != "":
				opts = append(opts, servicenow.WithBasicAuth(flagUser, flagPassword))
			}
			apiClient = servicenow.New(flagInstance, opts...)
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagInstance, "instance", defaultInstance, "CMDB instance URL (env: RELMAP_INSTANCE)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Bearer token (env: RELMAP_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "Basic auth username (env: RELMAP_USER)")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "Basic auth password (env: RELMAP_PASSWORD)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	doctorCmd := newDoctorCmd()
	doctorCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // skip client setup

	rootCmd.AddCommand(newTreeCmd())
	rootCmd.AddCommand(doctorCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

func resolveConfig() {
	// Flag takes precedence, then env, then config file.
	if flagInstance == defaultInstance {
		if v := os.Getenv("RELMAP_INSTANCE"); v != "" {
			flagInstance = v
		}
	}
	if flagToken == "" {
		flagToken = os.Getenv("RELMAP_TOKEN")
	}
	if flagUser == "" {
		flagUser = os.Getenv("RELMAP_USER")
	}
	if flagPassword == "" {
		flagPassword = os.Getenv("RELMAP_PASSWORD")
	}

	// Try config file for any remaining defaults.
	cfg, _, err := loadConfigFile()
	if err != nil {
		return
	}

	resolved := configProfile{
		Instance: cfg.Instance,
		Token:    cfg.Token,
		Username: cfg.Username,
		Password: cfg.Password,
	}
	if cfg.Profiles != nil {
		profileName := cfg.ActiveProfile
		if profileName == "" {
			profileName = "default"
		}
		if p, ok := cfg.Profiles[profileName]; ok {
			if p.Instance != "" {
				resolved.Instance = p.Instance
			}
			if p.Token != "" {
				resolved.Token = p.Token
			}
			if p.Username != "" {
				resolved.Username = p.Username
			}
			if p.Password != "" {
				resolved.Password = p.Password
			}
		}
	}

	if flagInstance == defaultInstance && resolved.Instance != "" {
		flagInstance = resolved.Instance
	}
	if flagToken == "" && resolved.Token != "" {
		flagToken = resolved.Token
	}
	if flagUser == "" && resolved.Username != "" {
		flagUser = resolved.Username
		if flagPassword == "" {
			flagPassword = resolved.Password
		}
	}
}

func loadConfigFile() (*configFile, string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, "", err
	}
	cfgPath := filepath.Join(home, ".relmap", "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cfgPath, err
	}
	return &cfg, cfgPath, nil
}
