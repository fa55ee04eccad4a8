package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/relmap/relmap/servicenow"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long:  "Run diagnostic checks against config, instance, and auth",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor()
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runDoctor() error {
	fmt.Println("\nrelmap Doctor")
	fmt.Println("=============")

	var results []checkResult

	// 1. Config file.
	_, cfgPath, cfgErr := loadConfigFile()
	if cfgErr != nil {
		results = append(results, checkResult{
			Name: "Config file", Passed: false,
			Detail: cfgPath,
			Hint:   "Create ~/.relmap/config.yaml or rely on flags/env",
		})
	} else {
		results = append(results, checkResult{
			Name: "Config file", Passed: true,
			Detail: fmt.Sprintf("found (%s)", cfgPath),
		})
	}

	// Resolve instance and credentials with the same priority as the
	// other commands: flags, env, config file.
	resolveConfig()

	// 2. Instance URL.
	if flagInstance == "" {
		results = append(results, checkResult{
			Name: "Instance URL", Passed: false,
			Hint: "Set --instance, RELMAP_INSTANCE, or the config file",
		})
	} else {
		results = append(results, checkResult{
			Name: "Instance URL", Passed: true, Detail: flagInstance,
		})
	}

	// 3. Credentials.
	if flagToken == "" && flagUser == "" {
		results = append(results, checkResult{
			Name: "Credentials", Passed: false,
			Hint: "Set --token or --user/--password (or env equivalents)",
		})
	} else {
		results = append(results, checkResult{
			Name: "Credentials", Passed: true, Detail: "configured",
		})
	}

	// 4. Instance reachable and readable.
	if flagInstance != "" {
		var opts []servicenow.Option
		opts = append(opts, servicenow.WithTimeout(5*time.Second))
		switch {
		case flagToken != "":
			opts = append(opts, servicenow.WithToken(flagToken))
		case flagUser != "":
			opts = append(opts, servicenow.WithBasicAuth(flagUser, flagPassword))
		}
		c := servicenow.New(flagInstance, opts...)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if health, err := c.Health(ctx); err != nil {
			results = append(results, checkResult{
				Name: "Instance reachable", Passed: false,
				Detail: flagInstance,
				Hint:   fmt.Sprintf("Is the instance up? Error: %v", err),
			})
		} else {
			detail := flagInstance
			if health.Version != "" {
				detail = fmt.Sprintf("v%s", health.Version)
			}
			results = append(results, checkResult{
				Name: "Instance reachable", Passed: true, Detail: detail,
			})

			if _, err := c.Table.Query(ctx, "cmdb_ci", servicenow.QueryOptions{Limit: 1}); err != nil {
				hint := fmt.Sprintf("Error: %v", err)
				if servicenow.IsAuthFailed(err) {
					hint = "Check your token or username/password"
				}
				results = append(results, checkResult{
					Name: "CMDB readable", Passed: false, Hint: hint,
				})
			} else {
				results = append(results, checkResult{
					Name: "CMDB readable", Passed: true, Detail: "cmdb_ci query ok",
				})
			}
		}
	}

	// Print results.
	fmt.Println()
	allPassed := true
	for _, r := range results {
		if r.Passed {
			if r.Detail != "" {
				fmt.Printf("✅ %s: %s\n", r.Name, r.Detail)
			} else {
				fmt.Printf("✅ %s\n", r.Name)
			}
		} else {
			allPassed = false
			if r.Detail != "" {
				fmt.Printf("❌ %s: %s\n", r.Name, r.Detail)
			} else {
				fmt.Printf("❌ %s\n", r.Name)
			}
			if r.Hint != "" {
				fmt.Printf("   Hint: %s\n", r.Hint)
			}
		}
	}

	fmt.Println()
	if allPassed {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("❌ Some checks failed.")
	return fmt.Errorf("doctor found issues")
}
