// internal/cli/registry.go
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"casematch-workers/internal/common/validation"
	"casematch-workers/pkg/registry"
)

var registryPath string

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Maintain the activity registry",
}

var registryValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check registry structure and compile every input schema",
	Args:  cobra.NoArgs,
	RunE:  runRegistryValidate,
}

var registryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an activity",
	Long: `Add registers a new activity with empty schemas.

Example:
  casematch registry add --id rank-case-matches --display-name "Rank Case Matches" \
    --category casematch --task-type rank-case-matches`,
	Args: cobra.NoArgs,
	RunE: runRegistryAdd,
}

var registryUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Set a single field on an activity",
	Args:  cobra.NoArgs,
	RunE:  runRegistryUpdate,
}

var (
	addActivity registry.Activity

	updateID    string
	updateField string
	updateValue string
)

func init() {
	rootCmd.AddCommand(registryCmd)
	registryCmd.AddCommand(registryValidateCmd, registryAddCmd, registryUpdateCmd)

	registryCmd.PersistentFlags().StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")

	f := registryAddCmd.Flags()
	f.StringVar(&addActivity.ID, "id", "", "Activity ID")
	f.StringVar(&addActivity.DisplayName, "display-name", "", "Display name")
	f.StringVar(&addActivity.Description, "description", "", "Description")
	f.StringVar(&addActivity.Category, "category", "", "Category")
	f.StringVar(&addActivity.TaskType, "task-type", "", "Zeebe task type")
	f.StringVar(&addActivity.Version, "version", "1.0.0", "Version")
	f.StringVar(&addActivity.ImplementationStatus, "status", registry.StatusPlanned, "Implementation status (planned, in-progress, completed, verified)")
	f.StringVar(&addActivity.Timeout, "timeout", "10s", "Job timeout")
	for _, name := range []string{"id", "display-name", "category", "task-type"} {
		_ = registryAddCmd.MarkFlagRequired(name)
	}

	u := registryUpdateCmd.Flags()
	u.StringVar(&updateID, "id", "", "Activity ID to update")
	u.StringVar(&updateField, "field", "", "Field to update (status, version, displayName, description, category, taskType, timeout, retries)")
	u.StringVar(&updateValue, "value", "", "New value")
	for _, name := range []string{"id", "field", "value"} {
		_ = registryUpdateCmd.MarkFlagRequired(name)
	}
}

func runRegistryValidate(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	v := validation.NewRegistryValidator(reg)
	for _, a := range reg.Activities {
		if _, err := v.Validate(a.TaskType, map[string]interface{}{}); err != nil {
			return fmt.Errorf("activity %s: %w", a.ID, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed (%d activities).\n", len(reg.Activities))
	return nil
}

func runRegistryAdd(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if errors.Is(err, fs.ErrNotExist) {
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	} else if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	activity := addActivity
	activity.InputSchema = map[string]interface{}{}
	activity.OutputSchema = map[string]interface{}{}
	activity.ErrorCodes = []string{}
	activity.Workflows = []string{}
	activity.Tags = []string{}
	if activity.Timeout != "" {
		if _, err := time.ParseDuration(activity.Timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", activity.Timeout, err)
		}
	}

	if err := reg.Add(activity); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	if err := reg.Save(registryPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", activity.ID)
	return nil
}

func runRegistryUpdate(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Update(updateID, updateField, updateValue); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	if err := reg.Save(registryPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", updateID, updateField, updateValue)
	return nil
}
