package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gillohner/calky/calclient"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Manage calendars",
}

var calendarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List calendars",
	Args:  cobra.NoArgs,
	RunE:  runCalendarList,
}

var calendarCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a calendar",
	Args:  cobra.NoArgs,
	RunE:  runCalendarCreate,
}

var calendarDeleteCmd = &cobra.Command{
	Use:   "delete [calendar-id]",
	Short: "Delete a calendar",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendarDelete,
}

var calendarSetCmd = &cobra.Command{
	Use:   "set [calendar-id]",
	Short: "Update calendar properties",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendarSet,
}

var (
	calName        string
	calColor       string
	calTimezone    string
	calDescription string
)

func init() {
	calendarCreateCmd.Flags().StringVar(&calName, "name", "", "Display name (required)")
	calendarCreateCmd.Flags().StringVar(&calColor, "color", "", "Display color, e.g. #ff6600")
	calendarCreateCmd.Flags().StringVar(&calTimezone, "timezone", "", "IANA timezone")
	calendarCreateCmd.Flags().StringVar(&calDescription, "description", "", "Description")
	_ = calendarCreateCmd.MarkFlagRequired("name")

	calendarSetCmd.Flags().StringVar(&calName, "name", "", "Display name")
	calendarSetCmd.Flags().StringVar(&calColor, "color", "", "Display color")
	calendarSetCmd.Flags().StringVar(&calTimezone, "timezone", "", "IANA timezone")
	calendarSetCmd.Flags().StringVar(&calDescription, "description", "", "Description")

	calendarCmd.AddCommand(calendarListCmd)
	calendarCmd.AddCommand(calendarCreateCmd)
	calendarCmd.AddCommand(calendarDeleteCmd)
	calendarCmd.AddCommand(calendarSetCmd)
	rootCmd.AddCommand(calendarCmd)
}

func runCalendarList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	index, err := client.EnsureIndex(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list calendars: %w", err)
	}

	if len(index.Calendars) == 0 {
		cmd.Println("No calendars yet.")
		return nil
	}

	for _, entry := range index.Calendars {
		cmd.Printf("  %s\n", entry.ID)
		cmd.Printf("    Name: %s\n", entry.DisplayName)
		if entry.Color != "" {
			cmd.Printf("    Color: %s\n", entry.Color)
		}
		if entry.ReadOnly {
			cmd.Println("    Read-only")
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d calendars\n", len(index.Calendars))
	return nil
}

func runCalendarCreate(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	created, err := client.CreateCalendar(context.Background(), calclient.InitProps{
		DisplayName: calName,
		Color:       calColor,
		Timezone:    calTimezone,
		Description: calDescription,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to create calendar: %w", err)
	}

	cmd.Printf("Created calendar %s (%s)\n", created.ID, created.Props.DisplayName)
	return nil
}

func runCalendarDelete(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	if err := client.DeleteCalendar(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete calendar: %w", err)
	}
	cmd.Printf("Deleted calendar %s\n", args[0])
	return nil
}

func runCalendarSet(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	var updates calclient.PropsUpdate
	if cmd.Flags().Changed("name") {
		updates.DisplayName = &calName
	}
	if cmd.Flags().Changed("color") {
		updates.Color = &calColor
	}
	if cmd.Flags().Changed("timezone") {
		updates.Timezone = &calTimezone
	}
	if cmd.Flags().Changed("description") {
		updates.Description = &calDescription
	}

	props, err := client.UpdateProps(context.Background(), args[0], updates)
	if err != nil {
		return fmt.Errorf("failed to update calendar: %w", err)
	}
	cmd.Printf("Updated calendar %s (now %s, %s)\n", props.ID, props.DisplayName, props.CTag)
	return nil
}
