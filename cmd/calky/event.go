package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gillohner/calky/ics"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Manage events",
}

var eventListCmd = &cobra.Command{
	Use:   "list [calendar-id]",
	Short: "List events in a calendar",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventList,
}

var eventAddCmd = &cobra.Command{
	Use:   "add [calendar-id]",
	Short: "Add an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventAdd,
}

var eventRmCmd = &cobra.Command{
	Use:   "rm [calendar-id] [uid]",
	Short: "Remove an event",
	Args:  cobra.ExactArgs(2),
	RunE:  runEventRm,
}

var eventUpdateCmd = &cobra.Command{
	Use:   "update [calendar-id] [uid]",
	Short: "Replace an event's fields",
	Args:  cobra.ExactArgs(2),
	RunE:  runEventUpdate,
}

var (
	eventSummary     string
	eventDescription string
	eventLocation    string
	eventStart       string
	eventEnd         string
	eventRRule       string
	eventCategories  []string
)

func addEventFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&eventSummary, "summary", "", "Event title (required)")
	cmd.Flags().StringVar(&eventDescription, "description", "", "Description")
	cmd.Flags().StringVar(&eventLocation, "location", "", "Location")
	cmd.Flags().StringVar(&eventStart, "start", "", "Start time, RFC3339 or 20060102T150405Z (required)")
	cmd.Flags().StringVar(&eventEnd, "end", "", "End time (required)")
	cmd.Flags().StringVar(&eventRRule, "rrule", "", "Recurrence rule, e.g. FREQ=WEEKLY;BYDAY=MO")
	cmd.Flags().StringSliceVar(&eventCategories, "category", nil, "Category (repeatable)")
	_ = cmd.MarkFlagRequired("summary")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func init() {
	addEventFlags(eventAddCmd)
	addEventFlags(eventUpdateCmd)

	eventCmd.AddCommand(eventListCmd)
	eventCmd.AddCommand(eventAddCmd)
	eventCmd.AddCommand(eventRmCmd)
	eventCmd.AddCommand(eventUpdateCmd)
	rootCmd.AddCommand(eventCmd)
}

func eventInputFromFlags() (ics.NewEventInput, error) {
	start, err := ics.ParseDate(eventStart)
	if err != nil {
		return ics.NewEventInput{}, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := ics.ParseDate(eventEnd)
	if err != nil {
		return ics.NewEventInput{}, fmt.Errorf("invalid --end: %w", err)
	}
	return ics.NewEventInput{
		Summary:     eventSummary,
		Description: eventDescription,
		Location:    eventLocation,
		Start:       start,
		End:         end,
		RRule:       eventRRule,
		Categories:  eventCategories,
	}, nil
}

func runEventList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	events, err := client.ListEvents(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	if len(events) == 0 {
		cmd.Println("No events.")
		return nil
	}

	for _, event := range events {
		cmd.Printf("  %s\n", event.UID)
		cmd.Printf("    %s - %s\n",
			event.Start.Format("2006-01-02 15:04"),
			event.End.Format("2006-01-02 15:04"))
		cmd.Printf("    %s\n", event.Summary)
		if event.Location != "" {
			cmd.Printf("    At: %s\n", event.Location)
		}
		if event.RRule != "" {
			cmd.Printf("    Repeats: %s\n", event.RRule)
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d events\n", len(events))
	return nil
}

func runEventAdd(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	input, err := eventInputFromFlags()
	if err != nil {
		return err
	}
	uid, err := client.AddEvent(context.Background(), args[0], input)
	if err != nil {
		return fmt.Errorf("failed to add event: %w", err)
	}
	cmd.Printf("Added event %s\n", uid)
	return nil
}

func runEventRm(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	if err := client.DeleteEvent(context.Background(), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to remove event: %w", err)
	}
	cmd.Printf("Removed event %s\n", args[1])
	return nil
}

func runEventUpdate(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	input, err := eventInputFromFlags()
	if err != nil {
		return err
	}
	if err := client.UpdateEvent(context.Background(), args[0], args[1], input); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	cmd.Printf("Updated event %s\n", args[1])
	return nil
}
