package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	memoriesCmd := &cobra.Command{Use: "memories", Short: "Memory operations"}

	var patientID string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List memories for a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/memories/patient/" + patientID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	listCmd.Flags().StringVarP(&patientID, "patient", "p", "", "Patient ID (required)")
	_ = listCmd.MarkFlagRequired("patient")
	memoriesCmd.AddCommand(listCmd)

	var createPatient, title, description, memType, date, location, people, filePath string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a memory, optionally attaching a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := map[string]string{
				"patient": createPatient,
				"title":   title,
				"type":    memType,
			}
			if description != "" {
				fields["description"] = description
			}
			if date != "" {
				fields["dateOccurred"] = date
			}
			if location != "" {
				fields["location"] = location
			}
			if people != "" {
				fields["peopleInvolved"] = people
			}
			req := newClient().R().SetFormData(fields)
			if filePath != "" {
				req = req.SetFile("file", filePath)
			}
			resp, err := req.Post("/api/memories")
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("server returned %s: %s", resp.Status(), resp.String())
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	createCmd.Flags().StringVarP(&createPatient, "patient", "p", "", "Patient ID (required)")
	createCmd.Flags().StringVarP(&title, "title", "T", "", "Memory title (required)")
	createCmd.Flags().StringVar(&memType, "type", "text", "Memory type (image|audio|text|video|file)")
	createCmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	createCmd.Flags().StringVar(&date, "date", "", "Date occurred (YYYY-MM-DD)")
	createCmd.Flags().StringVarP(&location, "location", "l", "", "Location")
	createCmd.Flags().StringVar(&people, "people", "", "People involved, as a JSON string array")
	createCmd.Flags().StringVarP(&filePath, "file", "f", "", "Path to a file to attach")
	_ = createCmd.MarkFlagRequired("patient")
	_ = createCmd.MarkFlagRequired("title")
	memoriesCmd.AddCommand(createCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete MEMORY_ID",
		Short: "Delete a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doDelete("/api/memories/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	memoriesCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(memoriesCmd)
}
