package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	capsulesCmd := &cobra.Command{Use: "capsules", Short: "Capsule operations"}

	var genPatient, genTitle string
	var memoryIDs []string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a narrative capsule from selected memories",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"patientId": genPatient,
				"title":     genTitle,
				"memoryIds": memoryIDs,
			}
			data, err := doPostJSON("/api/capsules/generate", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	generateCmd.Flags().StringVarP(&genPatient, "patient", "p", "", "Patient ID (required)")
	generateCmd.Flags().StringVarP(&genTitle, "title", "T", "", "Capsule title (required)")
	generateCmd.Flags().StringSliceVarP(&memoryIDs, "memory", "m", nil, "Memory ID to include (repeatable)")
	_ = generateCmd.MarkFlagRequired("patient")
	_ = generateCmd.MarkFlagRequired("title")
	_ = generateCmd.MarkFlagRequired("memory")
	capsulesCmd.AddCommand(generateCmd)

	var listPatient string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List capsules for a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/capsules/patient/" + listPatient)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	listCmd.Flags().StringVarP(&listPatient, "patient", "p", "", "Patient ID (required)")
	_ = listCmd.MarkFlagRequired("patient")
	capsulesCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get CAPSULE_ID",
		Short: "Get capsule by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/capsules/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	capsulesCmd.AddCommand(getCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete CAPSULE_ID",
		Short: "Delete a capsule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doDelete("/api/capsules/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	capsulesCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(capsulesCmd)
}
