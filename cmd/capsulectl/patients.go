package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	patientsCmd := &cobra.Command{Use: "patients", Short: "Patient operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the caregiver's patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/patients")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	patientsCmd.AddCommand(listCmd)

	var name, diagnosis string
	var age int
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"name": name}
			if age > 0 {
				payload["age"] = age
			}
			if diagnosis != "" {
				payload["diagnosis"] = diagnosis
			}
			data, err := doPostJSON("/api/patients", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Patient name (required)")
	createCmd.Flags().IntVar(&age, "age", 0, "Patient age")
	createCmd.Flags().StringVarP(&diagnosis, "diagnosis", "d", "", "Diagnosis")
	_ = createCmd.MarkFlagRequired("name")
	patientsCmd.AddCommand(createCmd)

	getCmd := &cobra.Command{
		Use:   "get PATIENT_ID",
		Short: "Get patient by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/patients/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	patientsCmd.AddCommand(getCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete PATIENT_ID",
		Short: "Delete a patient and everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doDelete("/api/patients/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	patientsCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(patientsCmd)
}
