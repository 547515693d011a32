package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	authCmd := &cobra.Command{Use: "auth", Short: "Account operations"}

	var name, email, password string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a caregiver account",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"name": name, "email": email, "password": password}
			data, err := doPostJSON("/api/auth/register", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	registerCmd.Flags().StringVarP(&name, "name", "n", "", "Display name (required)")
	registerCmd.Flags().StringVarP(&email, "email", "e", "", "Email (required)")
	registerCmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")
	authCmd.AddCommand(registerCmd)

	var loginEmail, loginPassword string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a token response",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"email": loginEmail, "password": loginPassword}
			data, err := doPostJSON("/api/auth/login", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Email (required)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (required)")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
	authCmd.AddCommand(loginCmd)

	rootCmd.AddCommand(authCmd)
}
