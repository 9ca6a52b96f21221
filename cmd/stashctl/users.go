package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stashlog/stashlog/internal/auth"
)

var passwordFlag string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := strings.TrimSpace(args[0])
		if username == "" {
			return fmt.Errorf("username must not be empty")
		}
		password := passwordFlag
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return fmt.Errorf("password must not be empty")
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		u, err := st.Users().Create(context.Background(), username, hash)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Printf("created user %q (id %d)\n", u.Username, u.ID)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user account and all of its data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		ctx := context.Background()
		u, err := st.Users().GetByUsername(ctx, args[0])
		if err != nil {
			return fmt.Errorf("look up user: %w", err)
		}
		if err := st.Users().Delete(ctx, u.ID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		fmt.Printf("deleted user %q and all of their data\n", u.Username)
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVarP(&passwordFlag, "password", "p", "", "Password (prompted when omitted)")
	usersCmd.AddCommand(usersCreateCmd, usersDeleteCmd)
}
