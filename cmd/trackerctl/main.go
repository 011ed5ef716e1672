// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// trackerctl is the dev companion for the tracker service: it mints session
// tokens and prepares a local database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/asap007/ExpenseTracker/services/tracker/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trackerctl",
		Short: "Developer utilities for the expense tracker service",
	}
	rootCmd.AddCommand(newTokenCmd(), newSeedCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTokenCmd() *cobra.Command {
	var userID string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session token for local testing",
		Long: `Mint an HS256 session token signed with SESSION_SECRET.
The tracker service validates these tokens on every /v1 request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("SESSION_SECRET")
			if secret == "" {
				return fmt.Errorf("SESSION_SECRET environment variable not set")
			}
			now := time.Now()
			claims := jwt.RegisteredClaims{
				Subject:   userID,
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			}
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
			if err != nil {
				return fmt.Errorf("signing token: %w", err)
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to embed as the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the database schema and default categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Seed(context.Background()); err != nil {
				return err
			}
			fmt.Printf("seeded %s\n", dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "tracker.db", "path to the tracker database")
	return cmd
}
