// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store is the SQLite persistence layer for expenses, categories,
// and income records. It implements the financial data boundary the
// analytics orchestrator consumes.
//
// Monetary amounts are stored as decimal strings and handled with
// shopspring/decimal internally; they are converted to float64 only at the
// datatypes boundary, which is the JSON contract's number type.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/asap007/ExpenseTracker/services/tracker/datatypes"
)

// ErrNotFound is returned when a record does not exist or is not owned by
// the requesting user.
var ErrNotFound = errors.New("record not found")

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS expenses (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	amount TEXT NOT NULL,
	spent_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses(user_id, spent_at);
CREATE TABLE IF NOT EXISTS incomes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	recorded_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_incomes_user ON incomes(user_id, recorded_at);
`

var defaultCategories = []string{
	"Housing", "Food", "Transport", "Utilities", "Health",
	"Entertainment", "Shopping", "Education", "Other",
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open tracker db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate tracker db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Seed inserts the default category set. Existing rows are left untouched.
func (s *Store) Seed(ctx context.Context) error {
	for _, name := range defaultCategories {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}
	return nil
}

// LatestIncome returns the most recent income record for userID, or nil when
// none exists.
func (s *Store) LatestIncome(ctx context.Context, userID string) (*datatypes.IncomeRecord, error) {
	var amountStr string
	var recordedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT amount, recorded_at FROM incomes
		 WHERE user_id = ? ORDER BY recorded_at DESC, id DESC LIMIT 1`,
		userID,
	).Scan(&amountStr, &recordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest income: %w", err)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parse stored income amount %q: %w", amountStr, err)
	}
	return &datatypes.IncomeRecord{
		Amount:     amount.InexactFloat64(),
		RecordedAt: recordedAt,
	}, nil
}

// RecordIncome appends a new income fact for userID.
func (s *Store) RecordIncome(ctx context.Context, userID string, amount float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO incomes (user_id, amount, recorded_at) VALUES (?, ?, ?)`,
		userID, decimal.NewFromFloat(amount).String(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert income: %w", err)
	}
	return nil
}

// ExpensesSince lists the user's expenses with spent_at on or after since,
// newest first.
func (s *Store) ExpensesSince(ctx context.Context, userID string, since time.Time) ([]datatypes.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amount, category, description, spent_at FROM expenses
		 WHERE user_id = ? AND spent_at >= ? ORDER BY spent_at DESC`,
		userID, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []datatypes.Expense
	for rows.Next() {
		var e datatypes.Expense
		var amountStr string
		if err := rows.Scan(&e.ID, &amountStr, &e.Category, &e.Description, &e.Date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored expense amount %q: %w", amountStr, err)
		}
		e.Amount = amount.InexactFloat64()
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// AddExpense records a new expense for userID and returns the stored record.
func (s *Store) AddExpense(ctx context.Context, userID string, req datatypes.CreateExpenseRequest) (*datatypes.Expense, error) {
	e := datatypes.Expense{
		ID:          uuid.NewString(),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        time.Now().UTC(),
	}
	if req.Date != nil {
		e.Date = req.Date.UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, category, description, amount, spent_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, userID, e.Category, e.Description,
		decimal.NewFromFloat(e.Amount).String(), e.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	return &e, nil
}

// DeleteExpense removes an expense owned by userID. Returns ErrNotFound when
// no such row exists.
func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Categories lists the known category names, alphabetically.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
