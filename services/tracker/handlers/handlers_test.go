// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asap007/ExpenseTracker/services/tracker/analytics"
	"github.com/asap007/ExpenseTracker/services/tracker/datatypes"
	"github.com/asap007/ExpenseTracker/services/tracker/middleware"
	"github.com/asap007/ExpenseTracker/services/tracker/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// =============================================================================
// Stubs
// =============================================================================

type stubAnalytics struct {
	insights    *datatypes.AnalyticsResponse
	insightsErr error
	update      *datatypes.UpdateIncomeResponse
	updateErr   error
	plan        *datatypes.SavingsPlan
	planErr     error

	gotUserID string
	gotAmount float64
	gotGoal   datatypes.SavingsGoal
}

func (s *stubAnalytics) Insights(_ context.Context, userID string) (*datatypes.AnalyticsResponse, error) {
	s.gotUserID = userID
	return s.insights, s.insightsErr
}

func (s *stubAnalytics) UpdateIncome(_ context.Context, userID string, amount float64) (*datatypes.UpdateIncomeResponse, error) {
	s.gotUserID = userID
	s.gotAmount = amount
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.update, nil
}

func (s *stubAnalytics) SavingsPlan(_ context.Context, userID string, goal datatypes.SavingsGoal) (*datatypes.SavingsPlan, error) {
	s.gotUserID = userID
	s.gotGoal = goal
	if s.planErr != nil {
		return nil, s.planErr
	}
	return s.plan, nil
}

type stubExpenseStore struct {
	added      *datatypes.Expense
	addErr     error
	expenses   []datatypes.Expense
	listErr    error
	deleteErr  error
	categories []string

	gotSince    time.Time
	gotDeleteID string
}

func (s *stubExpenseStore) AddExpense(_ context.Context, _ string, req datatypes.CreateExpenseRequest) (*datatypes.Expense, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	if s.added != nil {
		return s.added, nil
	}
	return &datatypes.Expense{ID: "e1", Amount: req.Amount, Category: req.Category}, nil
}

func (s *stubExpenseStore) ExpensesSince(_ context.Context, _ string, since time.Time) ([]datatypes.Expense, error) {
	s.gotSince = since
	return s.expenses, s.listErr
}

func (s *stubExpenseStore) DeleteExpense(_ context.Context, _, id string) error {
	s.gotDeleteID = id
	return s.deleteErr
}

func (s *stubExpenseStore) Categories(_ context.Context) ([]string, error) {
	return s.categories, nil
}

func performAs(userID string, handler gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		middleware.SetUserID(c, userID)
	})
	router.Any("/:id", handler)
	router.Any("/", handler)
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

// =============================================================================
// Analytics
// =============================================================================

func TestGetAnalytics_ReturnsOrchestratorResult(t *testing.T) {
	svc := &stubAnalytics{insights: &datatypes.AnalyticsResponse{
		CurrentIncome: 5000,
		TotalExpenses: 3000,
		HasIncome:     true,
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := performAs("u1", GetAnalytics(svc), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", svc.gotUserID)

	var resp datatypes.AnalyticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(5000), resp.CurrentIncome)
	assert.True(t, resp.HasIncome)
}

func TestGetAnalytics_ServerErrorOnlyWhenOrchestratorFails(t *testing.T) {
	svc := &stubAnalytics{insightsErr: errors.New("db down")}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := performAs("u1", GetAnalytics(svc), req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUpdateIncome_BindsAndForwardsAmount(t *testing.T) {
	svc := &stubAnalytics{update: &datatypes.UpdateIncomeResponse{Success: true}}

	req := httptest.NewRequest(http.MethodPost, "/",
		jsonBody(t, gin.H{"monthlyIncome": 5000}))
	w := performAs("u1", UpdateIncome(svc), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5000), svc.gotAmount)
}

func TestUpdateIncome_RejectsBadBodies(t *testing.T) {
	cases := map[string]any{
		"missing income":  gin.H{},
		"zero income":     gin.H{"monthlyIncome": 0},
		"negative income": gin.H{"monthlyIncome": -100},
		"string income":   gin.H{"monthlyIncome": "lots"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &stubAnalytics{update: &datatypes.UpdateIncomeResponse{Success: true}}
			req := httptest.NewRequest(http.MethodPost, "/", jsonBody(t, body))
			w := performAs("u1", UpdateIncome(svc), req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUpdateIncome_InvalidAmountFromServiceIsBadRequest(t *testing.T) {
	svc := &stubAnalytics{updateErr: analytics.ErrInvalidAmount}

	req := httptest.NewRequest(http.MethodPost, "/",
		jsonBody(t, gin.H{"monthlyIncome": 100}))
	w := performAs("u1", UpdateIncome(svc), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// Goals
// =============================================================================

func TestPlanSavingsGoal_ForwardsGoalParameters(t *testing.T) {
	svc := &stubAnalytics{plan: &datatypes.SavingsPlan{
		SavingsPlan:     "save steadily",
		Recommendations: []string{"r"},
		Tips:            []string{"t"},
	}}

	req := httptest.NewRequest(http.MethodPost, "/",
		jsonBody(t, gin.H{"goalAmount": 6000, "timeframe": 12}))
	w := performAs("u1", PlanSavingsGoal(svc), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, datatypes.SavingsGoal{Amount: 6000, Timeframe: 12}, svc.gotGoal)
}

func TestPlanSavingsGoal_RejectsBadBodies(t *testing.T) {
	cases := map[string]any{
		"missing amount":     gin.H{"timeframe": 12},
		"missing timeframe":  gin.H{"goalAmount": 6000},
		"zero amount":        gin.H{"goalAmount": 0, "timeframe": 12},
		"negative timeframe": gin.H{"goalAmount": 6000, "timeframe": -1},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &stubAnalytics{plan: &datatypes.SavingsPlan{SavingsPlan: "p"}}
			req := httptest.NewRequest(http.MethodPost, "/", jsonBody(t, body))
			w := performAs("u1", PlanSavingsGoal(svc), req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

// =============================================================================
// Expenses
// =============================================================================

func TestCreateExpense_Created(t *testing.T) {
	st := &stubExpenseStore{}

	req := httptest.NewRequest(http.MethodPost, "/",
		jsonBody(t, gin.H{"amount": 42.5, "category": "Food"}))
	w := performAs("u1", CreateExpense(st), req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var created datatypes.Expense
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 42.5, created.Amount)
	assert.Equal(t, "Food", created.Category)
}

func TestCreateExpense_RejectsInvalid(t *testing.T) {
	cases := map[string]any{
		"missing amount":   gin.H{"category": "Food"},
		"zero amount":      gin.H{"amount": 0, "category": "Food"},
		"missing category": gin.H{"amount": 10},
		"fractional cents": gin.H{"amount": 10.999, "category": "Food"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", jsonBody(t, body))
			w := performAs("u1", CreateExpense(&stubExpenseStore{}), req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListExpenses_EmptyListIsNotNull(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := performAs("u1", ListExpenses(&stubExpenseStore{}), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"expenses": []}`, w.Body.String())
}

func TestListExpenses_SinceQueryNarrowsWindow(t *testing.T) {
	st := &stubExpenseStore{}
	req := httptest.NewRequest(http.MethodGet, "/?since=2025-05-01T00:00:00Z", nil)
	w := performAs("u1", ListExpenses(st), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, st.gotSince.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)))
}

func TestListExpenses_RejectsBadSince(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?since=yesterday", nil)
	w := performAs("u1", ListExpenses(&stubExpenseStore{}), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteExpense_StatusMapping(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		st := &stubExpenseStore{}
		req := httptest.NewRequest(http.MethodDelete, "/e1", nil)
		w := performAs("u1", DeleteExpense(st), req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "e1", st.gotDeleteID)
	})

	t.Run("not found", func(t *testing.T) {
		st := &stubExpenseStore{deleteErr: store.ErrNotFound}
		req := httptest.NewRequest(http.MethodDelete, "/missing", nil)
		w := performAs("u1", DeleteExpense(st), req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		st := &stubExpenseStore{deleteErr: errors.New("db down")}
		req := httptest.NewRequest(http.MethodDelete, "/e1", nil)
		w := performAs("u1", DeleteExpense(st), req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestListCategories(t *testing.T) {
	st := &stubExpenseStore{categories: []string{"Food", "Housing"}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := performAs("u1", ListCategories(st), req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories": ["Food", "Housing"]}`, w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	router := gin.New()
	router.GET("/health", HealthCheck)
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}
