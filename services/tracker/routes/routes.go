// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/asap007/ExpenseTracker/services/tracker/handlers"
	"github.com/asap007/ExpenseTracker/services/tracker/middleware"
)

// SetupRoutes registers all tracker endpoints on router.
func SetupRoutes(router *gin.Engine, svc handlers.AnalyticsProvider, st handlers.ExpenseStore,
	verifier middleware.SessionVerifier) {

	router.GET("/health", handlers.HealthCheck)

	// API version 1 group
	v1 := router.Group("/v1")
	v1.Use(middleware.RequestID())
	v1.Use(middleware.AuthMiddleware(verifier))
	{
		v1.GET("/analytics", handlers.GetAnalytics(svc))
		v1.POST("/analytics", handlers.UpdateIncome(svc))
		v1.POST("/goals/plan", handlers.PlanSavingsGoal(svc))

		expenses := v1.Group("/expenses")
		{
			expenses.POST("", handlers.CreateExpense(st))
			expenses.GET("", handlers.ListExpenses(st))
			expenses.DELETE("/:id", handlers.DeleteExpense(st))
		}
		v1.GET("/categories", handlers.ListCategories(st))
	}
}
