package integration

import (
	"net/http"
	"testing"
)

func TestBudgetFlow(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "owner@test.com", "password123")

	budgetID := app.createBudget(t, token, "Household", "USD")

	t.Run("creator is listed as owner", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/budgets", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("list budgets failed: %d %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		budgets := result["budgets"].([]interface{})
		if len(budgets) != 1 {
			t.Fatalf("expected 1 budget, got %d", len(budgets))
		}
		if budgets[0].(map[string]interface{})["user_role"] != "owner" {
			t.Errorf("expected owner role, got %v", budgets[0].(map[string]interface{})["user_role"])
		}
	})

	t.Run("entries drive the balance", func(t *testing.T) {
		salary := app.createCategory(t, token, budgetID, "Salary", "income")
		food := app.createCategory(t, token, budgetID, "Food", "expense")

		app.createEntry(t, token, budgetID, salary, "income", 500000)
		app.createEntry(t, token, budgetID, food, "expense", 120000)
		entryID := app.createEntry(t, token, budgetID, food, "expense", 30000)

		rec := app.request("GET", "/api/v1/budgets/"+budgetID+"/balance", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("balance failed: %d %s", rec.Code, rec.Body.String())
		}
		balance := parseJSON(t, rec)["balance"].(map[string]interface{})
		if balance["net_minor"].(float64) != 350000 {
			t.Errorf("expected net 350000, got %v", balance["net_minor"])
		}

		// Soft-deleting an entry removes it from the balance.
		rec = app.request("DELETE", "/api/v1/budgets/"+budgetID+"/entries/"+entryID, "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("delete entry failed: %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("GET", "/api/v1/budgets/"+budgetID+"/balance", "", token)
		balance = parseJSON(t, rec)["balance"].(map[string]interface{})
		if balance["net_minor"].(float64) != 380000 {
			t.Errorf("expected net 380000 after delete, got %v", balance["net_minor"])
		}
	})

	t.Run("entries list with pagination", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/budgets/"+budgetID+"/entries?page=1&page_size=2", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("list entries failed: %d %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total_items"].(float64) != 2 {
			t.Errorf("expected 2 active entries, got %v", result["total_items"])
		}
	})

	t.Run("category deletion blocked while in use", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/budgets/"+budgetID+"/categories?kind=expense", "", token)
		categories := parseJSON(t, rec)["categories"].([]interface{})
		if len(categories) != 1 {
			t.Fatalf("expected 1 expense category, got %d", len(categories))
		}
		catID := categories[0].(map[string]interface{})["id"].(string)

		rec = app.request("DELETE", "/api/v1/budgets/"+budgetID+"/categories/"+catID, "", token)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for in-use category, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("soft-deleted budget disappears", func(t *testing.T) {
		otherID := app.createBudget(t, token, "Temporary", "USD")

		rec := app.request("DELETE", "/api/v1/budgets/"+otherID, "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("delete budget failed: %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("GET", "/api/v1/budgets/"+otherID, "", token)
		if rec.Code != http.StatusNotFound && rec.Code != http.StatusForbidden {
			t.Fatalf("expected 404 or 403 for deleted budget, got %d", rec.Code)
		}
	})
}
