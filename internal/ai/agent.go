package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dinepos/internal/database"
	"dinepos/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// RunAgent answers a manager's question about the floor using live data.
// Read-only on purpose: order state only ever changes through the
// lifecycle engine, never through the assistant.
func RunAgent(userMessage string, tenantID uint, apiKey string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")

	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are a restaurant manager's assistant.

	RULES:
	1. FLOOR: If the user asks about open orders, tables, or what the kitchen is working on,
	   call 'list_open_orders' and read the JSON to answer.
	2. TABLES: For questions about which tables are free or taken, call 'table_occupancy'.
	3. SALES: If the user asks for sales/revenue, use 'get_sales_report'.
	4. Amounts are integers in minor currency units; present them as money.

	USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "list_open_orders",
					Description: "List every order that is not yet closed or cancelled, with table, status, items and due balance.",
				},
				{
					Name:        "table_occupancy",
					Description: "Get the current status of every table (available, occupied, reserved) and which order occupies it.",
				},
				{
					Name:        "get_sales_report",
					Description: "Get settled revenue and order count for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			switch funcCall.Name {
			case "list_open_orders":
				return executeListOpenOrders(ctx, session, tenantID), nil
			case "table_occupancy":
				return executeTableOccupancy(ctx, session, tenantID), nil
			case "get_sales_report":
				return executeSalesReport(ctx, session, tenantID, funcCall), nil
			}
		}
	}

	return printResponse(resp), nil
}

// --- HELPER FUNCTIONS ---

func executeListOpenOrders(ctx context.Context, session *genai.ChatSession, tenantID uint) string {
	var orders []models.Order
	database.DB.Preload("Items").
		Where("tenant_id = ? AND status NOT IN ?", tenantID,
			[]models.OrderStatus{models.StatusClosed, models.StatusCancelled}).
		Find(&orders)

	type simpleOrder struct {
		Number  int64              `json:"number"`
		TableID uint               `json:"table_id"`
		Status  models.OrderStatus `json:"status"`
		Items   int                `json:"items"`
		Due     int64              `json:"due"`
	}
	var simpleList []simpleOrder
	for _, o := range orders {
		simpleList = append(simpleList, simpleOrder{
			Number:  o.OrderNumber,
			TableID: o.TableID,
			Status:  o.Status,
			Items:   len(o.Items),
			Due:     o.AmountDue,
		})
	}

	jsonBytes, _ := json.Marshal(simpleList)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "list_open_orders",
		Response: map[string]interface{}{"orders": string(jsonBytes)},
	})
	if err != nil {
		return "Error reading open orders."
	}
	return printResponse(finalResp)
}

func executeTableOccupancy(ctx context.Context, session *genai.ChatSession, tenantID uint) string {
	var tables []models.DiningTable
	database.DB.Where("tenant_id = ?", tenantID).Order("number").Find(&tables)

	jsonBytes, _ := json.Marshal(tables)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "table_occupancy",
		Response: map[string]interface{}{"tables": string(jsonBytes)},
	})
	if err != nil {
		return "Error reading table occupancy."
	}
	return printResponse(finalResp)
}

func executeSalesReport(ctx context.Context, session *genai.ChatSession, tenantID uint, funcCall genai.FunctionCall) string {
	args := funcCall.Args
	startStr := args["start_date"].(string)
	endStr := args["end_date"].(string)

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)

	if err1 != nil || err2 != nil {
		return "Error: Dates must be in YYYY-MM-DD format."
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	report, err := database.GetSalesReport(tenantID, start, end)
	if err != nil {
		return "Error calculating sales."
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_sales_report",
		Response: map[string]interface{}{
			"revenue":      report.TotalRevenue,
			"orders_count": report.TotalCount,
		},
	})
	return printResponse(finalResp)
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
