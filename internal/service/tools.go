package service

import "github.com/set-night/chatfeedback/internal/domain"

type Tool struct {
	Type     string         `json:"type"`
	Function FunctionSchema `json:"function"`
}

type FunctionSchema struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

var CollectFeedbackTool = Tool{
	Type: "function",
	Function: FunctionSchema{
		Name:        domain.CallCollectFeedback,
		Description: "Collect user feedback and rating about the chat experience",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"review": map[string]interface{}{
					"type":        "string",
					"description": "User's review of the chat experience",
				},
				"rating": map[string]interface{}{
					"type":        "number",
					"description": "Rating from 1 to 5, where 5 is the best",
					"minimum":     1,
					"maximum":     5,
				},
				"is_feedback": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the message is feedback about the conversation",
				},
			},
			"required": []string{"is_feedback"},
		},
	},
}

var DetectExitIntentTool = Tool{
	Type: "function",
	Function: FunctionSchema{
		Name:        domain.CallDetectExitIntent,
		Description: "Detect whether the user wants to end the conversation",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"is_exit_intent": map[string]interface{}{
					"type":        "boolean",
					"description": "True if the user wants to end the conversation",
				},
				"confidence": map[string]interface{}{
					"type":        "number",
					"description": "Confidence from 0 to 1",
					"minimum":     0,
					"maximum":     1,
				},
			},
			"required": []string{"is_exit_intent"},
		},
	},
}

// forceTool builds a tool_choice that makes the backend call fn.
func forceTool(fn string) map[string]interface{} {
	return map[string]interface{}{
		"type":     "function",
		"function": map[string]string{"name": fn},
	}
}
