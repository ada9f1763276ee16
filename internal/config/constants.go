package config

import "time"

const (
	// Backend retry budget per turn
	MaxAttempts = 3

	// Interactive rating prompts before giving up
	MaxRatingAttempts = 3

	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Model cache duration
	ModelCacheDuration = 1 * time.Hour

	// Telegram notification timeout
	NotifyTimeout = 10 * time.Second

	PlaceholderAPIKey = "your_api_key_here"

	DefaultSystemPrompt = "You are a helpful AI assistant. Be concise, friendly, and precise in your answers. " +
		"If you don't know something, say so rather than making up information. " +
		"When the user rates or reviews the conversation, call collect_feedback. " +
		"When the user wants to end the conversation, call detect_exit_intent."

	ExitClassifierPrompt = "Decide whether the following user message signals a desire to end the conversation. " +
		"Always answer by calling detect_exit_intent."
)

// Fixed user-facing messages.
const (
	MsgContentPolicy        = "I'm sorry, but I can't help with that request. Let's talk about something else."
	MsgConnectionTrouble    = "Sorry, I'm having trouble connecting to the AI service. Please try again later."
	MsgProcessingDifficulty = "Sorry, I'm having difficulty processing your request. Please try again."
	MsgAcknowledged         = "Noted, thank you!"
	MsgTurnFailed           = "Something went wrong with that message. Let's continue our conversation."
	MsgFeedbackThanks       = "Thank you for your feedback!"
	MsgFeedbackIntro        = "Before you go, I'd love to hear your thoughts about our conversation!"
	MsgGoodbye              = "Thank you for chatting! Goodbye!"
	MsgInterrupted          = "Chat ended by user. Goodbye!"
	MsgFeedbackSkipped      = "No problem, maybe next time."
	MsgInvalidRating        = "Please enter a whole number between 1 and 5."
	MsgNoRating             = "Continuing without a rating."
)

const (
	PromptUser   = "You: "
	PromptReview = "Your review (press Enter to skip): "
	PromptRating = "Your rating (1-5, Enter to skip): "
	BotPrefix    = "Bot: "
)

// ExitPhrases is the local fallback list used when the remote classifier
// cannot answer.
var ExitPhrases = []string{
	"bye", "exit", "end chat", "quit", "goodbye",
	"leave", "i want to leave", "stop", "end", "close",
}
