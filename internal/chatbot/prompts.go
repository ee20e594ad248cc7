package chatbot

// System prompt for grounded answers. The refusal phrase is load
// bearing: the pipeline treats an answer containing it as a miss and
// drops to the deterministic ladder.
const supportAgentPrompt = "You are a helpful and professional AI Support Agent for Trans Emirates Company. " +
	"Use only the following context to answer the user. " +
	"If the answer is not present, say: I don't have that information."

const refusalPhrase = "I don't have that information"
const refusalPhraseAlt = "I do not have"
