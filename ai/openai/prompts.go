package openai

import "fmt"

// System instructions for the two phases of the question protocol. The
// ungrounded prompt produces the initial answer that drives retrieval; the
// grounded prompt conditions the final answer on the retrieved articles and
// demands explicit citations.
const (
	ungroundedSystemPrompt = "You are a swiss legal expert. Provide a concise, factual answer " +
		"to the legal question. Focus on the key legal concepts and principles."

	groundedSystemPrompt = "You are a swiss legal expert. Answer the question based on the " +
		"provided articles. Always cite the specific articles you reference using their " +
		"article numbers. Be concise and factual."
)

// buildUserMessage assembles the user-role message content.
// With context, the question and the retrieved articles travel together.
func buildUserMessage(question, articleContext string) string {
	if articleContext == "" {
		return question
	}
	return fmt.Sprintf("Question: %s\n\nRelevant articles:\n%s", question, articleContext)
}
