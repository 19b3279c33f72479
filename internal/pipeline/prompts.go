package pipeline

import "strings"

// Placeholders the chain-of-thought template must carry. The pipeline
// substitutes them before the combined call.
const (
	PlaceholderSystemPrompt = "{system_prompt}"
	PlaceholderQuestion     = "{question}"
	PlaceholderDocument     = "{document_content}"
)

// DefaultSystemPrompt is used when a run supplies no system prompt.
const DefaultSystemPrompt = "You are a helpful assistant that answers questions accurately and concisely."

// DefaultCoTPrompt is the built-in chain-of-thought template. The template
// itself delimits the reasoning structure: the model is instructed to emit
// <thinking> (with a nested <reflection>) and <output> sections, which the
// pipeline then isolates.
const DefaultCoTPrompt = `{system_prompt}

You are an AI assistant that uses a Chain of Thought (CoT) approach with reflection to answer queries. Follow these steps:

1. Think through the problem step by step within the <thinking> tags.
2. Reflect on your thinking to check for any errors or improvements within the <reflection> tags.
3. Make any necessary adjustments based on your reflection.
4. Provide your final, concise answer within the <output> tags.

Important: The <thinking> and <reflection> sections are for your internal reasoning process only. Do not include any part of the final answer in these sections. The actual response to the query must be entirely contained within the <output> tags.

Use the following format for your response:
<thinking>
[Your step-by-step reasoning goes here.]
<reflection>
[Your reflection on your reasoning, checking for errors or improvements.]
</reflection>
[Any adjustments to your thinking based on your reflection.]
</thinking>
<output>
[Your final, concise answer to the query.]
</output>

{document_content}Question: {question}`

// documentBlock renders the optional document section inserted into
// prompts. The text is included verbatim; the pipeline never inspects
// document structure.
func documentBlock(documentText string) string {
	if documentText == "" {
		return ""
	}
	return "Document Content:\n" + documentText + "\n\n"
}

// buildInitialPrompt asks for an unreasoned, concise answer.
func buildInitialPrompt(systemPrompt, documentText, question string) string {
	return systemPrompt + "\n\n" + documentBlock(documentText) +
		"Question: " + question + "\n\n" +
		"Provide a concise answer to this question without any explanation or reasoning."
}

// buildDirectPrompt asks for a single comprehensive answer (direct mode).
func buildDirectPrompt(systemPrompt, documentText, question string) string {
	return systemPrompt + "\n\n" + documentBlock(documentText) +
		"Question: " + question + "\n\n" +
		"Analyze the question and provide a comprehensive answer."
}

// renderCoT substitutes the template placeholders for the combined call.
func renderCoT(template, systemPrompt, documentText, question string) string {
	out := strings.ReplaceAll(template, PlaceholderSystemPrompt, systemPrompt)
	out = strings.ReplaceAll(out, PlaceholderDocument, documentBlock(documentText))
	out = strings.ReplaceAll(out, PlaceholderQuestion, question)
	return out
}
