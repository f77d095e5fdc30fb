package models

const (
	// AnswerPromptTemplate takes the retrieved context and the user question.
	// The model is told to refuse rather than improvise when the context does
	// not contain the answer.
	AnswerPromptTemplate = `Answer the following question based only on the provided context. If the answer is not contained in the context, say that the context does not contain the answer.

Context:
%s

Question: %s

Answer:`

	// TranscribePrompt is sent alongside a page image to a vision model
	// during scanned-document ingestion.
	TranscribePrompt = "Transcribe all text from this page exactly. Output only the text."

	// NoContext stands in for the context block when retrieval returned
	// nothing.
	NoContext = "(no context retrieved)"
)
