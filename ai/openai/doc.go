// Package openai provides an ai.Embedder backed by any OpenAI-compatible
// embedding API, including local servers such as Ollama and vLLM.
package openai
