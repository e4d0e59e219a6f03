// Package prompt renders the natural language prompts sent to the model.
//
// Prompts come from a YAML prompt pack. The default pack is embedded in the
// binary; a file given by llm.prompt_file replaces it. Every template in the
// pack is parsed at load time so a broken override fails at startup.
package prompt
