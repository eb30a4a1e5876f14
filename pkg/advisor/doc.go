/*
Package advisor provides ports.Advisor implementations.

LLM wraps any Completer (Anthropic, OpenAI) with the prompts and the JSON
decision codec. Rules is an offline advisor driven by keyword rules, used when
no API key is configured and in demos. Funcs adapts plain functions and is
meant for tests.
*/
package advisor
