package main

// General API documentation for swaggo. Regenerate with `swag init -g cmd/llmchat/docs.go`.
//
// @title           llmchat API
// @version         1.0
// @description     Chat with a locally served Ollama model.
//
// @contact.name   llmchat maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
