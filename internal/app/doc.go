// Package app provides the main application logic for downloading media
// through the wrapped download engine. It initializes the necessary
// components, such as the engine adapter, rights gate, request builder,
// and tag processor, and orchestrates the command execution.
package app
