package genai

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/openai/openai-go"
)

// debugLogEntry is one request/response pair written in debug mode.
type debugLogEntry struct {
	Timestamp string                         `json:"timestamp"`
	Method    string                         `json:"method"`
	Provider  Provider                       `json:"provider"`
	Model     string                         `json:"model"`
	Params    openai.ChatCompletionNewParams `json:"params"`
	Response  *openai.ChatCompletion         `json:"response"`
	Error     string                         `json:"error,omitempty"`
}

// writeDebugLog stores the call under stateDir/debug. Failures are logged and ignored.
func (c *Client) writeDebugLog(method string, params openai.ChatCompletionNewParams, resp openai.ChatCompletion, callErr error) {
	if !c.debugMode || c.stateDir == "" {
		return
	}

	debugDir := filepath.Join(c.stateDir, "debug")
	if err := os.MkdirAll(debugDir, 0o755); err != nil {
		slog.Warn("Client.writeDebugLog: failed to create debug directory", "dir", debugDir, "error", err)
		return
	}

	now := time.Now().UTC()
	entry := debugLogEntry{
		Timestamp: now.Format(time.RFC3339Nano),
		Method:    method,
		Provider:  c.provider,
		Model:     c.model,
		Params:    params,
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	} else {
		entry.Response = &resp
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		slog.Warn("Client.writeDebugLog: failed to marshal debug entry", "error", err)
		return
	}

	name := fmt.Sprintf("%s_%s.json", now.Format("20060102T150405.000000000Z"), method)
	path := filepath.Join(debugDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Warn("Client.writeDebugLog: failed to write debug file", "path", path, "error", err)
		return
	}
	slog.Debug("Client.writeDebugLog: debug entry written", "path", path)
}
