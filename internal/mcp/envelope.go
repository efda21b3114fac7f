package mcp

import (
	"encoding/json"
	"errors"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// callRequest is the body POSTed for every tool invocation:
// {"method":"tools/call","params":{"name":...,"arguments":{...}}}.
type callRequest struct {
	Method string     `json:"method"`
	Params callParams `json:"params"`
}

type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"` // never omitted, {} when empty
}

func newCallRequest(toolName string, args map[string]any) callRequest {
	if args == nil {
		args = map[string]any{}
	}
	return callRequest{
		Method: string(mcpgo.MethodToolsCall),
		Params: callParams{Name: toolName, Arguments: args},
	}
}

// callResponse is the success envelope. Only result.content[0].text is read.
type callResponse struct {
	Result *struct {
		Content []mcpgo.TextContent `json:"content"`
	} `json:"result"`
}

var (
	errUndecodableBody = errors.New("response body is not a JSON envelope")
	errMissingResult   = errors.New("envelope has no result")
	errEmptyContent    = errors.New("result.content is missing or empty")
)

// firstText extracts the text of the first content element. The returned
// error names the envelope defect; callers surface a single fixed message.
func firstText(body []byte) (string, error) {
	var env callResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return "", errUndecodableBody
	}
	if env.Result == nil {
		return "", errMissingResult
	}
	if len(env.Result.Content) == 0 {
		return "", errEmptyContent
	}
	return env.Result.Content[0].Text, nil
}
