// Package backend implements the external model collaborators — completion
// streaming, speech synthesis, transcription and image generation — on top of
// the OpenAI API.
package backend

import (
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/yavens/rig-chat-client/internal/stream"
)

// Config selects the models used for each capability.
type Config struct {
	APIKey             string
	CompletionModel    string
	TTSModel           string
	TTSVoice           string
	TranscriptionModel string
	ImageModel         string
	ImageSize          string
	ImageDir           string
}

// Client bundles the OpenAI-backed implementations of the core's external
// interfaces.
type Client struct {
	api openai.Client
	cfg Config

	toolParams []openai.ChatCompletionToolParam
}

func New(cfg Config) *Client {
	return &Client{
		api: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg: cfg,
	}
}

// RegisterTools advertises the given tool definitions on every completion
// request.
func (c *Client) RegisterTools(defs []stream.Definition) {
	params := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        d.Name,
				Description: param.NewOpt(d.Description),
				Parameters:  openai.FunctionParameters(d.Parameters),
			},
		})
	}
	c.toolParams = params
}
