package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"

	"github.com/yavens/rig-chat-client/internal/stream"
)

// ImageTool generates an image for the user, saves it under the served static
// tree and reports its URL path as the tool result.
type ImageTool struct {
	client *Client
}

func (c *Client) ImageTool() *ImageTool {
	return &ImageTool{client: c}
}

func (t *ImageTool) Name() string { return "generate_image" }

func (t *ImageTool) Definition() stream.Definition {
	return stream.Definition{
		Name:        "generate_image",
		Description: "Generate an image for the user",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt": map[string]any{
					"type":        "string",
					"description": "The description of the image you want to generate",
				},
			},
		},
	}
}

type imageArgs struct {
	Prompt string `json:"prompt"`
}

func (t *ImageTool) Invoke(ctx context.Context, arguments json.RawMessage) (string, error) {
	var args imageArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return "", fmt.Errorf("decode generate_image arguments: %w", err)
	}
	if strings.TrimSpace(args.Prompt) == "" {
		return "", fmt.Errorf("generate_image requires a prompt")
	}

	cfg := t.client.cfg
	res, err := t.client.api.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         args.Prompt,
		Model:          openai.ImageModel(cfg.ImageModel),
		Size:           openai.ImageGenerateParamsSize(cfg.ImageSize),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		N:              param.NewOpt(int64(1)),
	})
	if err != nil {
		return "", fmt.Errorf("image generation: %w", err)
	}
	if len(res.Data) == 0 {
		return "", fmt.Errorf("image generation returned no data")
	}

	raw, err := base64.StdEncoding.DecodeString(res.Data[0].B64JSON)
	if err != nil {
		return "", fmt.Errorf("decode generated image: %w", err)
	}

	if err := os.MkdirAll(cfg.ImageDir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	name := fmt.Sprintf("%d.png", time.Now().UnixMilli())
	path := filepath.Join(cfg.ImageDir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write generated image: %w", err)
	}

	return "/" + filepath.ToSlash(path), nil
}

func (t *ImageTool) RenderResult(result string) string {
	return fmt.Sprintf(`<img src="%s"/>`, result)
}
