package describe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const systemPrompt = `You write captions for a personal photo gallery.
Reply with a single JSON object and nothing else:
{"title": string, "description": string}
The title has at most 8 words. The description is one or two sentences describing what the photo shows.`

// OpenAI describes images with an OpenAI-compatible vision chat model.
type OpenAI struct {
	client openai.Client
	model  string
}

var _ Describer = (*OpenAI)(nil)

// NewOpenAI creates a describer. baseURL may point at any OpenAI-compatible API.
func NewOpenAI(key, baseURL, model string, opts ...option.RequestOption) *OpenAI {
	opts = append([]option.RequestOption{option.WithAPIKey(key), option.WithBaseURL(baseURL)}, opts...)
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (c *OpenAI) Describe(ctx context.Context, image []byte, contentType string) (Description, error) {
	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := c.client.Chat.Completions.New(ctx, c.params(dataURL))
	if err != nil {
		return Description{}, fmt.Errorf("%w: chat completion: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return Description{}, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	return parseDescription(resp.Choices[0].Message.Content)
}

func (c *OpenAI) params(imageURL string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		MaxTokens: openai.Int(300),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
							{OfText: &openai.ChatCompletionContentPartTextParam{
								Text: "Describe this photo.",
							}},
							{OfImageURL: &openai.ChatCompletionContentPartImageParam{
								ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
									URL:    imageURL,
									Detail: "low",
								},
							}},
						},
					},
				},
			},
		},
	}
}

// parseDescription accepts the model's reply with or without a markdown code fence.
func parseDescription(content string) (Description, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var d Description
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &d); err != nil {
		return Description{}, fmt.Errorf("%w: malformed reply: %v", ErrUnavailable, err)
	}
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Title == "" && d.Description == "" {
		return Description{}, fmt.Errorf("%w: empty reply", ErrUnavailable)
	}
	return d, nil
}
