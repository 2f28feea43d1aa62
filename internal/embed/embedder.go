// ABOUTME: Embedder wrapping an OpenAI-compatible embeddings endpoint (Ollama by default)
package embed

import (
	"context"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
)

const (
	defaultModel    = "nomic-embed-text"
	defaultEndpoint = "http://localhost:11434/v1"
)

// Config names the embedding model and endpoint. Ollama ignores the
// API key but the client requires a non-empty value.
type Config struct {
	Model    string
	Endpoint string
}

// ConfigFromStore reads embed.model/embed.endpoint from the Store,
// falling back to a local Ollama default when either is unset.
func ConfigFromStore(store commitmux.Store) (Config, error) {
	cfg := Config{Model: defaultModel, Endpoint: defaultEndpoint}

	if model, err := store.GetConfig("embed.model"); err != nil {
		return Config{}, err
	} else if model != nil {
		cfg.Model = *model
	}

	if endpoint, err := store.GetConfig("embed.endpoint"); err != nil {
		return Config{}, err
	} else if endpoint != nil {
		cfg.Endpoint = *endpoint
	}

	return cfg, nil
}

// OpenAIEmbedder is the default commitmux.Embedder, backed by any
// OpenAI-embeddings-compatible endpoint.
type OpenAIEmbedder struct {
	client   *openai.Client
	model    string
	endpoint string
}

var _ commitmux.Embedder = (*OpenAIEmbedder)(nil)

func New(cfg Config) *OpenAIEmbedder {
	clientConfig := openai.DefaultConfig("ollama")
	clientConfig.BaseURL = cfg.Endpoint
	return &OpenAIEmbedder{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    cfg.Model,
		endpoint: cfg.Endpoint,
	}
}

// Endpoint returns the configured base URL.
func (e *OpenAIEmbedder) Endpoint() string { return e.endpoint }

// Embed returns the embedding vector for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, commitmux.NewError(commitmux.KindEmbed, "call embedding endpoint", err)
	}
	if len(resp.Data) == 0 {
		return nil, commitmux.NewError(commitmux.KindEmbed, "no embedding returned", nil)
	}
	return resp.Data[0].Embedding, nil
}

// isConnectionFailure reports whether err means the endpoint could not
// be reached at all — as opposed to reaching it and getting an error
// response — the distinction EmbedPending uses to fail fast instead of
// grinding through every remaining commit against a dead endpoint.
func isConnectionFailure(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return errors.As(reqErr.Err, &netErr)
	}
	var urlErr interface{ Timeout() bool }
	return errors.As(err, &urlErr)
}

// classifyEmbedError maps a raw embed error down to a short message,
// distinguishing connection failures for the caller's fail-fast check.
// The connection-failure message names endpoint verbatim (spec.md
// section 7's "Cannot connect to <endpoint> — is the server running?"
// wording) so an operator sees exactly where the sync tried to reach.
func classifyEmbedError(endpoint, sha string, err error) (message string, connectionFailure bool) {
	if isConnectionFailure(err) {
		return fmt.Sprintf("Cannot connect to %s — is the server running?", endpoint), true
	}
	return fmt.Sprintf("embed: failed to embed %s: %v", sha, err), false
}
