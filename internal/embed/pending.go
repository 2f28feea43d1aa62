// ABOUTME: Backfills embeddings for commits the Store has not yet embedded
package embed

import (
	"context"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
)

// DefaultBatchSize is the number of pending commits fetched per round.
const DefaultBatchSize = 10

// EmbedPending embeds every commit of repoID that the Store reports as
// missing an embedding, in batches of batchSize, until none remain.
// A per-commit embed or store failure increments Failed and continues
// to the next commit — except a connection failure to the embedding
// endpoint itself, which aborts the whole backfill immediately: every
// remaining commit would fail the same way, and grinding through them
// one at a time only delays reporting a problem the operator needs to
// see right away.
func EmbedPending(ctx context.Context, store commitmux.Store, embedder commitmux.Embedder, repoID int64, batchSize int) (*commitmux.EmbedSummary, error) {
	summary := &commitmux.EmbedSummary{}

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		batch, err := store.GetCommitsWithoutEmbeddings(repoID, batchSize)
		if err != nil {
			return summary, commitmux.NewError(commitmux.KindStore, "fetch pending commits", err)
		}
		if len(batch) == 0 {
			return summary, nil
		}

		for _, commit := range batch {
			doc := BuildEmbedDoc(commit)

			vector, err := embedder.Embed(ctx, doc)
			if err != nil {
				message, connFailure := classifyEmbedError(embedder.Endpoint(), commit.SHA, err)
				summary.Failed++
				summary.Errors = append(summary.Errors, message)
				if connFailure {
					return summary, commitmux.NewError(commitmux.KindEmbed, message, err)
				}
				continue
			}

			if err := store.StoreEmbedding(commit, vector); err != nil {
				summary.Failed++
				summary.Errors = append(summary.Errors, "embed: failed to store embedding for "+commit.SHA+": "+err.Error())
				continue
			}

			summary.Embedded++
		}
	}
}
