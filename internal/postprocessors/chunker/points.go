package chunker

import "github.com/custodia-labs/castquery/internal/core/domain"

// Points pairs chunks with their embeddings. IDs are baseID plus the chunk
// position, so one batch never repeats an ID. The payload references the
// job by ID and never carries the chunk text.
func Points(job domain.JobResult, chunks []Chunk, vectors [][]float32, baseID uint64) []domain.VectorPoint {
	n := min(len(chunks), len(vectors))
	points := make([]domain.VectorPoint, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, domain.VectorPoint{
			ID:     baseID + uint64(i),
			Vector: vectors[i],
			Payload: domain.VectorPayload{
				DocumentID:  job.ID,
				ChannelID:   job.ChannelID,
				WindowStart: chunks[i].Start.Unix(),
				WindowEnd:   chunks[i].End.Unix(),
			},
		})
	}
	return points
}

// Texts returns the chunk texts in order.
func Texts(chunks []Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
